// Package cli implements the nutriscan command line client.
package cli

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/pageza/nutriscan/backend/internal/client"
	"github.com/pageza/nutriscan/backend/internal/service"
)

// ScanOptions controls RunScan
type ScanOptions struct {
	ImagePath string
	// Pick is the catalog key to confirm; empty picks the best candidate
	Pick string
	// Local recognizes with the built-in mock instead of the server
	Local     bool
	UserAgent string
}

// RunScan recognizes a photo and logs the chosen dish
func RunScan(ctx context.Context, w io.Writer, api *client.APIClient, opts ScanOptions) error {
	image, err := ReadDataURI(opts.ImagePath)
	if err != nil {
		return err
	}

	var recognizer service.Recognizer = api
	if opts.Local {
		recognizer = service.NewMockRecognizer(service.DefaultRecognitionDelay)
	}

	c := client.New(client.Options{
		UserAgent:  opts.UserAgent,
		Recognizer: recognizer,
		Syncer:     api,
	})
	defer c.Close()

	if err := c.SelectImage(image); err != nil {
		return err
	}
	fmt.Fprintln(w, "Analisi dell'immagine in corso...")
	c.Wait()

	state := c.State()
	if state.RecognitionError != nil {
		return fmt.Errorf("recognition failed: %w", state.RecognitionError)
	}
	if len(state.Candidates) == 0 {
		return fmt.Errorf("no dish recognized, use add to log it manually")
	}

	fmt.Fprintln(w, "Cosa stai mangiando?")
	for _, cand := range state.Candidates {
		fmt.Fprintf(w, "  %-18s %-22s %3.0f%%  %5.1fg carb  %4.0f kcal\n",
			cand.Key, cand.Food.Name, cand.Confidence*100, cand.Food.Carbs, cand.Food.Calories)
	}

	pick := opts.Pick
	if pick == "" {
		pick = state.Candidates[0].Key
	}
	if err := c.SelectSuggestion(pick); err != nil {
		return err
	}

	entry, err := c.Confirm(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "✓ Aggiunto al diario: %s (%s)\n", entry.Food.Name, entry.Timestamp.Local().Format("15:04"))
	return nil
}

// RunAdd logs a manual entry
func RunAdd(ctx context.Context, w io.Writer, api *client.APIClient, form client.ManualForm) error {
	c := client.New(client.Options{Syncer: api})
	defer c.Close()

	if err := c.OpenManualEntry(); err != nil {
		return err
	}
	entry, err := c.SubmitManual(ctx, form)
	if err != nil {
		return err
	}

	log.Printf("Manual entry added: %s", entry.Food.Name)
	fmt.Fprintf(w, "✓ Aggiunto al diario: %s (%.1fg carb, %.0f kcal)\n", entry.Food.Name, entry.Food.Carbs, entry.Food.Calories)
	return nil
}

// RunList prints the stored diary
func RunList(ctx context.Context, w io.Writer, api *client.APIClient) error {
	entries, err := api.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list diary: %w", err)
	}

	if len(entries) == 0 {
		fmt.Fprintln(w, "Nessun pasto registrato")
		return nil
	}

	fmt.Fprintln(w, "Diario alimentare:")
	for _, e := range entries {
		tag := ""
		if e.IsManual {
			tag = " (manuale)"
		}
		fmt.Fprintf(w, "  • %s - %s%s: %.1fg carb, %.0f kcal\n",
			e.Timestamp.Local().Format("2006-01-02 15:04"), e.Food.Name, tag, e.Food.Carbs, e.Food.Calories)
	}
	fmt.Fprintf(w, "\n%d pasti in totale\n", len(entries))
	return nil
}

// RunStats prints today's totals against the daily targets
func RunStats(ctx context.Context, w io.Writer, api *client.APIClient) error {
	s, err := api.Stats(ctx)
	if err != nil {
		return fmt.Errorf("failed to load stats: %w", err)
	}

	fmt.Fprintf(w, "Statistiche di oggi (%s), %d pasti\n", s.Date, s.EntryCount)
	rows := []struct {
		label         string
		total, target float64
		pct           float64
		unit          string
	}{
		{"Carboidrati", s.Totals.Carbs, s.Targets.Carbs, s.Percentages.Carbs, "g"},
		{"Calorie", s.Totals.Calories, s.Targets.Calories, s.Percentages.Calories, "kcal"},
		{"Proteine", s.Totals.Proteins, s.Targets.Proteins, s.Percentages.Proteins, "g"},
		{"Grassi", s.Totals.Fats, s.Targets.Fats, s.Percentages.Fats, "g"},
	}
	for _, r := range rows {
		fmt.Fprintf(w, "  %-12s %7.1f / %.0f %-4s %3.0f%%\n", r.label, r.total, r.target, r.unit, r.pct)
	}
	fmt.Fprintf(w, "\n%s\n%s\n", s.CarbMessage, s.DiabeticHint)
	return nil
}

// RunFoods prints the reference catalog
func RunFoods(ctx context.Context, w io.Writer, api *client.APIClient) error {
	foods, err := api.Foods(ctx)
	if err != nil {
		return fmt.Errorf("failed to load foods: %w", err)
	}
	for _, f := range foods {
		fmt.Fprintf(w, "  %-18s %-22s %5.1fg carb  %4.0f kcal  %4.1fg prot  %4.1fg grassi  %3.1fg fibre\n",
			f.Key, f.Food.Name, f.Food.Carbs, f.Food.Calories, f.Food.Proteins, f.Food.Fats, f.Food.Fiber)
	}
	return nil
}

// ReadDataURI loads an image file as a base64 data URI
func ReadDataURI(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}

	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	// Drop parameters such as charset
	contentType, _, _ = strings.Cut(contentType, ";")

	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
