// Package stats derives the daily nutrient summary from diary entries.
package stats

import (
	"fmt"
	"math"
	"time"

	"github.com/pageza/nutriscan/backend/internal/models"
)

// CarbBand classifies the day's carbohydrate intake against the target
type CarbBand string

const (
	CarbsBelow  CarbBand = "below"
	CarbsAbove  CarbBand = "above"
	CarbsWithin CarbBand = "within"
)

// Band thresholds, as fractions of the carbohydrate target
const (
	lowThreshold  = 0.8
	highThreshold = 1.2
)

var bandMessages = map[CarbBand]string{
	CarbsBelow:  "I carboidrati sono sotto il livello raccomandato. Considera di aggiungere cereali integrali o frutta.",
	CarbsAbove:  "Hai superato il livello raccomandato di carboidrati per oggi.",
	CarbsWithin: "Ottimo equilibrio di carboidrati! Continua così.",
}

// Message returns the narrative shown for the band
func (b CarbBand) Message() string {
	return bandMessages[b]
}

// Summary is the stats view of a single day
type Summary struct {
	Date         string           `json:"date"`
	EntryCount   int              `json:"entryCount"`
	Totals       models.Nutrients `json:"totals"`
	Targets      models.Nutrients `json:"targets"`
	Percentages  models.Nutrients `json:"percentages"`
	CarbBand     CarbBand         `json:"carbBand"`
	CarbMessage  string           `json:"carbMessage"`
	DiabeticHint string           `json:"diabeticHint"`
}

// SameDay reports whether t falls on the calendar day of now, in now's location
func SameDay(t, now time.Time) bool {
	y1, m1, d1 := t.In(now.Location()).Date()
	y2, m2, d2 := now.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// TodayEntries keeps the entries logged on the calendar day of now
func TodayEntries(entries []models.DiaryEntry, now time.Time) []models.DiaryEntry {
	var out []models.DiaryEntry
	for _, e := range entries {
		if SameDay(e.Timestamp, now) {
			out = append(out, e)
		}
	}
	return out
}

// DailyTotals sums the macros of the entries logged on the calendar day of now
func DailyTotals(entries []models.DiaryEntry, now time.Time) models.Nutrients {
	var totals models.Nutrients
	for _, e := range TodayEntries(entries, now) {
		totals.Carbs += e.Food.Carbs
		totals.Calories += e.Food.Calories
		totals.Proteins += e.Food.Proteins
		totals.Fats += e.Food.Fats
	}
	return totals
}

// Percent returns total as a percentage of target, capped at 100
func Percent(total, target float64) float64 {
	if target <= 0 {
		return 0
	}
	return math.Min(total/target*100, 100)
}

// Percentages applies Percent to every tracked nutrient
func Percentages(totals, targets models.Nutrients) models.Nutrients {
	return models.Nutrients{
		Carbs:    Percent(totals.Carbs, targets.Carbs),
		Calories: Percent(totals.Calories, targets.Calories),
		Proteins: Percent(totals.Proteins, targets.Proteins),
		Fats:     Percent(totals.Fats, targets.Fats),
	}
}

// ClassifyCarbs picks the band for the given intake
func ClassifyCarbs(carbs, target float64) CarbBand {
	switch {
	case carbs < target*lowThreshold:
		return CarbsBelow
	case carbs > target*highThreshold:
		return CarbsAbove
	default:
		return CarbsWithin
	}
}

// DiabeticHint returns the carbohydrate reminder for insulin users
func DiabeticHint(carbs float64) string {
	hint := fmt.Sprintf("Hai consumato %.1fg di carboidrati oggi.", carbs)
	if carbs > 0 {
		hint += " Ricorda di monitorare la glicemia e adeguare il bolo insulinico."
	}
	return hint
}

// Summarize builds the stats view for the day of now
func Summarize(entries []models.DiaryEntry, now time.Time) Summary {
	today := TodayEntries(entries, now)
	totals := DailyTotals(today, now)
	targets := models.RecommendedDaily
	band := ClassifyCarbs(totals.Carbs, targets.Carbs)

	return Summary{
		Date:         now.Format("2006-01-02"),
		EntryCount:   len(today),
		Totals:       totals,
		Targets:      targets,
		Percentages:  Percentages(totals, targets),
		CarbBand:     band,
		CarbMessage:  band.Message(),
		DiabeticHint: DiabeticHint(totals.Carbs),
	}
}
