package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/pageza/nutriscan/backend/internal/cli"
	"github.com/pageza/nutriscan/backend/internal/client"
)

const usage = `Usage: nutriscan [-server URL] <command> [flags]

Commands:
  scan -image FILE [-pick KEY] [-local]   recognize a photo and log the dish
  add -name NAME [-carbs G] [-calories KCAL] [-ingredients TEXT] [-portion TEXT]
                                          log a meal manually
  list                                    show the diary
  stats                                   show today's totals
  foods                                   show the reference dishes
`

func main() {
	serverURL := flag.String("server", envOr("NUTRISCAN_SERVER", "http://localhost:3000"), "Diary server URL")
	verbose := flag.Bool("v", false, "Log diagnostics to stderr")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if !*verbose {
		log.SetOutput(discard{})
	}
	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	api := client.NewAPIClient(*serverURL)
	if err := run(ctx, api, flag.Arg(0), flag.Args()[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, api *client.APIClient, cmd string, args []string) error {
	switch cmd {
	case "scan":
		fs := flag.NewFlagSet("scan", flag.ExitOnError)
		image := fs.String("image", "", "Photo of the meal")
		pick := fs.String("pick", "", "Catalog key to confirm, defaults to the best match")
		local := fs.Bool("local", false, "Use the built-in simulated recognizer")
		_ = fs.Parse(args)
		if *image == "" {
			return fmt.Errorf("scan requires -image")
		}
		return cli.RunScan(ctx, os.Stdout, api, cli.ScanOptions{
			ImagePath: *image,
			Pick:      *pick,
			Local:     *local,
			UserAgent: os.Getenv("NUTRISCAN_USER_AGENT"),
		})

	case "add":
		fs := flag.NewFlagSet("add", flag.ExitOnError)
		var form client.ManualForm
		fs.StringVar(&form.Name, "name", "", "Dish name (required)")
		fs.StringVar(&form.Ingredients, "ingredients", "", "Ingredients")
		fs.StringVar(&form.Portion, "portion", "", "Portion size")
		fs.StringVar(&form.Carbs, "carbs", "", "Carbohydrates in grams")
		fs.StringVar(&form.Calories, "calories", "", "Energy in kcal")
		_ = fs.Parse(args)
		return cli.RunAdd(ctx, os.Stdout, api, form)

	case "list":
		return cli.RunList(ctx, os.Stdout, api)
	case "stats":
		return cli.RunStats(ctx, os.Stdout, api)
	case "foods":
		return cli.RunFoods(ctx, os.Stdout, api)
	default:
		flag.Usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
