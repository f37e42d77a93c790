package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"home_search/internal/apify"
	"home_search/internal/config"
	"home_search/internal/listing"
	"home_search/internal/notifications"
	"home_search/internal/pipeline"
	"home_search/internal/poll"
	"home_search/internal/sheets"

	"github.com/rs/zerolog/log"
)

func main() {
	var (
		dryRun     = flag.Bool("dry-run", false, "run the pipeline but skip the WhatsApp notification")
		scrapeOnly = flag.Bool("scrape-only", false, "fetch, dedupe and persist state; no sheet upload or notification")
		notifyOnly = flag.Bool("notify-only", false, "notify from the last run's new-listings snapshot")
		areasCSV   = flag.String("areas", "", "comma-separated area names to search (default: all)")
		allAreas   = flag.Bool("all", false, "search all configured areas (the default)")
		testConn   = flag.Bool("test", false, "check connectivity to Apify, Google Sheets and Twilio")
		listAreas  = flag.Bool("list-areas", false, "print configured areas and exit")
		sheetURL   = flag.Bool("sheet-url", false, "print the spreadsheet URL and exit")
		message    = flag.String("message", "", "send an ad-hoc WhatsApp message and exit")
		areasFile  = flag.String("areas-file", "areas.yaml", "path to the area configuration file")
	)
	flag.Parse()

	setupEnvironment()

	cfg, err := config.Load(*areasFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if *listAreas {
		fmt.Println("Available search areas:")
		for _, name := range cfg.Areas.Names() {
			fmt.Printf("  - %s\n", name)
		}
		return
	}

	ctx := context.Background()

	selected := cfg.Areas
	if !*allAreas && *areasCSV != "" {
		var unknown []string
		selected, unknown = cfg.Areas.Select(*areasCSV)
		for _, name := range unknown {
			log.Warn().Str("area", name).Msg("Unknown area, skipping")
		}
		if len(selected) == 0 {
			log.Fatal().Msg("No valid areas selected")
		}
	}

	provider := apify.NewClient(cfg.ApifyToken, cfg.ActorID, poll.Config{
		Interval: cfg.PollInterval,
		Timeout:  cfg.PollTimeout,
	})
	notifier := notifications.NewClient(cfg)
	storage := newStorage(ctx, cfg)

	if *sheetURL {
		if url := storage.URL(); url != "" {
			fmt.Println(url)
		} else {
			fmt.Println("No sheet configured yet; it is created on first upload.")
		}
		return
	}

	if *message != "" {
		if err := notifier.Send(ctx, *message); err != nil {
			log.Error().Err(err).Msg("Failed to send message")
			os.Exit(1)
		}
		return
	}

	if *testConn {
		os.Exit(runConnectivityChecks(ctx, provider, storage, notifier))
	}

	p := pipeline.New(cfg, provider, storage, notifier)

	switch {
	case *notifyOnly:
		if err := p.NotifyOnly(ctx); err != nil {
			log.Error().Err(err).Msg("Notification failed")
		}
	case *scrapeOnly:
		if _, err := p.Scrape(ctx, selected); err != nil {
			log.Fatal().Err(err).Msg("Scrape failed")
		}
	default:
		summary, err := p.Run(ctx, pipeline.Options{Areas: selected, DryRun: *dryRun})
		if err != nil {
			log.Fatal().Err(err).Msg("Pipeline failed")
		}
		log.Info().
			Int("total", summary.Total).
			Int("new", summary.New).
			Int("stored", summary.Stored).
			Bool("notified", summary.NotifySent).
			Msg("Pipeline complete")
	}
}

// newStorage builds the spreadsheet sink. Missing Google credentials are a
// configuration error, not a fatal one: the run continues with a disabled
// sink so scraping and notification still happen.
func newStorage(ctx context.Context, cfg *config.Config) pipeline.Storage {
	store, err := sheets.NewStore(ctx, cfg)
	if err != nil {
		log.Warn().Err(err).Msg("Sheets client unavailable, sheet upload disabled")
		return disabledStorage{}
	}
	return store
}

type disabledStorage struct{}

func (disabledStorage) Upload(ctx context.Context, listings []listing.Listing, onlyNew bool) ([]listing.Listing, error) {
	return nil, fmt.Errorf("sheets client unavailable")
}

func (disabledStorage) URL() string { return "" }

func runConnectivityChecks(ctx context.Context, provider *apify.Client, storage pipeline.Storage, notifier *notifications.Client) int {
	failed := 0

	if user, err := provider.Whoami(ctx); err != nil {
		log.Error().Err(err).Msg("Apify check failed")
		failed++
	} else {
		log.Info().Str("user", user).Msg("Apify connection OK")
	}

	if store, ok := storage.(*sheets.Store); ok {
		if _, err := store.SeenIDs(ctx); err != nil {
			log.Error().Err(err).Msg("Google Sheets check failed")
			failed++
		} else {
			log.Info().Str("url", store.URL()).Msg("Google Sheets connection OK")
		}
	} else {
		log.Error().Msg("Google Sheets check failed: client unavailable")
		failed++
	}

	if err := notifier.Send(ctx, "Test: London Home Search working!"); err != nil {
		log.Error().Err(err).Msg("Twilio check failed")
		failed++
	} else {
		log.Info().Msg("Twilio connection OK")
	}

	if failed > 0 {
		return 1
	}
	return 0
}
