// Package pipeline sequences one batch run: fetch raw listings from the
// provider, normalize, dedupe against the local ledger, persist state, and
// fan the new subset out to the spreadsheet and WhatsApp sinks.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"home_search/internal/config"
	"home_search/internal/dedupe"
	"home_search/internal/ledger"
	"home_search/internal/listing"
	"home_search/internal/notifications"

	"github.com/rs/zerolog/log"
)

// Provider fetches raw listings for a set of search queries. Implementations
// return an error on any failure; the pipeline converts that to an empty
// batch, which downstream is indistinguishable from "nothing new".
type Provider interface {
	RunScraper(ctx context.Context, searchURLs []string, maxItems int) ([]listing.RawListing, error)
}

// Storage appends listings to the spreadsheet and returns the subset it
// genuinely added relative to its own seen record.
type Storage interface {
	Upload(ctx context.Context, listings []listing.Listing, onlyNew bool) ([]listing.Listing, error)
	URL() string
}

// Notifier sends one text payload to the configured destination.
type Notifier interface {
	Send(ctx context.Context, message string) error
}

type Pipeline struct {
	cfg        *config.Config
	provider   Provider
	storage    Storage
	notifier   Notifier
	normalizer *listing.Normalizer
}

func New(cfg *config.Config, provider Provider, storage Storage, notifier Notifier) *Pipeline {
	return &Pipeline{
		cfg:        cfg,
		provider:   provider,
		storage:    storage,
		notifier:   notifier,
		normalizer: listing.NewNormalizer(cfg),
	}
}

// Options selects areas and toggles the notification step.
type Options struct {
	Areas  config.AreaList // empty means all configured areas
	DryRun bool            // skip the notification sink
}

// Summary reports what one run did. Sink outcomes are recorded
// independently; neither sink's failure aborts the other.
type Summary struct {
	Total     int
	New       int
	DoneEarly bool

	Stored     int
	StorageErr error

	NotifySent bool
	NotifyErr  error
}

// Run executes the full sequence: fetch, normalize, dedupe, persist, store,
// notify. The returned error covers local state failures only (a corrupt
// ledger fails the run); collaborator failures land in the Summary.
func (p *Pipeline) Run(ctx context.Context, opts Options) (Summary, error) {
	result, err := p.Scrape(ctx, opts.Areas)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{Total: len(result.All), New: len(result.New)}

	if len(result.New) == 0 {
		log.Info().Int("total", summary.Total).Msg("No new listings")
		summary.DoneEarly = true
		return summary, nil
	}

	// Storage first, then notification. The two are independent: a storage
	// failure must not suppress the notification attempt.
	storable := dedupe.FilterKnownArea(result.New)
	if len(storable) > 0 {
		added, err := p.storage.Upload(ctx, storable, true)
		if err != nil {
			summary.StorageErr = err
			log.Error().Err(err).Msg("Failed to upload listings to sheet")
		} else {
			summary.Stored = len(added)
		}
	} else {
		log.Info().Msg("No new listings with a known area, skipping sheet upload")
	}

	if opts.DryRun {
		log.Info().Msg("Dry run, skipping notification")
		return summary, nil
	}

	message := notifications.FormatBatchMessage(result.New, p.storage.URL())
	if err := p.notifier.Send(ctx, message); err != nil {
		summary.NotifyErr = err
		log.Error().Err(err).Msg("Failed to send notification")
	} else {
		summary.NotifySent = true
	}

	return summary, nil
}

// Scrape runs fetch + normalize + dedupe + persist with no sink calls.
func (p *Pipeline) Scrape(ctx context.Context, areas config.AreaList) (dedupe.Result, error) {
	if len(areas) == 0 {
		areas = p.cfg.Areas
	}

	raws, err := p.provider.RunScraper(ctx, areas.SearchURLs(), p.cfg.MaxItems)
	if err != nil {
		// Provider failure is routine (missing token, remote error). The run
		// proceeds with an empty batch, which ends it early.
		log.Warn().Err(err).Msg("Provider fetch failed, treating as empty batch")
		raws = nil
	}

	batch := p.normalizer.NormalizeBatch(raws)

	seen, err := ledger.Load(p.cfg.LedgerPath())
	if err != nil {
		return dedupe.Result{}, err
	}

	result := dedupe.Partition(batch, seen)

	// Persist only after the full pass so a mid-pass failure never marks
	// unprocessed listings as seen.
	if err := ledger.Save(p.cfg.LedgerPath(), seen); err != nil {
		return dedupe.Result{}, err
	}

	if err := writeSnapshot(p.cfg.ListingsPath(), result.All); err != nil {
		return dedupe.Result{}, err
	}
	if err := writeSnapshot(p.cfg.NewListingsPath(), result.New); err != nil {
		return dedupe.Result{}, err
	}

	log.Info().
		Int("total", len(result.All)).
		Int("new", len(result.New)).
		Msg("Scrape complete")
	return result, nil
}

// NotifyOnly reads the last run's new-listings snapshot and runs the
// notification step directly.
func (p *Pipeline) NotifyOnly(ctx context.Context) error {
	listings, err := readSnapshot(p.cfg.NewListingsPath())
	if err != nil {
		return err
	}
	if len(listings) == 0 {
		log.Info().Msg("No new listings to notify about")
		return nil
	}

	message := notifications.FormatBatchMessage(listings, p.storage.URL())
	return p.notifier.Send(ctx, message)
}

// writeSnapshot persists a listings array as indented JSON for audit and
// for the standalone notify mode.
func writeSnapshot(path string, listings []listing.Listing) error {
	if listings == nil {
		listings = []listing.Listing{}
	}
	data, err := json.MarshalIndent(listings, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot %s: %w", path, err)
	}
	return nil
}

func readSnapshot(path string) ([]listing.Listing, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	var listings []listing.Listing
	if err := json.Unmarshal(data, &listings); err != nil {
		return nil, fmt.Errorf("parse snapshot %s: %w", path, err)
	}
	return listings, nil
}
