package worker

import (
	"context"
	"sync"

	"ymurakami/suumowatcher/internal/scraper"
	"ymurakami/suumowatcher/logger"
	"ymurakami/suumowatcher/services/notifier"
	"ymurakami/suumowatcher/services/store"
)

// Watcher wires the pipeline together for every configured criterion:
// scrape, diff against the store's seen set, notify, commit. All
// collaborators are injected so tests can substitute fakes.
type Watcher struct {
	scraper  scraper.Scraper
	store    store.ListingStore
	notifier notifier.Notifier
	criteria []scraper.Criterion
	log      *logger.Logger
}

// NewWatcher creates a new watcher
func NewWatcher(sc scraper.Scraper, st store.ListingStore, nt notifier.Notifier, criteria []scraper.Criterion) *Watcher {
	return &Watcher{
		scraper:  sc,
		store:    st,
		notifier: nt,
		criteria: criteria,
		log:      logger.ForComponent("worker"),
	}
}

// Run processes every criterion once. Criteria are independent, so each
// runs in its own goroutine; the store serializes writes per partition.
// No error escapes: the worst case for one criterion is zero results with
// a logged reason.
func (w *Watcher) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for _, criterion := range w.criteria {
		wg.Add(1)
		go func(c scraper.Criterion) {
			defer wg.Done()
			w.runCriterion(ctx, c)
		}(criterion)
	}
	wg.Wait()
}

// runCriterion runs the pipeline for one criterion.
func (w *Watcher) runCriterion(ctx context.Context, criterion scraper.Criterion) {
	log := logger.ForCriterion(criterion.Name)

	listings, err := w.scraper.Scrape(ctx, criterion)
	if err != nil {
		log.Warn().Err(err).Int("partial", len(listings)).Msg("Scrape ended early")
	}
	log.Info().Int("fetched", len(listings)).Msg("Scrape complete")

	if len(listings) == 0 {
		return
	}

	existing, err := w.store.Load(criterion.Name)
	if err != nil {
		log.Error().Err(err).Msg("Store load failed; treating history as empty")
	}

	novel := novelListings(listings, existing)
	log.Info().Int("novel", len(novel)).Msg("Computed novel subset")

	if len(novel) == 0 {
		return
	}

	// A failed notification must not block the commit: recording the
	// listings as seen prevents repeat alerts on the next run.
	if err := w.notifier.Notify(novel, criterion.Name); err != nil {
		log.Error().Err(err).Msg("Notification failed; listings will still be recorded")
	}

	if err := w.store.Merge(criterion.Name, novel); err != nil {
		log.Error().Err(err).Msg("Store commit failed")
	}
}

// novelListings returns the fetched listings whose detail URL is not in
// the existing set. Duplicate URLs within one fetch collapse to their
// first occurrence.
func novelListings(fetched, existing []scraper.Listing) []scraper.Listing {
	seen := make(map[string]struct{}, len(existing))
	for _, l := range existing {
		seen[l.URL] = struct{}{}
	}

	var novel []scraper.Listing
	for _, l := range fetched {
		if _, ok := seen[l.URL]; ok {
			continue
		}
		seen[l.URL] = struct{}{}
		novel = append(novel, l)
	}
	return novel
}
