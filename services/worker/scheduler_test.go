package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ymurakami/suumowatcher/internal/scraper"
)

func TestSchedulerRunsImmediately(t *testing.T) {
	st := newTestStore(t)
	criterion := scraper.Criterion{Name: "immediate", Prefecture: "東京都"}

	sc := &fakeScraper{results: map[string][]scraper.Listing{
		criterion.Name: {listing("https://suumo.jp/chintai/jnc_000000000001/")},
	}}
	nt := newRecordingNotifier()

	w := NewWatcher(sc, st, nt, []scraper.Criterion{criterion})
	s := NewScheduler(w, 24)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, s.Start(ctx))
	defer s.Stop()

	// The first cycle fires without waiting for the first tick.
	deadline := time.After(2 * time.Second)
	for len(nt.notified(criterion.Name)) == 0 {
		select {
		case <-deadline:
			t.Fatal("watcher did not run on scheduler start")
		case <-time.After(10 * time.Millisecond):
		}
	}
	assert.Len(t, nt.notified(criterion.Name), 1)
}

func TestSchedulerSpec(t *testing.T) {
	s := NewScheduler(nil, 6)
	assert.Equal(t, "@every 6h", s.spec)
}
