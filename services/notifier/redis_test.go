package notifier

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ymurakami/suumowatcher/internal/scraper"
)

// Requires a running Redis; skipped otherwise.
func TestRedisNotifier(t *testing.T) {
	ctx := context.Background()

	probe := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	pingCtx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	if err := probe.Ping(pingCtx).Err(); err != nil {
		t.Skipf("redis not available: %v", err)
	}

	stream := "listings_test_" + time.Now().Format("150405.000000000")
	defer probe.Del(ctx, stream)
	defer probe.Close()

	n := NewRedisNotifier(ctx, "localhost:6379", 0, stream, 100)
	defer n.Close()

	listings := []scraper.Listing{
		{Name: "テスト物件", URL: "https://suumo.jp/chintai/jnc_000000000001/", Rent: 8},
		{Name: "テスト物件2", URL: "https://suumo.jp/chintai/jnc_000000000002/", Rent: 9},
	}

	require.NoError(t, n.Notify(listings, "Shibuya-1K"))

	entries, err := probe.XRange(ctx, stream, "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "Shibuya-1K", entries[0].Values["criterion"])

	var decoded scraper.Listing
	require.NoError(t, json.Unmarshal([]byte(entries[0].Values["listing"].(string)), &decoded))
	assert.Equal(t, listings[0].URL, decoded.URL)
	assert.Equal(t, 8, decoded.Rent)
}

func TestRedisNotifierZeroListingsIsNoop(t *testing.T) {
	// No connection is needed when there is nothing to publish.
	n := NewRedisNotifier(context.Background(), "localhost:1", 0, "unused", 0)
	defer n.Close()

	assert.NoError(t, n.Notify(nil, "quiet"))
}
