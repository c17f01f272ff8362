package notifier

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"ymurakami/suumowatcher/internal/scraper"
	apperrors "ymurakami/suumowatcher/pkg/errors"
)

// RedisNotifier publishes new listings onto a Redis stream for downstream
// consumers (bots, dashboards) instead of pushing messages directly.
type RedisNotifier struct {
	client    *redis.Client
	ctx       context.Context
	stream    string
	maxLength int64
}

// NewRedisNotifier creates a new Redis stream notifier
func NewRedisNotifier(ctx context.Context, addr string, db int, stream string, maxLength int64) *RedisNotifier {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	return &RedisNotifier{
		client:    client,
		ctx:       ctx,
		stream:    stream,
		maxLength: maxLength,
	}
}

// Notify appends one stream entry per listing, keyed by criterion name,
// then trims the stream to its configured maximum length.
func (n *RedisNotifier) Notify(newListings []scraper.Listing, criterionName string) error {
	if len(newListings) == 0 {
		return nil
	}

	for _, listing := range newListings {
		data, err := json.Marshal(listing)
		if err != nil {
			return apperrors.NewNotification(criterionName, "encode listing", err)
		}

		err = n.client.XAdd(n.ctx, &redis.XAddArgs{
			Stream: n.stream,
			Values: map[string]interface{}{
				"criterion": criterionName,
				"listing":   string(data),
			},
		}).Err()
		if err != nil {
			return apperrors.NewNotification(criterionName, "xadd", err)
		}
	}

	if n.maxLength > 0 {
		if err := n.client.XTrimMaxLen(n.ctx, n.stream, n.maxLength).Err(); err != nil {
			return apperrors.NewNotification(criterionName, "xtrim", err)
		}
	}

	return nil
}

// Close closes the Redis connection
func (n *RedisNotifier) Close() error {
	return n.client.Close()
}
