package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"

	"github.com/careflowhq/frontdesk/internal/feed"
	"github.com/careflowhq/frontdesk/internal/model"
	apperrors "github.com/careflowhq/frontdesk/pkg/errors"
)

const snapshotKeyPrefix = "queue:snapshot:"

type Config struct {
	URL          string
	MaxRetries   int
	PoolSize     int
	MinIdleConns int
}

// Feed reads the latest telemetry snapshot per department from redis keys
// written by the ward telemetry exporters.
type Feed struct {
	client *redis.Client
	cb     *gobreaker.CircuitBreaker
}

func NewFeed(config Config) (feed.QueueFeed, error) {
	opts, err := redis.ParseURL(config.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	opts.MaxRetries = config.MaxRetries
	opts.PoolSize = config.PoolSize
	opts.MinIdleConns = config.MinIdleConns

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:     "queue-feed",
		Interval: 10 * time.Second,
		Timeout:  5 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Feed{client: client, cb: cb}, nil
}

func (f *Feed) Fetch(ctx context.Context, departmentID string) (model.QueueSnapshot, error) {
	payload, err := f.cb.Execute(func() (interface{}, error) {
		return f.client.Get(ctx, snapshotKeyPrefix+departmentID).Bytes()
	})
	if err != nil {
		return model.QueueSnapshot{}, apperrors.Unavailable(err)
	}

	var snapshot model.QueueSnapshot
	if err := json.Unmarshal(payload.([]byte), &snapshot); err != nil {
		return model.QueueSnapshot{}, apperrors.Unavailable(fmt.Errorf("malformed snapshot for %s: %w", departmentID, err))
	}
	if snapshot.ObservedAt.IsZero() {
		snapshot.ObservedAt = time.Now()
	}
	return snapshot, nil
}
