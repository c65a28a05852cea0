package domain

import (
	"context"
	"time"
)

// PriceCache provides fast access to the latest observed prices per asset.
// GetPrices omits assets with no cached price instead of erroring.
type PriceCache interface {
	SetPrice(ctx context.Context, assetID string, price float64, ts time.Time) error
	GetPrice(ctx context.Context, assetID string) (float64, time.Time, error)
	GetPrices(ctx context.Context, assetIDs []string) (map[string]float64, error)
}

// SnapshotCache caches the latest virtual position snapshots for hot reads.
type SnapshotCache interface {
	Set(ctx context.Context, pos VirtualPosition) error
	Get(ctx context.Context, id string) (VirtualPosition, error)
	Invalidate(ctx context.Context, id string) error
}

// MarketStateCache caches the latest upstream market state per asset.
type MarketStateCache interface {
	Set(ctx context.Context, assetID string, state MarketState) error
	Get(ctx context.Context, assetID string) (MarketState, error)
}

// LockManager provides distributed locking; the evaluator uses it to enforce
// the single-writer-per-position discipline the timeline requires.
type LockManager interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (unlock func(), err error)
}

// RateLimiter bounds the rate of outbound calls, keyed by caller-chosen
// identifiers (for example one key per notification channel).
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
	Wait(ctx context.Context, key string) error
}

// StreamMessage represents a single entry from a durable stream.
type StreamMessage struct {
	ID      string
	Payload []byte
}

// SignalBus provides pub/sub and durable streams for tick and decision events.
type SignalBus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	StreamAppend(ctx context.Context, stream string, payload []byte) error
	StreamRead(ctx context.Context, stream string, lastID string, count int) ([]StreamMessage, error)
}
