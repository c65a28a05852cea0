package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/galinborisov10-art/Crypto-signal-bot-sub007/internal/domain"
	"github.com/redis/go-redis/v9"
)

const snapshotTTL = 24 * time.Hour

// SnapshotCache implements domain.SnapshotCache using JSON-serialized position
// snapshots at key "position:{id}". The database remains the source of truth;
// the cache only accelerates hot reads from the API layer.
type SnapshotCache struct {
	rdb *redis.Client
}

// NewSnapshotCache creates a SnapshotCache backed by the given Client.
func NewSnapshotCache(c *Client) *SnapshotCache {
	return &SnapshotCache{rdb: c.Underlying()}
}

func snapshotKey(id string) string {
	return "position:" + id
}

// Set stores the latest snapshot of a position.
func (sc *SnapshotCache) Set(ctx context.Context, pos domain.VirtualPosition) error {
	data, err := json.Marshal(pos)
	if err != nil {
		return fmt.Errorf("redis: marshal position %s: %w", pos.ID, err)
	}
	if err := sc.rdb.Set(ctx, snapshotKey(pos.ID), data, snapshotTTL).Err(); err != nil {
		return fmt.Errorf("redis: set position %s: %w", pos.ID, err)
	}
	return nil
}

// Get retrieves the cached snapshot of a position.
// It returns domain.ErrNotFound when the key does not exist.
func (sc *SnapshotCache) Get(ctx context.Context, id string) (domain.VirtualPosition, error) {
	data, err := sc.rdb.Get(ctx, snapshotKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.VirtualPosition{}, domain.ErrNotFound
		}
		return domain.VirtualPosition{}, fmt.Errorf("redis: get position %s: %w", id, err)
	}

	var pos domain.VirtualPosition
	if err := json.Unmarshal(data, &pos); err != nil {
		return domain.VirtualPosition{}, fmt.Errorf("redis: unmarshal position %s: %w", id, err)
	}
	return pos, nil
}

// Invalidate removes a position snapshot from the cache.
func (sc *SnapshotCache) Invalidate(ctx context.Context, id string) error {
	if err := sc.rdb.Del(ctx, snapshotKey(id)).Err(); err != nil {
		return fmt.Errorf("redis: invalidate position %s: %w", id, err)
	}
	return nil
}

// Compile-time interface check.
var _ domain.SnapshotCache = (*SnapshotCache)(nil)
