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

const marketStateTTL = 5 * time.Minute

// MarketStateCache implements domain.MarketStateCache using JSON-serialized
// market state at key "market_state:{assetID}". A short TTL keeps evaluations
// from running against stale structure: an expired state surfaces as
// domain.ErrNotFound and the evaluator skips the position.
type MarketStateCache struct {
	rdb *redis.Client
}

// NewMarketStateCache creates a MarketStateCache backed by the given Client.
func NewMarketStateCache(c *Client) *MarketStateCache {
	return &MarketStateCache{rdb: c.Underlying()}
}

func marketStateKey(assetID string) string {
	return "market_state:" + assetID
}

// Set stores the latest market state for an asset with a 5-minute TTL.
func (mc *MarketStateCache) Set(ctx context.Context, assetID string, state domain.MarketState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("redis: marshal market state %s: %w", assetID, err)
	}
	if err := mc.rdb.Set(ctx, marketStateKey(assetID), data, marketStateTTL).Err(); err != nil {
		return fmt.Errorf("redis: set market state %s: %w", assetID, err)
	}
	return nil
}

// Get retrieves the latest market state for an asset.
// It returns domain.ErrNotFound when the key does not exist or has expired.
func (mc *MarketStateCache) Get(ctx context.Context, assetID string) (domain.MarketState, error) {
	data, err := mc.rdb.Get(ctx, marketStateKey(assetID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.MarketState{}, domain.ErrNotFound
		}
		return domain.MarketState{}, fmt.Errorf("redis: get market state %s: %w", assetID, err)
	}

	var state domain.MarketState
	if err := json.Unmarshal(data, &state); err != nil {
		return domain.MarketState{}, fmt.Errorf("redis: unmarshal market state %s: %w", assetID, err)
	}
	return state, nil
}

// Compile-time interface check.
var _ domain.MarketStateCache = (*MarketStateCache)(nil)
