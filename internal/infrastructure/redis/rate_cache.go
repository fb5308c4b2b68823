// Package redis holds the redis-backed infrastructure adapters.
package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"

	"openrtb-auction/internal/domain"
)

const rateSnapshotKey = "currency_rate_snapshot"

// RateCache stores the latest currency rate snapshot so instances can fall
// back to it when the upstream rate feed is unreachable.
type RateCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRateCache(client *redis.Client, ttl time.Duration) *RateCache {
	return &RateCache{client: client, ttl: ttl}
}

func (r *RateCache) StoreRates(ctx context.Context, data *domain.CurrencyConversionData) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, rateSnapshotKey, payload, r.ttl).Err()
}

// LoadRates returns the cached snapshot, or nil when none is stored.
func (r *RateCache) LoadRates(ctx context.Context) (*domain.CurrencyConversionData, error) {
	payload, err := r.client.Get(ctx, rateSnapshotKey).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var data domain.CurrencyConversionData
	if err := json.Unmarshal([]byte(payload), &data); err != nil {
		return nil, err
	}
	return &data, nil
}
