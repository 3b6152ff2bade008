package usecases

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/morgankhalil/VenueConnect-sub003/internal/core/ports"
	"github.com/morgankhalil/VenueConnect-sub003/internal/pkg/metrics"
)

// cacheGet decodes a cached JSON value into out and reports a hit.
func cacheGet(ctx context.Context, cache ports.CacheService, op, key string, out any) bool {
	if cache == nil {
		return false
	}
	data, err := cache.Get(ctx, key)
	if err != nil || json.Unmarshal(data, out) != nil {
		metrics.ObserveCache(op, false)
		return false
	}
	metrics.ObserveCache(op, true)
	return true
}

// cacheSet stores v as JSON. Failures are logged and otherwise ignored.
func cacheSet(ctx context.Context, cache ports.CacheService, key string, v any, ttlSeconds int) {
	if cache == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := cache.Set(ctx, key, data, ttlSeconds); err != nil {
		slog.Debug("cache set failed", "key", key, "error", err)
	}
}

func cacheDelete(ctx context.Context, cache ports.CacheService, keys ...string) {
	if cache == nil {
		return
	}
	for _, key := range keys {
		if err := cache.Delete(ctx, key); err != nil {
			slog.Debug("cache delete failed", "key", key, "error", err)
		}
	}
}
