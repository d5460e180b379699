package grpc

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

type FetchFunc[T any] func(ctx context.Context) (T, error)

const (
	defaultFetchTimeout = 15 * time.Second
	defaultSetTimeout   = 5 * time.Second
	ttlJitterSpread     = 30 * time.Second
)

// readThrough fronts report queries with a cache. A nil cache only
// deduplicates concurrent fetches.
type readThrough struct {
	cache  Cacher
	sf     singleflight.Group
	ttl    time.Duration
	logger *zap.Logger
}

// addTTLJitter spreads expirations by up to ±15s.
func addTTLJitter(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return ttl
	}
	return ttl + rand.N(ttlJitterSpread) - ttlJitterSpread/2
}

func (rt *readThrough) store(key string, value any) {
	setCtx, cancel := context.WithTimeout(context.Background(), defaultSetTimeout)
	defer cancel()

	ttl := addTTLJitter(rt.ttl)
	if err := rt.cache.Set(setCtx, key, value, ttl); err != nil {
		rt.logger.Warn("failed to set cache", zap.String("key", key), zap.Error(err))
		return
	}
	rt.logger.Debug("cache populated", zap.String("key", key), zap.Duration("ttl", ttl))
}

func refreshAhead[T any](rt *readThrough, key string, fn FetchFunc[T]) {
	go func() {
		time.Sleep(rand.N(time.Second))

		_, _, _ = rt.sf.Do(key+":refresh", func() (any, error) {
			ctx, cancel := context.WithTimeout(context.Background(), defaultFetchTimeout)
			defer cancel()

			value, err := fn(ctx)
			if err != nil {
				rt.logger.Warn("background refresh failed", zap.String("key", key), zap.Error(err))
				return nil, err
			}
			rt.store(key, value)
			return value, nil
		})
	}()
}

// findAndCache serves key from the cache when present and refreshes it in
// the background; on a miss one caller fetches while the others wait.
func findAndCache[T any](ctx context.Context, rt *readThrough, key string, fn FetchFunc[T]) (T, error) {
	var zero T

	if rt.cache != nil {
		var cached T
		err := rt.cache.Get(ctx, key, &cached)
		switch {
		case err == nil:
			rt.logger.Debug("cache hit", zap.String("key", key))
			refreshAhead(rt, key, fn)
			return cached, nil
		case errors.Is(err, redis.Nil):
			rt.logger.Debug("cache miss", zap.String("key", key))
		default:
			rt.logger.Warn("cache get error (treating as miss)", zap.String("key", key), zap.Error(err))
		}
	}

	v, err, shared := rt.sf.Do(key, func() (any, error) {
		value, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		if rt.cache != nil {
			go rt.store(key, value)
		}
		return value, nil
	})
	if err != nil {
		return zero, err
	}

	value, ok := v.(T)
	if !ok {
		rt.logger.Error("singleflight type mismatch", zap.String("key", key))
		return zero, fmt.Errorf("type mismatch for key %q", key)
	}
	if shared {
		rt.logger.Debug("singleflight shared result", zap.String("key", key))
	}
	return value, nil
}
