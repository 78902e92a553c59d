package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Aside implements the cache-aside pattern: on a hit, dest is populated from
// Redis; on a miss, load runs and its result (already written into dest) is
// stored under key. Redis failures degrade to calling load directly; they are
// never surfaced to the caller.
func Aside(ctx context.Context, key string, dest interface{}, ttl time.Duration, load func() error) error {
	if client == nil {
		return load()
	}

	cached, err := client.Get(ctx, key).Bytes()
	if err == nil {
		if unmarshalErr := json.Unmarshal(cached, dest); unmarshalErr == nil {
			return nil
		}
		// Corrupt payload; drop it and fall through to the loader.
		client.Del(ctx, key)
	} else if !errors.Is(err, redis.Nil) {
		return load()
	}

	if err := load(); err != nil {
		return err
	}

	if payload, marshalErr := json.Marshal(dest); marshalErr == nil {
		client.Set(ctx, key, payload, ttl)
	}
	return nil
}
