package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type summary struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

func setupMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { SetClient(nil) })
	return mr
}

func TestAside_MissThenHit(t *testing.T) {
	setupMiniredis(t)
	ctx := context.Background()

	loads := 0
	load := func(dest *[]summary) func() error {
		return func() error {
			loads++
			*dest = []summary{{Date: "2024-03-01", Count: 2}}
			return nil
		}
	}

	var first []summary
	require.NoError(t, Aside(ctx, "timeline:1", &first, time.Minute, load(&first)))
	assert.Equal(t, 1, loads)
	require.Len(t, first, 1)

	// Second call is served from Redis; the loader must not run again.
	var second []summary
	require.NoError(t, Aside(ctx, "timeline:1", &second, time.Minute, load(&second)))
	assert.Equal(t, 1, loads)
	assert.Equal(t, first, second)
}

func TestAside_LoaderErrorNotCached(t *testing.T) {
	setupMiniredis(t)
	ctx := context.Background()

	loadErr := errors.New("query failed")
	var dest []summary
	err := Aside(ctx, "timeline:1", &dest, time.Minute, func() error { return loadErr })
	assert.ErrorIs(t, err, loadErr)

	// The failure left nothing behind; a later success populates the cache.
	err = Aside(ctx, "timeline:1", &dest, time.Minute, func() error {
		dest = []summary{{Date: "2024-03-01", Count: 1}}
		return nil
	})
	require.NoError(t, err)
	require.Len(t, dest, 1)
}

func TestAside_CorruptPayloadFallsBackToLoader(t *testing.T) {
	mr := setupMiniredis(t)
	ctx := context.Background()

	require.NoError(t, mr.Set("timeline:1", "{not json"))

	var dest []summary
	err := Aside(ctx, "timeline:1", &dest, time.Minute, func() error {
		dest = []summary{{Date: "2024-03-01", Count: 1}}
		return nil
	})
	require.NoError(t, err)
	require.Len(t, dest, 1)
}

func TestAside_NilClientPassesThrough(t *testing.T) {
	SetClient(nil)

	loads := 0
	var dest []summary
	for i := 0; i < 2; i++ {
		err := Aside(context.Background(), "timeline:1", &dest, time.Minute, func() error {
			loads++
			return nil
		})
		require.NoError(t, err)
	}
	assert.Equal(t, 2, loads, "without Redis every call goes to storage")
}

func TestInvalidateTimeline(t *testing.T) {
	mr := setupMiniredis(t)
	ctx := context.Background()

	var dest []summary
	require.NoError(t, Aside(ctx, TimelineKey(1), &dest, time.Minute, func() error {
		dest = []summary{{Date: "2024-03-01", Count: 1}}
		return nil
	}))
	require.True(t, mr.Exists(TimelineKey(1)))

	InvalidateTimeline(ctx, 1)
	assert.False(t, mr.Exists(TimelineKey(1)))
}

func TestInvalidateTimeline_NilClient(t *testing.T) {
	SetClient(nil)
	// Must not panic when Redis is disabled.
	InvalidateTimeline(context.Background(), 1)
}
