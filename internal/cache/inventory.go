package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	TimelineKeyPrefix = "timeline:%d"
)

const (
	TimelineTTL = 5 * time.Minute
)

// TimelineKey is the cache key for a user's date summaries. Only the timeline
// is cached: entry reads always hit storage, and field updates never change a
// date or its count, so create/delete invalidation keeps the timeline exact.
func TimelineKey(userID uint) string {
	return fmt.Sprintf(TimelineKeyPrefix, userID)
}

func Invalidate(ctx context.Context, keys ...string) {
	if client != nil && len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}

// InvalidateTimeline drops the cached timeline after a create or delete.
func InvalidateTimeline(ctx context.Context, userID uint) {
	Invalidate(ctx, TimelineKey(userID))
}
