package livesync

import (
	"context"

	"golang.org/x/sync/singleflight"
)

// Refresher deduplicates concurrent snapshot refreshes per entity key, so
// a reconnect storm or repeated manual refresh requests trigger a single
// underlying fetch.
type Refresher struct {
	group singleflight.Group
}

// Refresh runs fn under singleflight for key. Concurrent callers with the
// same key share one execution and its error.
func (r *Refresher) Refresh(ctx context.Context, key string, fn func(context.Context) error) error {
	_, err, _ := r.group.Do(key, func() (any, error) {
		return nil, fn(ctx)
	})
	return err
}
