package livesync

import (
	"context"
	"fmt"
	"sync"

	"vehicle-catalog/core/utils"

	"go.uber.org/zap"
)

// FetchFunc re-fetches one fully joined record by identity and adapts it.
// It returns (nil, nil) when the record no longer exists, which the
// watcher treats as "vanished between event and fetch" and skips.
type FetchFunc[T any] func(ctx context.Context, id string) (*Element[T], error)

// RefreshFunc reloads a collection from a full snapshot. Invoked after a
// feed reconnect, when events may have been missed.
type RefreshFunc func(ctx context.Context) error

// Watcher binds one table's change feed to one collection. Insert and
// update events trigger a re-fetch of the full joined record; delete
// events apply the payload identity directly.
type Watcher[T any] struct {
	table   string
	coll    *Collection[T]
	fetch   FetchFunc[T]
	refresh RefreshFunc
	logger  *zap.Logger
	handle  Handle

	// key extracts the identity to act on from an event; defaults to the
	// payload's own primary key.
	key func(Event) string
	// deleteRefetches makes delete events re-fetch instead of removing.
	// Set for child-table watchers, where any change to the child row
	// (including its removal) invalidates the parent's composed view.
	deleteRefetches bool

	mu     sync.Mutex
	closed bool
}

// Watch subscribes to table on the feed and starts maintaining coll.
// refresh may be nil if reconnect recovery is handled elsewhere.
func Watch[T any](ctx context.Context, feed Feed, table, filter string, coll *Collection[T], fetch FetchFunc[T], refresh RefreshFunc, logger *zap.Logger) (*Watcher[T], error) {
	return watch(ctx, feed, table, filter, coll, fetch, refresh, logger, func(ev Event) string {
		return ev.Identity()
	}, false)
}

// WatchChild subscribes to a child table (e.g. versions under cars) and
// maintains the parent collection. Every event, deletes included, is a
// signal to re-derive the parent: the foreignKey column of the payload
// names the parent identity handed to fetch. Cross-channel event order is
// not guaranteed, so patching the composed view from the child payload
// alone would race; re-fetching the full parent record does not.
func WatchChild[T any](ctx context.Context, feed Feed, table, filter, foreignKey string, coll *Collection[T], fetch FetchFunc[T], refresh RefreshFunc, logger *zap.Logger) (*Watcher[T], error) {
	return watch(ctx, feed, table, filter, coll, fetch, refresh, logger, func(ev Event) string {
		if ev.Record == nil {
			return ""
		}
		return utils.ToString(ev.Record[foreignKey])
	}, true)
}

func watch[T any](ctx context.Context, feed Feed, table, filter string, coll *Collection[T], fetch FetchFunc[T], refresh RefreshFunc, logger *zap.Logger, key func(Event) string, deleteRefetches bool) (*Watcher[T], error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	w := &Watcher[T]{
		table:           table,
		coll:            coll,
		fetch:           fetch,
		refresh:         refresh,
		logger:          logger.With(zap.String("table", table)),
		key:             key,
		deleteRefetches: deleteRefetches,
	}

	handle, err := feed.Subscribe(ctx, table, filter, func(ev Event) {
		w.onEvent(ctx, ev)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", table, err)
	}
	w.handle = handle
	return w, nil
}

func (w *Watcher[T]) onEvent(ctx context.Context, ev Event) {
	if w.isClosed() {
		return
	}

	switch ev.Op {
	case OpInsert, OpUpdate, OpDelete:
		id := w.key(ev)
		if id == "" {
			w.logger.Warn("Event without usable identity, skipping", zap.String("op", string(ev.Op)))
			return
		}
		if ev.Op == OpDelete && !w.deleteRefetches {
			// The old row's identity is all a delete needs; no re-fetch.
			w.coll.ApplyDelete(id)
			return
		}
		w.refetch(ctx, id)

	case OpReset:
		if w.refresh == nil {
			return
		}
		w.logger.Info("Feed reconnected, refreshing snapshot")
		if err := w.refresh(ctx); err != nil {
			w.logger.Warn("Snapshot refresh after reconnect failed", zap.Error(err))
		}

	default:
		w.logger.Warn("Unknown event op", zap.String("op", string(ev.Op)))
	}
}

// refetch re-derives one record through the loader+adapter path and
// applies the result as a whole-record replacement.
func (w *Watcher[T]) refetch(ctx context.Context, id string) {
	el, err := w.fetch(ctx, id)
	if err != nil {
		// Transient fetch failure: the resident record stays valid. A
		// later event, or a reconnect refresh, converges the state.
		w.logger.Warn("Re-fetch failed, keeping resident state",
			zap.String("id", id), zap.Error(err))
		return
	}
	// Teardown safety: the fetch may resolve after Close.
	if w.isClosed() {
		return
	}
	if el == nil {
		// Vanished between event and fetch (rapid delete-after-update).
		// The delete event for it removes the resident copy.
		w.logger.Debug("Record gone before re-fetch", zap.String("id", id))
		return
	}
	w.coll.ApplyUpsert(*el)
}

func (w *Watcher[T]) isClosed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closed
}

// Close stops the subscription. After Close returns, no event and no
// late-resolving re-fetch mutates the collection. Idempotent.
func (w *Watcher[T]) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()
	return w.handle.Close()
}
