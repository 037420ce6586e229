package livesync

import (
	"context"

	"vehicle-catalog/core/utils"
)

// Op is the kind of change a feed event describes.
type Op string

const (
	// OpInsert signals a new row.
	OpInsert Op = "insert"
	// OpUpdate signals a changed row.
	OpUpdate Op = "update"
	// OpDelete signals a removed row. The payload carries the old row.
	OpDelete Op = "delete"
	// OpReset is a channel-level signal emitted after a feed reconnect:
	// events may have been missed, so the consumer must refresh from a
	// full snapshot instead of trusting continuity.
	OpReset Op = "reset"
)

// Event is one change notification from the backing store.
type Event struct {
	// Op is the change kind.
	Op Op `json:"op"`
	// Table is the entity table the change belongs to.
	Table string `json:"table"`
	// Record holds the flat row columns: the new row for insert/update,
	// the old row for delete. Joins are never included.
	Record map[string]any `json:"record"`
}

// Identity returns the record's primary key as a string, or "" if the
// payload carries none.
func (e Event) Identity() string {
	if e.Record == nil {
		return ""
	}
	return utils.ToString(e.Record["id"])
}

// EventFunc handles one feed event. It is invoked sequentially per
// subscription, in delivery order.
type EventFunc func(Event)

// Handle is one live subscription.
type Handle interface {
	// Close stops event delivery. After Close returns no further events
	// are delivered on this subscription. Close is idempotent.
	Close() error
}

// Feed is the change-feed boundary the store must provide.
type Feed interface {
	// Subscribe opens a logical channel for one table. filter is an
	// optional "column=value" predicate on the event payload; empty means
	// all rows. Subscriptions on different tables never cross-talk.
	Subscribe(ctx context.Context, table, filter string, fn EventFunc) (Handle, error)
}
