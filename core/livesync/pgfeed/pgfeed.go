// Package pgfeed implements the livesync change feed on PostgreSQL
// LISTEN/NOTIFY. A per-table trigger (see trigger.go) publishes JSON
// payloads of the form {"op","table","record"} on the table's channel;
// one pq.Listener per subscription receives them.
package pgfeed

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"vehicle-catalog/core/livesync"
	"vehicle-catalog/core/utils"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

// Feed creates LISTEN subscriptions against one database.
type Feed struct {
	dsn          string
	logger       *zap.Logger
	minReconnect time.Duration
	maxReconnect time.Duration
}

// New creates a feed for the given lib/pq connection string.
func New(dsn string, logger *zap.Logger) *Feed {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Feed{
		dsn:          dsn,
		logger:       logger,
		minReconnect: 10 * time.Second,
		maxReconnect: time.Minute,
	}
}

// ChannelName returns the notification channel for a table.
func ChannelName(table string) string {
	return "catalog_" + table
}

// Subscribe opens one LISTEN channel for the table and delivers its
// events in arrival order. filter is an optional "column=value" predicate
// evaluated against the payload record (NOTIFY has no server-side
// filtering). After a dropped connection the listener reconnects and an
// OpReset event is delivered, since notifications during the outage are
// lost.
func (f *Feed) Subscribe(ctx context.Context, table, filter string, fn livesync.EventFunc) (livesync.Handle, error) {
	if err := validateFilter(filter); err != nil {
		return nil, err
	}
	logger := f.logger.With(zap.String("table", table))
	reconnected := make(chan struct{}, 1)

	listener := pq.NewListener(f.dsn, f.minReconnect, f.maxReconnect, func(ev pq.ListenerEventType, err error) {
		switch ev {
		case pq.ListenerEventReconnected:
			select {
			case reconnected <- struct{}{}:
			default:
			}
		case pq.ListenerEventConnectionAttemptFailed:
			logger.Warn("Feed connection attempt failed", zap.Error(err))
		}
	})

	if err := listener.Listen(ChannelName(table)); err != nil {
		_ = listener.Close()
		return nil, fmt.Errorf("failed to listen on %s: %w", ChannelName(table), err)
	}

	sub := &subscription{
		listener: listener,
		done:     make(chan struct{}),
	}
	sub.wg.Add(1)
	go sub.loop(ctx, table, filter, fn, reconnected, logger)
	return sub, nil
}

type subscription struct {
	listener *pq.Listener
	done     chan struct{}
	once     sync.Once
	wg       sync.WaitGroup
}

func (s *subscription) loop(ctx context.Context, table, filter string, fn livesync.EventFunc, reconnected <-chan struct{}, logger *zap.Logger) {
	defer s.wg.Done()
	for {
		select {
		case <-s.done:
			return
		case <-ctx.Done():
			return
		case <-reconnected:
			// Notifications during the outage are gone; tell the consumer
			// to refresh from a snapshot.
			fn(livesync.Event{Op: livesync.OpReset, Table: table})
		case n := <-s.listener.Notify:
			if n == nil {
				// Connection loss marker; a reconnect signal follows.
				continue
			}
			ev, err := parsePayload([]byte(n.Extra))
			if err != nil {
				logger.Warn("Malformed feed payload, skipping", zap.Error(err))
				continue
			}
			if !matchesFilter(ev, filter) {
				continue
			}
			fn(ev)
		}
	}
}

// Close stops delivery. The event loop (and any handler it is running)
// has finished before Close returns. Idempotent.
func (s *subscription) Close() error {
	s.once.Do(func() {
		close(s.done)
	})
	s.wg.Wait()
	return s.listener.Close()
}

type wirePayload struct {
	Op     string         `json:"op"`
	Table  string         `json:"table"`
	Record map[string]any `json:"record"`
}

func parsePayload(data []byte) (livesync.Event, error) {
	var p wirePayload
	if err := json.Unmarshal(data, &p); err != nil {
		return livesync.Event{}, fmt.Errorf("decode payload: %w", err)
	}
	op := livesync.Op(p.Op)
	switch op {
	case livesync.OpInsert, livesync.OpUpdate, livesync.OpDelete:
	default:
		return livesync.Event{}, fmt.Errorf("unknown op %q", p.Op)
	}
	if p.Record == nil {
		return livesync.Event{}, fmt.Errorf("payload without record")
	}
	return livesync.Event{Op: op, Table: p.Table, Record: p.Record}, nil
}

// validateFilter rejects predicates that are not "column=value" shaped.
// Subscribe fails fast on a malformed filter; letting it through would
// deliver every event on the channel.
func validateFilter(filter string) error {
	if filter == "" {
		return nil
	}
	col, _, ok := strings.Cut(filter, "=")
	if !ok || strings.TrimSpace(col) == "" {
		return fmt.Errorf("malformed filter %q, want \"column=value\"", filter)
	}
	return nil
}

// matchesFilter evaluates a "column=value" predicate against the payload.
func matchesFilter(ev livesync.Event, filter string) bool {
	if filter == "" {
		return true
	}
	col, want, ok := strings.Cut(filter, "=")
	if !ok {
		// Subscribe rejects these; never deliver on a broken predicate.
		return false
	}
	return utils.ToString(ev.Record[strings.TrimSpace(col)]) == strings.TrimSpace(want)
}
