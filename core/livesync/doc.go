// Package livesync keeps in-memory collections of domain records
// consistent with a backing store that emits asynchronous change events.
//
// # Model
//
// Each watched entity type owns one Collection: an ordered, deduplicated,
// identity-keyed set of records. A collection is populated from a full
// snapshot (ReplaceAll) and then maintained by applying insert/update/
// delete events. Consumers read via Snapshot(), which returns a
// materialized slice that is only rebuilt when a mutation actually
// changes the collection.
//
// # Events are signals, not patches
//
// Feed payloads carry only the changed table's flat columns, never the
// joins needed to build a presentable record. The Watcher therefore
// treats insert/update events as a signal to re-derive: it re-fetches the
// full joined record through the caller's FetchFunc and applies the fresh
// result as a whole-record replacement. Delete events carry enough (the
// old row's identity) and are applied directly.
//
// # Ordering and staleness
//
// Within one subscription, events are applied in delivery order. Across
// subscriptions no ordering is assumed; correctness comes from every
// re-fetch returning current state, plus a per-record version stamp that
// drops a re-fetch result older than what is already resident.
//
// # Lifecycle
//
//	Uninitialized -> Loading -> Ready
//
// Events never regress a collection's state. Only an explicit refresh
// re-enters Loading. Closing a Watcher guarantees that no event, and no
// late-resolving re-fetch, mutates the collection afterwards.
package livesync
