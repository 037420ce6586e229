package livesync

import (
	"sort"
	"sync"
)

// State is a collection's lifecycle phase.
type State int

const (
	// StateUninitialized means no snapshot has been requested yet.
	StateUninitialized State = iota
	// StateLoading means a snapshot load is in flight.
	StateLoading
	// StateReady means the collection holds a loaded snapshot and is
	// applying live events.
	StateReady
)

// String returns the display name for a state.
func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	default:
		return "uninitialized"
	}
}

// Element wraps one record with its identity and version stamp.
type Element[T any] struct {
	// ID is the record's primary key, unique within the collection.
	ID string
	// Version is a monotonic stamp (typically updated_at in nanoseconds).
	// Zero disables the staleness check for this element.
	Version int64
	// Item is the record itself.
	Item T
}

// Collection is an ordered, deduplicated, identity-keyed set of records
// for one entity type. All mutations are serialized internally; there is
// exactly one logical writer (the owning service/watcher).
type Collection[T any] struct {
	mu    sync.Mutex
	state State
	less  func(a, b T) bool
	elems []Element[T]
	index map[string]int

	// snap is the materialized ordered view handed to readers. It is
	// rebuilt only when a mutation changes the collection, so a no-op
	// event leaves the exposed slice untouched (checkable by identity).
	snap []T

	staleDrops uint64
}

// NewCollection creates an empty collection. less is the ordering
// comparator; nil keeps arrival order (snapshot order, then event-arrival
// order for inserts). Sorting is stable, so comparator ties preserve
// arrival order.
func NewCollection[T any](less func(a, b T) bool) *Collection[T] {
	return &Collection[T]{
		less:  less,
		index: make(map[string]int),
		snap:  []T{},
	}
}

// State returns the collection's lifecycle state.
func (c *Collection[T]) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// BeginLoad marks a snapshot load in flight. The resident elements stay
// readable; a failed load leaves them untouched and the caller should
// return the collection to Ready via ReplaceAll or AbortLoad.
func (c *Collection[T]) BeginLoad() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateLoading
}

// AbortLoad returns a loading collection to its previous usable state
// after a failed snapshot fetch. A collection that never loaded goes back
// to Uninitialized; one with resident data goes back to Ready.
func (c *Collection[T]) AbortLoad() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateLoading {
		return
	}
	if len(c.elems) == 0 {
		c.state = StateUninitialized
	} else {
		c.state = StateReady
	}
}

// ReplaceAll installs a full snapshot and moves the collection to Ready.
// Duplicate identities keep the last occurrence.
func (c *Collection[T]) ReplaceAll(elems []Element[T]) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.elems = c.elems[:0]
	c.index = make(map[string]int, len(elems))
	for _, el := range elems {
		if pos, ok := c.index[el.ID]; ok {
			c.elems[pos] = el
			continue
		}
		c.index[el.ID] = len(c.elems)
		c.elems = append(c.elems, el)
	}
	c.state = StateReady
	c.rebuild()
}

// ApplyUpsert replaces the element with el.ID, or appends it if unknown.
// The replacement is whole-record: no field-level merging with resident
// state. An element with a version stamp older than the resident one is
// dropped (reported false), which protects against out-of-order re-fetch
// completion across channels.
func (c *Collection[T]) ApplyUpsert(el Element[T]) bool {
	if el.ID == "" {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if pos, ok := c.index[el.ID]; ok {
		resident := c.elems[pos]
		if el.Version != 0 && resident.Version != 0 && el.Version < resident.Version {
			c.staleDrops++
			return false
		}
		c.elems[pos] = el
	} else {
		c.index[el.ID] = len(c.elems)
		c.elems = append(c.elems, el)
	}
	c.rebuild()
	return true
}

// ApplyDelete removes the element with the given identity. Absence is not
// an error: duplicate deletes, or a delete racing an already-applied
// remove, are no-ops (reported false).
func (c *Collection[T]) ApplyDelete(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	pos, ok := c.index[id]
	if !ok {
		return false
	}
	c.elems = append(c.elems[:pos], c.elems[pos+1:]...)
	delete(c.index, id)
	for i := pos; i < len(c.elems); i++ {
		c.index[c.elems[i].ID] = i
	}
	c.rebuild()
	return true
}

// Snapshot returns the current ordered view. The returned slice is only
// replaced when the collection actually changes; callers must treat it as
// read-only.
func (c *Collection[T]) Snapshot() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap
}

// Get returns the element with the given identity.
func (c *Collection[T]) Get(id string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if pos, ok := c.index[id]; ok {
		return c.elems[pos].Item, true
	}
	var zero T
	return zero, false
}

// Len returns the number of resident elements.
func (c *Collection[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.elems)
}

// StaleDrops returns how many upserts were dropped by the version check.
func (c *Collection[T]) StaleDrops() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.staleDrops
}

// rebuild re-sorts (when a comparator is set) and re-materializes the
// reader snapshot. Must be called with the mutex held. Re-sorting the
// whole collection on every mutation is O(n log n) per event; collections
// hold tens to low hundreds of records, so simplicity wins over
// positional insertion.
func (c *Collection[T]) rebuild() {
	if c.less != nil {
		sort.SliceStable(c.elems, func(i, j int) bool {
			return c.less(c.elems[i].Item, c.elems[j].Item)
		})
		for i, el := range c.elems {
			c.index[el.ID] = i
		}
	}
	snap := make([]T, len(c.elems))
	for i, el := range c.elems {
		snap[i] = el.Item
	}
	c.snap = snap
}
