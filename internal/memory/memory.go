// Package memory defines the data model shared by the damselfly2 viewer:
// block statuses, snapshots, and the allocation/free event records that
// make up a block's history.
//
// A Snapshot is a full positional listing of block records as of one
// timestamp. Snapshots are rebuilt wholesale on every triggering event and
// swapped atomically into the UI model; nothing patches them in place.
package memory

import "github.com/cockroachdb/errors"

// Status codes as delivered in snapshots. Codes above StatusPartial mean
// the tile is allocated; the exact value carries no further meaning and
// exists only so equally-coloured tiles can be told apart visually.
const (
	StatusUnused  int64 = 0
	StatusFreed   int64 = 1
	StatusPartial int64 = 2
)

// Bucket is the coarse category a status code maps to.
type Bucket int

const (
	BucketUnused Bucket = iota
	BucketFreed
	BucketPartial
	BucketAllocated
)

func (b Bucket) String() string {
	switch b {
	case BucketUnused:
		return "unused"
	case BucketFreed:
		return "freed"
	case BucketPartial:
		return "partial"
	case BucketAllocated:
		return "allocated"
	}
	return "?"
}

// BucketOf maps a status code to its bucket.
func BucketOf(status int64) Bucket {
	switch {
	case status <= StatusUnused:
		return BucketUnused
	case status == StatusFreed:
		return BucketFreed
	case status == StatusPartial:
		return BucketPartial
	default:
		return BucketAllocated
	}
}

// BlockRecord is one raster tile of a snapshot. BlockID is the durable
// identity of the block occupying the tile (the operation index that last
// touched it); Address is the lookup key for history queries.
type BlockRecord struct {
	BlockID int64
	Status  int64
	Address uint64
}

// Snapshot is a positional listing of block records at one timestamp.
// Block order is semantically significant: it defines raster placement
// (row-major, wrapping at the current column count). The viewer never
// reorders, filters, or sorts it.
type Snapshot struct {
	CapturedAt uint64
	Blocks     []BlockRecord
}

// TimeMode selects between the two time semantics accepted by the provider.
type TimeMode int

const (
	// ModeRealtime interprets timestamps as wall-clock-derived ticks.
	ModeRealtime TimeMode = iota
	// ModeOperation interprets timestamps as discrete operation indices.
	ModeOperation
)

func (m TimeMode) String() string {
	if m == ModeRealtime {
		return "realtime"
	}
	return "operation"
}

// EventKind discriminates the variants of Event.
type EventKind int

const (
	// EventUnknown marks a placeholder built from a record that failed
	// integrity checks. It renders but never classifies as alloc or free.
	EventUnknown EventKind = iota
	EventAllocation
	EventFree
)

func (k EventKind) String() string {
	switch k {
	case EventAllocation:
		return "alloc"
	case EventFree:
		return "free"
	}
	return "unknown"
}

// EventFields is the payload shared by both event variants.
type EventFields struct {
	Address   uint64
	Size      uint64
	Callstack string
	Timestamp uint64 // logical: operation index
	WallTime  uint64 // microsecond tick from the trace
}

// Event is one entry of a block's history. It is a tagged union: the kind
// is set only by the constructors or by DecodeEvent, so an Event in hand
// always has exactly one variant.
type Event struct {
	kind EventKind
	EventFields
}

// NewAllocation builds an allocation event.
func NewAllocation(f EventFields) Event {
	return Event{kind: EventAllocation, EventFields: f}
}

// NewFree builds a free event.
func NewFree(f EventFields) Event {
	return Event{kind: EventFree, EventFields: f}
}

// NewUnknown builds the placeholder used for records that failed
// integrity checks.
func NewUnknown(f EventFields) Event {
	return Event{kind: EventUnknown, EventFields: f}
}

func (e Event) Kind() EventKind { return e.kind }

// Integrity violations reported by DecodeEvent.
var (
	ErrEmptyEvent     = errors.New("event record has no variant populated")
	ErrAmbiguousEvent = errors.New("event record has both variants populated")
)

// DecodeEvent classifies the wire form of a history record: two optional
// variants of which exactly one must be populated. Zero or two populated
// variants is a data-integrity violation; callers are expected to render
// the offending record as an Unknown placeholder rather than fail.
func DecodeEvent(alloc, free *EventFields) (Event, error) {
	switch {
	case alloc != nil && free != nil:
		return Event{}, ErrAmbiguousEvent
	case alloc != nil:
		return NewAllocation(*alloc), nil
	case free != nil:
		return NewFree(*free), nil
	default:
		return Event{}, ErrEmptyEvent
	}
}
