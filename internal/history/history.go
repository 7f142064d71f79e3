// Package history reconciles a selected block's allocation/free history
// against an asynchronous provider. Fetches are never aborted; instead
// each carries a monotonically increasing sequence number, and a response
// applies only if it is the newest issued so far (last-request-wins), so a
// slow stale response can never overwrite a newer selection's data.
package history

import "github.com/pseudograph/damselfly2/internal/memory"

// Key is the dependency triple (plus pool) a fetch is keyed on. A new
// fetch is issued whenever the key changes.
type Key struct {
	Pool      string
	Address   uint64
	Timestamp uint64
	Mode      memory.TimeMode
}

// Phase is the reconciler's fetch state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseFetching
)

// Reconciler owns the detail pane's history state. It is driven from the
// UI's single logical thread: Begin when the key changes, Apply when a
// response lands.
type Reconciler struct {
	seq     uint64
	key     Key
	started bool

	phase   Phase
	records []memory.Event // reversed: most recent first
	err     error
}

// Begin registers a new dependency key. It returns the sequence number to
// attach to the fetch, or ok=false when the key is unchanged and no fetch
// is needed.
func (r *Reconciler) Begin(key Key) (seq uint64, ok bool) {
	if r.started && key == r.key {
		return 0, false
	}
	r.started = true
	r.key = key
	r.seq++
	r.phase = PhaseFetching
	return r.seq, true
}

// Apply delivers a fetch response. Responses whose sequence number is not
// the highest issued so far are discarded silently; that is the only
// cancellation mechanism. On success the provider's ascending-chronological
// records are stored reversed, without mutating the delivered slice. On
// failure the last known-good records are retained and only the error is
// surfaced.
func (r *Reconciler) Apply(seq uint64, records []memory.Event, err error) bool {
	if seq != r.seq {
		return false
	}
	r.phase = PhaseIdle
	if err != nil {
		r.err = err
		return true
	}
	r.err = nil
	reversed := make([]memory.Event, len(records))
	for i, e := range records {
		reversed[len(records)-1-i] = e
	}
	r.records = reversed
	return true
}

// Records returns the displayed history, most recent first.
func (r *Reconciler) Records() []memory.Event { return r.records }

// Phase returns the current fetch phase.
func (r *Reconciler) Phase() Phase { return r.phase }

// Err returns the error of the most recent applied response, or nil.
func (r *Reconciler) Err() error { return r.err }

// Key returns the dependency key of the most recent fetch.
func (r *Reconciler) Key() Key { return r.key }
