package pipeline

import (
	"sync"
	"sync/atomic"
)

// Phase names one stage of a pipeline invocation's lifecycle.
type Phase string

const (
	PhaseParsing    Phase = "parsing"
	PhaseFetching   Phase = "fetching"
	PhaseInserting  Phase = "inserting"
	PhaseFormatting Phase = "formatting"
	PhaseComplete   Phase = "complete"
	PhaseError      Phase = "error"
	PhaseCancelled  Phase = "cancelled"
)

// Terminal reports whether the phase ends the invocation. Terminal phases
// are mutually exclusive and final.
func (p Phase) Terminal() bool {
	return p == PhaseComplete || p == PhaseError || p == PhaseCancelled
}

// Progress is an eventually-consistent snapshot of one pipeline invocation,
// mutated only by the invocation's orchestrator and readable at any time.
type Progress struct {
	Phase      Phase
	Rows       int64 // rows inserted (import) or fetched (export)
	Bytes      int64 // raw source bytes consumed (import)
	TotalRows  int64 // known row total (export), 0 when unknown
	TotalBytes int64 // source size (import), 0 when unknown
	Err        error
}

// job carries the state shared by import and export invocations: the
// snapshot, a best-effort event stream and the cooperative cancel flag.
// Each invocation owns a dedicated job; nothing is reused across runs.
type job struct {
	mu        sync.Mutex
	snap      Progress
	cancelled atomic.Bool
	done      chan struct{}
	events    chan Progress
}

func newJob(initial Phase) *job {
	return &job{
		snap:   Progress{Phase: initial},
		done:   make(chan struct{}),
		events: make(chan Progress, 64),
	}
}

// Cancel requests cooperative cancellation. Idempotent, callable at any
// time; it stops new work from starting but never interrupts an in-flight
// network call.
func (j *job) Cancel() {
	j.cancelled.Store(true)
}

func (j *job) isCancelled() bool {
	return j.cancelled.Load()
}

// Snapshot returns a copy of the current progress state.
func (j *job) Snapshot() Progress {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.snap
}

// Events returns the live progress stream. Delivery is best-effort: a slow
// consumer misses intermediate snapshots. The channel closes at the terminal
// phase; Snapshot and Done stay authoritative.
func (j *job) Events() <-chan Progress {
	return j.events
}

// Done is closed once the invocation reaches a terminal phase.
func (j *job) Done() <-chan struct{} {
	return j.done
}

// update mutates the snapshot and publishes it. No-op after a terminal
// phase; terminal states never regress.
func (j *job) update(mutate func(*Progress)) {
	j.mu.Lock()
	if j.snap.Phase.Terminal() {
		j.mu.Unlock()
		return
	}
	mutate(&j.snap)
	snap := j.snap
	j.mu.Unlock()

	select {
	case j.events <- snap:
	default:
	}
}

// finalize moves the invocation into a terminal phase exactly once, emits
// the final snapshot and closes the event stream.
func (j *job) finalize(phase Phase, err error) {
	j.mu.Lock()
	if j.snap.Phase.Terminal() {
		j.mu.Unlock()
		return
	}
	j.snap.Phase = phase
	j.snap.Err = err
	snap := j.snap
	j.mu.Unlock()

	select {
	case j.events <- snap:
	default:
	}
	close(j.events)
	close(j.done)
}
