package pipeline

import (
	"errors"
	"testing"
)

func TestPhaseTerminal(t *testing.T) {
	tests := []struct {
		phase Phase
		want  bool
	}{
		{PhaseParsing, false},
		{PhaseFetching, false},
		{PhaseInserting, false},
		{PhaseFormatting, false},
		{PhaseComplete, true},
		{PhaseError, true},
		{PhaseCancelled, true},
	}
	for _, tt := range tests {
		if got := tt.phase.Terminal(); got != tt.want {
			t.Errorf("Terminal(%q) = %v, want %v", tt.phase, got, tt.want)
		}
	}
}

func TestJobTerminalStateIsFinal(t *testing.T) {
	j := newJob(PhaseParsing)

	j.update(func(p *Progress) { p.Rows = 10 })
	j.finalize(PhaseError, errors.New("boom"))

	// Updates after a terminal phase must not regress the snapshot.
	j.update(func(p *Progress) {
		p.Phase = PhaseInserting
		p.Rows = 99
	})
	j.finalize(PhaseComplete, nil)

	snap := j.Snapshot()
	if snap.Phase != PhaseError {
		t.Errorf("phase = %q, want error to stick", snap.Phase)
	}
	if snap.Rows != 10 {
		t.Errorf("rows = %d, want 10", snap.Rows)
	}
	if snap.Err == nil {
		t.Error("terminal error lost")
	}

	select {
	case <-j.Done():
	default:
		t.Error("Done() not closed after finalize")
	}
}

func TestJobEventsCloseAtTerminal(t *testing.T) {
	j := newJob(PhaseFetching)
	j.update(func(p *Progress) { p.Rows = 1 })
	j.finalize(PhaseComplete, nil)

	var last Progress
	for p := range j.Events() {
		last = p
	}
	if last.Phase != PhaseComplete {
		t.Errorf("last event phase = %q, want complete", last.Phase)
	}
}

func TestCancelIsIdempotent(t *testing.T) {
	j := newJob(PhaseParsing)
	j.Cancel()
	j.Cancel()
	if !j.isCancelled() {
		t.Error("cancel flag not set")
	}
}
