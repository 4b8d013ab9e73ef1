package series

import (
	"fmt"
	"sync"
)

// Status classifies one diagnostic step.
type Status string

const (
	StatusInfo    Status = "info"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
	StatusPending Status = "pending"
	StatusWarning Status = "warning"
)

// LogStep is one entry of the diagnostic trace returned to the caller.
type LogStep struct {
	Message string `json:"message"`
	Status  Status `json:"status"`
	Details string `json:"details,omitempty"`
}

// Trace is the append-only diagnostic log for one aggregation call. It is
// safe for interleaved appends from concurrent provider fetches. A pending
// step can be resolved in place once its outcome is known; completed steps
// are never removed. The trace is bounded: past maxSteps, appends are
// counted and reported as a single closing warning.
type Trace struct {
	mu      sync.Mutex
	steps   []LogStep
	max     int
	dropped int
}

// NewTrace creates a trace holding at most max steps (<= 0 means unbounded).
func NewTrace(max int) *Trace {
	return &Trace{max: max}
}

// Append adds a step and returns its id for later resolution.
func (t *Trace) Append(status Status, message, details string) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.max > 0 && len(t.steps) >= t.max {
		t.dropped++
		return -1
	}
	t.steps = append(t.steps, LogStep{Message: message, Status: status, Details: details})
	return len(t.steps) - 1
}

// Resolve replaces a previously appended (typically pending) step in place.
// Ids from dropped appends are ignored.
func (t *Trace) Resolve(id int, status Status, message, details string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if id < 0 || id >= len(t.steps) {
		return
	}
	t.steps[id] = LogStep{Message: message, Status: status, Details: details}
}

// Steps returns a copy of the trace, with a closing warning when appends
// were dropped due to the bound.
func (t *Trace) Steps() []LogStep {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]LogStep, len(t.steps), len(t.steps)+1)
	copy(out, t.steps)
	if t.dropped > 0 {
		out = append(out, LogStep{
			Message: fmt.Sprintf("Diagnostic log truncated: %d further steps dropped", t.dropped),
			Status:  StatusWarning,
		})
	}
	return out
}

// Len reports the number of recorded steps.
func (t *Trace) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.steps)
}
