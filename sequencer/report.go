package sequencer

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"main/console"
)

// RunState is the sequencer's own lifecycle, distinct from the device
// states the classifier reports.
type RunState int

const (
	RunIdle RunState = iota
	RunRunning
	RunCompleted
	RunAborted
)

func (s RunState) String() string {
	switch s {
	case RunIdle:
		return "Idle"
	case RunRunning:
		return "Running"
	case RunCompleted:
		return "Completed"
	case RunAborted:
		return "Aborted"
	}
	return fmt.Sprintf("RunState(%d)", int(s))
}

// Outcome reasons. Success leaves Reason empty.
const (
	ReasonTimeout     = "timeout"
	ReasonErrorPrompt = "error-prompt"
	ReasonCancelled   = "cancelled"
	ReasonTransport   = "transport-error"
)

// StepOutcome is the record of one attempted step. Index 0 is the
// implicit discovery-break step; template steps start at 1.
type StepOutcome struct {
	Index    int                 `json:"index"`
	Sent     string              `json:"sent"`
	State    console.DeviceState `json:"state"`
	Retries  int                 `json:"retries"`
	Duration time.Duration       `json:"duration"`
	Ok       bool                `json:"ok"`
	Fatal    bool                `json:"fatal"`
	Reason   string              `json:"reason,omitempty"`
}

// SessionReport is the append-only outcome history of one run. It is
// complete even when the run aborts, so a failed session still shows
// exactly which step died and why. The mutex makes it safe to read
// while the run is still appending, which is how the web UI shows a
// live job.
type SessionReport struct {
	mu       sync.Mutex
	Outcomes []StepOutcome `json:"outcomes"`
	Final    RunState      `json:"final"`
}

func (r *SessionReport) append(o StepOutcome) {
	r.mu.Lock()
	r.Outcomes = append(r.Outcomes, o)
	r.mu.Unlock()
}

func (r *SessionReport) setFinal(state RunState) {
	r.mu.Lock()
	r.Final = state
	r.mu.Unlock()
}

func (r *SessionReport) last() (StepOutcome, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Outcomes) == 0 {
		return StepOutcome{}, false
	}
	return r.Outcomes[len(r.Outcomes)-1], true
}

func (r *SessionReport) size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Outcomes)
}

// OverallSuccess is true iff the run completed and every fatal step
// succeeded.
func (r *SessionReport) OverallSuccess() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.overallSuccess()
}

func (r *SessionReport) overallSuccess() bool {
	if r.Final != RunCompleted {
		return false
	}
	for _, outcome := range r.Outcomes {
		if outcome.Fatal && !outcome.Ok {
			return false
		}
	}
	return true
}

// Summary renders one human-readable line per outcome.
func (r *SessionReport) Summary() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	lines := make([]string, 0, len(r.Outcomes)+1)
	for _, o := range r.Outcomes {
		status := "ok"
		if !o.Ok {
			status = "FAILED"
			if o.Reason != "" {
				status = "FAILED (" + o.Reason + ")"
			}
		}
		lines = append(lines, fmt.Sprintf("step %2d %-22s sent=%q state=%v retries=%d elapsed=%v",
			o.Index, status, o.Sent, o.State, o.Retries, o.Duration.Round(time.Millisecond)))
	}
	lines = append(lines, fmt.Sprintf("session %v, success: %t", r.Final, r.overallSuccess()))
	return lines
}

// MarshalJSON snapshots the report under the lock so polling a running
// job never observes a half-appended outcome slice.
func (r *SessionReport) MarshalJSON() ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return json.Marshal(struct {
		Outcomes []StepOutcome `json:"outcomes"`
		Final    RunState      `json:"final"`
	}{r.Outcomes, r.Final})
}
