// Package callsweep runs the scheduled call sweep as a Temporal workflow:
// one long-lived execution ticks the due-call claimer and sleeps between
// ticks, so a crashed process resumes from workflow history.
package callsweep

const (
	WorkflowName = "scheduled_call_sweep"
	ActivityTick = "scheduled_call_sweep_tick"
	// WorkflowID is fixed so at most one sweep runs per namespace.
	WorkflowID = "scheduled-call-sweep"
)

type Input struct {
	IntervalSeconds int `json:"interval_seconds"`
	// ContinueAfter bounds ticks per run before continue-as-new.
	ContinueAfter int `json:"continue_after,omitempty"`
}

type TickResult struct {
	Attempted int `json:"attempted"`
}
