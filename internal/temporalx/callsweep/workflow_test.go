package callsweep

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/testsuite"
	"go.temporal.io/sdk/workflow"
)

type countingTicker struct {
	ticks atomic.Int32
}

func (c *countingTicker) Tick(ctx context.Context) int {
	c.ticks.Add(1)
	return 2
}

func newEnv(t *testing.T, acts *Activities) *testsuite.TestWorkflowEnvironment {
	t.Helper()
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()
	env.RegisterWorkflowWithOptions(Workflow, workflow.RegisterOptions{Name: WorkflowName})
	env.RegisterActivityWithOptions(acts.Tick, activity.RegisterOptions{Name: ActivityTick})
	return env
}

func TestWorkflowTicksThenContinuesAsNew(t *testing.T) {
	calls := &countingTicker{}
	env := newEnv(t, &Activities{Calls: calls})

	env.ExecuteWorkflow(WorkflowName, Input{IntervalSeconds: 60, ContinueAfter: 3})

	if !env.IsWorkflowCompleted() {
		t.Fatalf("workflow did not complete")
	}
	var can *workflow.ContinueAsNewError
	if err := env.GetWorkflowError(); !errors.As(err, &can) {
		t.Fatalf("want continue-as-new, got %v", err)
	}
	if got := calls.ticks.Load(); got != 3 {
		t.Fatalf("ticks: want=3 got=%d", got)
	}
}

func TestWorkflowSurvivesFailedTick(t *testing.T) {
	env := newEnv(t, &Activities{})

	env.ExecuteWorkflow(WorkflowName, Input{IntervalSeconds: 1, ContinueAfter: 2})

	var can *workflow.ContinueAsNewError
	if err := env.GetWorkflowError(); !errors.As(err, &can) {
		t.Fatalf("failed ticks should not end the sweep: %v", err)
	}
}

func TestActivityTickReportsAttempts(t *testing.T) {
	calls := &countingTicker{}
	acts := &Activities{Calls: calls}
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestActivityEnvironment()
	env.RegisterActivityWithOptions(acts.Tick, activity.RegisterOptions{Name: ActivityTick})

	val, err := env.ExecuteActivity(ActivityTick)
	if err != nil {
		t.Fatalf("ExecuteActivity: %v", err)
	}
	var out TickResult
	if err := val.Get(&out); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if out.Attempted != 2 || calls.ticks.Load() != 1 {
		t.Fatalf("tick: want attempted=2 got=%+v", out)
	}
}
