package callsweep

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

const (
	defaultInterval      = 30 * time.Second
	defaultContinueAfter = 500
	continueHistoryLimit = 10000
)

func Workflow(ctx workflow.Context, in Input) error {
	interval := time.Duration(in.IntervalSeconds) * time.Second
	if interval <= 0 {
		interval = defaultInterval
	}
	continueAfter := in.ContinueAfter
	if continueAfter <= 0 {
		continueAfter = defaultContinueAfter
	}

	// Ticks are not retried; a failed tick waits for the next interval.
	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 10 * time.Minute,
		RetryPolicy:         &temporal.RetryPolicy{MaximumAttempts: 1},
	})
	log := workflow.GetLogger(ctx)

	for ticks := 1; ; ticks++ {
		var out TickResult
		if err := workflow.ExecuteActivity(ctx, ActivityTick).Get(ctx, &out); err != nil {
			log.Warn("Scheduled call sweep tick failed", "error", err)
		} else if out.Attempted > 0 {
			log.Info("Scheduled call sweep tick", "attempted", out.Attempted)
		}
		if err := workflow.Sleep(ctx, interval); err != nil {
			return err
		}
		if shouldContinueAsNew(ctx, ticks, continueAfter) {
			return workflow.NewContinueAsNewError(ctx, WorkflowName, in)
		}
	}
}

func shouldContinueAsNew(ctx workflow.Context, ticks, maxTicks int) bool {
	if ticks >= maxTicks {
		return true
	}
	info := workflow.GetInfo(ctx)
	return info != nil && info.GetCurrentHistoryLength() >= continueHistoryLimit
}
