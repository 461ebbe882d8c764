// Package temporalworker hosts the Temporal worker that runs the scheduled
// call sweep.
package temporalworker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/activity"
	temporalsdkclient "go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/yungbote/novo-contact-backend/internal/pkg/logger"
	"github.com/yungbote/novo-contact-backend/internal/temporalx"
	"github.com/yungbote/novo-contact-backend/internal/temporalx/callsweep"
)

type Options struct {
	Interval    time.Duration
	Concurrency int
	StartWait   time.Duration
}

type Runner struct {
	log  *logger.Logger
	tc   temporalsdkclient.Client
	cfg  temporalx.Config
	opts Options
	acts *callsweep.Activities
}

func NewRunner(log *logger.Logger, tc temporalsdkclient.Client, cfg temporalx.Config, calls callsweep.Ticker, opts Options) (*Runner, error) {
	if tc == nil {
		return nil, fmt.Errorf("temporal client is not configured")
	}
	if calls == nil {
		return nil, fmt.Errorf("temporal worker missing scheduled call ticker")
	}
	if opts.Interval <= 0 {
		opts.Interval = 30 * time.Second
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.StartWait <= 0 {
		opts.StartWait = 60 * time.Second
	}
	return &Runner{
		log:  log.With("component", "TemporalWorker"),
		tc:   tc,
		cfg:  cfg,
		opts: opts,
		acts: &callsweep.Activities{Calls: calls},
	}, nil
}

// Run starts the worker, makes sure the sweep workflow exists and blocks
// until ctx is done.
func (r *Runner) Run(ctx context.Context) error {
	r.log.Info("Starting Temporal worker", "address", r.cfg.Address, "namespace", r.cfg.Namespace, "task_queue", r.cfg.TaskQueue)

	w, err := r.startWorker(ctx)
	if err != nil {
		return err
	}
	defer w.Stop()

	if err := r.ensureSweep(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	r.log.Info("Temporal worker stopped")
	return nil
}

func (r *Runner) startWorker(ctx context.Context) (worker.Worker, error) {
	deadline := time.Now().Add(r.opts.StartWait)
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		w := r.newWorker()
		startErr := w.Start()
		if startErr == nil {
			r.log.Info("Temporal worker started", "task_queue", r.cfg.TaskQueue, "attempts", attempt)
			return w, nil
		}
		w.Stop()

		var nfe *serviceerror.NamespaceNotFound
		if errors.As(startErr, &nfe) {
			return nil, fmt.Errorf("temporal namespace not found (namespace=%s): %w", r.cfg.Namespace, startErr)
		}
		if time.Now().After(deadline) {
			return nil, startErr
		}
		r.log.Warn("Temporal worker failed to start, retrying", "attempt", attempt, "error", startErr)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt) * 250 * time.Millisecond):
		}
	}
}

func (r *Runner) newWorker() worker.Worker {
	w := worker.New(r.tc, r.cfg.TaskQueue, worker.Options{
		MaxConcurrentActivityExecutionSize:     r.opts.Concurrency,
		MaxConcurrentWorkflowTaskExecutionSize: r.opts.Concurrency,
	})
	w.RegisterWorkflowWithOptions(callsweep.Workflow, workflow.RegisterOptions{Name: callsweep.WorkflowName})
	w.RegisterActivityWithOptions(r.acts.Tick, activity.RegisterOptions{Name: callsweep.ActivityTick})
	return w
}

// ensureSweep starts the singleton sweep workflow unless it is running.
func (r *Runner) ensureSweep(ctx context.Context) error {
	opts := temporalsdkclient.StartWorkflowOptions{
		ID:        callsweep.WorkflowID,
		TaskQueue: r.cfg.TaskQueue,
	}
	in := callsweep.Input{IntervalSeconds: int(r.opts.Interval / time.Second)}
	run, err := r.tc.ExecuteWorkflow(ctx, opts, callsweep.WorkflowName, in)
	var already *serviceerror.WorkflowExecutionAlreadyStarted
	if errors.As(err, &already) {
		r.log.Info("Scheduled call sweep already running", "workflow_id", callsweep.WorkflowID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("start scheduled call sweep: %w", err)
	}
	r.log.Info("Scheduled call sweep started", "workflow_id", run.GetID(), "run_id", run.GetRunID())
	return nil
}
