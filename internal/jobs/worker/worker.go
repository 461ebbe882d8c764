// Package worker places scheduled calls when they fall due and records
// each attempt, rescheduling failures that asked for retries.
package worker

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/novo-contact-backend/internal/data/repos"
	types "github.com/yungbote/novo-contact-backend/internal/domain"
	"github.com/yungbote/novo-contact-backend/internal/pkg/dbctx"
	"github.com/yungbote/novo-contact-backend/internal/pkg/logger"
	"github.com/yungbote/novo-contact-backend/internal/services"
)

type Config struct {
	Interval    time.Duration
	Concurrency int
	// StaleCalling is how long a claimed row may stay in "calling" before
	// another loop reclaims it.
	StaleCalling time.Duration
	// Observer, when set, counts attempts by outcome.
	Observer AttemptObserver
	// MaxPerTick bounds how many rows one loop drains per tick.
	MaxPerTick int
}

type AttemptObserver interface {
	IncScheduledAttempt(outcome string)
}

type Worker struct {
	log    *logger.Logger
	repo   repos.ScheduledCallRepo
	calls  services.CallService
	notify services.CallNotifier
	cfg    Config
	now    func() time.Time
}

func NewWorker(baseLog *logger.Logger, repo repos.ScheduledCallRepo, calls services.CallService, notify services.CallNotifier, cfg Config) *Worker {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if cfg.StaleCalling <= 0 {
		cfg.StaleCalling = 10 * time.Minute
	}
	if cfg.MaxPerTick <= 0 {
		cfg.MaxPerTick = 10
	}
	return &Worker{
		log:    baseLog.With("component", "ScheduledCallWorker"),
		repo:   repo,
		calls:  calls,
		notify: notify,
		cfg:    cfg,
		now:    time.Now,
	}
}

// Run blocks until ctx is done.
func (w *Worker) Run(ctx context.Context) error {
	w.log.Info("Starting scheduled call worker", "concurrency", w.cfg.Concurrency, "interval", w.cfg.Interval)
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < w.cfg.Concurrency; i++ {
		workerID := i + 1
		g.Go(func() error {
			w.runLoop(gctx, workerID)
			return nil
		})
	}
	return g.Wait()
}

func (w *Worker) runLoop(ctx context.Context, workerID int) {
	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Info("Worker loop stopped", "worker_id", workerID)
			return
		case <-ticker.C:
			w.Tick(ctx)
		}
	}
}

// Tick claims and places due calls until none are left or MaxPerTick is
// reached, and returns how many were attempted.
func (w *Worker) Tick(ctx context.Context) int {
	n := 0
	for n < w.cfg.MaxPerTick {
		if ctx.Err() != nil {
			return n
		}
		sc, err := w.repo.ClaimNextDue(dbctx.Of(ctx), w.now().UTC(), w.cfg.StaleCalling)
		if err != nil {
			w.log.Warn("ClaimNextDue failed", "error", err)
			return n
		}
		if sc == nil {
			return n
		}
		w.attempt(ctx, sc)
		n++
	}
	return n
}

func (w *Worker) attempt(ctx context.Context, sc *types.ScheduledCall) {
	var (
		sid    string
		runErr error
	)
	func() {
		defer func() {
			if r := recover(); r != nil {
				w.log.Error("Scheduled call panic", "scheduled_call_id", sc.ID, "panic", r)
				runErr = fmt.Errorf("panic: %v", r)
			}
		}()
		res, err := w.calls.Initiate(ctx, sc.UserID, sc.ContactID, sc.Script)
		if err != nil {
			runErr = err
			return
		}
		sid = res.CallSID
	}()

	success := runErr == nil && sid != ""
	updated, err := w.repo.MarkAttempted(dbctx.Of(ctx), sc.ID, success, sid, w.now().UTC())
	if err != nil {
		w.log.Error("MarkAttempted failed", "scheduled_call_id", sc.ID, "error", err)
		return
	}
	if updated == nil {
		return
	}
	if w.cfg.Observer != nil {
		w.cfg.Observer.IncScheduledAttempt(updated.Status)
	}
	if success {
		w.log.Info("Scheduled call placed", "scheduled_call_id", sc.ID, "call_sid", sid, "attempts", updated.CallAttempts)
	} else {
		w.log.Warn("Scheduled call attempt failed",
			"scheduled_call_id", sc.ID,
			"attempts", updated.CallAttempts,
			"status", updated.Status,
			"error", runErr,
		)
	}
	if w.notify != nil {
		w.notify.ScheduledCallUpdated(updated.UserID, updated)
	}
}
