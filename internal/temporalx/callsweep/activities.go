package callsweep

import (
	"context"
	"fmt"
)

// Ticker claims and places due scheduled calls; *worker.Worker implements it.
type Ticker interface {
	Tick(ctx context.Context) int
}

type Activities struct {
	Calls Ticker
}

func (a *Activities) Tick(ctx context.Context) (TickResult, error) {
	if a == nil || a.Calls == nil {
		return TickResult{}, fmt.Errorf("callsweep: activity not configured")
	}
	return TickResult{Attempted: a.Calls.Tick(ctx)}, nil
}
