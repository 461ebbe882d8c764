package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/yungbote/novo-contact-backend/internal/pkg/logger"
	"github.com/yungbote/novo-contact-backend/internal/realtime"
)

type fakeBus struct {
	mu        sync.Mutex
	published []realtime.SSEMessage
	block     chan struct{}
	err       error
}

func (b *fakeBus) Publish(ctx context.Context, msg realtime.SSEMessage) error {
	if b.block != nil {
		select {
		case <-b.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published = append(b.published, msg)
	return b.err
}

func (b *fakeBus) StartForwarder(context.Context, func(realtime.SSEMessage)) error { return nil }
func (b *fakeBus) Close() error                                                    { return nil }

func (b *fakeBus) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.published)
}

func TestRedisEmitterNeverBlocksCaller(t *testing.T) {
	b := &fakeBus{block: make(chan struct{})}
	e := NewRedisEmitter(logger.Nop(), b, 2)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 5; i++ {
			e.Emit(context.Background(), realtime.SSEMessage{Channel: "u1", Event: realtime.SSEEventCallStatus})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Emit blocked with no publisher running")
	}
	if got := e.Dropped(); got != 3 {
		t.Fatalf("dropped: want=3 got=%d", got)
	}
}

func TestRedisEmitterRunPublishesQueued(t *testing.T) {
	b := &fakeBus{err: errors.New("redis down")}
	e := NewRedisEmitter(logger.Nop(), b, 8)
	e.Emit(context.Background(), realtime.SSEMessage{Channel: "u1", Event: realtime.SSEEventDialogTurn})
	e.Emit(context.Background(), realtime.SSEMessage{Channel: "u1", Event: realtime.SSEEventCallStatus})

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan error, 1)
	go func() { stopped <- e.Run(ctx) }()

	deadline := time.Now().Add(time.Second)
	for b.count() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if got := b.count(); got != 2 {
		t.Fatalf("published: want=2 got=%d", got)
	}
	cancel()
	if err := <-stopped; err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestRedisEmitterPublishTimeout(t *testing.T) {
	b := &fakeBus{block: make(chan struct{})}
	e := NewRedisEmitter(logger.Nop(), b, 4)
	e.publishTimeout = 20 * time.Millisecond
	e.Emit(context.Background(), realtime.SSEMessage{Channel: "u1"})
	e.Emit(context.Background(), realtime.SSEMessage{Channel: "u2"})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = e.Run(ctx) }()

	// Both publishes give up on their own deadline, so the queue drains.
	deadline := time.Now().Add(time.Second)
	for len(e.queue) > 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if n := len(e.queue); n != 0 {
		t.Fatalf("queue should drain despite a stuck bus, left=%d", n)
	}
}
