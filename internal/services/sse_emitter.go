package services

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/yungbote/novo-contact-backend/internal/pkg/logger"
	"github.com/yungbote/novo-contact-backend/internal/realtime"
	"github.com/yungbote/novo-contact-backend/internal/realtime/bus"
)

// SSEEmitter hands a message to observers. Emit must not block the caller.
type SSEEmitter interface {
	Emit(ctx context.Context, msg realtime.SSEMessage)
}

type HubEmitter struct{ Hub *realtime.SSEHub }

func (e *HubEmitter) Emit(ctx context.Context, msg realtime.SSEMessage) {
	e.Hub.Broadcast(msg)
}

const (
	defaultEmitBuffer     = 256
	defaultPublishTimeout = 2 * time.Second
)

// RedisEmitter publishes to every instance; each instance's forwarder
// feeds its own hub. Messages are queued and published by Run, and are
// dropped when the queue is full.
type RedisEmitter struct {
	log            *logger.Logger
	bus            bus.Bus
	queue          chan realtime.SSEMessage
	publishTimeout time.Duration
	dropped        atomic.Int64
}

func NewRedisEmitter(log *logger.Logger, b bus.Bus, buffer int) *RedisEmitter {
	if buffer <= 0 {
		buffer = defaultEmitBuffer
	}
	return &RedisEmitter{
		log:            log.With("service", "RedisEmitter"),
		bus:            b,
		queue:          make(chan realtime.SSEMessage, buffer),
		publishTimeout: defaultPublishTimeout,
	}
}

func (e *RedisEmitter) Emit(_ context.Context, msg realtime.SSEMessage) {
	select {
	case e.queue <- msg:
	default:
		n := e.dropped.Add(1)
		e.log.Warn("SSE queue full, dropping message", "event", msg.Event, "channel", msg.Channel, "dropped_total", n)
	}
}

// Dropped is the number of messages discarded because the queue was full.
func (e *RedisEmitter) Dropped() int64 { return e.dropped.Load() }

// Run drains the queue until ctx is done.
func (e *RedisEmitter) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg := <-e.queue:
			pctx, cancel := context.WithTimeout(ctx, e.publishTimeout)
			err := e.bus.Publish(pctx, msg)
			cancel()
			if err != nil {
				e.log.Warn("SSE publish failed", "event", msg.Event, "channel", msg.Channel, "error", err)
			}
		}
	}
}
