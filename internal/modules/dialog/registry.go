package dialog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

var ErrCallNotFound = errors.New("call not found")

type CallState string

const (
	StateInitiated  CallState = "INITIATED"
	StateAnswered   CallState = "ANSWERED"
	StateGathering  CallState = "GATHERING"
	StateTerminated CallState = "TERMINATED"
)

const DefaultCallTTL = 2 * time.Hour

// ActiveCall is the context a webhook needs to continue a placed call.
type ActiveCall struct {
	CallSID     string    `json:"call_sid"`
	ContactID   uuid.UUID `json:"contact_id"`
	OwnerUserID uuid.UUID `json:"owner_user_id"`
	Script      string    `json:"script"`
	State       CallState `json:"state"`
	CreatedAt   time.Time `json:"created_at"`
}

// Registry maps provider call ids to active calls. Entries expire after the
// registry's TTL; a miss is ErrCallNotFound.
type Registry interface {
	Put(ctx context.Context, call ActiveCall) error
	Get(ctx context.Context, callSID string) (*ActiveCall, error)
	SetState(ctx context.Context, callSID string, state CallState) error
}

type memoryEntry struct {
	call      ActiveCall
	expiresAt time.Time
}

type MemoryRegistry struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryRegistry(ttl time.Duration) *MemoryRegistry {
	if ttl <= 0 {
		ttl = DefaultCallTTL
	}
	return &MemoryRegistry{ttl: ttl, entries: map[string]memoryEntry{}, now: time.Now}
}

func (r *MemoryRegistry) Put(ctx context.Context, call ActiveCall) error {
	if call.CallSID == "" {
		return fmt.Errorf("call sid required")
	}
	if call.State == "" {
		call.State = StateInitiated
	}
	if call.CreatedAt.IsZero() {
		call.CreatedAt = r.now().UTC()
	}
	r.mu.Lock()
	r.entries[call.CallSID] = memoryEntry{call: call, expiresAt: r.now().Add(r.ttl)}
	r.mu.Unlock()
	return nil
}

func (r *MemoryRegistry) Get(ctx context.Context, callSID string) (*ActiveCall, error) {
	r.mu.RLock()
	e, ok := r.entries[callSID]
	r.mu.RUnlock()
	if !ok || !r.now().Before(e.expiresAt) {
		return nil, ErrCallNotFound
	}
	call := e.call
	return &call, nil
}

// SetState keeps the original expiry.
func (r *MemoryRegistry) SetState(ctx context.Context, callSID string, state CallState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[callSID]
	if !ok || !r.now().Before(e.expiresAt) {
		return ErrCallNotFound
	}
	e.call.State = state
	r.entries[callSID] = e
	return nil
}

// Sweep drops expired entries and returns how many were removed.
func (r *MemoryRegistry) Sweep() int {
	now := r.now()
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for sid, e := range r.entries {
		if !now.Before(e.expiresAt) {
			delete(r.entries, sid)
			n++
		}
	}
	return n
}

func (r *MemoryRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Run sweeps until ctx is done.
func (r *MemoryRegistry) Run(ctx context.Context) error {
	interval := r.ttl / 4
	if interval < time.Second {
		interval = time.Second
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			r.Sweep()
		}
	}
}

type RedisRegistry struct {
	rdb    goredis.UniversalClient
	ttl    time.Duration
	prefix string
}

func NewRedisRegistry(rdb goredis.UniversalClient, ttl time.Duration) *RedisRegistry {
	if ttl <= 0 {
		ttl = DefaultCallTTL
	}
	return &RedisRegistry{rdb: rdb, ttl: ttl, prefix: "active_call:"}
}

func (r *RedisRegistry) Put(ctx context.Context, call ActiveCall) error {
	if call.CallSID == "" {
		return fmt.Errorf("call sid required")
	}
	if call.State == "" {
		call.State = StateInitiated
	}
	if call.CreatedAt.IsZero() {
		call.CreatedAt = time.Now().UTC()
	}
	b, err := json.Marshal(call)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, r.prefix+call.CallSID, b, r.ttl).Err()
}

func (r *RedisRegistry) Get(ctx context.Context, callSID string) (*ActiveCall, error) {
	b, err := r.rdb.Get(ctx, r.prefix+callSID).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, ErrCallNotFound
	}
	if err != nil {
		return nil, err
	}
	var call ActiveCall
	if err := json.Unmarshal(b, &call); err != nil {
		return nil, fmt.Errorf("decode active call: %w", err)
	}
	return &call, nil
}

func (r *RedisRegistry) SetState(ctx context.Context, callSID string, state CallState) error {
	call, err := r.Get(ctx, callSID)
	if err != nil {
		return err
	}
	call.State = state
	b, err := json.Marshal(call)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, r.prefix+callSID, b, goredis.KeepTTL).Err()
}
