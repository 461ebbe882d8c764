package dialog

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

var ErrClipNotFound = errors.New("clip not found")

const DefaultClipTTL = 30 * time.Minute

// ClipStore keeps synthesized WAV clips long enough for the provider to
// fetch them.
type ClipStore interface {
	Put(ctx context.Context, wav []byte) (string, error)
	Get(ctx context.Context, id string) ([]byte, error)
}

type clipEntry struct {
	data      []byte
	expiresAt time.Time
}

type MemoryClipStore struct {
	mu    sync.Mutex
	ttl   time.Duration
	clips map[string]clipEntry
	now   func() time.Time
}

func NewMemoryClipStore(ttl time.Duration) *MemoryClipStore {
	if ttl <= 0 {
		ttl = DefaultClipTTL
	}
	return &MemoryClipStore{ttl: ttl, clips: map[string]clipEntry{}, now: time.Now}
}

func (s *MemoryClipStore) Put(ctx context.Context, wav []byte) (string, error) {
	id := uuid.New().String()
	expiresAt := s.now().Add(s.ttl)
	s.mu.Lock()
	s.clips[id] = clipEntry{data: wav, expiresAt: expiresAt}
	s.mu.Unlock()
	return id, nil
}

func (s *MemoryClipStore) Get(ctx context.Context, id string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.clips[id]
	if !ok || !s.now().Before(e.expiresAt) {
		return nil, ErrClipNotFound
	}
	return e.data, nil
}

// Sweep drops expired clips and returns how many were removed.
func (s *MemoryClipStore) Sweep() int {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, e := range s.clips {
		if !now.Before(e.expiresAt) {
			delete(s.clips, id)
			n++
		}
	}
	return n
}

func (s *MemoryClipStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clips)
}

// Run sweeps until ctx is done.
func (s *MemoryClipStore) Run(ctx context.Context) error {
	interval := s.ttl / 4
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
			s.Sweep()
		}
	}
}

type RedisClipStore struct {
	rdb    goredis.UniversalClient
	ttl    time.Duration
	prefix string
}

func NewRedisClipStore(rdb goredis.UniversalClient, ttl time.Duration) *RedisClipStore {
	if ttl <= 0 {
		ttl = DefaultClipTTL
	}
	return &RedisClipStore{rdb: rdb, ttl: ttl, prefix: "voice_clip:"}
}

func (s *RedisClipStore) Put(ctx context.Context, wav []byte) (string, error) {
	id := uuid.New().String()
	if err := s.rdb.Set(ctx, s.prefix+id, wav, s.ttl).Err(); err != nil {
		return "", err
	}
	return id, nil
}

func (s *RedisClipStore) Get(ctx context.Context, id string) ([]byte, error) {
	b, err := s.rdb.Get(ctx, s.prefix+id).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, ErrClipNotFound
	}
	return b, err
}
