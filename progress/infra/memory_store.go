package infra

import (
	"context"
	"sync"
	"time"

	"progress-sync/progress/domain"
)

// MemoryStore é o fallback sem credenciais remotas.
//
// Escopo de uma única instância: perdido no restart e não compartilhado entre
// instâncias concorrentes do mesmo deploy. Chaves com TTL (rate limit) são
// removidas na leitura e pelo janitor, então o mapa não cresce sem limite.
type MemoryStore struct {
	mu         sync.Mutex
	entries    map[string]*memoryEntry
	sweepEvery time.Duration
	now        func() time.Time
}

type memoryEntry struct {
	value     []byte
	version   int64
	expiresAt time.Time
}

func (e *memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

type MemoryStoreOption func(*MemoryStore)

func WithSweepEvery(d time.Duration) MemoryStoreOption {
	return func(s *MemoryStore) { s.sweepEvery = d }
}

// WithClock troca o relógio (testes).
func WithClock(now func() time.Time) MemoryStoreOption {
	return func(s *MemoryStore) { s.now = now }
}

func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	s := &MemoryStore{
		entries:    make(map[string]*memoryEntry),
		sweepEvery: time.Minute,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStore) SweepEvery() time.Duration { return s.sweepEvery }

// Get implementa domain.Store.
func (s *MemoryStore) Get(_ context.Context, key string) (domain.Entry, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	ent, ok := s.entries[key]
	if !ok {
		return domain.Entry{}, domain.ErrNotFound
	}
	if ent.expired(now) {
		delete(s.entries, key)
		return domain.Entry{}, domain.ErrNotFound
	}
	return domain.Entry{Value: cloneBytes(ent.value), Version: ent.version}, nil
}

// Set implementa domain.Store.
func (s *MemoryStore) Set(_ context.Context, key string, value []byte, opts domain.SetOptions) error {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	var current int64
	if ent, ok := s.entries[key]; ok && !ent.expired(now) {
		current = ent.version
	}
	if opts.IfVersion != nil && *opts.IfVersion != current {
		return domain.ErrVersionConflict
	}

	ent := &memoryEntry{value: cloneBytes(value), version: current + 1}
	if opts.TTL > 0 {
		ent.expiresAt = now.Add(opts.TTL)
	}
	s.entries[key] = ent
	return nil
}

// Sweep remove as chaves expiradas e devolve quantas saíram.
func (s *MemoryStore) Sweep() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for k, ent := range s.entries {
		if ent.expired(now) {
			delete(s.entries, k)
			removed++
		}
	}
	return removed
}

// Len devolve quantas chaves estão no mapa (inclusive expiradas ainda não varridas).
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// StartJanitor inicia uma goroutine que varre chaves expiradas periodicamente.
// Pare cancelando o contexto.
func (s *MemoryStore) StartJanitor(ctx context.Context) {
	if s.sweepEvery <= 0 {
		return
	}

	t := time.NewTicker(s.sweepEvery)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				s.Sweep()
			}
		}
	}()
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
