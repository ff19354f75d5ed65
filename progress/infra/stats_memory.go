package infra

import (
	"context"
	"sync"

	"progress-sync/progress/domain"
)

// Counters agrega resultados por Outcome.
type Counters map[domain.Outcome]int64

func (c Counters) clone() Counters {
	out := make(Counters, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// MemoryStatsStore é uma implementação simples em memória.
// É o padrão quando não há Redis; os números são por instância.
//
// Não faz expiração (por chave só quando trackKeys está ligado).
type MemoryStatsStore struct {
	mu      sync.Mutex
	total   Counters
	byRoute map[string]Counters
	byKey   map[string]Counters

	trackKeys bool
}

type MemoryStatsOption func(*MemoryStatsStore)

func WithTrackKeys(track bool) MemoryStatsOption {
	return func(s *MemoryStatsStore) { s.trackKeys = track }
}

func NewMemoryStatsStore(opts ...MemoryStatsOption) *MemoryStatsStore {
	s := &MemoryStatsStore{
		total:   make(Counters),
		byRoute: make(map[string]Counters),
		byKey:   make(map[string]Counters),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStatsStore) Record(_ context.Context, ev domain.StatsEvent) error {
	route := ev.Method + " " + ev.Path

	s.mu.Lock()
	defer s.mu.Unlock()

	s.total[ev.Outcome]++
	bump(s.byRoute, route, ev.Outcome)
	if s.trackKeys && !ev.Key.Absent() {
		bump(s.byKey, string(ev.Key), ev.Outcome)
	}
	return nil
}

func bump(m map[string]Counters, k string, o domain.Outcome) {
	c, ok := m[k]
	if !ok {
		c = make(Counters)
		m[k] = c
	}
	c[o]++
}

func (s *MemoryStatsStore) Total() Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total.clone()
}

func (s *MemoryStatsStore) ByRoute() map[string]Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]Counters, len(s.byRoute))
	for k, v := range s.byRoute {
		out[k] = v.clone()
	}
	return out
}

func (s *MemoryStatsStore) ByKey() map[string]Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]Counters, len(s.byKey))
	for k, v := range s.byKey {
		out[k] = v.clone()
	}
	return out
}
