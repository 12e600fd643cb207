package infra

import (
	"context"
	"sync"

	"primitives-gateway/primitives/domain"
)

// Counters agrega decisões. Tokens soma o custo das admissões.
type Counters struct {
	Allowed int64
	Denied  int64
	Tokens  int64
}

func (c Counters) add(ev domain.StatsEvent) Counters {
	if ev.Allowed {
		c.Allowed++
		c.Tokens += int64(ev.Cost)
	} else {
		c.Denied++
	}
	return c
}

// MemoryStatsStore guarda os contadores em memória.
// Útil para testes e desenvolvimento; não expira nada.
type MemoryStatsStore struct {
	mu     sync.Mutex
	total  Counters
	byNode map[string]Counters
	byKey  map[string]Counters

	trackKeys bool
}

type MemoryStatsOption func(*MemoryStatsStore)

func WithTrackKeys(track bool) MemoryStatsOption {
	return func(s *MemoryStatsStore) { s.trackKeys = track }
}

func NewMemoryStatsStore(opts ...MemoryStatsOption) *MemoryStatsStore {
	s := &MemoryStatsStore{
		byNode: make(map[string]Counters),
		byKey:  make(map[string]Counters),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStatsStore) Record(_ context.Context, ev domain.StatsEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.total = s.total.add(ev)
	if ev.Node != "" {
		s.byNode[ev.Node] = s.byNode[ev.Node].add(ev)
	}
	if s.trackKeys {
		k := string(ev.Key)
		s.byKey[k] = s.byKey[k].add(ev)
	}
	return nil
}

func (s *MemoryStatsStore) Total() Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

func (s *MemoryStatsStore) ByNode() map[string]Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyCounters(s.byNode)
}

func (s *MemoryStatsStore) ByKey() map[string]Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyCounters(s.byKey)
}

func copyCounters(in map[string]Counters) map[string]Counters {
	out := make(map[string]Counters, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
