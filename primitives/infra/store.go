package infra

import (
	"sync"

	"primitives-gateway/primitives/domain"
)

// Store mantém um AdmissionLimiter por chave (IP, API key, usuário).
//
// As chaves ficam num BoundedCache: quando passa de maxKeys, o cliente
// inativo há mais tempo perde o bucket e, se voltar, recomeça com o bucket cheio.
type Store struct {
	mu       sync.Mutex
	limiters *BoundedCache[string, *AdmissionLimiter]
	capacity int
	refill   float64
	maxKeys  int
	clock    domain.Clock
}

type StoreOption func(*Store)

func WithMaxKeys(n int) StoreOption {
	return func(s *Store) { s.maxKeys = n }
}

func WithStoreClock(c domain.Clock) StoreOption {
	return func(s *Store) {
		if c != nil {
			s.clock = c
		}
	}
}

// DefaultMaxKeys limita quantos buckets ficam em memória por padrão.
const DefaultMaxKeys = 10000

func NewStore(capacity int, refillPerSecond float64, opts ...StoreOption) (*Store, error) {
	if err := validateBucket(capacity, refillPerSecond); err != nil {
		return nil, err
	}
	s := &Store{
		capacity: capacity,
		refill:   refillPerSecond,
		maxKeys:  DefaultMaxKeys,
		clock:    SystemClock(),
	}
	for _, opt := range opts {
		opt(s)
	}

	limiters, err := NewBoundedCache[string, *AdmissionLimiter](s.maxKeys)
	if err != nil {
		return nil, err
	}
	s.limiters = limiters
	return s, nil
}

func (s *Store) Capacity() int       { return s.capacity }
func (s *Store) RefillRate() float64 { return s.refill }
func (s *Store) MaxKeys() int        { return s.maxKeys }
func (s *Store) Len() int            { return s.limiters.Len() }

// Get implementa domain.LimiterStore.
func (s *Store) Get(key domain.Key) domain.Limiter {
	return s.GetString(string(key))
}

func (s *Store) GetString(key string) *AdmissionLimiter {
	// o lock do Store torna o get-or-create atômico
	s.mu.Lock()
	defer s.mu.Unlock()

	if lim, ok := s.limiters.Get(key); ok {
		return lim
	}
	lim := newAdmissionLimiter(s.capacity, s.refill, s.clock)
	s.limiters.Put(key, lim)
	return lim
}
