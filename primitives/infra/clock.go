package infra

import (
	"sync"
	"time"

	"primitives-gateway/primitives/domain"
)

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock retorna o relógio de parede (com leitura monotônica do runtime).
func SystemClock() domain.Clock { return systemClock{} }

// ManualClock é um relógio controlado pelo teste.
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance move o relógio; d negativo simula um relógio que regrediu.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
