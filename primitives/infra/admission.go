package infra

import (
	"math"
	"sync"
	"time"

	"primitives-gateway/primitives/domain"

	"golang.org/x/time/rate"
)

// AdmissionLimiter é um token bucket de capacidade fixa com refill contínuo.
//
// O motor é o rate.Limiter (x/time/rate): capacity vira o burst e refillRate o limite
// em tokens/segundo. Os tokens são fracionários (float64), então 0 <= tokens <= capacity
// vale em qualquer observação. O bucket começa cheio.
//
// O relógio é lido sob o lock e nunca anda para trás: uma leitura menor que a última
// é tratada como tempo decorrido zero.
type AdmissionLimiter struct {
	clock      domain.Clock
	capacity   int
	refillRate float64

	mu   sync.Mutex
	lim  *rate.Limiter
	last time.Time
}

type AdmissionOption func(*AdmissionLimiter)

func WithClock(c domain.Clock) AdmissionOption {
	return func(a *AdmissionLimiter) {
		if c != nil {
			a.clock = c
		}
	}
}

// NewAdmissionLimiter cria um limiter com `capacity` tokens e refill de
// `refillRatePerSecond` tokens por segundo. Ambos precisam ser positivos.
func NewAdmissionLimiter(capacity int, refillRatePerSecond float64, opts ...AdmissionOption) (*AdmissionLimiter, error) {
	if err := validateBucket(capacity, refillRatePerSecond); err != nil {
		return nil, err
	}
	a := &AdmissionLimiter{
		clock:      SystemClock(),
		capacity:   capacity,
		refillRate: refillRatePerSecond,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.reset()
	return a, nil
}

func validateBucket(capacity int, refillRatePerSecond float64) error {
	if capacity <= 0 {
		return domain.InvalidConfigf("capacity must be > 0, got %d", capacity)
	}
	// !(x > 0) também pega NaN
	if !(refillRatePerSecond > 0) || math.IsInf(refillRatePerSecond, 1) {
		return domain.InvalidConfigf("refill rate must be a positive finite number, got %v", refillRatePerSecond)
	}
	return nil
}

// newAdmissionLimiter não valida; quem chama já validou a configuração.
func newAdmissionLimiter(capacity int, refillRatePerSecond float64, clock domain.Clock) *AdmissionLimiter {
	a := &AdmissionLimiter{
		clock:      clock,
		capacity:   capacity,
		refillRate: refillRatePerSecond,
	}
	a.reset()
	return a
}

// reset cria o motor com o bucket cheio a partir da leitura atual do relógio.
func (a *AdmissionLimiter) reset() {
	a.lim = rate.NewLimiter(rate.Limit(a.refillRate), a.capacity)
	a.last = a.clock.Now()
}

func (a *AdmissionLimiter) Capacity() int       { return a.capacity }
func (a *AdmissionLimiter) RefillRate() float64 { return a.refillRate }

// TryConsume tenta debitar n tokens. Primeiro faz o refill pelo tempo decorrido,
// depois debita se houver saldo; se não houver, rejeita sem alterar o saldo.
//
// n <= 0 viola o contrato e é rejeitado (false). n > capacity nunca é admitido.
func (a *AdmissionLimiter) TryConsume(n int) bool {
	if n <= 0 {
		return false
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	return a.lim.AllowN(a.advance(), n)
}

// Tokens retorna o saldo atual (já com refill), sem consumir.
func (a *AdmissionLimiter) Tokens() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.lim.TokensAt(a.advance())
}

// advance lê o relógio e aplica a regra de monotonicidade. Chamar com mu.
func (a *AdmissionLimiter) advance() time.Time {
	now := a.clock.Now()
	if now.Before(a.last) {
		now = a.last
	}
	a.last = now
	return now
}
