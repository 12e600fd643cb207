package domain

// Camada de domínio da admissão (rate limit).
//
// Regras e contratos (interfaces/tipos) sem dependência de net/http.

import "time"

type Key string

// Limiter decide se uma unidade de trabalho de custo n pode ser admitida agora.
//
// Observação: não bloqueia. Quem precisa esperar faz retry/backoff por fora.
// A camada de infra usa golang.org/x/time/rate como motor do token bucket.
type Limiter interface {
	TryConsume(n int) bool
}

// LimiterStore obtém um limiter por chave (ex: IP, API key, usuário).
type LimiterStore interface {
	Get(Key) Limiter
}

type Decision struct {
	Allowed bool
	// RetryAfter é o valor a ser retornado em Retry-After quando bloquear.
	// Se 0, não há recomendação.
	RetryAfter time.Duration
}
