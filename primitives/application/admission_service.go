package application

import (
	"context"
	"time"

	"primitives-gateway/primitives/domain"
)

// AdmissionService concentra a regra de aplicação da admissão.
//
// Ele não sabe nada sobre HTTP (headers/status), apenas retorna uma decisão
// e registra o evento em Stats (best-effort).
type AdmissionService struct {
	Store      domain.LimiterStore
	Stats      domain.StatsStore
	Cost       int
	RetryAfter time.Duration
	Now        func() time.Time
}

// Decide debita Cost tokens (1 se não configurado) do bucket da chave.
// node é o destino já escolhido para a request, se houver; só vai para as estatísticas.
func (s AdmissionService) Decide(ctx context.Context, key domain.Key, node string) domain.Decision {
	if s.RetryAfter <= 0 {
		s.RetryAfter = 1 * time.Second
	}
	if s.Cost <= 0 {
		s.Cost = 1
	}

	dec := s.decide(key)
	if s.Stats != nil {
		now := time.Now
		if s.Now != nil {
			now = s.Now
		}
		_ = s.Stats.Record(ctx, domain.StatsEvent{
			Key:     key,
			Allowed: dec.Allowed,
			Cost:    s.Cost,
			Node:    node,
			At:      now(),
		})
	}
	return dec
}

func (s AdmissionService) decide(key domain.Key) domain.Decision {
	if s.Store == nil {
		return domain.Decision{Allowed: true}
	}
	lim := s.Store.Get(key)
	if lim == nil {
		return domain.Decision{Allowed: true}
	}
	if lim.TryConsume(s.Cost) {
		return domain.Decision{Allowed: true}
	}
	return domain.Decision{Allowed: false, RetryAfter: s.RetryAfter}
}
