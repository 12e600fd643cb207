package domain

import (
	"context"
	"time"
)

// StatsEvent representa uma decisão de admissão.
//
// Node é o nó (upstream) escolhido pelo anel, quando houver.
// Cuidado com cardinalidade ao persistir Key sem controle.
type StatsEvent struct {
	Key     Key
	Allowed bool
	Cost    int
	Node    string

	At time.Time
}

// StatsStore é a estratégia de persistência para estatísticas de admissão.
//
// Implementações podem armazenar em Redis ou memória.
// Quem chama deve tratar erro como best-effort (não derrubar request).
type StatsStore interface {
	Record(ctx context.Context, ev StatsEvent) error
}
