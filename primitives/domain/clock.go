package domain

import "time"

// Clock é a fonte de tempo das primitivas.
// Em produção usa time.Now; nos testes um relógio manual.
type Clock interface {
	Now() time.Time
}
