// Package domain define contratos e tipos de domínio para as primitivas de concorrência:
// admissão (token bucket), cache limitado (LRU), anel de hash consistente e caixa de mensagens.
//
// Este pacote não depende de net/http nem de implementações concretas.
// A intenção é permitir testes de unidade puros e desacoplar regras de negócio
// de detalhes de infraestrutura.
package domain
