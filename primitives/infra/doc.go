// Package infra contém implementações concretas (infraestrutura) para os contratos
// definidos no pacote domain.
//
// Exemplos:
//   - AdmissionLimiter: token bucket usando golang.org/x/time/rate
//   - BoundedCache: LRU de capacidade fixa sobre uma arena de slots
//   - HashRing: hash consistente com nós virtuais (xxhash)
//   - Mailbox: fila FIFO por destinatário com receive cancelável
//   - Store: um AdmissionLimiter por chave, limitado por um BoundedCache
//   - MemoryStatsStore / RedisStatsStore: contadores das decisões de admissão
//
// Todas as operações públicas são seguras para uso concorrente.
package infra
