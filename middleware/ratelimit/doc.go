// Package ratelimit fornece adapters HTTP (net/http) para as primitivas de admissão e roteamento.
//
// Visão geral (camadas):
//
//   - primitives/domain: contratos e tipos do domínio (sem dependência de net/http)
//   - primitives/application: casos de uso (decisão allow/deny, espera no mailbox) sem net/http
//   - primitives/infra: implementações concretas (token bucket, LRU, anel, mailbox)
//   - ratelimit (este pacote): middlewares HTTP + extração de chave + tradução para status/headers
//
// Fluxo no gateway:
//
//   1) Extrai a chave do cliente (header/XFF/IP)
//   2) RouteMiddleware escolhe o nó (upstream) no anel e guarda no context
//   3) Middleware pede a decisão à camada application
//   4) Se bloqueado, responde 429 com Retry-After
//   5) Se permitido, chama o próximo handler (ex: reverse proxy)
//
// Variáveis de ambiente do binário gateway (cmd/gateway) controlam o comportamento,
// como RATE_CAPACITY, RATE_REFILL, RATE_MAX_KEYS e RING_VNODES.
package ratelimit
