// Package application contém os casos de uso (regras de aplicação) em cima das primitivas:
// decisão de admissão por chave e recebimento de mensagens com tempo máximo de espera.
//
// Ele depende apenas do pacote domain e não conhece net/http.
// Ex.: AdmissionService.Decide(ctx, key, node) retorna uma Decision (allow/deny + retry-after).
package application
