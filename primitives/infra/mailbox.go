package infra

import (
	"context"
	"errors"
	"sync"

	"primitives-gateway/primitives/domain"
)

// inbox é a fila de um destinatário. reserved marca que há um Receive em andamento,
// do registro até o retorno, inclusive entre o Send que o acorda e a releitura da fila.
// waiter é o sinal one-shot desse Receive; Send fecha o channel e zera o campo,
// mas a reserva continua. Tudo sob o lock do Mailbox.
type inbox struct {
	msgs     []domain.Message
	waiter   chan struct{}
	reserved bool
}

func (q *inbox) pop() domain.Message {
	msg := q.msgs[0]
	q.msgs[0] = domain.Message{}
	q.msgs = q.msgs[1:]
	return msg
}

// Mailbox mantém uma fila FIFO por destinatário.
//
// Regras:
//   - Send apenas enfileira e sinaliza; quem acorda relê a fila.
//   - No máximo um Receive em andamento por destinatário; o segundo recebe ErrReceiverBusy,
//     inclusive enquanto o primeiro, já acordado, ainda não releu a fila.
//   - Ao cancelar, o waiter é removido antes de retornar, e a mensagem que chegar
//     depois fica na fila para o próximo Receive.
type Mailbox struct {
	mu     sync.Mutex
	queues map[string]*inbox
}

var _ domain.Mailbox = (*Mailbox)(nil)

func NewMailbox() *Mailbox {
	return &Mailbox{queues: make(map[string]*inbox)}
}

func (m *Mailbox) Send(msg domain.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()

	q := m.queues[msg.ReceiverID]
	if q == nil {
		q = &inbox{}
		m.queues[msg.ReceiverID] = q
	}
	q.msgs = append(q.msgs, msg)
	if q.waiter != nil {
		close(q.waiter)
		q.waiter = nil
	}
}

// Receive entrega a próxima mensagem do destinatário, esperando até chegar uma
// ou o ctx terminar. Prazo estourado vira TimedOut; qualquer outro fim do ctx, Cancelled.
//
// O destinatário fica reservado durante toda a chamada: outro Receive concorrente
// recebe ErrReceiverBusy mesmo na janela em que este já foi acordado.
func (m *Mailbox) Receive(ctx context.Context, receiverID string) (domain.Message, domain.Outcome, error) {
	m.mu.Lock()
	q := m.queues[receiverID]
	if q == nil {
		q = &inbox{}
		m.queues[receiverID] = q
	}
	if q.reserved {
		m.mu.Unlock()
		return domain.Message{}, 0, domain.ErrReceiverBusy
	}
	q.reserved = true

	// mu está travado no topo de cada volta
	for {
		if len(q.msgs) > 0 {
			msg := q.pop()
			q.reserved = false
			m.dropIfIdle(receiverID, q)
			m.mu.Unlock()
			return msg, domain.Delivered, nil
		}
		wake := make(chan struct{})
		q.waiter = wake
		m.mu.Unlock()

		select {
		case <-wake:
			// acordado por um Send: relê a fila com a reserva ainda de pé
			m.mu.Lock()
		case <-ctx.Done():
			m.mu.Lock()
			q.waiter = nil
			q.reserved = false
			m.dropIfIdle(receiverID, q)
			m.mu.Unlock()
			return domain.Message{}, outcomeOf(ctx.Err()), nil
		}
	}
}

// Pending retorna quantas mensagens aguardam o destinatário.
func (m *Mailbox) Pending(receiverID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	if q := m.queues[receiverID]; q != nil {
		return len(q.msgs)
	}
	return 0
}

// Waiting informa se há um Receive em andamento para o destinatário.
func (m *Mailbox) Waiting(receiverID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	q := m.queues[receiverID]
	return q != nil && q.reserved
}

// dropIfIdle descarta a fila vazia e sem Receive em andamento. Chamar com mu.
func (m *Mailbox) dropIfIdle(receiverID string, q *inbox) {
	if len(q.msgs) == 0 && !q.reserved && m.queues[receiverID] == q {
		delete(m.queues, receiverID)
	}
}

func outcomeOf(err error) domain.Outcome {
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.TimedOut
	}
	return domain.Cancelled
}
