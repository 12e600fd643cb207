package domain

import (
	"context"
	"time"
)

// Message é imutável depois de construída; circula sempre por valor.
type Message struct {
	ID         string
	SenderID   string
	ReceiverID string
	Content    string
	Timestamp  time.Time
}

// NewMessage monta uma mensagem com o timestamp informado.
func NewMessage(id, senderID, receiverID, content string, at time.Time) Message {
	return Message{
		ID:         id,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		Timestamp:  at,
	}
}

// Outcome é o resultado terminal de um Receive.
type Outcome int

const (
	Delivered Outcome = iota + 1
	Cancelled
	TimedOut
)

func (o Outcome) String() string {
	switch o {
	case Delivered:
		return "delivered"
	case Cancelled:
		return "cancelled"
	case TimedOut:
		return "timed_out"
	default:
		return "unknown"
	}
}

// Mailbox é uma fila FIFO por destinatário com Receive bloqueante e cancelável.
//
// A semântica é: Receive retorna na hora se houver mensagem; senão registra-se como
// único waiter do destinatário e espera um Send ou o fim do ctx.
// Cancelled/TimedOut são resultados normais, não erros.
type Mailbox interface {
	Send(msg Message)
	Receive(ctx context.Context, receiverID string) (Message, Outcome, error)
}
