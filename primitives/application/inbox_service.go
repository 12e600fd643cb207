package application

import (
	"context"
	"time"

	"primitives-gateway/primitives/domain"
)

// InboxService aplica a política de espera em cima de um domain.Mailbox,
// sem saber nada sobre HTTP.
type InboxService struct {
	Mailbox domain.Mailbox
	MaxWait time.Duration
	Now     func() time.Time
}

// Send carimba o Timestamp (se vier zerado) e entrega ao mailbox.
func (s InboxService) Send(msg domain.Message) domain.Message {
	if msg.Timestamp.IsZero() {
		now := time.Now
		if s.Now != nil {
			now = s.Now
		}
		msg.Timestamp = now()
	}
	s.Mailbox.Send(msg)
	return msg
}

// Receive espera a próxima mensagem do destinatário.
//   - Se `MaxWait <= 0`, espera até o ctx terminar.
//   - Se `MaxWait > 0`, desiste com TimedOut depois desse tempo.
func (s InboxService) Receive(ctx context.Context, receiverID string) (domain.Message, domain.Outcome, error) {
	if s.MaxWait <= 0 {
		return s.Mailbox.Receive(ctx, receiverID)
	}

	waitCtx, cancel := context.WithTimeout(ctx, s.MaxWait)
	defer cancel()
	return s.Mailbox.Receive(waitCtx, receiverID)
}
