package domain

import "github.com/pkg/errors"

// ErrInvalidConfiguration é retornado na construção quando capacidade, taxa de refill
// ou número de nós virtuais não são positivos. A instância não é criada.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// ErrReceiverBusy indica que já existe um Receive pendente para o mesmo destinatário.
var ErrReceiverBusy = errors.New("receiver already has a pending receive")

// InvalidConfigf anota ErrInvalidConfiguration com o motivo.
// Use errors.Is(err, ErrInvalidConfiguration) para testar.
func InvalidConfigf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrInvalidConfiguration, format, args...)
}
