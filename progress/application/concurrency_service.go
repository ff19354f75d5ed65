package application

import (
	"context"
	"errors"
	"time"

	"progress-sync/progress/domain"
)

// ErrBusy indica que nenhuma vaga liberou dentro da espera permitida.
var ErrBusy = errors.New("no concurrency slot available")

// ConcurrencyService decide se uma requisição entra, limitando quantas ficam
// em voo ao mesmo tempo. Sem Pool, tudo entra.
type ConcurrencyService struct {
	Pool domain.SlotPool
	// AcquireTimeout <= 0 espera enquanto o ctx da requisição viver.
	AcquireTimeout time.Duration
}

// Admit devolve a função que libera a vaga, ou ErrBusy.
func (s ConcurrencyService) Admit(ctx context.Context) (func(), error) {
	if s.Pool == nil {
		return func() {}, nil
	}
	if s.AcquireTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.AcquireTimeout)
		defer cancel()
	}

	release, ok := s.Pool.Acquire(ctx)
	if !ok {
		return nil, ErrBusy
	}
	return release, nil
}

func (s ConcurrencyService) InFlight() int {
	if s.Pool == nil {
		return 0
	}
	return s.Pool.InFlight()
}
