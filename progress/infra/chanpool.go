package infra

import (
	"context"

	"progress-sync/progress/domain"
)

type chanPool struct {
	sem chan struct{}
}

// NewChanPool cria um pool simples baseado em channel com capacidade `max`.
func NewChanPool(max int) domain.SlotPool {
	return &chanPool{sem: make(chan struct{}, max)}
}

func (p *chanPool) Acquire(ctx context.Context) (func(), bool) {
	// vaga livre tem prioridade mesmo com ctx já cancelado
	select {
	case p.sem <- struct{}{}:
		return p.release(), true
	default:
	}

	select {
	case p.sem <- struct{}{}:
		return p.release(), true
	case <-ctx.Done():
		return nil, false
	}
}

func (p *chanPool) release() func() {
	done := false
	return func() {
		if done {
			return
		}
		done = true
		<-p.sem
	}
}

func (p *chanPool) InFlight() int { return len(p.sem) }
