package domain

import (
	"context"
	"time"
)

// Outcome é o resultado de um POST de sincronização.
type Outcome string

const (
	OutcomeAccepted    Outcome = "accepted"
	OutcomeRateLimited Outcome = "rate_limited"
	OutcomeInvalid     Outcome = "invalid"
	OutcomeConflict    Outcome = "conflict"
	OutcomeError       Outcome = "error"
)

// StatsEvent representa um POST processado.
//
// Observação: cuidado com cardinalidade (ex.: salvar Key sem controle pode
// explodir o número de chaves em uma base como Redis).
type StatsEvent struct {
	Key     Key
	Outcome Outcome

	Method string
	Path   string

	At time.Time
}

// StatsStore é a estratégia de persistência para estatísticas de sincronização.
//
// O handler trata erro como best-effort (não derruba request).
type StatsStore interface {
	Record(ctx context.Context, ev StatsEvent) error
}
