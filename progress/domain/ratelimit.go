package domain

// Camada de domínio do rate limit.
//
// Janela fixa medida a partir da última ação aceita (não é sliding window nem
// token bucket).

import "time"

// Key identifica o chamador (normalmente o IP de origem). Vazia = origem desconhecida.
type Key string

// Absent indica que não foi possível derivar a origem do chamador.
func (k Key) Absent() bool { return k == "" }

type Decision struct {
	Allowed bool
	// RetryAfter é quanto falta para a janela reabrir quando bloqueado.
	// Se 0, não há recomendação.
	RetryAfter time.Duration
}

// RetryAfterSeconds arredonda RetryAfter para cima em segundos inteiros.
// Um bloqueio sempre recomenda pelo menos 1s.
func (d Decision) RetryAfterSeconds() int {
	if d.Allowed {
		return 0
	}
	secs := int((d.RetryAfter + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}
