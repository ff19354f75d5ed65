package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"progress-sync/progress/domain"
)

// DefaultWindow é a largura da janela fixa entre POSTs aceitos de uma mesma origem.
const DefaultWindow = 2000 * time.Millisecond

// DefaultRateLimitPrefix prefixa as chaves de rate limit no Store.
const DefaultRateLimitPrefix = "ratelimit:"

// RateLimitEntry é o que fica gravado por chave. Efêmero: expira junto com a janela.
type RateLimitEntry struct {
	Key              string `json:"key"`
	LastSeenAtMillis int64  `json:"lastSeenAtMillis"`
}

// RateLimiter aplica rate limit de janela fixa sobre o mesmo Store do estado.
//
// Regras por chamada (now):
//   - sem entrada: grava now e permite;
//   - now - last < Window: bloqueia, sem atualizar last;
//   - senão: grava now e permite.
//
// Chave ausente (origem desconhecida) sempre é permitida: é um bypass
// intencional, não um esquecimento.
type RateLimiter struct {
	Store  domain.Store
	Window time.Duration
	Prefix string
	Now    func() time.Time
}

func (l RateLimiter) CheckAndRecord(ctx context.Context, key domain.Key) (domain.Decision, error) {
	if l.Store == nil || key.Absent() {
		return domain.Decision{Allowed: true}, nil
	}
	window := l.Window
	if window <= 0 {
		window = DefaultWindow
	}
	now := time.Now
	if l.Now != nil {
		now = l.Now
	}
	prefix := l.Prefix
	if prefix == "" {
		prefix = DefaultRateLimitPrefix
	}

	storeKey := prefix + string(key)
	nowMillis := now().UnixMilli()

	entry, err := l.Store.Get(ctx, storeKey)
	switch {
	case errors.Is(err, domain.ErrNotFound):
	case err != nil:
		return domain.Decision{}, fmt.Errorf("rate limit lookup: %w", err)
	default:
		var last RateLimitEntry
		if err := json.Unmarshal(entry.Value, &last); err != nil {
			return domain.Decision{}, fmt.Errorf("rate limit lookup: decode entry: %w", err)
		}
		elapsed := nowMillis - last.LastSeenAtMillis
		// relógios de instâncias diferentes podem divergir
		if elapsed < 0 {
			elapsed = 0
		}
		if elapsed < window.Milliseconds() {
			return domain.Decision{
				Allowed:    false,
				RetryAfter: window - time.Duration(elapsed)*time.Millisecond,
			}, nil
		}
	}

	data, err := json.Marshal(RateLimitEntry{Key: string(key), LastSeenAtMillis: nowMillis})
	if err != nil {
		return domain.Decision{}, fmt.Errorf("rate limit record: %w", err)
	}
	if err := l.Store.Set(ctx, storeKey, data, domain.SetOptions{TTL: window}); err != nil {
		return domain.Decision{}, fmt.Errorf("rate limit record: %w", err)
	}
	return domain.Decision{Allowed: true}, nil
}
