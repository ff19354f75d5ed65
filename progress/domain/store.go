package domain

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound indica que a chave não existe (ou expirou).
	ErrNotFound = errors.New("store: key not found")

	// ErrVersionConflict indica que SetOptions.IfVersion não bateu com a versão atual.
	ErrVersionConflict = errors.New("store: version conflict")
)

// Entry é um valor lido do Store junto com a versão que o gravou.
type Entry struct {
	Value   []byte
	Version int64
}

// SetOptions controla uma escrita.
type SetOptions struct {
	// TTL > 0 faz a chave expirar. Zero = não expira.
	TTL time.Duration

	// IfVersion transforma a escrita em compare-and-set: só grava se a versão
	// atual for exatamente *IfVersion. 0 significa "a chave não pode existir".
	IfVersion *int64
}

// Store é o contrato get/set por chave compartilhado pelo registro de progresso
// e pelas entradas de rate limit.
//
// Implementações: memória (por instância) e remotas (Redis, DynamoDB).
// Cada Set bem-sucedido incrementa a versão da chave.
type Store interface {
	Get(ctx context.Context, key string) (Entry, error)
	Set(ctx context.Context, key string, value []byte, opts SetOptions) error
}

// Pinger é implementado por backends que conseguem verificar conectividade.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ExpectVersion é um atalho para montar SetOptions.IfVersion.
func ExpectVersion(v int64) *int64 { return &v }
