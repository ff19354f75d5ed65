package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"progress-sync/progress/domain"
)

// Snapshot é o estado servido ao cliente junto com seu ETag.
type Snapshot struct {
	State domain.ProgressState
	ETag  string
}

// SyncService concentra leitura e atualização do registro de progresso,
// sem saber nada sobre HTTP.
//
// Não há lock: Update é um read-modify-write. Com DetectConflicts=false o último
// a gravar vence (uma gravação concorrente pode ser descartada em silêncio).
// Com DetectConflicts=true a gravação é condicionada à versão lida e a corrida
// vira domain.ErrVersionConflict. Em nenhum caso há retry interno.
type SyncService struct {
	Store           domain.Store
	Key             string
	DetectConflicts bool
}

func (s SyncService) key() string {
	if s.Key == "" {
		return domain.RecordKey
	}
	return s.Key
}

// Read devolve o estado atual, ou o estado padrão se ainda não houver registro.
func (s SyncService) Read(ctx context.Context) (Snapshot, error) {
	state, _, err := s.load(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	data, err := encodeState(state)
	if err != nil {
		return Snapshot{}, fmt.Errorf("encode progress: %w", err)
	}
	return Snapshot{State: normalize(state), ETag: WeakETag(data)}, nil
}

// Update aplica o Patch sobre o estado atual (ou padrão) e grava o resultado.
func (s SyncService) Update(ctx context.Context, p domain.Patch) (Snapshot, error) {
	cur, version, err := s.load(ctx)
	if err != nil {
		return Snapshot{}, err
	}

	merged := Merge(cur, p)
	data, err := encodeState(merged)
	if err != nil {
		return Snapshot{}, fmt.Errorf("encode progress: %w", err)
	}

	var opts domain.SetOptions
	if s.DetectConflicts {
		opts.IfVersion = domain.ExpectVersion(version)
	}
	if err := s.Store.Set(ctx, s.key(), data, opts); err != nil {
		return Snapshot{}, fmt.Errorf("save progress: %w", err)
	}
	return Snapshot{State: merged, ETag: WeakETag(data)}, nil
}

// load devolve (estado, versão). Registro ausente => (DefaultState, 0).
func (s SyncService) load(ctx context.Context) (domain.ProgressState, int64, error) {
	if s.Store == nil {
		return domain.ProgressState{}, 0, errors.New("progress: store is nil")
	}
	entry, err := s.Store.Get(ctx, s.key())
	if errors.Is(err, domain.ErrNotFound) {
		return domain.DefaultState(), 0, nil
	}
	if err != nil {
		return domain.ProgressState{}, 0, fmt.Errorf("load progress: %w", err)
	}

	var state domain.ProgressState
	if err := json.Unmarshal(entry.Value, &state); err != nil {
		return domain.ProgressState{}, 0, fmt.Errorf("load progress: decode stored value: %w", err)
	}
	return normalize(state), entry.Version, nil
}
