package application

import (
	"encoding/json"
	"strconv"
	"unicode/utf16"

	"progress-sync/progress/domain"
)

// ETag calcula o ETag fraco do estado.
//
// Não é digest criptográfico: serve só para o GET condicional. A estabilidade
// depende da ordem de serialização dos campos (ordem de declaração do struct).
func ETag(s domain.ProgressState) (string, error) {
	data, err := encodeState(s)
	if err != nil {
		return "", err
	}
	return WeakETag(data), nil
}

// WeakETag dobra o JSON serializado num hash rolante de 32 bits (h = 31*h + c,
// sobre unidades UTF-16) e devolve W/"pg-<hex>".
func WeakETag(data []byte) string {
	return `W/"pg-` + strconv.FormatUint(uint64(rollingHash(string(data))), 16) + `"`
}

func rollingHash(s string) uint32 {
	var h uint32
	for _, c := range utf16.Encode([]rune(s)) {
		h = h*31 + uint32(c)
	}
	return h
}

func encodeState(s domain.ProgressState) ([]byte, error) {
	return json.Marshal(normalize(s))
}

// normalize garante trips = [] (nunca null) no JSON.
func normalize(s domain.ProgressState) domain.ProgressState {
	if s.Trips == nil {
		s.Trips = []domain.TripProgress{}
	}
	return s
}
