package progress

import (
	"net/http"
	"strings"
)

type KeyFunc func(r *http.Request) string

// DefaultKeyFunc deriva a chave de rate limit a partir dos headers de origem:
// primeiro IP do X-Forwarded-For (cliente original), senão X-Real-IP.
//
// Sem nenhum dos dois a chave fica vazia e o rate limiter deixa passar. Isso é
// intencional: origem desconhecida não é bloqueada. RemoteAddr não é usado porque
// atrás do proxy da plataforma ele é o mesmo para todo mundo.
func DefaultKeyFunc() KeyFunc {
	return func(r *http.Request) string {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}
		return strings.TrimSpace(r.Header.Get("X-Real-IP"))
	}
}
