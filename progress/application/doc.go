// Package application contém os casos de uso do endpoint de sincronização:
// leitura/merge/gravação do estado, validação de payload, ETag, rate limit de
// janela fixa e limite de concorrência.
//
// Ele depende apenas do pacote domain e não conhece net/http.
// Ex.: RateLimiter.CheckAndRecord(ctx, key) retorna uma Decision (allow/deny + retry-after).
package application
