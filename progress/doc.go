// Package progress fornece o adapter HTTP (net/http) do endpoint de sincronização
// de progresso, mais os middlewares de borda (limite de concorrência e log de
// requisição).
//
// Visão geral (camadas):
//
//   - domain: contratos e tipos do domínio (sem dependência de net/http)
//   - application: casos de uso (merge, validação, ETag, rate limit) sem net/http
//   - infra: implementações concretas (memória, Redis, DynamoDB, semáforo, stats)
//   - progress (este pacote): handlers HTTP + extração de chave + tradução para status/headers
//
// Fluxo do POST /progress:
//
//  1. Extrai a chave do cliente (X-Forwarded-For / X-Real-IP)
//  2. Consulta o rate limiter (429 se bloqueado; o slot já conta mesmo se o corpo for inválido)
//  3. Decodifica e valida o payload (400 com lista de campos)
//  4. Lê o estado atual, faz o merge raso e grava (500 se o Store falhar)
//  5. Responde 200 com {success, data} e o novo ETag
//
// O GET /progress responde 304 quando If-None-Match bate exatamente com o ETag atual.
package progress
