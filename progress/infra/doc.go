// Package infra contém implementações concretas (infraestrutura) para os contratos
// definidos no pacote domain.
//
// Exemplos:
//   - MemoryStore: mapa em memória por instância, com TTL e janitor
//   - RedisStore: hash por chave no Redis, compare-and-set via WATCH/MULTI
//   - DynamoStore: item por chave no DynamoDB, escrita condicional por versão
//   - ChanPool: semáforo simples para limite de concorrência
//   - MemoryStatsStore / RedisStatsStore: contadores de resultado dos POSTs
package infra
