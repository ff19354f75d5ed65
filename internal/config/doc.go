// Package config carrega a configuração do serviço a partir de variáveis de
// ambiente (e de um .env opcional), com defaults declarados nas tags `default`.
//
// As chaves de ambiente seguem o caminho mapstructure: store.redis_url vira
// STORE_REDIS_URL. REDIS_URL e KV_URL também alimentam store.redis_url.
package config
