// Package domain define contratos e tipos de domínio do endpoint de sincronização
// de progresso.
//
// Este pacote não depende de net/http nem de implementações concretas de storage.
// A intenção é permitir testes de unidade puros e desacoplar as regras (merge,
// validação, janela de rate limit) dos detalhes de infraestrutura.
package domain
