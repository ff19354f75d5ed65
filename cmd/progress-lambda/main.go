package main

import (
	"context"
	"log"

	"progress-sync/internal/bootstrap"
	"progress-sync/internal/config"
	"progress-sync/internal/lambdahttp"
	"progress-sync/internal/logger"

	"github.com/aws/aws-lambda-go/lambda"
)

// Cada invocação é sem estado; o que sobrevive entre invocações do mesmo
// ambiente de execução é só o App montado aqui (conexões e, no fallback,
// a memória local da instância).
func main() {
	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logg, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer func() { _ = logg.Sync() }()

	app, err := bootstrap.New(context.Background(), cfg, logg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer func() { _ = app.Close() }()

	lambda.Start(lambdahttp.Adapter{Handler: app.Handler}.Handle)
}
