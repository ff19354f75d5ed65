// Package bootstrap monta o serviço a partir da configuração: escolhe o backend
// (uma única vez, na subida), cria stats, serviços e a árvore de http.Handler.
// É compartilhado pelo servidor HTTP e pela função Lambda.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"progress-sync/internal/config"
	"progress-sync/progress"
	"progress-sync/progress/application"
	"progress-sync/progress/domain"
	"progress-sync/progress/infra"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Backend é a estratégia de storage escolhida na subida.
type Backend struct {
	Name  string
	Store domain.Store
	// Redis fica preenchido só no backend redis (reaproveitado pelas stats).
	Redis redis.UniversalClient
	close func() error
}

func (b *Backend) Close() error {
	if b == nil || b.close == nil {
		return nil
	}
	return b.close()
}

// OpenStore escolhe o backend: credencial remota presente => remoto, senão memória.
//
// O fallback para memória é uma troca consciente de consistência por
// disponibilidade: cada instância passa a ter o seu próprio estado.
func OpenStore(ctx context.Context, cfg config.StoreConfig, logger *zap.Logger) (*Backend, error) {
	switch cfg.Backend() {
	case "redis":
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid STORE_REDIS_URL: %w", err)
		}
		rdb := redis.NewClient(opts)

		timeout := cfg.PingTimeout
		if timeout <= 0 {
			timeout = 2 * time.Second
		}
		pingCtx, cancel := context.WithTimeout(ctx, timeout)
		err = rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		return &Backend{
			Name:  "redis",
			Store: infra.NewRedisStore(rdb, infra.WithKeyPrefix(cfg.KeyPrefix)),
			Redis: rdb,
			close: rdb.Close,
		}, nil

	case "dynamodb":
		var loadOpts []func(*awsconfig.LoadOptions) error
		if cfg.DynamoRegion != "" {
			loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.DynamoRegion))
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
			if cfg.DynamoEndpoint != "" {
				o.BaseEndpoint = aws.String(cfg.DynamoEndpoint)
			}
		})
		return &Backend{
			Name:  "dynamodb",
			Store: infra.NewDynamoStore(client, cfg.DynamoTable),
		}, nil

	default:
		mem := infra.NewMemoryStore(infra.WithSweepEvery(cfg.SweepInterval))
		mem.StartJanitor(ctx)
		logger.Warn("no remote store credentials; using per-instance memory store",
			zap.Duration("sweep_interval", mem.SweepEvery()),
		)
		return &Backend{Name: "memory", Store: mem}, nil
	}
}

// App é o serviço montado.
type App struct {
	Handler http.Handler
	Backend *Backend
	Stats   domain.StatsStore
}

func (a *App) Close() error {
	if a == nil {
		return nil
	}
	return a.Backend.Close()
}

// New monta o App. O ctx controla goroutines de fundo (janitor da memória).
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if cfg == nil {
		return nil, errors.New("bootstrap: nil config")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	backend, err := OpenStore(ctx, cfg.Store, logger)
	if err != nil {
		return nil, err
	}

	stats := newStats(cfg.Stats, backend)

	var health domain.Pinger
	if p, ok := backend.Store.(domain.Pinger); ok {
		health = p
	}

	h := progress.NewHandler(progress.Options{
		Service: application.SyncService{
			Store:           backend.Store,
			Key:             cfg.Store.RecordKey,
			DetectConflicts: cfg.Sync.ConflictMode == config.ConflictDetect,
		},
		Limiter: application.RateLimiter{
			Store:  backend.Store,
			Window: application.DefaultWindow,
		},
		Stats:        stats,
		Logger:       logger,
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
		Health:       health,
	})

	mux := http.NewServeMux()
	h.Register(mux)

	root := http.Handler(mux)
	root = progress.ConcurrencyMiddleware(progress.ConcurrencyOptions{
		Max:            cfg.Server.ConcurrencyMax,
		AcquireTimeout: cfg.Server.ConcurrencyTimeout,
		Logger:         logger,
	})(root)
	root = progress.RequestLogger(logger)(root)

	logger.Info("progress service ready",
		zap.String("backend", backend.Name),
		zap.String("record_key", cfg.Store.RecordKey),
		zap.String("conflict_mode", cfg.Sync.ConflictMode),
		zap.Duration("rate_window", application.DefaultWindow),
		zap.Bool("stats", stats != nil),
		zap.Int("concurrency_max", cfg.Server.ConcurrencyMax),
	)

	return &App{Handler: root, Backend: backend, Stats: stats}, nil
}

func newStats(cfg config.StatsConfig, backend *Backend) domain.StatsStore {
	if !cfg.Enabled {
		return nil
	}
	if backend.Redis != nil {
		return infra.NewRedisStatsStore(
			backend.Redis,
			infra.WithStatsPrefix(cfg.Prefix),
			infra.WithStatsTTL(cfg.TTL),
			infra.WithStatsBucket(cfg.Bucket),
			infra.WithStatsTrackKeys(cfg.TrackKeys),
		)
	}
	return infra.NewMemoryStatsStore(infra.WithTrackKeys(cfg.TrackKeys))
}
