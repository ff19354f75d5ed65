package progress

import (
	"net/http"
	"time"

	"progress-sync/progress/application"
	"progress-sync/progress/infra"

	"go.uber.org/zap"
)

type ConcurrencyOptions struct {
	Max            int
	RejectStatus   int
	AcquireTimeout time.Duration
	Logger         *zap.Logger
}

// ConcurrencyMiddleware limita quantas requisições ficam em voo ao mesmo tempo.
// Max <= 0 desliga o limite.
func ConcurrencyMiddleware(opts ConcurrencyOptions) func(next http.Handler) http.Handler {
	if opts.Max <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if opts.RejectStatus == 0 {
		opts.RejectStatus = http.StatusServiceUnavailable
	}

	svc := application.ConcurrencyService{
		Pool:           infra.NewChanPool(opts.Max),
		AcquireTimeout: opts.AcquireTimeout,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			release, err := svc.Admit(r.Context())
			if err != nil {
				LoggerFrom(r.Context(), opts.Logger).Warn("request rejected",
					zap.Error(err),
					zap.Int("max", opts.Max),
					zap.Int("in_flight", svc.InFlight()),
				)
				w.Header().Set("Retry-After", "1")
				writeError(w, opts.RejectStatus, "server busy")
				return
			}
			defer release()

			next.ServeHTTP(w, r)
		})
	}
}
