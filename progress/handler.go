package progress

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"progress-sync/progress/application"
	"progress-sync/progress/domain"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// Path é a rota do endpoint de sincronização.
	Path = "/progress"

	DefaultMaxBodyBytes int64 = 64 << 10
)

// RateChecker decide se um POST de uma origem pode seguir.
// application.RateLimiter satisfaz esta interface.
type RateChecker interface {
	CheckAndRecord(ctx context.Context, key domain.Key) (domain.Decision, error)
}

type Options struct {
	Service      application.SyncService
	Limiter      RateChecker
	Stats        domain.StatsStore
	KeyFn        KeyFunc
	Logger       *zap.Logger
	MaxBodyBytes int64
	// Health é consultado pelo /healthz quando o backend sabe se verificar.
	Health domain.Pinger
	Now    func() time.Time
}

type Handler struct {
	opts Options
	// amostra os logs de bloqueio: tráfego abusivo não pode inundar o log
	denyLog *rate.Sometimes
}

func NewHandler(opts Options) *Handler {
	if opts.KeyFn == nil {
		opts.KeyFn = DefaultKeyFunc()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Handler{
		opts:    opts,
		denyLog: &rate.Sometimes{Interval: time.Second},
	}
}

// Register liga as rotas no mux. Métodos não registrados recebem 405 do próprio mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET "+Path, h.get)
	mux.HandleFunc("POST "+Path, h.post)
	mux.HandleFunc("GET /healthz", h.healthz)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	log := LoggerFrom(r.Context(), h.opts.Logger)

	snap, err := h.opts.Service.Read(r.Context())
	if err != nil {
		log.Error("progress read failed", zap.String("step", "load"), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	w.Header().Set("ETag", snap.ETag)
	w.Header().Set("Cache-Control", "no-store")

	if r.Header.Get("If-None-Match") == snap.ETag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	writeJSON(w, http.StatusOK, snap.State)
}

func (h *Handler) post(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := LoggerFrom(ctx, h.opts.Logger)
	key := domain.Key(h.opts.KeyFn(r))

	outcome := domain.OutcomeError
	defer func() { h.record(ctx, log, key, outcome, r) }()

	w.Header().Set("Cache-Control", "no-store")

	if h.opts.Limiter != nil {
		dec, err := h.opts.Limiter.CheckAndRecord(ctx, key)
		if err != nil {
			log.Error("progress update failed", zap.String("step", "ratelimit"), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if !dec.Allowed {
			outcome = domain.OutcomeRateLimited
			secs := dec.RetryAfterSeconds()
			h.denyLog.Do(func() {
				log.Warn("progress update rate limited",
					zap.String("key", string(key)),
					zap.Int("retry_after", secs),
				)
			})
			w.Header().Set("Retry-After", formatInt(secs))
			writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "too many requests", RetryAfter: secs})
			return
		}
	}

	// a partir daqui o slot de rate limit já foi consumido, mesmo se o corpo for lixo
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.opts.MaxBodyBytes))
	if err != nil {
		outcome = domain.OutcomeInvalid
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusBadRequest, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	patch, err := application.ParsePatch(body)
	if err != nil {
		outcome = domain.OutcomeInvalid
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			log.Debug("progress payload rejected", zap.Error(err))
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid payload", Details: verr.Fields})
			return
		}
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if patch.Empty() {
		// ainda grava: materializa o estado padrão se não houver registro
		log.Debug("progress update carries no known fields")
	}

	snap, err := h.opts.Service.Update(ctx, patch)
	if err != nil {
		if errors.Is(err, domain.ErrVersionConflict) {
			outcome = domain.OutcomeConflict
			writeError(w, http.StatusConflict, "conflict")
			return
		}
		log.Error("progress update failed", zap.String("step", "save"), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	outcome = domain.OutcomeAccepted
	w.Header().Set("ETag", snap.ETag)
	writeJSON(w, http.StatusOK, updateBody{Success: true, Data: snap.State})
}

func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	if h.opts.Health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.opts.Health.Ping(ctx); err != nil {
			LoggerFrom(r.Context(), h.opts.Logger).Warn("health check failed", zap.Error(err))
			writeError(w, http.StatusServiceUnavailable, "store unavailable")
			return
		}
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, "ok\n")
}

func (h *Handler) record(ctx context.Context, log *zap.Logger, key domain.Key, outcome domain.Outcome, r *http.Request) {
	if h.opts.Stats == nil {
		return
	}
	err := h.opts.Stats.Record(ctx, domain.StatsEvent{
		Key:     key,
		Outcome: outcome,
		Method:  r.Method,
		Path:    r.URL.Path,
		At:      h.opts.Now(),
	})
	if err != nil {
		log.Warn("stats record failed", zap.Error(err))
	}
}
