package progress

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRequestLogger_ReusesRequestID(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	var inner *zap.Logger
	h := RequestLogger(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inner = LoggerFrom(r.Context(), nil)
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("hi"))
	}))

	r := httptest.NewRequest(http.MethodGet, "http://example/progress", nil)
	r.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
	require.NotNil(t, inner)

	entries := logs.FilterMessage("request completed").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "abc-123", fields["request_id"])
	assert.Equal(t, int64(http.StatusTeapot), fields["status"])
	assert.Equal(t, int64(2), fields["bytes"])
	assert.Equal(t, "/progress", fields["path"])
}

func TestRequestLogger_GeneratesRequestID(t *testing.T) {
	h := RequestLogger(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	for _, incoming := range []string{"", strings.Repeat("x", 129)} {
		r := httptest.NewRequest(http.MethodGet, "http://example/", nil)
		if incoming != "" {
			r.Header.Set(RequestIDHeader, incoming)
		}
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)

		got := w.Header().Get(RequestIDHeader)
		assert.Len(t, got, 36, "expected a uuid, got %q", got)
	}
}

func TestLoggerFrom_Fallback(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "http://example/", nil)
	fallback := zap.NewExample()

	assert.Same(t, fallback, LoggerFrom(r.Context(), fallback))
	assert.NotNil(t, LoggerFrom(r.Context(), nil))
}

func TestHandler_RateLimitLogIsSampled(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	env := newTestEnv(t, func(o *Options) { o.Logger = zap.New(core) })

	env.post(`{}`, "6.6.6.6")
	for i := 0; i < 5; i++ {
		env.post(`{}`, "6.6.6.6")
	}

	assert.Equal(t, 1, logs.FilterMessage("progress update rate limited").Len())
}
