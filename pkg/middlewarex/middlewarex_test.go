package middlewarex_test

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"geo_feedback/pkg/contextx"
	"geo_feedback/pkg/logx"
	"geo_feedback/pkg/middlewarex"
)

func chain(h http.Handler) http.Handler {
	return middlewarex.TraceID(middlewarex.Logger(
		middlewarex.Logging(logx.NewSensitiveDataMasker(), 0)(middlewarex.Recovery(h)),
	))
}

func serve(ctx context.Context, h http.Handler, r *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r.WithContext(ctx))
	return w
}

func TestTraceIDIsEchoedAndGenerated(t *testing.T) {
	rq := require.New(t)

	var seen contextx.TraceID
	h := chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = contextx.TraceIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	r := httptest.NewRequest(http.MethodGet, "/v1/markets", http.NoBody)
	r.Header.Set("X-Trace-Id", "trace-1")
	w := serve(context.Background(), h, r)
	rq.Equal("trace-1", w.Header().Get("X-Trace-Id"))
	rq.Equal(contextx.TraceID("trace-1"), seen)

	w = serve(context.Background(), h, httptest.NewRequest(http.MethodGet, "/", http.NoBody))
	rq.NotEmpty(w.Header().Get("X-Trace-Id"))
	rq.Equal(w.Header().Get("X-Trace-Id"), seen.String())
}

func TestRecoveryRepliesWithJSON(t *testing.T) {
	rq := require.New(t)

	h := chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	r := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	r.Header.Set("X-Trace-Id", "trace-2")
	w := serve(context.Background(), h, r)

	rq.Equal(http.StatusInternalServerError, w.Code)
	rq.JSONEq(`{"code":"InternalServerError","message":"internal error","supportId":"trace-2"}`, w.Body.String())
}

func TestLoggingMasksPasswords(t *testing.T) {
	rq := require.New(t)

	var logs bytes.Buffer
	ctx := contextx.WithLogger(context.Background(), slog.New(slog.NewTextHandler(&logs, nil)))

	h := chain(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"outcome":"created"}`))
	}))

	body := `{"nickname":"anna","password":"secret","rank":5}`
	serve(ctx, h, httptest.NewRequest(http.MethodPost, "/v1/markets/1/comments", strings.NewReader(body)))

	out := logs.String()
	rq.Contains(out, "response-status=200")
	rq.Contains(out, "[MASKED]")
	rq.Contains(out, `\"outcome\":\"created\"`)
	rq.NotContains(out, "secret")
	rq.NotContains(out, "anna")
}
