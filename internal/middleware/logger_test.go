package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))

	var sawScoped bool
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawScoped = FromContext(r.Context(), nil) != nil
		w.WriteHeader(http.StatusTeapot)
	})

	t.Run("generates request id", func(t *testing.T) {
		buf.Reset()
		rec := httptest.NewRecorder()
		Logger(log, inner).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/rooms", nil))

		if rec.Header().Get(RequestIDHeader) == "" {
			t.Error("expected a request id header")
		}
		if !sawScoped {
			t.Error("handler should see a request-scoped logger")
		}
		out := buf.String()
		if !strings.Contains(out, "status=418") || !strings.Contains(out, "path=/v1/rooms") {
			t.Errorf("unexpected log line: %q", out)
		}
	})

	t.Run("reuses incoming request id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set(RequestIDHeader, "abc-123")
		Logger(log, inner).ServeHTTP(rec, req)

		if got := rec.Header().Get(RequestIDHeader); got != "abc-123" {
			t.Errorf("expected abc-123, got %q", got)
		}
	})
}

func TestFromContext_Fallback(t *testing.T) {
	fallback := slog.Default()
	if got := FromContext(httptest.NewRequest(http.MethodGet, "/", nil).Context(), fallback); got != fallback {
		t.Error("expected fallback logger outside a request")
	}
}
