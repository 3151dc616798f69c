package app

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestWithRequestLogging_AssignsRequestID(t *testing.T) {
	var buf bytes.Buffer
	log := newLoggerTo(&buf, "info")

	var seen string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestID(r.Context())
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	WithRequestLogging(inner, log).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	if seen == "" {
		t.Fatalf("request ID missing from context")
	}
	if got := rec.Header().Get("X-Request-Id"); got != seen {
		t.Fatalf("header %q does not match context id %q", got, seen)
	}
	if !strings.Contains(buf.String(), `"status":418`) {
		t.Fatalf("expected logged status 418, got: %s", buf.String())
	}
}

func TestWithRequestLogging_PropagatesInboundID(t *testing.T) {
	var buf bytes.Buffer
	log := newLoggerTo(&buf, "info")

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-Id", "req-abc-123")

	rec := httptest.NewRecorder()
	WithRequestLogging(inner, log).ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-Id"); got != "req-abc-123" {
		t.Fatalf("inbound request ID not preserved, got %q", got)
	}
	if !strings.Contains(buf.String(), "req-abc-123") {
		t.Fatalf("request ID missing from log: %s", buf.String())
	}
}
