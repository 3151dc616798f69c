package api

import (
	"net/http/httptest"
	"testing"
)

func TestBearerToken(t *testing.T) {
	cases := map[string]string{
		"":                 "",
		"Bearer abc":       "abc",
		"bearer abc":       "abc",
		"BEARER abc":       "abc",
		"Bearer  abc ":     "abc",
		"Basic dXNlcjpwdw": "",
		"Bearer":           "",
	}
	for header, want := range cases {
		r := httptest.NewRequest("GET", "/", nil)
		if header != "" {
			r.Header.Set("Authorization", header)
		}
		if got := bearerToken(r); got != want {
			t.Fatalf("bearerToken(%q) = %q, want %q", header, got, want)
		}
	}
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "198.51.100.7:4711"
	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	r.Header.Set("X-Real-IP", "203.0.113.10")

	// Proxy headers are ignored unless explicitly trusted.
	if got := clientIP(r, false); got != "198.51.100.7" {
		t.Fatalf("untrusted: got %q", got)
	}
	if got := clientIP(r, true); got != "203.0.113.9" {
		t.Fatalf("trusted XFF: got %q", got)
	}

	r.Header.Del("X-Forwarded-For")
	if got := clientIP(r, true); got != "203.0.113.10" {
		t.Fatalf("trusted X-Real-IP: got %q", got)
	}

	r.Header.Set("X-Forwarded-For", "not-an-ip")
	if got := clientIP(r, true); got != "203.0.113.10" {
		t.Fatalf("garbage XFF should fall through, got %q", got)
	}
}

func TestTrimPtr(t *testing.T) {
	if trimPtr(nil) != nil {
		t.Fatalf("nil in, nil out")
	}
	empty := "   "
	if trimPtr(&empty) != nil {
		t.Fatalf("blank string should collapse to nil")
	}
	v := " hello "
	got := trimPtr(&v)
	if got == nil || *got != "hello" {
		t.Fatalf("expected trimmed value, got %v", got)
	}
}
