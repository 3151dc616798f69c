package app

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func memoryModeConfig() Config {
	return Config{
		HTTPAddr:     "127.0.0.1:0",
		LogLevel:     "error",
		JWTSecret:    "test-jwt-secret-0123456789abcdef0123",
		TokenHMACKey: "test-hmac-key-0123456789abcdef012345",
	}
}

func TestNew_MemoryMode(t *testing.T) {
	log := newLoggerTo(io.Discard, "error")

	a, err := New(memoryModeConfig(), log)
	require.NoError(t, err)
	require.False(t, a.dbEnabled)
	require.Nil(t, a.dbPool)
	require.NotNil(t, a.auth)
	require.NotNil(t, a.sessions)
}

func TestNew_RejectsWeakSecrets(t *testing.T) {
	log := newLoggerTo(io.Discard, "error")

	cfg := memoryModeConfig()
	cfg.TokenHMACKey = ""
	_, err := New(cfg, log)
	require.Error(t, err)

	cfg = memoryModeConfig()
	cfg.JWTSecret = "short"
	_, err = New(cfg, log)
	require.Error(t, err)
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	log := newLoggerTo(io.Discard, "error")

	a, err := New(memoryModeConfig(), log)
	require.NoError(t, err)

	router := newRouter(log, a.cfg, a.dbPool, a.dbEnabled, a.auth, a.promReg)

	for _, path := range []string{"/healthz", "/readyz", "/metrics"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestRouter_ReadyzRequiresDB(t *testing.T) {
	log := newLoggerTo(io.Discard, "error")

	cfg := memoryModeConfig()
	cfg.ReadinessRequireDB = true
	a, err := New(cfg, log)
	require.NoError(t, err)

	router := newRouter(log, a.cfg, a.dbPool, a.dbEnabled, a.auth, a.promReg)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
