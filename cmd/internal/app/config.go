package app

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// Config contains all runtime configuration, parsed from environment
// variables. Secrets (JWT signing key, refresh-token HMAC key) stay here and
// are handed to the packages that need them; nothing below the app layer
// reads the environment.
type Config struct {
	HTTPAddr string `env:"DEALERDESK_HTTP_ADDR" envDefault:"0.0.0.0:8080"`
	LogLevel string `env:"DEALERDESK_LOG_LEVEL" envDefault:"info"`

	ReadHeaderTimeout time.Duration `env:"DEALERDESK_HTTP_READ_HEADER_TIMEOUT" envDefault:"5s"`
	ReadTimeout       time.Duration `env:"DEALERDESK_HTTP_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout      time.Duration `env:"DEALERDESK_HTTP_WRITE_TIMEOUT" envDefault:"15s"`
	IdleTimeout       time.Duration `env:"DEALERDESK_HTTP_IDLE_TIMEOUT" envDefault:"60s"`
	MaxHeaderBytes    int           `env:"DEALERDESK_HTTP_MAX_HEADER_BYTES" envDefault:"1048576"`

	DatabaseURL string `env:"DEALERDESK_DATABASE_URL"`
	DBMaxConns  int32  `env:"DEALERDESK_DB_MAX_CONNS" envDefault:"10"`
	DBMinConns  int32  `env:"DEALERDESK_DB_MIN_CONNS" envDefault:"0"`
	AutoMigrate bool   `env:"DEALERDESK_DB_AUTO_MIGRATE" envDefault:"true"`

	// If true, /readyz returns 503 unless a database is configured and
	// reachable.
	ReadinessRequireDB bool `env:"DEALERDESK_READINESS_REQUIRE_DB" envDefault:"false"`

	JWTSecret      string        `env:"DEALERDESK_JWT_SECRET"`
	TokenHMACKey   string        `env:"DEALERDESK_TOKEN_HMAC_KEY"`
	AccessTokenTTL time.Duration `env:"DEALERDESK_ACCESS_TOKEN_TTL" envDefault:"15m"`
	RefreshTTL     time.Duration `env:"DEALERDESK_REFRESH_TTL" envDefault:"720h"`

	TrustProxy         bool          `env:"DEALERDESK_TRUST_PROXY" envDefault:"false"`
	LoginRatePerSec    float64       `env:"DEALERDESK_LOGIN_RATE_PER_SEC" envDefault:"5"`
	LoginRateBurst     int           `env:"DEALERDESK_LOGIN_RATE_BURST" envDefault:"10"`
	LockoutMaxFailures int           `env:"DEALERDESK_LOGIN_LOCKOUT_MAX_FAILURES" envDefault:"10"`
	LockoutWindow      time.Duration `env:"DEALERDESK_LOGIN_LOCKOUT_WINDOW" envDefault:"15m"`

	// Interval between expired-session sweeps; zero disables the sweeper.
	SessionSweepInterval time.Duration `env:"DEALERDESK_SESSION_SWEEP_INTERVAL" envDefault:"1h"`
}

// LoadConfig parses Config from the process environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
