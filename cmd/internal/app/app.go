// Package app wires the dealerdesk server runtime: config, logging, the
// database pool, dealer auth routes, and background maintenance.
package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"dealerdesk/cmd/dealer"
	"dealerdesk/cmd/internal/auth/api"
	"dealerdesk/cmd/internal/auth/session"
	"dealerdesk/cmd/internal/metrics"
	"dealerdesk/cmd/security/password"
	"dealerdesk/cmd/security/token"
)

// App is the dealerdesk server runtime. It owns the HTTP server, the
// database pool, and the expired-session sweeper.
type App struct {
	cfg Config
	log Logger

	dbPool    *pgxpool.Pool
	dbEnabled bool

	sessions *session.Service
	auth     *api.Handler
	promReg  *prometheus.Registry
}

// New constructs a fully wired App instance from config and logger.
func New(cfg Config, log Logger) (*App, error) {
	if log == nil {
		log = NewLogger(cfg.LogLevel)
	}

	hasher, err := token.NewHasher(cfg.TokenHMACKey)
	if err != nil {
		return nil, err
	}

	sessCfg := session.DefaultConfig()
	sessCfg.JWTSecret = cfg.JWTSecret
	sessCfg.RefreshHMACKey = cfg.TokenHMACKey
	if cfg.AccessTokenTTL > 0 {
		sessCfg.AccessTokenTTL = cfg.AccessTokenTTL
	}
	if cfg.RefreshTTL > 0 {
		sessCfg.RefreshTTL = cfg.RefreshTTL
	}
	if err := sessCfg.Validate(); err != nil {
		return nil, err
	}

	tokens, err := session.NewJWTManager(sessCfg)
	if err != nil {
		return nil, err
	}

	var (
		dbPool       *pgxpool.Pool
		dealerStore  dealer.Store
		sessionStore session.Store
	)

	if cfg.DatabaseURL == "" {
		log.Info("db.disabled.inmemory_store")
		dealerStore = dealer.NewMemoryStore()
		sessionStore = session.NewMemoryStore()
	} else {
		ctx := context.Background()

		if cfg.AutoMigrate {
			if err := MigrateUp(log, cfg.DatabaseURL); err != nil {
				return nil, err
			}
		}

		dbPool, err = NewDBPool(ctx, cfg)
		if err != nil {
			return nil, err
		}
		log.Info("db.enabled.postgres_store")

		pgDealers, err := dealer.NewPostgresStore(dbPool)
		if err != nil {
			dbPool.Close()
			return nil, err
		}
		dealerStore = pgDealers
		sessionStore = session.NewPostgresStore(dbPool)
	}

	sessions := session.NewService(sessCfg, sessionStore, tokens, hasher)

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	rec := metrics.NewCollector(promReg)

	apiCfg := api.DefaultConfig()
	apiCfg.TrustProxy = cfg.TrustProxy
	apiCfg.LoginRatePerSec = cfg.LoginRatePerSec
	apiCfg.LoginRateBurst = cfg.LoginRateBurst
	apiCfg.LockoutMaxFailures = cfg.LockoutMaxFailures
	apiCfg.LockoutWindow = cfg.LockoutWindow

	auth := api.NewHandler(
		log,
		apiCfg,
		dealerStore,
		sessions,
		password.DefaultConfig(),
		rec,
		api.NewAuditor(log, dbPool),
	)

	return &App{
		cfg:       cfg,
		log:       log,
		dbPool:    dbPool,
		dbEnabled: dbPool != nil,
		sessions:  sessions,
		auth:      auth,
		promReg:   promReg,
	}, nil
}

// Run starts the HTTP server and blocks until context cancellation or fatal
// server error.
func (a *App) Run(ctx context.Context) error {
	router := newRouter(a.log, a.cfg, a.dbPool, a.dbEnabled, a.auth, a.promReg)

	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           WithRequestLogging(router, a.log),
		ReadHeaderTimeout: nonZeroDuration(a.cfg.ReadHeaderTimeout, 5*time.Second),
		ReadTimeout:       nonZeroDuration(a.cfg.ReadTimeout, 15*time.Second),
		WriteTimeout:      nonZeroDuration(a.cfg.WriteTimeout, 15*time.Second),
		IdleTimeout:       nonZeroDuration(a.cfg.IdleTimeout, 60*time.Second),
		MaxHeaderBytes:    nonZeroInt(a.cfg.MaxHeaderBytes, 1<<20),
	}

	a.log.Info("server.start", "addr", a.cfg.HTTPAddr, "db_enabled", a.dbEnabled)

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	sweepDone := a.startSweeper(sweepCtx)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.log.Info("server.stop", "reason", "context_done")
	case err := <-errCh:
		a.log.Error("server.fail", "err", err)
		runErr = err
	}

	stopSweep()
	<-sweepDone

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error("server.shutdown.fail", "err", err)
		if runErr == nil {
			runErr = err
		}
	}

	if a.dbPool != nil {
		a.dbPool.Close()
	}

	a.log.Info("server.stopped")
	return runErr
}

// startSweeper deletes expired sessions on a fixed interval so the sessions
// table does not grow without bound. Returns a channel closed when the
// sweeper exits.
func (a *App) startSweeper(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})

	if a.cfg.SessionSweepInterval <= 0 {
		close(done)
		return done
	}

	go func() {
		defer close(done)

		t := time.NewTicker(a.cfg.SessionSweepInterval)
		defer t.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				n, err := a.sessions.SweepExpired(ctx, time.Now().UTC())
				if err != nil {
					if !errors.Is(err, context.Canceled) {
						a.log.Error("session.sweep.fail", "err", err)
					}
					continue
				}
				if n > 0 {
					a.log.Info("session.sweep", "deleted", n)
				}
			}
		}
	}()

	return done
}

func nonZeroDuration(v, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return v
}

func nonZeroInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
