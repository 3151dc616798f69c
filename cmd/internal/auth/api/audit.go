package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Auditor appends auth events to the audit_log table. Best-effort: insert
// failures are logged, never surfaced to the request. A nil pool (memory
// mode) turns every call into a no-op.
type Auditor struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

// NewAuditor creates an Auditor. pool may be nil.
func NewAuditor(log *slog.Logger, pool *pgxpool.Pool) *Auditor {
	if log == nil {
		log = slog.Default()
	}
	return &Auditor{log: log, pool: pool}
}

func (a *Auditor) registered(ctx context.Context, dealerID, sessionID, ip, ua string) {
	a.insert(ctx, "auth.register", &dealerID, &sessionID, ip, ua, nil)
}

func (a *Auditor) loginSuccess(ctx context.Context, dealerID, sessionID, ip, ua string) {
	a.insert(ctx, "auth.login.success", &dealerID, &sessionID, ip, ua, nil)
}

func (a *Auditor) loginFailed(ctx context.Context, dealerID *string, ip, ua, email, reason string) {
	a.insert(ctx, "auth.login.failed", dealerID, nil, ip, ua, map[string]any{
		"email":  email,
		"reason": reason,
	})
}

func (a *Auditor) refreshSuccess(ctx context.Context, sessionID, ip, ua string) {
	a.insert(ctx, "auth.refresh.success", nil, &sessionID, ip, ua, nil)
}

func (a *Auditor) refreshReuse(ctx context.Context, ip, ua string) {
	a.insert(ctx, "auth.refresh.reuse_detected", nil, nil, ip, ua, nil)
}

func (a *Auditor) logout(ctx context.Context, ip, ua string) {
	a.insert(ctx, "auth.logout", nil, nil, ip, ua, nil)
}

func (a *Auditor) insert(ctx context.Context, action string, dealerID, sessionID *string, ip, ua string, meta map[string]any) {
	if a == nil || a.pool == nil {
		return
	}

	var metaVal *string
	if len(meta) > 0 {
		if b, err := json.Marshal(meta); err == nil {
			s := string(b)
			metaVal = &s
		}
	}

	_, err := a.pool.Exec(ctx, `
		INSERT INTO audit_log (
			action, dealer_id, session_id, created_at, ip, user_agent, meta
		) VALUES ($1, $2, $3, now(), $4, $5, $6::jsonb)
	`, action, dealerID, sessionID, trimOrNil(ip), trimOrNil(ua), metaVal)
	if err != nil {
		a.log.Error("auth.audit.insert.fail", "err", err, "action", action)
	}
}

// countLoginFailures returns how many auth.login.failed events the account
// accumulated since the cutoff. Memory mode (nil pool) always reports zero.
func (a *Auditor) countLoginFailures(ctx context.Context, emailNorm string, since time.Time) (int, error) {
	if a == nil || a.pool == nil || emailNorm == "" {
		return 0, nil
	}

	var n int
	err := a.pool.QueryRow(ctx, `
		SELECT count(*)
		FROM audit_log
		WHERE action = 'auth.login.failed'
		  AND meta->>'email' = $1
		  AND created_at >= $2
	`, emailNorm, since).Scan(&n)
	return n, err
}

func trimOrNil(s string) any {
	v := strings.TrimSpace(s)
	if v == "" {
		return nil
	}
	return v
}
