package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"dealerdesk/cmd/dealer"
	"dealerdesk/cmd/internal/auth/session"
	"dealerdesk/cmd/internal/metrics"
	"dealerdesk/cmd/security/password"
)

// Handler wires the dealer auth endpoints to the dealer store and session
// service.
type Handler struct {
	log *slog.Logger
	cfg Config

	dealers  dealer.Store
	sessions *session.Service
	pw       password.Config

	metrics metrics.Recorder
	audit   *Auditor
	limiter *ipRateLimiter
}

// NewHandler constructs the auth handler. rec and audit may be nil; they
// default to no-ops.
func NewHandler(log *slog.Logger, cfg Config, dealers dealer.Store, sessions *session.Service, pw password.Config, rec metrics.Recorder, audit *Auditor) *Handler {
	if log == nil {
		log = slog.Default()
	}
	if rec == nil {
		rec = metrics.Noop{}
	}
	if audit == nil {
		audit = NewAuditor(log, nil)
	}
	return &Handler{
		log:      log,
		cfg:      cfg,
		dealers:  dealers,
		sessions: sessions,
		pw:       pw,
		metrics:  rec,
		audit:    audit,
		limiter:  newIPRateLimiter(cfg.LoginRatePerSec, cfg.LoginRateBurst),
	}
}

// Routes returns the dealer auth router, mounted by the app at /.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Route("/auth/dealer", func(r chi.Router) {
		r.Post("/register", h.throttle(h.handleRegister))
		r.Post("/login", h.throttle(h.handleLogin))
		r.Post("/refresh", h.throttle(h.handleRefresh))
		r.Post("/logout", h.handleLogout)
		r.Get("/me", h.handleMe)
		r.Put("/profile", h.handleUpdateProfile)
	})
	return r
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeMissingFields, "invalid request body")
		return
	}

	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(req.Email)
	if name == "" || email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, codeMissingFields, "name, email and password are required")
		return
	}

	hash, err := h.pw.Hash(req.Password)
	if err != nil {
		switch {
		case errors.Is(err, password.ErrTooShort), errors.Is(err, password.ErrTooLong):
			writeError(w, http.StatusUnprocessableEntity, codeValidationError, "password does not meet policy")
		default:
			h.serverError(w, "auth.register.hash.fail", err)
		}
		return
	}

	ctx := r.Context()
	now := time.Now().UTC()

	d, err := h.dealers.Create(ctx, dealer.CreateInput{
		Email:        email,
		Name:         name,
		Phone:        trimPtr(req.Phone),
		PasswordHash: hash,
		Now:          now,
	})
	if err != nil {
		switch {
		case dealer.IsConflict(err):
			writeError(w, http.StatusConflict, codeValidationError, "already registered")
		case dealer.IsInvalidInput(err):
			writeError(w, http.StatusBadRequest, codeMissingFields, "name, email and password are required")
		default:
			h.serverError(w, "auth.register.create.fail", err)
		}
		return
	}

	issued, err := h.sessions.Issue(ctx, now, d, h.requestContext(r))
	if err != nil {
		h.serverError(w, "auth.register.issue.fail", err)
		return
	}

	h.metrics.RecordRegistration()
	h.audit.registered(ctx, d.ID, issued.SessionID, clientIP(r, h.cfg.TrustProxy), r.UserAgent())

	writeJSON(w, http.StatusCreated, authResponse{
		Token:        issued.AccessToken,
		RefreshToken: issued.RefreshToken,
		Dealer:       toDealerResponse(d),
	})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeMissingFields, "invalid request body")
		return
	}

	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		h.metrics.RecordLogin(metrics.OutcomeMissingFields)
		writeError(w, http.StatusBadRequest, codeMissingFields, "email and password are required")
		return
	}

	ctx := r.Context()
	now := time.Now().UTC()
	ip := clientIP(r, h.cfg.TrustProxy)
	ua := r.UserAgent()
	norm := dealer.NormalizeEmail(email)

	if h.loginLockedOut(ctx, now, norm) {
		writeRateLimited(w, h.cfg.LockoutWindow)
		return
	}

	start := time.Now()
	defer func() {
		h.metrics.ObserveLoginDuration(time.Since(start).Seconds())
	}()

	d, err := dealer.VerifyCredentials(ctx, h.dealers, h.pw, email, req.Password)
	if err != nil {
		switch {
		case dealer.IsNotFound(err):
			h.metrics.RecordLogin(metrics.OutcomeNotFound)
			h.audit.loginFailed(ctx, nil, ip, ua, norm, "not_found")
			writeError(w, http.StatusNotFound, codeUserNotFound, "account not found")
		case dealer.IsBadCredentials(err):
			h.metrics.RecordLogin(metrics.OutcomeBadPassword)
			h.audit.loginFailed(ctx, nil, ip, ua, norm, "bad_password")
			writeError(w, http.StatusUnauthorized, codeInvalidCredentials, "invalid credentials")
		default:
			h.serverError(w, "auth.login.verify.fail", err)
		}
		return
	}

	issued, err := h.sessions.Issue(ctx, now, d, h.requestContext(r))
	if err != nil {
		h.serverError(w, "auth.login.issue.fail", err)
		return
	}

	h.metrics.RecordLogin(metrics.OutcomeSuccess)
	h.audit.loginSuccess(ctx, d.ID, issued.SessionID, ip, ua)

	writeJSON(w, http.StatusOK, authResponse{
		Token:        issued.AccessToken,
		RefreshToken: issued.RefreshToken,
		Dealer:       toDealerResponse(d),
	})
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeMissingFields, "invalid request body")
		return
	}
	if strings.TrimSpace(req.RefreshToken) == "" {
		writeError(w, http.StatusBadRequest, codeMissingFields, "refreshToken is required")
		return
	}

	ctx := r.Context()
	now := time.Now().UTC()
	ip := clientIP(r, h.cfg.TrustProxy)
	ua := r.UserAgent()

	res, err := h.sessions.RotateRefresh(ctx, now, req.RefreshToken, h.requestContext(r))
	if err != nil {
		switch {
		case errors.Is(err, session.ErrReuseDetected):
			h.metrics.RecordReuseDetected()
			h.audit.refreshReuse(ctx, ip, ua)
			writeError(w, http.StatusUnauthorized, codeInvalidCredentials, "Invalid refresh token")
		case errors.Is(err, session.ErrSessionNotFound),
			errors.Is(err, session.ErrSessionExpired),
			errors.Is(err, session.ErrSessionRevoked):
			writeError(w, http.StatusUnauthorized, codeInvalidCredentials, "Invalid refresh token")
		default:
			h.serverError(w, "auth.refresh.rotate.fail", err)
		}
		return
	}

	// The matched session is already spent; a dealer deleted out-of-band
	// surfaces here.
	d, err := h.dealers.GetByID(ctx, res.New.DealerID)
	if err != nil {
		if dealer.IsNotFound(err) {
			writeError(w, http.StatusNotFound, codeUserNotFound, "account not found")
			return
		}
		h.serverError(w, "auth.refresh.dealer.fail", err)
		return
	}

	accessToken, _, err := h.sessions.IssueAccessToken(d, now)
	if err != nil {
		h.serverError(w, "auth.refresh.token.fail", err)
		return
	}

	h.metrics.RecordRotation()
	h.audit.refreshSuccess(ctx, res.New.ID, ip, ua)

	writeJSON(w, http.StatusOK, authResponse{
		Token:        accessToken,
		RefreshToken: res.RefreshToken,
		Dealer:       toDealerResponse(d),
	})
}

// handleLogout always answers {success:true}: revocation must not leak
// whether the presented token was valid, present, or already revoked.
func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	var req logoutRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
			writeJSON(w, http.StatusOK, logoutResponse{Success: true})
			return
		}
	}

	if token := strings.TrimSpace(req.RefreshToken); token != "" {
		ctx := r.Context()
		now := time.Now().UTC()
		h.metrics.RecordLogout()
		if err := h.sessions.Logout(ctx, now, token); err != nil {
			// Still succeed: the client's goal is token disposal.
			h.log.Error("auth.logout.fail", "err", err)
		} else {
			h.audit.logout(ctx, clientIP(r, h.cfg.TrustProxy), r.UserAgent())
		}
	}

	writeJSON(w, http.StatusOK, logoutResponse{Success: true})
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.requireAuth(w, r)
	if !ok {
		return
	}

	d, err := h.dealers.GetByID(r.Context(), claims.DealerID)
	if err != nil {
		if dealer.IsNotFound(err) {
			writeError(w, http.StatusNotFound, codeUserNotFound, "account not found")
			return
		}
		h.serverError(w, "auth.me.fail", err)
		return
	}

	writeJSON(w, http.StatusOK, dealerEnvelope{Dealer: toDealerResponse(d)})
}

func (h *Handler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.requireAuth(w, r)
	if !ok {
		return
	}
	if claims.Role != dealer.RoleDealer {
		writeError(w, http.StatusForbidden, codeForbidden, "dealer account required")
		return
	}

	var req updateProfileRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeMissingFields, "invalid request body")
		return
	}

	name := trimPtr(req.Name)
	phone := trimPtr(req.Phone)
	if name == nil && phone == nil {
		writeError(w, http.StatusBadRequest, codeMissingFields, "name or phone is required")
		return
	}

	d, err := h.dealers.UpdateProfile(r.Context(), claims.DealerID, dealer.UpdateProfileInput{
		Name:  name,
		Phone: phone,
		Now:   time.Now().UTC(),
	})
	if err != nil {
		if dealer.IsNotFound(err) {
			writeError(w, http.StatusNotFound, codeUserNotFound, "account not found")
			return
		}
		h.serverError(w, "auth.profile.update.fail", err)
		return
	}

	writeJSON(w, http.StatusOK, dealerEnvelope{Dealer: toDealerResponse(d)})
}

// ---- helpers ----

func (h *Handler) requireAuth(w http.ResponseWriter, r *http.Request) (session.AccessClaims, bool) {
	token := bearerToken(r)
	if token == "" {
		writeError(w, http.StatusUnauthorized, codeNotAuthenticated, "missing bearer token")
		return session.AccessClaims{}, false
	}
	claims, err := h.sessions.VerifyAccessToken(token, time.Now().UTC())
	if err != nil {
		writeError(w, http.StatusUnauthorized, codeNotAuthenticated, "invalid token")
		return session.AccessClaims{}, false
	}
	return claims, true
}

func (h *Handler) requestContext(r *http.Request) session.RequestContext {
	return session.RequestContext{
		UserAgent: strings.TrimSpace(r.UserAgent()),
		IP:        clientIP(r, h.cfg.TrustProxy),
	}
}

// serverError hides internals behind a generic 500 and logs the cause.
func (h *Handler) serverError(w http.ResponseWriter, event string, err error) {
	h.log.Error(event, "err", err)
	writeError(w, http.StatusInternalServerError, codeServerError, "internal error")
}
