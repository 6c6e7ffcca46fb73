package handler

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/connectify/user-api/internal/config"
	"github.com/connectify/user-api/internal/domain"
	"github.com/connectify/user-api/internal/observability"
	"github.com/connectify/user-api/internal/service"
	"github.com/connectify/user-api/internal/session"
	"github.com/connectify/user-api/internal/validate"
)

// =============================================================================
// Auth Handler
// =============================================================================

// AuthHandler serves the signup, confirmation, login and password reset
// endpoints. The two-phase signup is tied to an anonymous session cookie;
// the confirm request must carry the cookie the signup response set.
type AuthHandler struct {
	registration *service.RegistrationService
	login        *service.LoginService
	resets       *service.PasswordResetService
	sessionCfg   config.SessionConfig
	metrics      *observability.Metrics
	logger       zerolog.Logger
}

// NewAuthHandler creates an auth handler. metrics may be nil.
func NewAuthHandler(
	registration *service.RegistrationService,
	login *service.LoginService,
	resets *service.PasswordResetService,
	sessionCfg config.SessionConfig,
	metrics *observability.Metrics,
	logger zerolog.Logger,
) *AuthHandler {
	return &AuthHandler{
		registration: registration,
		login:        login,
		resets:       resets,
		sessionCfg:   sessionCfg,
		metrics:      metrics,
		logger:       logger.With().Str("component", "auth_handler").Logger(),
	}
}

// Signup handles POST /auth/signup.
// Accepts the candidate fields, stores them against the caller's session
// and emails a confirmation code. No user row is created yet.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var input validate.SignupInput
	if err := decodeBody(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sessionID := h.ensureSession(w, r)

	output, err := h.registration.Signup(r.Context(), sessionID, input)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"message": "Confirmation code sent to " + output.Email,
	})
}

// Confirm handles POST /auth/signup/confirm.
// Checks the submitted code against the session's pending registration and
// creates the user on a match.
func (h *AuthHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Code int `json:"code"`
	}
	if err := decodeBody(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sessionID := h.readSession(r)

	output, err := h.registration.Confirm(r.Context(), sessionID, input.Code)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	h.metrics.SignupConfirmed()
	writeJSON(w, http.StatusCreated, output.User.Public())
}

// Login handles POST /auth/login.
// The identifier may be a username or an email.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input struct {
		UsernameOrEmail string `json:"username_or_email"`
		Password        string `json:"password"`
	}
	if err := decodeBody(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	output, err := h.login.Login(r.Context(), clientIP(r), input.UsernameOrEmail, input.Password)
	if err != nil {
		h.metrics.LoginAttempt("failure")
		if errors.Is(err, domain.ErrLockedOut) {
			h.metrics.LockoutRejected()
		}
		writeDomainError(w, h.logger, err)
		return
	}

	h.metrics.LoginAttempt("success")
	writeJSON(w, http.StatusOK, map[string]string{
		"access_token": output.AccessToken,
	})
}

// Forgot handles POST /auth/password/forgot.
// Responds identically whether or not the email is registered.
func (h *AuthHandler) Forgot(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email string `json:"email"`
	}
	if err := decodeBody(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.resets.Forgot(r.Context(), input.Email); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "If that email is registered, a reset link has been sent.",
	})
}

// Reset handles POST /auth/password/reset.
func (h *AuthHandler) Reset(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := decodeBody(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.resets.Reset(r.Context(), input.Token, input.Password); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Password has been reset.",
	})
}

// ensureSession returns the caller's session ID, minting a fresh one and
// setting the cookie when the request carries none.
func (h *AuthHandler) ensureSession(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie(h.sessionCfg.CookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	sessionID := session.NewSessionID()
	http.SetCookie(w, &http.Cookie{
		Name:     h.sessionCfg.CookieName,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   int(h.sessionCfg.TTL.Seconds()),
		HttpOnly: true,
		Secure:   h.sessionCfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return sessionID
}

// readSession returns the session ID from the request cookie, or "" when
// absent. An empty ID resolves to no pending registration downstream.
func (h *AuthHandler) readSession(r *http.Request) string {
	cookie, err := r.Cookie(h.sessionCfg.CookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}
