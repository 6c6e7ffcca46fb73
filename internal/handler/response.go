// Package handler provides the HTTP layer of the Connectify user API.
package handler

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/connectify/user-api/internal/domain"
	"github.com/connectify/user-api/internal/service"
	"github.com/connectify/user-api/internal/validate"
)

// writeJSON writes a JSON response body with the given status.
func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError writes a single-message error body.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeFieldErrors writes a field-keyed validation error body.
func writeFieldErrors(w http.ResponseWriter, errs validate.FieldErrors) {
	writeJSON(w, http.StatusBadRequest, map[string]any{"errors": errs})
}

// writeDomainError maps service and domain errors to HTTP responses.
// Unexpected errors are logged and surfaced as an opaque 500.
func writeDomainError(w http.ResponseWriter, logger zerolog.Logger, err error) {
	var fieldErrs validate.FieldErrors
	if errors.As(err, &fieldErrs) {
		writeFieldErrors(w, fieldErrs)
		return
	}

	switch {
	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrNoPendingRegistration),
		errors.Is(err, domain.ErrCodeExpired),
		errors.Is(err, domain.ErrInvalidCode),
		errors.Is(err, domain.ErrDuplicateUser),
		errors.Is(err, domain.ErrResetTokenInvalid),
		errors.Is(err, domain.ErrSelfFriendship),
		errors.Is(err, service.ErrUnsupportedImageType),
		errors.Is(err, service.ErrAvatarsDisabled):
		writeError(w, http.StatusBadRequest, err.Error())

	case errors.Is(err, domain.ErrLockedOut):
		writeError(w, http.StatusTooManyRequests, err.Error())

	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrFriendshipNotFound):
		writeError(w, http.StatusNotFound, err.Error())

	case errors.Is(err, domain.ErrFriendshipExists):
		writeError(w, http.StatusConflict, err.Error())

	default:
		logger.Error().Err(err).Msg("request failed")
		writeError(w, http.StatusInternalServerError, service.ErrInternalError.Error())
	}
}

// decodeBody decodes a JSON request body into dst.
func decodeBody(r *http.Request, dst any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// clientIP extracts the originating client address, preferring proxy
// headers over the socket peer.
func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if idx := strings.IndexByte(fwd, ','); idx >= 0 {
			return strings.TrimSpace(fwd[:idx])
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
