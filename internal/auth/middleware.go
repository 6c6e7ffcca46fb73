package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/connectify/user-api/internal/domain"
	"github.com/connectify/user-api/internal/repository"
)

type contextKey struct{}

// userKey stores the authenticated user in the request context.
var userKey = contextKey{}

// UserFromContext returns the authenticated user stored by RequireAuth.
func UserFromContext(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(userKey).(*domain.User)
	return user, ok
}

// Middleware authenticates requests with a bearer token and resolves the
// token's subject to a user. Token failures are 401s; a token whose user has
// since been deleted is a 400 with "User not found".
type Middleware struct {
	tokens *TokenManager
	users  repository.UserRepository
	logger zerolog.Logger
}

// NewMiddleware creates the authentication middleware.
func NewMiddleware(tokens *TokenManager, users repository.UserRepository, logger zerolog.Logger) *Middleware {
	return &Middleware{
		tokens: tokens,
		users:  users,
		logger: logger.With().Str("component", "auth").Logger(),
	}
}

// RequireAuth rejects unauthenticated requests and stores the resolved user
// in the request context for handlers downstream.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString, err := bearerToken(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}

		userID, err := m.tokens.Verify(tokenString)
		if err != nil {
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}

		user, err := m.users.GetByID(r.Context(), userID)
		if err != nil {
			if errors.Is(err, domain.ErrUserNotFound) {
				writeError(w, http.StatusBadRequest, ErrInvalidUser.Error())
				return
			}
			m.logger.Error().Err(err).Msg("failed to resolve token subject")
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		ctx := context.WithValue(r.Context(), userKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// bearerToken extracts the token from the Authorization header.
func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", ErrMissingToken
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", ErrTokenMalformed
	}

	return parts[1], nil
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
