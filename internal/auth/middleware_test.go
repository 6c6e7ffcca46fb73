package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/connectify/user-api/internal/domain"
)

// stubUserRepository serves a single user by ID, or reports not found.
type stubUserRepository struct {
	user *domain.User
}

func (s *stubUserRepository) Create(context.Context, *domain.User) error { return nil }

func (s *stubUserRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	if s.user != nil && s.user.ID == id {
		return s.user, nil
	}
	return nil, domain.ErrUserNotFound
}

func (s *stubUserRepository) GetByUsername(context.Context, string) (*domain.User, error) {
	return nil, domain.ErrUserNotFound
}

func (s *stubUserRepository) GetByEmail(context.Context, string) (*domain.User, error) {
	return nil, domain.ErrUserNotFound
}

func (s *stubUserRepository) GetByResetToken(context.Context, string) (*domain.User, error) {
	return nil, domain.ErrUserNotFound
}

func (s *stubUserRepository) Update(context.Context, *domain.User) error { return nil }

func (s *stubUserRepository) ExistsByUsername(context.Context, string) (bool, error) {
	return false, nil
}

func (s *stubUserRepository) ExistsByEmail(context.Context, string) (bool, error) {
	return false, nil
}

func newMiddlewareFixture(user *domain.User) (*Middleware, *TokenManager) {
	tokens := NewTokenManager("test-secret", time.Hour)
	return NewMiddleware(tokens, &stubUserRepository{user: user}, zerolog.Nop()), tokens
}

func serveProtected(t *testing.T, mw *Middleware, token string) *httptest.ResponseRecorder {
	t.Helper()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := UserFromContext(r.Context()); !ok {
			t.Error("expected user in context")
		}
		w.WriteHeader(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/user/profile", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	mw.RequireAuth(next).ServeHTTP(rec, req)
	return rec
}

func TestMiddleware_ResolvesUser(t *testing.T) {
	ada := domain.NewUser("Ada", "Lovelace", "ada", "ada@example.com", domain.GenderFemale, "x")
	mw, tokens := newMiddlewareFixture(ada)

	token, err := tokens.Issue(ada.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rec := serveProtected(t, mw, token)
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
}

func TestMiddleware_MissingToken(t *testing.T) {
	mw, _ := newMiddlewareFixture(nil)

	rec := serveProtected(t, mw, "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestMiddleware_DeletedUser(t *testing.T) {
	mw, tokens := newMiddlewareFixture(nil)

	token, err := tokens.Issue(uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rec := serveProtected(t, mw, token)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for a vanished user, got %d", rec.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if body["error"] != ErrInvalidUser.Error() {
		t.Errorf("expected %q, got %q", ErrInvalidUser.Error(), body["error"])
	}
}
