package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/connectify/user-api/internal/auth"
	"github.com/connectify/user-api/internal/cache/memory"
	"github.com/connectify/user-api/internal/config"
	"github.com/connectify/user-api/internal/domain"
	"github.com/connectify/user-api/internal/pkg/crypto"
	"github.com/connectify/user-api/internal/ratelimit"
)

const testPassword = `Secret1!pass`

func newLoginFixture(t *testing.T) (*LoginService, *MockUserRepository, *auth.TokenManager) {
	t.Helper()

	cache := memory.NewCache()
	t.Cleanup(cache.Stop)

	users := NewMockUserRepository()
	lockout := ratelimit.NewLockout(cache, config.LockoutConfig{
		Threshold: 5,
		Window:    15 * time.Minute,
		Duration:  15 * time.Minute,
	}, zerolog.Nop())
	tokens := auth.NewTokenManager("test-secret", time.Hour)

	return NewLoginService(users, lockout, tokens, zerolog.Nop()), users, tokens
}

func seedUser(t *testing.T, users *MockUserRepository) *domain.User {
	t.Helper()

	hash, err := crypto.HashPassword(testPassword, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	user := domain.NewUser("Ada", "Lovelace", "ada", "ada@example.com", domain.GenderFemale, hash)
	if err := users.Create(context.Background(), user); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return user
}

func TestLoginService_Success(t *testing.T) {
	svc, users, tokens := newLoginFixture(t)
	user := seedUser(t, users)
	ctx := context.Background()

	out, err := svc.Login(ctx, "203.0.113.1", "ada", testPassword)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.AccessToken == "" {
		t.Fatal("expected access token")
	}

	subject, err := tokens.Verify(out.AccessToken)
	if err != nil {
		t.Fatalf("issued token failed verification: %v", err)
	}
	if subject != user.ID {
		t.Errorf("token subject %s, want %s", subject, user.ID)
	}
}

func TestLoginService_IdentifierRouting(t *testing.T) {
	svc, users, _ := newLoginFixture(t)
	seedUser(t, users)
	ctx := context.Background()

	// Email shape routes to email lookup.
	if _, err := svc.Login(ctx, "203.0.113.2", "ada@example.com", testPassword); err != nil {
		t.Errorf("email login failed: %v", err)
	}

	// Plain identifier routes to username lookup.
	if _, err := svc.Login(ctx, "203.0.113.2", "ada", testPassword); err != nil {
		t.Errorf("username login failed: %v", err)
	}
}

func TestLoginService_IndistinguishableFailures(t *testing.T) {
	svc, users, _ := newLoginFixture(t)
	seedUser(t, users)
	ctx := context.Background()

	_, errNoUser := svc.Login(ctx, "203.0.113.3", "nobody", testPassword)
	_, errWrongPass := svc.Login(ctx, "203.0.113.3", "ada", "Wrong1!pass")

	if !errors.Is(errNoUser, domain.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for unknown user, got %v", errNoUser)
	}
	if !errors.Is(errWrongPass, domain.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for wrong password, got %v", errWrongPass)
	}
	if errNoUser.Error() != errWrongPass.Error() {
		t.Error("unknown-user and wrong-password errors must be identical")
	}
}

func TestLoginService_LockoutAfterSixFailures(t *testing.T) {
	svc, users, _ := newLoginFixture(t)
	seedUser(t, users)
	ctx := context.Background()
	ip := "203.0.113.4"

	// Five failures stay below the threshold.
	for i := 1; i <= 5; i++ {
		_, err := svc.Login(ctx, ip, "ada", "Wrong1!pass")
		if !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("attempt %d: expected ErrInvalidCredentials, got %v", i, err)
		}
	}

	// The sixth failure locks the IP.
	_, err := svc.Login(ctx, ip, "ada", "Wrong1!pass")
	if !errors.Is(err, domain.ErrLockedOut) {
		t.Fatalf("expected ErrLockedOut on sixth failure, got %v", err)
	}

	// Even correct credentials are rejected while locked.
	_, err = svc.Login(ctx, ip, "ada", testPassword)
	if !errors.Is(err, domain.ErrLockedOut) {
		t.Errorf("expected ErrLockedOut with correct credentials, got %v", err)
	}
}

func TestLoginService_SuccessResetsFailureCount(t *testing.T) {
	svc, users, _ := newLoginFixture(t)
	seedUser(t, users)
	ctx := context.Background()
	ip := "203.0.113.5"

	for i := 0; i < 4; i++ {
		if _, err := svc.Login(ctx, ip, "ada", "Wrong1!pass"); !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if _, err := svc.Login(ctx, ip, "ada", testPassword); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// After a success the counter restarts, so five more failures are
	// needed before a lockout.
	for i := 1; i <= 5; i++ {
		_, err := svc.Login(ctx, ip, "ada", "Wrong1!pass")
		if !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("attempt %d after reset: expected ErrInvalidCredentials, got %v", i, err)
		}
	}
}

func TestLoginService_LockoutCountsUnknownUsers(t *testing.T) {
	svc, _, _ := newLoginFixture(t)
	ctx := context.Background()
	ip := "203.0.113.6"

	for i := 1; i <= 5; i++ {
		_, err := svc.Login(ctx, ip, "ghost", "Wrong1!pass")
		if !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("attempt %d: expected ErrInvalidCredentials, got %v", i, err)
		}
	}

	_, err := svc.Login(ctx, ip, "ghost", "Wrong1!pass")
	if !errors.Is(err, domain.ErrLockedOut) {
		t.Errorf("expected ErrLockedOut, got %v", err)
	}
}
