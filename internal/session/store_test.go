package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/connectify/user-api/internal/cache/memory"
	"github.com/connectify/user-api/internal/domain"
)

func newTestStore(t *testing.T, ttl, codeTTL time.Duration) *PendingStore {
	t.Helper()
	cache := memory.NewCache()
	t.Cleanup(cache.Stop)
	return NewPendingStore(cache, ttl, codeTTL, zerolog.Nop())
}

func testPending() *domain.PendingRegistration {
	return &domain.PendingRegistration{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Username:  "ada",
		Email:     "ada@example.com",
		Gender:    domain.GenderFemale,
		Password:  "Secret1!pass",
		Code:      123456,
		CreatedAt: time.Now().UTC(),
	}
}

func TestPendingStore_PutAndGet(t *testing.T) {
	store := newTestStore(t, time.Minute, time.Minute)
	ctx := context.Background()
	sessionID := NewSessionID()

	if err := store.Put(ctx, sessionID, testPending()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := store.Get(ctx, sessionID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Username != "ada" || got.Code != 123456 {
		t.Errorf("unexpected pending registration: %+v", got)
	}

	code, err := store.Code(ctx, sessionID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if code != 123456 {
		t.Errorf("expected code 123456, got %d", code)
	}

	// Get does not consume.
	if _, err := store.Get(ctx, sessionID); err != nil {
		t.Errorf("expected pending to survive Get, got %v", err)
	}
}

func TestPendingStore_PutOverwrites(t *testing.T) {
	store := newTestStore(t, time.Minute, time.Minute)
	ctx := context.Background()
	sessionID := NewSessionID()

	if err := store.Put(ctx, sessionID, testPending()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second := testPending()
	second.Email = "ada2@example.com"
	second.Code = 654321
	if err := store.Put(ctx, sessionID, second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := store.Get(ctx, sessionID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Email != "ada2@example.com" {
		t.Errorf("expected latest submission to win, got %+v", got)
	}

	code, err := store.Code(ctx, sessionID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if code != 654321 {
		t.Errorf("expected latest code to win, got %d", code)
	}
}

func TestPendingStore_ConsumeClaimsOnce(t *testing.T) {
	store := newTestStore(t, time.Minute, time.Minute)
	ctx := context.Background()
	sessionID := NewSessionID()

	if err := store.Put(ctx, sessionID, testPending()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := store.Consume(ctx, sessionID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Username != "ada" {
		t.Errorf("unexpected pending registration: %+v", got)
	}

	// The claim removed both keys; only one caller can win it.
	if _, err := store.Consume(ctx, sessionID); !errors.Is(err, domain.ErrNoPendingRegistration) {
		t.Errorf("expected ErrNoPendingRegistration, got %v", err)
	}
	if _, err := store.Get(ctx, sessionID); !errors.Is(err, domain.ErrNoPendingRegistration) {
		t.Errorf("expected ErrNoPendingRegistration, got %v", err)
	}
	if _, err := store.Code(ctx, sessionID); !errors.Is(err, domain.ErrCodeExpired) {
		t.Errorf("expected ErrCodeExpired, got %v", err)
	}
}

func TestPendingStore_MissingSession(t *testing.T) {
	store := newTestStore(t, time.Minute, time.Minute)

	_, err := store.Get(context.Background(), NewSessionID())
	if !errors.Is(err, domain.ErrNoPendingRegistration) {
		t.Errorf("expected ErrNoPendingRegistration, got %v", err)
	}
}

func TestPendingStore_CodeExpiresBeforePending(t *testing.T) {
	store := newTestStore(t, time.Minute, 10*time.Millisecond)
	ctx := context.Background()
	sessionID := NewSessionID()

	if err := store.Put(ctx, sessionID, testPending()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	time.Sleep(20 * time.Millisecond)

	// The registration data survives its longer TTL.
	if _, err := store.Get(ctx, sessionID); err != nil {
		t.Errorf("expected pending to survive, got %v", err)
	}

	_, err := store.Code(ctx, sessionID)
	if !errors.Is(err, domain.ErrCodeExpired) {
		t.Errorf("expected ErrCodeExpired, got %v", err)
	}
}
