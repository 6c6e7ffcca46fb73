package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/connectify/user-api/internal/cache/memory"
	"github.com/connectify/user-api/internal/domain"
	"github.com/connectify/user-api/internal/pkg/crypto"
	"github.com/connectify/user-api/internal/session"
	"github.com/connectify/user-api/internal/validate"
)

func newRegistrationFixture(t *testing.T) (*RegistrationService, *MockUserRepository, *session.PendingStore, *recordingMailer) {
	t.Helper()

	cache := memory.NewCache()
	t.Cleanup(cache.Stop)

	users := NewMockUserRepository()
	pending := session.NewPendingStore(cache, 30*time.Minute, 10*time.Minute, zerolog.Nop())
	mailer := &recordingMailer{}
	svc := NewRegistrationService(users, pending, validate.New(), mailer, 4, zerolog.Nop())

	return svc, users, pending, mailer
}

func signupInput() validate.SignupInput {
	return validate.SignupInput{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Username:  "ada",
		Email:     "ada@example.com",
		Gender:    "female",
		Password:  `Secret1!pass`,
		Confirm:   `Secret1!pass`,
	}
}

func TestRegistrationService_SignupStoresPendingAndMailsCode(t *testing.T) {
	svc, users, pending, mailer := newRegistrationFixture(t)
	ctx := context.Background()
	sessionID := session.NewSessionID()

	out, err := svc.Signup(ctx, sessionID, signupInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Email != "ada@example.com" {
		t.Errorf("unexpected output: %+v", out)
	}

	// No user exists yet.
	if exists, _ := users.ExistsByUsername(ctx, "ada"); exists {
		t.Error("signup must not create a user before confirmation")
	}

	stored, err := pending.Get(ctx, sessionID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored.Code < 100000 || stored.Code > 999999 {
		t.Errorf("code %d outside six-digit range", stored.Code)
	}
	if len(mailer.confirmTo) != 1 || mailer.confirmTo[0] != "ada@example.com" {
		t.Errorf("expected one confirmation email to ada@example.com, got %v", mailer.confirmTo)
	}
	if mailer.confirmCode != stored.Code {
		t.Errorf("mailed code %d does not match stored code %d", mailer.confirmCode, stored.Code)
	}
}

func TestRegistrationService_SignupValidationDoesNotTouchState(t *testing.T) {
	svc, _, pending, mailer := newRegistrationFixture(t)
	ctx := context.Background()
	sessionID := session.NewSessionID()

	input := signupInput()
	input.Password = "weakpassword"
	input.Confirm = "weakpassword"

	_, err := svc.Signup(ctx, sessionID, input)
	var fieldErrs validate.FieldErrors
	if !errors.As(err, &fieldErrs) {
		t.Fatalf("expected field errors, got %v", err)
	}
	if _, ok := fieldErrs["password"]; !ok {
		t.Errorf("expected password error, got %v", fieldErrs)
	}

	if _, err := pending.Get(ctx, sessionID); !errors.Is(err, domain.ErrNoPendingRegistration) {
		t.Error("validation failure must not store a pending registration")
	}
	if len(mailer.confirmTo) != 0 {
		t.Error("validation failure must not send mail")
	}
}

func TestRegistrationService_SignupRejectsTakenIdentity(t *testing.T) {
	svc, users, _, _ := newRegistrationFixture(t)
	ctx := context.Background()

	existing := domain.NewUser("Grace", "Hopper", "ada", "grace@example.com", domain.GenderFemale, "x")
	if err := users.Create(ctx, existing); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := svc.Signup(ctx, session.NewSessionID(), signupInput())
	var fieldErrs validate.FieldErrors
	if !errors.As(err, &fieldErrs) {
		t.Fatalf("expected field errors, got %v", err)
	}
	if fieldErrs["username"] != "This username already taken" {
		t.Errorf("unexpected username error: %q", fieldErrs["username"])
	}
}

func TestRegistrationService_ConfirmCreatesUser(t *testing.T) {
	svc, users, pending, _ := newRegistrationFixture(t)
	ctx := context.Background()
	sessionID := session.NewSessionID()

	if _, err := svc.Signup(ctx, sessionID, signupInput()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stored, _ := pending.Get(ctx, sessionID)

	out, err := svc.Confirm(ctx, sessionID, stored.Code)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	user := out.User
	if user.Username != "ada" || user.Email != "ada@example.com" {
		t.Errorf("unexpected user: %+v", user)
	}
	if user.PasswordHash == `Secret1!pass` {
		t.Error("stored password must not equal the plaintext")
	}
	if !crypto.VerifyPassword(user.PasswordHash, `Secret1!pass`) {
		t.Error("stored hash must verify against the original plaintext")
	}

	if _, err := users.GetByUsername(ctx, "ada"); err != nil {
		t.Errorf("expected user to be persisted: %v", err)
	}
}

func TestRegistrationService_ConfirmWrongCodeLeavesPending(t *testing.T) {
	svc, _, pending, _ := newRegistrationFixture(t)
	ctx := context.Background()
	sessionID := session.NewSessionID()

	if _, err := svc.Signup(ctx, sessionID, signupInput()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stored, _ := pending.Get(ctx, sessionID)

	wrong := stored.Code + 1
	if wrong > 999999 {
		wrong = 100000
	}

	_, err := svc.Confirm(ctx, sessionID, wrong)
	if !errors.Is(err, domain.ErrInvalidCode) {
		t.Fatalf("expected ErrInvalidCode, got %v", err)
	}

	// The pending registration survives; the correct code still works.
	if _, err := svc.Confirm(ctx, sessionID, stored.Code); err != nil {
		t.Errorf("retry with correct code failed: %v", err)
	}
}

func TestRegistrationService_ConfirmConsumesExactlyOnce(t *testing.T) {
	svc, _, pending, _ := newRegistrationFixture(t)
	ctx := context.Background()
	sessionID := session.NewSessionID()

	if _, err := svc.Signup(ctx, sessionID, signupInput()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stored, _ := pending.Get(ctx, sessionID)

	if _, err := svc.Confirm(ctx, sessionID, stored.Code); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := svc.Confirm(ctx, sessionID, stored.Code)
	if !errors.Is(err, domain.ErrNoPendingRegistration) {
		t.Errorf("expected ErrNoPendingRegistration on double confirm, got %v", err)
	}
}

func TestRegistrationService_ConfirmWithoutSignup(t *testing.T) {
	svc, _, _, _ := newRegistrationFixture(t)

	_, err := svc.Confirm(context.Background(), session.NewSessionID(), 123456)
	if !errors.Is(err, domain.ErrNoPendingRegistration) {
		t.Errorf("expected ErrNoPendingRegistration, got %v", err)
	}
}

func TestRegistrationService_ResubmitReplacesPending(t *testing.T) {
	svc, _, pending, _ := newRegistrationFixture(t)
	ctx := context.Background()
	sessionID := session.NewSessionID()

	if _, err := svc.Signup(ctx, sessionID, signupInput()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	first, _ := pending.Get(ctx, sessionID)

	second := signupInput()
	second.Username = "ada2"
	second.Email = "ada2@example.com"
	if _, err := svc.Signup(ctx, sessionID, second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored, _ := pending.Get(ctx, sessionID)
	if stored.Username != "ada2" {
		t.Errorf("expected latest signup to win, got %+v", stored)
	}

	// Only the latest code confirms. The first code may collide by chance;
	// skip the negative check in that case.
	if first.Code != stored.Code {
		if _, err := svc.Confirm(ctx, sessionID, first.Code); !errors.Is(err, domain.ErrInvalidCode) {
			t.Errorf("expected stale code to be rejected, got %v", err)
		}
	}
}
