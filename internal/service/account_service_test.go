package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/connectify/user-api/internal/domain"
	"github.com/connectify/user-api/internal/validate"
)

// MockBackend stores avatar objects in memory.
type MockBackend struct {
	objects map[string][]byte
}

func NewMockBackend() *MockBackend {
	return &MockBackend{objects: make(map[string][]byte)}
}

func (m *MockBackend) Store(_ context.Context, key string, reader io.Reader, _ int64, _ string) (string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	m.objects[key] = data
	return "https://cdn.test/" + key, nil
}

func (m *MockBackend) Delete(_ context.Context, key string) error {
	delete(m.objects, key)
	return nil
}

func newAccountFixture(t *testing.T) (*AccountService, *MockUserRepository, *MockBackend) {
	t.Helper()
	users := NewMockUserRepository()
	avatars := NewMockBackend()
	svc := NewAccountService(users, avatars, 4, zerolog.Nop())
	return svc, users, avatars
}

func TestAccountService_CreateAdmin(t *testing.T) {
	svc, users, _ := newAccountFixture(t)

	user, err := svc.CreateAdmin(context.Background(), CreateAdminInput{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Username:  "ada",
		Email:     "ada@example.com",
		Gender:    domain.Gender("female"),
		Password:  "Sup3r!pass",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !user.IsAdmin {
		t.Error("expected admin flag set")
	}
	if user.Gender != domain.GenderFemale {
		t.Errorf("expected gender female, got %q", user.Gender)
	}

	stored, err := users.GetByUsername(context.Background(), "ada")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !stored.IsAdmin {
		t.Error("expected persisted user to be admin")
	}
}

func TestAccountService_CreateAdminInvalidGender(t *testing.T) {
	svc, _, _ := newAccountFixture(t)

	_, err := svc.CreateAdmin(context.Background(), CreateAdminInput{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Username:  "ada",
		Email:     "ada@example.com",
		Gender:    domain.Gender("unknown"),
		Password:  "Sup3r!pass",
	})

	var fieldErrs validate.FieldErrors
	if !errors.As(err, &fieldErrs) {
		t.Fatalf("expected field errors, got %v", err)
	}
	if _, ok := fieldErrs["gender"]; !ok {
		t.Errorf("expected gender error, got %v", fieldErrs)
	}
}

func TestAccountService_CreateAdminShortPassword(t *testing.T) {
	svc, _, _ := newAccountFixture(t)

	_, err := svc.CreateAdmin(context.Background(), CreateAdminInput{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Username:  "ada",
		Email:     "ada@example.com",
		Gender:    domain.GenderFemale,
		Password:  "Ab1!xyz",
	})

	var fieldErrs validate.FieldErrors
	if !errors.As(err, &fieldErrs) {
		t.Fatalf("expected field errors, got %v", err)
	}
	if fieldErrs["password"] != "Must be at least 8 characters." {
		t.Errorf("expected length error, got %v", fieldErrs)
	}
}

func TestAccountService_CreateAdminDuplicate(t *testing.T) {
	svc, users, _ := newAccountFixture(t)
	ctx := context.Background()

	existing := domain.NewUser("Ada", "Lovelace", "ada", "ada@example.com", domain.GenderFemale, "x")
	_ = users.Create(ctx, existing)

	_, err := svc.CreateAdmin(ctx, CreateAdminInput{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Username:  "ada",
		Email:     "ada@example.com",
		Gender:    domain.GenderFemale,
		Password:  "Sup3r!pass",
	})
	if !errors.Is(err, domain.ErrDuplicateUser) {
		t.Errorf("expected ErrDuplicateUser, got %v", err)
	}
}

func TestAccountService_PromoteAdminIdempotent(t *testing.T) {
	svc, users, _ := newAccountFixture(t)
	ctx := context.Background()

	user := domain.NewUser("Grace", "Hopper", "grace", "grace@example.com", domain.GenderFemale, "x")
	_ = users.Create(ctx, user)

	promoted, err := svc.PromoteAdmin(ctx, "grace")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !promoted.IsAdmin {
		t.Error("expected admin flag set")
	}

	again, err := svc.PromoteAdmin(ctx, "grace")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !again.IsAdmin {
		t.Error("expected admin flag to persist")
	}
}

func TestAccountService_PromoteAdminUnknownUser(t *testing.T) {
	svc, _, _ := newAccountFixture(t)

	_, err := svc.PromoteAdmin(context.Background(), "nobody")
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestAccountService_UploadAvatar(t *testing.T) {
	svc, users, avatars := newAccountFixture(t)
	ctx := context.Background()

	user := domain.NewUser("Ada", "Lovelace", "ada", "ada@example.com", domain.GenderFemale, "x")
	_ = users.Create(ctx, user)

	url, err := svc.UploadAvatar(ctx, user.ID, bytes.NewReader([]byte("png-bytes")), 9, "image/png")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(url, "avatars/"+user.ID.String()) {
		t.Errorf("unexpected url %q", url)
	}

	updated, _ := users.GetByID(ctx, user.ID)
	if updated.AvatarURL != url {
		t.Errorf("expected avatar url recorded, got %q", updated.AvatarURL)
	}
	if _, ok := avatars.objects["avatars/"+user.ID.String()]; !ok {
		t.Error("expected object stored in backend")
	}
}

func TestAccountService_UploadAvatarRejectsContentType(t *testing.T) {
	svc, users, _ := newAccountFixture(t)
	ctx := context.Background()

	user := domain.NewUser("Ada", "Lovelace", "ada", "ada@example.com", domain.GenderFemale, "x")
	_ = users.Create(ctx, user)

	_, err := svc.UploadAvatar(ctx, user.ID, bytes.NewReader([]byte("gif")), 3, "image/gif")
	if !errors.Is(err, ErrUnsupportedImageType) {
		t.Errorf("expected ErrUnsupportedImageType, got %v", err)
	}
}

func TestAccountService_AvatarsDisabled(t *testing.T) {
	users := NewMockUserRepository()
	svc := NewAccountService(users, nil, 4, zerolog.Nop())
	ctx := context.Background()

	user := domain.NewUser("Ada", "Lovelace", "ada", "ada@example.com", domain.GenderFemale, "x")
	_ = users.Create(ctx, user)

	if _, err := svc.UploadAvatar(ctx, user.ID, bytes.NewReader(nil), 0, "image/png"); !errors.Is(err, ErrAvatarsDisabled) {
		t.Errorf("expected ErrAvatarsDisabled, got %v", err)
	}
	if err := svc.RemoveAvatar(ctx, user.ID); !errors.Is(err, ErrAvatarsDisabled) {
		t.Errorf("expected ErrAvatarsDisabled, got %v", err)
	}
}
