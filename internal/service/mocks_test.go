package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/connectify/user-api/internal/domain"
)

// MockUserRepository is an in-memory implementation of
// repository.UserRepository for service tests.
type MockUserRepository struct {
	users     map[uuid.UUID]*domain.User
	createErr error
	getErr    error
	updateErr error
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{users: make(map[uuid.UUID]*domain.User)}
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	for _, u := range m.users {
		if u.Username == user.Username || u.Email == user.Email {
			return domain.ErrDuplicateUser
		}
	}
	copied := *user
	m.users[user.ID] = &copied
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if u, ok := m.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, u := range m.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, u := range m.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) GetByResetToken(ctx context.Context, token string) (*domain.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, u := range m.users {
		if u.ResetToken != nil && *u.ResetToken == token {
			copied := *u
			return &copied, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) Update(ctx context.Context, user *domain.User) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.users[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	for id, u := range m.users {
		if id != user.ID && (u.Username == user.Username || u.Email == user.Email) {
			return domain.ErrDuplicateUser
		}
	}
	copied := *user
	m.users[user.ID] = &copied
	return nil
}

func (m *MockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	for _, u := range m.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

// MockFriendshipRepository is an in-memory implementation of
// repository.FriendshipRepository for service tests.
type MockFriendshipRepository struct {
	friendships map[uuid.UUID]*domain.Friendship
	users       *MockUserRepository
}

func NewMockFriendshipRepository(users *MockUserRepository) *MockFriendshipRepository {
	return &MockFriendshipRepository{
		friendships: make(map[uuid.UUID]*domain.Friendship),
		users:       users,
	}
}

func (m *MockFriendshipRepository) Create(ctx context.Context, f *domain.Friendship) error {
	for _, existing := range m.friendships {
		same := existing.Requester == f.Requester && existing.Requestee == f.Requestee
		reversed := existing.Requester == f.Requestee && existing.Requestee == f.Requester
		if same || reversed {
			return domain.ErrFriendshipExists
		}
	}
	copied := *f
	m.friendships[f.ID] = &copied
	return nil
}

func (m *MockFriendshipRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Friendship, error) {
	if f, ok := m.friendships[id]; ok {
		copied := *f
		return &copied, nil
	}
	return nil, domain.ErrFriendshipNotFound
}

func (m *MockFriendshipRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.FriendshipStatus) error {
	f, ok := m.friendships[id]
	if !ok {
		return domain.ErrFriendshipNotFound
	}
	f.Status = status
	return nil
}

func (m *MockFriendshipRepository) ListFriends(ctx context.Context, userID uuid.UUID) ([]*domain.Friend, error) {
	var friends []*domain.Friend
	for _, f := range m.friendships {
		if f.Status != domain.FriendshipAccepted {
			continue
		}
		var other uuid.UUID
		switch userID {
		case f.Requester:
			other = f.Requestee
		case f.Requestee:
			other = f.Requester
		default:
			continue
		}
		friend := &domain.Friend{FriendshipID: f.ID, UserID: other}
		if u, ok := m.users.users[other]; ok {
			friend.FirstName = u.FirstName
			friend.LastName = u.LastName
			friend.Username = u.Username
			friend.AvatarURL = u.AvatarURL
		}
		friends = append(friends, friend)
	}
	return friends, nil
}

func (m *MockFriendshipRepository) ListPending(ctx context.Context, userID uuid.UUID) ([]*domain.Friendship, error) {
	var pending []*domain.Friendship
	for _, f := range m.friendships {
		if f.Status == domain.FriendshipPending && (f.Requester == userID || f.Requestee == userID) {
			copied := *f
			pending = append(pending, &copied)
		}
	}
	return pending, nil
}

// recordingMailer captures outgoing mail instead of sending it.
type recordingMailer struct {
	confirmTo   []string
	confirmCode int
	resetTo     []string
	resetToken  string
	sendErr     error
}

func (m *recordingMailer) SendConfirmationCode(to, firstName string, code int) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.confirmTo = append(m.confirmTo, to)
	m.confirmCode = code
	return nil
}

func (m *recordingMailer) SendPasswordReset(to, firstName, token string) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.resetTo = append(m.resetTo, to)
	m.resetToken = token
	return nil
}
