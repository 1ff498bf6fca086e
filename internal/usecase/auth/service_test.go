package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Shuvo1998/ThesisManagementSystem/internal/domain"
)

// --- Mocks ---

type mockUsers struct {
	byID      map[string]domain.User
	byEmail   map[string]domain.User
	createErr error
}

func newMockUsers() *mockUsers {
	return &mockUsers{
		byID:    make(map[string]domain.User),
		byEmail: make(map[string]domain.User),
	}
}

func (m *mockUsers) Create(_ context.Context, u *domain.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	if _, ok := m.byEmail[u.Email]; ok {
		return domain.ErrEmailTaken
	}
	m.byID[u.ID] = *u
	m.byEmail[u.Email] = *u
	return nil
}

func (m *mockUsers) Get(_ context.Context, id string) (domain.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return u, nil
}

func (m *mockUsers) GetByEmail(_ context.Context, email string) (domain.User, error) {
	u, ok := m.byEmail[email]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return u, nil
}

func newService(users UserRepository) *Service {
	return New(users, "test-secret", time.Hour)
}

// --- Tests ---

func TestRegister_DefaultsToUserRole(t *testing.T) {
	svc := newService(newMockUsers())

	u, token, err := svc.Register(context.Background(), "shuvo", "Shuvo@Example.com", "secret123", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Role != domain.RoleUser {
		t.Errorf("expected default role user, got %s", u.Role)
	}
	if u.Email != "shuvo@example.com" {
		t.Errorf("expected lowercased email, got %s", u.Email)
	}
	if token == "" {
		t.Error("expected a signed token")
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("secret123")) != nil {
		t.Error("stored hash must verify the original password")
	}
}

func TestRegister_ShortPassword(t *testing.T) {
	svc := newService(newMockUsers())
	if _, _, err := svc.Register(context.Background(), "x", "x@example.com", "12345", ""); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestRegister_BadEmail(t *testing.T) {
	svc := newService(newMockUsers())
	if _, _, err := svc.Register(context.Background(), "x", "not-an-email", "secret123", ""); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestRegister_InvalidRole(t *testing.T) {
	svc := newService(newMockUsers())
	if _, _, err := svc.Register(context.Background(), "x", "x@example.com", "secret123", "superuser"); !errors.Is(err, domain.ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	users := newMockUsers()
	svc := newService(users)

	if _, _, err := svc.Register(context.Background(), "a", "dup@example.com", "secret123", ""); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	if _, _, err := svc.Register(context.Background(), "b", "dup@example.com", "secret123", ""); !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestLogin_RoundTrip(t *testing.T) {
	users := newMockUsers()
	svc := newService(users)

	if _, _, err := svc.Register(context.Background(), "shuvo", "shuvo@example.com", "secret123", "faculty"); err != nil {
		t.Fatalf("register: %v", err)
	}

	u, token, err := svc.Login(context.Background(), "SHUVO@example.com", "secret123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Role != domain.RoleFaculty {
		t.Errorf("expected faculty, got %s", u.Role)
	}

	id, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if id.UserID != u.ID || id.Role != domain.RoleFaculty {
		t.Errorf("identity mismatch: %+v", id)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	users := newMockUsers()
	svc := newService(users)

	if _, _, err := svc.Register(context.Background(), "x", "x@example.com", "secret123", ""); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, _, err := svc.Login(context.Background(), "x@example.com", "wrong"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLogin_UnknownEmail(t *testing.T) {
	svc := newService(newMockUsers())
	if _, _, err := svc.Login(context.Background(), "ghost@example.com", "secret123"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("unknown emails must look like bad credentials, got %v", err)
	}
}

func TestVerify_TamperedToken(t *testing.T) {
	users := newMockUsers()
	svc := newService(users)

	_, token, err := svc.Register(context.Background(), "x", "x@example.com", "secret123", "")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	other := New(users, "different-secret", time.Hour)
	if _, err := other.Verify(token); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestVerify_ExpiredToken(t *testing.T) {
	users := newMockUsers()
	svc := New(users, "test-secret", time.Hour)
	svc.tokenTTL = -time.Minute // issue already-expired tokens

	_, token, err := svc.Register(context.Background(), "x", "x@example.com", "secret123", "")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := New(users, "test-secret", time.Hour).Verify(token); err == nil {
		t.Fatal("expected expired token to fail verification")
	}
}
