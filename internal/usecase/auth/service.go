package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Shuvo1998/ThesisManagementSystem/internal/domain"
)

var emailRegex = regexp.MustCompile(`.+@.+\..+`)

// Claims is the JWT payload: user ID and role.
type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Service handles registration, login, and token verification.
type Service struct {
	users    UserRepository
	secret   []byte
	tokenTTL time.Duration
}

// New creates an auth service.
func New(users UserRepository, secret string, tokenTTL time.Duration) *Service {
	if tokenTTL <= 0 {
		tokenTTL = 5 * time.Hour
	}
	return &Service{users: users, secret: []byte(secret), tokenTTL: tokenTTL}
}

// Register creates an account and returns the user with a signed token.
// An empty role defaults to "user".
func (s *Service) Register(ctx context.Context, username, email, password, role string) (domain.User, string, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	if username == "" || email == "" || password == "" {
		return domain.User{}, "", fmt.Errorf("%w: username, email and password are required", domain.ErrValidation)
	}
	if !emailRegex.MatchString(email) {
		return domain.User{}, "", fmt.Errorf("%w: invalid email address", domain.ErrValidation)
	}
	if len(password) < 6 {
		return domain.User{}, "", fmt.Errorf("%w: password must be at least 6 characters", domain.ErrValidation)
	}

	r := domain.RoleUser
	if role != "" {
		parsed, err := domain.ParseRole(role)
		if err != nil {
			return domain.User{}, "", err
		}
		r = parsed
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("hash password: %w", err)
	}

	u := domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         r,
		RegisteredAt: time.Now().UTC(),
	}

	if err := s.users.Create(ctx, &u); err != nil {
		return domain.User{}, "", fmt.Errorf("create user: %w", err)
	}

	token, err := s.issueToken(&u)
	if err != nil {
		return domain.User{}, "", err
	}
	return u, token, nil
}

// Login verifies credentials and returns the user with a signed token.
// Unknown emails and wrong passwords both map to ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (domain.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.User{}, "", domain.ErrInvalidCredentials
		}
		return domain.User{}, "", fmt.Errorf("get user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return domain.User{}, "", domain.ErrInvalidCredentials
	}

	token, err := s.issueToken(&u)
	if err != nil {
		return domain.User{}, "", err
	}
	return u, token, nil
}

// CurrentUser loads the account behind an identity.
func (s *Service) CurrentUser(ctx context.Context, id domain.Identity) (domain.User, error) {
	u, err := s.users.Get(ctx, id.UserID)
	if err != nil {
		return domain.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// Verify parses and validates a token, returning the caller identity.
func (s *Service) Verify(tokenString string) (domain.Identity, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return domain.Identity{}, fmt.Errorf("%w: %w", domain.ErrInvalidCredentials, err)
	}
	role, err := domain.ParseRole(claims.Role)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %w", domain.ErrInvalidCredentials, err)
	}
	return domain.Identity{UserID: claims.UserID, Role: role}, nil
}

func (s *Service) issueToken(u *domain.User) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: u.ID,
		Role:   string(u.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
