package user

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Shuvo1998/ThesisManagementSystem/internal/db"
	"github.com/Shuvo1998/ThesisManagementSystem/internal/domain"
)

const (
	keyPrefix      = domain.KeyPrefix + "user:"
	emailIdxPrefix = domain.KeyPrefix + "user_email:"
	nameIdxPrefix  = domain.KeyPrefix + "user_name:"
)

// store is the consumer interface for user records (ISP).
type store interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	Del(ctx context.Context, key string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
	Get(ctx context.Context, key string) ([]byte, error)
	SetNX(ctx context.Context, key string, value []byte) (bool, error)
}

// Repo persists users as JSON documents with unique secondary indexes
// on email and username.
type Repo struct {
	store store
}

// New creates a user repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Create stores a new user. Uniqueness of email and username is
// enforced through SETNX on the index keys.
func (r *Repo) Create(ctx context.Context, u *domain.User) error {
	ok, err := r.store.SetNX(ctx, emailIdxPrefix+u.Email, []byte(u.ID))
	if err != nil {
		return fmt.Errorf("reserve email: %w", err)
	}
	if !ok {
		return domain.ErrEmailTaken
	}

	ok, err = r.store.SetNX(ctx, nameIdxPrefix+u.Username, []byte(u.ID))
	if err != nil {
		return fmt.Errorf("reserve username: %w", err)
	}
	if !ok {
		// Roll back the email reservation so a retry with another
		// username can succeed.
		_ = r.store.Del(ctx, emailIdxPrefix+u.Email)
		return domain.ErrUsernameTaken
	}

	if err := r.put(ctx, u); err != nil {
		_ = r.store.Del(ctx, emailIdxPrefix+u.Email)
		_ = r.store.Del(ctx, nameIdxPrefix+u.Username)
		return err
	}
	return nil
}

// Update rewrites an existing user record (role changes etc.).
func (r *Repo) Update(ctx context.Context, u *domain.User) error {
	return r.put(ctx, u)
}

func (r *Repo) put(ctx context.Context, u *domain.User) error {
	data, err := json.Marshal(userDTO{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		RegisteredAt: u.RegisteredAt.Unix(),
	})
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	key := userKey(u.ID)
	if err := r.store.JSONSet(ctx, key, "$", data); err != nil {
		return fmt.Errorf("json.set %s: %w", key, err)
	}
	return nil
}

// Get returns a user by ID.
func (r *Repo) Get(ctx context.Context, id string) (domain.User, error) {
	key := userKey(id)
	raw, err := r.store.JSONGet(ctx, key, "$")
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("json.get %s: %w", key, err)
	}
	return parseUser(raw)
}

// GetByEmail resolves the email index and loads the user.
func (r *Repo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	id, err := r.store.Get(ctx, emailIdxPrefix+email)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("get email index: %w", err)
	}
	return r.Get(ctx, string(id))
}

// GetByUsername resolves the username index and loads the user.
func (r *Repo) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	id, err := r.store.Get(ctx, nameIdxPrefix+username)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("get username index: %w", err)
	}
	return r.Get(ctx, string(id))
}

// List returns all users in key-scan order.
func (r *Repo) List(ctx context.Context) ([]domain.User, error) {
	keys, err := r.store.Scan(ctx, keyPrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("scan users: %w", err)
	}

	users := make([]domain.User, 0, len(keys))
	for _, key := range keys {
		raw, err := r.store.JSONGet(ctx, key, "$")
		if err != nil {
			if errors.Is(err, db.ErrKeyNotFound) {
				continue
			}
			return nil, fmt.Errorf("json.get %s: %w", key, err)
		}
		u, err := parseUser(raw)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", key, err)
		}
		users = append(users, u)
	}
	return users, nil
}

func userKey(id string) string {
	return keyPrefix + id
}
