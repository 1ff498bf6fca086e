package user

import (
	"context"
	"fmt"

	"github.com/Shuvo1998/ThesisManagementSystem/internal/domain"
)

// Service handles user administration (admin only).
type Service struct {
	users Repository
}

// New creates a user administration service.
func New(users Repository) *Service {
	return &Service{users: users}
}

// List returns all registered users.
func (s *Service) List(ctx context.Context, actor domain.Identity) ([]domain.User, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// UpdateRole changes a user's role. An admin cannot remove their own
// admin role.
func (s *Service) UpdateRole(ctx context.Context, actor domain.Identity, targetID, role string) (domain.User, error) {
	if !actor.IsAdmin() {
		return domain.User{}, domain.ErrForbidden
	}

	newRole, err := domain.ParseRole(role)
	if err != nil {
		return domain.User{}, err
	}

	if actor.UserID == targetID && newRole != domain.RoleAdmin {
		return domain.User{}, domain.ErrSelfDemotion
	}

	u, err := s.users.Get(ctx, targetID)
	if err != nil {
		return domain.User{}, err
	}

	u.Role = newRole
	if err := s.users.Update(ctx, &u); err != nil {
		return domain.User{}, fmt.Errorf("update user: %w", err)
	}
	return u, nil
}
