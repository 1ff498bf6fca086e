package auth

import (
	"context"

	"github.com/Shuvo1998/ThesisManagementSystem/internal/domain"
)

// UserRepository defines the storage contract for accounts.
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, id string) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
}
