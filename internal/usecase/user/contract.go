package user

import (
	"context"

	"github.com/Shuvo1998/ThesisManagementSystem/internal/domain"
)

// Repository defines the storage contract for user administration.
type Repository interface {
	Get(ctx context.Context, id string) (domain.User, error)
	Update(ctx context.Context, u *domain.User) error
	List(ctx context.Context) ([]domain.User, error)
}
