package ports

import (
	"context"

	"github.com/virtualpets/pet-api/internal/core/domain"
)

// UserRepository persists accounts. Lookups return domain.ErrUserNotFound
// when nothing matches; Create returns domain.ErrDuplicateUsername on conflict.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	List(ctx context.Context) ([]*domain.User, error)
	// Delete removes the user together with every pet it owns.
	Delete(ctx context.Context, id int64) error
}
