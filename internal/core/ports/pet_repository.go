package ports

import (
	"context"

	"github.com/virtualpets/pet-api/internal/core/domain"
)

// PetFilter narrows admin listings. Zero values disable a filter.
type PetFilter struct {
	Type domain.PetType
	// HappinessBelow keeps pets whose happiness is strictly lower than the value.
	HappinessBelow int
}

// PetRepository persists pets. Missing records yield domain.ErrPetNotFound.
// Returned pets always carry OwnerUsername.
type PetRepository interface {
	Create(ctx context.Context, pet *domain.Pet) (*domain.Pet, error)
	FindByID(ctx context.Context, id int64) (*domain.Pet, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]*domain.Pet, error)
	List(ctx context.Context, filter PetFilter) ([]*domain.Pet, error)
	// Update replaces the stored record with pet.
	Update(ctx context.Context, pet *domain.Pet) (*domain.Pet, error)
	Delete(ctx context.Context, id int64) error
	CountByOwner(ctx context.Context, ownerID int64) (int64, error)
}

// Store bundles both repositories behind one backend.
type Store interface {
	Users() UserRepository
	Pets() PetRepository
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
