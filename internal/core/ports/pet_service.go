package ports

import (
	"context"

	"github.com/virtualpets/pet-api/internal/core/domain"
)

// CreatePetInput carries the caller-supplied fields of a new pet.
type CreatePetInput struct {
	Name  string
	Type  domain.PetType
	Color string
}

// UpdatePetInput replaces the editable fields of a pet. Stats are never edited directly.
type UpdatePetInput struct {
	Name  string
	Type  domain.PetType
	Color string
}

// PetService defines pet use cases on behalf of an authenticated subject.
type PetService interface {
	List(ctx context.Context, sub *domain.Subject) ([]*domain.Pet, error)
	Create(ctx context.Context, sub *domain.Subject, input CreatePetInput) (*domain.Pet, error)
	Get(ctx context.Context, sub *domain.Subject, id int64) (*domain.Pet, error)
	Update(ctx context.Context, sub *domain.Subject, id int64, input UpdatePetInput) (*domain.Pet, error)
	Delete(ctx context.Context, sub *domain.Subject, id int64) error
	Interact(ctx context.Context, sub *domain.Subject, id int64, action domain.Interaction) (*domain.Pet, error)
}

// UserSummary is a user as seen by an administrator.
type UserSummary struct {
	User     *domain.User
	PetCount int64
}

// AdminService exposes cross-tenant views.
type AdminService interface {
	ListUsers(ctx context.Context) ([]UserSummary, error)
	ListPets(ctx context.Context, filter PetFilter) ([]*domain.Pet, error)
	DeleteUser(ctx context.Context, id int64) error
}

// KeyedRunner runs fn with exclusive access to key. Calls for the same key
// run one at a time in submission order. Once fn has started, Run returns
// fn's result even if ctx ends meanwhile; an error from ctx means fn never ran.
type KeyedRunner interface {
	Run(ctx context.Context, key int64, fn func(ctx context.Context) error) error
}
