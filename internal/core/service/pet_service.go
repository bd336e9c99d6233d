package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/virtualpets/pet-api/internal/core/domain"
	"github.com/virtualpets/pet-api/internal/core/ports"
)

type PetService struct {
	pets   ports.PetRepository
	runner ports.KeyedRunner
	log    zerolog.Logger
	now    func() time.Time
}

// PetOption customises a PetService.
type PetOption func(*PetService)

// WithKeyedRunner serialises read-modify-write operations per pet id.
// Without it, concurrent writes to one pet resolve as last write wins.
func WithKeyedRunner(r ports.KeyedRunner) PetOption {
	return func(s *PetService) { s.runner = r }
}

func NewPetService(pets ports.PetRepository, log zerolog.Logger, opts ...PetOption) *PetService {
	s := &PetService{
		pets: pets,
		log:  log,
		now:  func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *PetService) exclusive(ctx context.Context, id int64, fn func(ctx context.Context) error) error {
	if s.runner == nil {
		return fn(ctx)
	}
	return s.runner.Run(ctx, id, fn)
}

// List returns the caller's own pets, admins included.
func (s *PetService) List(ctx context.Context, sub *domain.Subject) ([]*domain.Pet, error) {
	if domain.Decide(sub, 0, domain.CategorySelfScoped) == domain.Deny {
		return nil, domain.ErrUnauthorized
	}
	pets, err := s.pets.ListByOwner(ctx, sub.UserID)
	if err != nil {
		return nil, fmt.Errorf("list pets: %w", err)
	}
	return pets, nil
}

func (s *PetService) Create(ctx context.Context, sub *domain.Subject, input ports.CreatePetInput) (*domain.Pet, error) {
	if domain.Decide(sub, 0, domain.CategorySelfScoped) == domain.Deny {
		return nil, domain.ErrUnauthorized
	}
	t, err := validatePetFields(input.Name, input.Type, input.Color, false)
	if err != nil {
		return nil, err
	}

	pet, err := s.pets.Create(ctx, domain.NewPet(input.Name, t, input.Color, sub, s.now()))
	if err != nil {
		return nil, fmt.Errorf("create pet: %w", err)
	}

	s.log.Info().Int64("pet_id", pet.ID).Int64("owner_id", pet.OwnerID).Str("type", string(pet.Type)).Msg("pet created")
	return pet, nil
}

func (s *PetService) Get(ctx context.Context, sub *domain.Subject, id int64) (*domain.Pet, error) {
	return s.load(ctx, sub, id)
}

// Update replaces name, type and color. Stats and owner are kept.
func (s *PetService) Update(ctx context.Context, sub *domain.Subject, id int64, input ports.UpdatePetInput) (*domain.Pet, error) {
	t, err := validatePetFields(input.Name, input.Type, input.Color, true)
	if err != nil {
		return nil, err
	}

	var updated *domain.Pet
	err = s.exclusive(ctx, id, func(ctx context.Context) error {
		pet, err := s.load(ctx, sub, id)
		if err != nil {
			return err
		}

		pet.Name = input.Name
		pet.Type = t
		pet.Color = input.Color

		updated, err = s.pets.Update(ctx, pet)
		if err != nil {
			return fmt.Errorf("update pet %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *PetService) Delete(ctx context.Context, sub *domain.Subject, id int64) error {
	if _, err := s.load(ctx, sub, id); err != nil {
		return err
	}
	if err := s.pets.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete pet %d: %w", id, err)
	}

	s.log.Info().Int64("pet_id", id).Str("by", sub.Username).Msg("pet deleted")
	return nil
}

// Interact applies a stat change and stores the whole record.
func (s *PetService) Interact(ctx context.Context, sub *domain.Subject, id int64, action domain.Interaction) (*domain.Pet, error) {
	var updated *domain.Pet
	err := s.exclusive(ctx, id, func(ctx context.Context) error {
		pet, err := s.load(ctx, sub, id)
		if err != nil {
			return err
		}

		action.Apply(pet)

		updated, err = s.pets.Update(ctx, pet)
		if err != nil {
			return fmt.Errorf("%s pet %d: %w", action, id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Debug().
		Int64("pet_id", id).
		Str("action", string(action)).
		Int("happiness", updated.Happiness).
		Int("energy", updated.Energy).
		Int("hunger", updated.Hunger).
		Msg("pet interaction")
	return updated, nil
}

// load checks existence before ownership: a missing pet is ErrPetNotFound,
// someone else's pet is ErrForbidden.
func (s *PetService) load(ctx context.Context, sub *domain.Subject, id int64) (*domain.Pet, error) {
	if sub == nil {
		return nil, domain.ErrUnauthorized
	}

	pet, err := s.pets.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if domain.Decide(sub, pet.OwnerID, domain.CategoryOwnedResource) == domain.Deny {
		s.log.Warn().Int64("pet_id", id).Int64("owner_id", pet.OwnerID).Int64("user_id", sub.UserID).Msg("pet access denied")
		return nil, domain.ErrForbidden
	}
	return pet, nil
}

// validatePetFields returns the canonical pet type when every field is valid.
func validatePetFields(name string, t domain.PetType, color string, colorRequired bool) (domain.PetType, error) {
	fields := map[string]string{}
	if n := len([]rune(name)); n < 2 || n > 50 {
		fields["name"] = "must be between 2 and 50 characters"
	}
	parsed, ok := domain.ParsePetType(string(t))
	if !ok {
		fields["type"] = "must be one of: MOLE MAGPIE TOAD"
	}
	switch {
	case color == "" && colorRequired:
		fields["color"] = "is required"
	case color != "" && !domain.ValidColor(color):
		fields["color"] = "must be a hex color like #FF6B6B"
	}
	if len(fields) > 0 {
		return "", &domain.ValidationError{Fields: fields}
	}
	return parsed, nil
}
