package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/virtualpets/pet-api/internal/core/domain"
	"github.com/virtualpets/pet-api/internal/core/ports"
)

// AdminService serves cross-tenant listings. Callers are gated as
// admin-only before reaching it.
type AdminService struct {
	users ports.UserRepository
	pets  ports.PetRepository
	log   zerolog.Logger
}

func NewAdminService(users ports.UserRepository, pets ports.PetRepository, log zerolog.Logger) *AdminService {
	return &AdminService{users: users, pets: pets, log: log}
}

func (s *AdminService) ListUsers(ctx context.Context) ([]ports.UserSummary, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	out := make([]ports.UserSummary, 0, len(users))
	for _, u := range users {
		n, err := s.pets.CountByOwner(ctx, u.ID)
		if err != nil {
			return nil, fmt.Errorf("count pets of user %d: %w", u.ID, err)
		}
		out = append(out, ports.UserSummary{User: u, PetCount: n})
	}
	return out, nil
}

func (s *AdminService) ListPets(ctx context.Context, filter ports.PetFilter) ([]*domain.Pet, error) {
	pets, err := s.pets.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list pets: %w", err)
	}
	return pets, nil
}

// DeleteUser removes an account and, through the store, every pet it owns.
func (s *AdminService) DeleteUser(ctx context.Context, id int64) error {
	if _, err := s.users.FindByID(ctx, id); err != nil {
		return err
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	s.log.Info().Int64("user_id", id).Msg("user deleted")
	return nil
}
