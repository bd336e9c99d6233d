package ports

import (
	"context"

	"github.com/virtualpets/pet-api/internal/core/domain"
)

type AuthService interface {
	Register(ctx context.Context, username, password string) (*domain.User, error)
	Authenticate(ctx context.Context, username, password string) (*domain.Subject, error)
	Login(ctx context.Context, username, password string) (string, *domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	// ResolveToken turns a bearer token into the subject it identifies,
	// or domain.ErrUnauthorized.
	ResolveToken(ctx context.Context, token string) (*domain.Subject, error)
}
