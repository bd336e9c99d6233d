package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/virtualpets/pet-api/internal/core/domain"
	"github.com/virtualpets/pet-api/internal/core/ports"
)

// AuthService implements registration, credential checks and token resolution.
type AuthService struct {
	users  ports.UserRepository
	tokens *TokenService
	hasher PasswordHasher
	log    zerolog.Logger
	now    func() time.Time

	// decoyHash is compared against when the username is unknown so both
	// failure paths cost one hash comparison.
	decoyHash string
}

func NewAuthService(users ports.UserRepository, tokens *TokenService, hasher PasswordHasher, log zerolog.Logger) (*AuthService, error) {
	decoy, err := hasher.Hash("decoy-password")
	if err != nil {
		return nil, fmt.Errorf("auth service: %w", err)
	}
	return &AuthService{
		users:     users,
		tokens:    tokens,
		hasher:    hasher,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
		decoyHash: decoy,
	}, nil
}

// Register creates an ordinary user account.
func (s *AuthService) Register(ctx context.Context, username, password string) (*domain.User, error) {
	return s.create(ctx, username, password, domain.RoleUser)
}

func (s *AuthService) create(ctx context.Context, username, password string, role domain.Role) (*domain.User, error) {
	if username == "" {
		return nil, domain.NewValidationError("username", "is required")
	}
	if password == "" {
		return nil, domain.NewValidationError("password", "is required")
	}
	if len(password) > MaxPasswordBytes {
		return nil, domain.NewValidationError("password", fmt.Sprintf("must be at most %d bytes", MaxPasswordBytes))
	}
	if !role.Valid() {
		return nil, fmt.Errorf("register: unknown role %q", role)
	}

	exists, err := s.users.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	if exists {
		return nil, domain.ErrDuplicateUsername
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    s.now(),
	}

	// The store's uniqueness constraint still wins a concurrent race.
	created, err := s.users.Create(ctx, user)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateUsername) {
			return nil, err
		}
		return nil, fmt.Errorf("register: %w", err)
	}

	s.log.Info().Int64("user_id", created.ID).Str("username", created.Username).Str("role", string(created.Role)).Msg("user registered")
	return created, nil
}

// Authenticate verifies a username/password pair. Unknown users and wrong
// passwords both yield domain.ErrInvalidCredentials.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*domain.Subject, error) {
	user, err := s.verify(ctx, username, password)
	if err != nil {
		return nil, err
	}
	return domain.SubjectOf(user), nil
}

func (s *AuthService) verify(ctx context.Context, username, password string) (*domain.User, error) {
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, fmt.Errorf("authenticate: %w", err)
		}
		_ = s.hasher.Compare(s.decoyHash, password)
		s.log.Debug().Str("username", username).Msg("login failed: unknown user")
		return nil, domain.ErrInvalidCredentials
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		if !errors.Is(err, errMismatch) {
			s.log.Warn().Err(err).Int64("user_id", user.ID).Msg("stored password hash unreadable")
		}
		s.log.Debug().Str("username", username).Msg("login failed: wrong password")
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}

// Login authenticates and issues a bearer token.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	user, err := s.verify(ctx, username, password)
	if err != nil {
		return "", nil, err
	}

	token, err := s.tokens.Issue(domain.SubjectOf(user))
	if err != nil {
		return "", nil, fmt.Errorf("login: issue token: %w", err)
	}
	return token, user, nil
}

func (s *AuthService) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.users.FindByUsername(ctx, username)
}

// ResolveToken validates token and loads the account it names. The role is
// taken from the store, not from the token.
func (s *AuthService) ResolveToken(ctx context.Context, token string) (*domain.Subject, error) {
	username, ok := s.tokens.ExtractUsername(token)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("resolve token: %w", err)
	}
	if !user.Role.Valid() {
		s.log.Warn().Int64("user_id", user.ID).Str("role", string(user.Role)).Msg("stored user has unknown role")
		return nil, domain.ErrUnauthorized
	}
	return domain.SubjectOf(user), nil
}

// EnsureAdmin creates an admin account when username is not taken yet.
// An existing account is left untouched.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, password string) error {
	_, err := s.create(ctx, username, password, domain.RoleAdmin)
	if errors.Is(err, domain.ErrDuplicateUsername) {
		s.log.Debug().Str("username", username).Msg("admin account already present")
		return nil
	}
	return err
}
