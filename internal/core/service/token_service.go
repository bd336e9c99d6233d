package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/virtualpets/pet-api/internal/core/domain"
)

const defaultTokenTTL = 24 * time.Hour

// TokenConfig is fixed at startup and never mutated afterwards.
type TokenConfig struct {
	Secret []byte
	TTL    time.Duration
	Issuer string
}

// Claims is the verified content of a token.
type Claims struct {
	Role domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// Username returns the subject the token was issued to.
func (c *Claims) Username() string {
	return c.Subject
}

// TokenService issues and verifies HS256 bearer tokens.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// TokenOption customises a TokenService.
type TokenOption func(*TokenService)

// WithClock replaces the wall clock used for issuing and expiry checks.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) { s.now = now }
}

func NewTokenService(cfg TokenConfig, opts ...TokenOption) (*TokenService, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("token service: empty signing secret")
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}

	secret := make([]byte, len(cfg.Secret))
	copy(secret, cfg.Secret)

	s := &TokenService{secret: secret, ttl: ttl, issuer: cfg.Issuer, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// TTL reports how long issued tokens stay valid.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Issue signs a token for sub that expires after the configured TTL.
func (s *TokenService) Issue(sub *domain.Subject) (string, error) {
	now := s.now()
	claims := Claims{
		Role: sub.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub.Username,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.secret)
}

// Validate verifies signature, algorithm and expiry. Every failure, including
// an empty string, is reported as ok == false.
func (s *TokenService) Validate(token string) (*Claims, bool) {
	if token == "" {
		return nil, false
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, opts...)
	if err != nil || !tkn.Valid || claims.Subject == "" {
		return nil, false
	}
	return claims, true
}

// ExtractUsername returns the subject of a verified token.
func (s *TokenService) ExtractUsername(token string) (string, bool) {
	claims, ok := s.Validate(token)
	if !ok {
		return "", false
	}
	return claims.Username(), true
}
