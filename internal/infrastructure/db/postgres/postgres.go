package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"github.com/virtualpets/pet-api/internal/core/ports"
)

const defaultTimeout = 5 * time.Second

// Store implements ports.Store on PostgreSQL through sqlx and the pgx driver.
type Store struct {
	db    *sqlx.DB
	users *UserRepository
	pets  *PetRepository
}

// Open connects with pool defaults, pings and creates the schema if missing.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sqlx.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres open: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}

	s := NewStore(db)
	if err := s.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db, users: &UserRepository{db: db}, pets: &PetRepository{db: db}}
}

func (s *Store) Users() ports.UserRepository { return s.users }
func (s *Store) Pets() ports.PetRepository   { return s.pets }

func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *Store) Close(context.Context) error { return s.db.Close() }

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGSERIAL PRIMARY KEY,
		username      VARCHAR(50) NOT NULL UNIQUE,
		password_hash TEXT        NOT NULL,
		role          VARCHAR(20) NOT NULL DEFAULT 'ROLE_USER',
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS pets (
		id         BIGSERIAL PRIMARY KEY,
		name       VARCHAR(50) NOT NULL,
		type       VARCHAR(10) NOT NULL,
		color      CHAR(7)     NOT NULL DEFAULT '#FF6B6B',
		happiness  SMALLINT    NOT NULL DEFAULT 50 CHECK (happiness BETWEEN 0 AND 100),
		energy     SMALLINT    NOT NULL DEFAULT 50 CHECK (energy BETWEEN 0 AND 100),
		hunger     SMALLINT    NOT NULL DEFAULT 50 CHECK (hunger BETWEEN 0 AND 100),
		owner_id   BIGINT      NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_pets_owner_id ON pets(owner_id)`,
}

// EnsureSchema creates tables and indexes that do not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
