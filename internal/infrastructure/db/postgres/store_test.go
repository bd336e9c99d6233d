package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/virtualpets/pet-api/internal/core/domain"
	"github.com/virtualpets/pet-api/internal/core/ports"
)

var (
	userCols = []string{"id", "username", "password_hash", "role", "created_at"}
	petCols  = []string{"id", "name", "type", "color", "happiness", "energy", "hunger", "owner_id", "owner_username", "created_at"}
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewStore(sqlx.NewDb(db, "pgx")), mock
}

func TestEnsureSchema(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS users")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS pets")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("CREATE INDEX IF NOT EXISTS idx_pets_owner_id")).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.EnsureSchema(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Create(t *testing.T) {
	s, mock := newMockStore(t)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("alice", "hash", "ROLE_USER", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(int64(1), "alice", "hash", "ROLE_USER", now))

	u, err := s.Users().Create(context.Background(), &domain.User{Username: "alice", PasswordHash: "hash", Role: domain.RoleUser, CreatedAt: now})
	require.NoError(t, err)
	assert.Equal(t, int64(1), u.ID)
	assert.Equal(t, domain.RoleUser, u.Role)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Create_Duplicate(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})

	_, err := s.Users().Create(context.Background(), &domain.User{Username: "alice", PasswordHash: "hash", Role: domain.RoleUser})
	assert.ErrorIs(t, err, domain.ErrDuplicateUsername)
}

func TestUserRepository_FindByUsername_NotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE username = $1")).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows(userCols))

	_, err := s.Users().FindByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserRepository_ExistsByUsername(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := s.Users().ExistsByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestUserRepository_Delete(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM users WHERE id = $1")).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM users WHERE id = $1")).
		WithArgs(int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.Users().Delete(context.Background(), 1))
	assert.ErrorIs(t, s.Users().Delete(context.Background(), 2), domain.ErrUserNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPetRepository_Create(t *testing.T) {
	s, mock := newMockStore(t)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO pets")).
		WithArgs("Rex", "MOLE", "#FF6B6B", int64(50), int64(50), int64(50), int64(1), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(petCols).AddRow(int64(10), "Rex", "MOLE", "#FF6B6B", 50, 50, 50, int64(1), "alice", now))

	owner := &domain.Subject{UserID: 1, Username: "alice", Role: domain.RoleUser}
	p, err := s.Pets().Create(context.Background(), domain.NewPet("Rex", domain.PetTypeMole, "", owner, now))
	require.NoError(t, err)
	assert.Equal(t, int64(10), p.ID)
	assert.Equal(t, "alice", p.OwnerUsername)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPetRepository_Create_UnknownOwner(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO pets")).
		WillReturnError(&pgconn.PgError{Code: "23503"})

	_, err := s.Pets().Create(context.Background(), &domain.Pet{Name: "Rex", Type: domain.PetTypeMole, OwnerID: 99})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestPetRepository_Update_NotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE pets SET")).
		WillReturnRows(sqlmock.NewRows(petCols))

	_, err := s.Pets().Update(context.Background(), &domain.Pet{ID: 5, Name: "Rex", Type: domain.PetTypeMole})
	assert.ErrorIs(t, err, domain.ErrPetNotFound)
}

func TestPetRepository_List_Filters(t *testing.T) {
	s, mock := newMockStore(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE p.type = $1 AND p.happiness < $2 ORDER BY p.id")).
		WithArgs("TOAD", int64(30)).
		WillReturnRows(sqlmock.NewRows(petCols).
			AddRow(int64(3), "Pip", "TOAD", "#00FF00", 10, 80, 90, int64(2), "bob", now))

	pets, err := s.Pets().List(context.Background(), ports.PetFilter{Type: domain.PetTypeToad, HappinessBelow: 30})
	require.NoError(t, err)
	require.Len(t, pets, 1)
	assert.Equal(t, domain.PetTypeToad, pets[0].Type)
	assert.Equal(t, "bob", pets[0].OwnerUsername)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPetRepository_FindByID_StoreError(t *testing.T) {
	s, mock := newMockStore(t)
	boom := errors.New("connection refused")

	mock.ExpectQuery(regexp.QuoteMeta("WHERE p.id = $1")).WillReturnError(boom)

	_, err := s.Pets().FindByID(context.Background(), 1)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, domain.ErrPetNotFound)
}

func TestPetWhere(t *testing.T) {
	where, args := petWhere(ports.PetFilter{})
	assert.Empty(t, where)
	assert.Empty(t, args)

	where, args = petWhere(ports.PetFilter{HappinessBelow: 40})
	assert.Equal(t, " WHERE p.happiness < $1", where)
	assert.Equal(t, []any{40}, args)
}
