package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/virtualpets/pet-api/internal/core/domain"
	"github.com/virtualpets/pet-api/internal/core/ports"
)

type PetRepository struct {
	db *sqlx.DB
}

type petRow struct {
	ID            int64     `db:"id"`
	Name          string    `db:"name"`
	Type          string    `db:"type"`
	Color         string    `db:"color"`
	Happiness     int       `db:"happiness"`
	Energy        int       `db:"energy"`
	Hunger        int       `db:"hunger"`
	OwnerID       int64     `db:"owner_id"`
	OwnerUsername string    `db:"owner_username"`
	CreatedAt     time.Time `db:"created_at"`
}

func (r petRow) toDomain() *domain.Pet {
	return &domain.Pet{
		ID:            r.ID,
		Name:          r.Name,
		Type:          domain.PetType(r.Type),
		Color:         r.Color,
		Happiness:     r.Happiness,
		Energy:        r.Energy,
		Hunger:        r.Hunger,
		OwnerID:       r.OwnerID,
		OwnerUsername: r.OwnerUsername,
		CreatedAt:     r.CreatedAt.UTC(),
	}
}

// petSelect joins the owner so every row carries owner_username. Callers
// append WHERE/ORDER clauses referring to the alias p.
const petSelect = `SELECT p.id, p.name, p.type, p.color, p.happiness, p.energy, p.hunger,
	p.owner_id, u.username AS owner_username, p.created_at
	FROM pets p JOIN users u ON u.id = p.owner_id`

// petReturning wraps a data-modifying statement named "changed" and joins the owner.
const petReturning = ` SELECT c.id, c.name, c.type, c.color, c.happiness, c.energy, c.hunger,
	c.owner_id, u.username AS owner_username, c.created_at
	FROM changed c JOIN users u ON u.id = c.owner_id`

func (r *PetRepository) Create(ctx context.Context, pet *domain.Pet) (*domain.Pet, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	const q = `WITH changed AS (
		INSERT INTO pets (name, type, color, happiness, energy, hunger, owner_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING *
	)` + petReturning

	var row petRow
	err := r.db.GetContext(ctx, &row, q,
		pet.Name, string(pet.Type), pet.Color, pet.Happiness, pet.Energy, pet.Hunger, pet.OwnerID, pet.CreatedAt)
	if err != nil {
		if pgCode(err) == codeForeignKeyViolation {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("insert pet: %w", err)
	}
	return row.toDomain(), nil
}

func (r *PetRepository) FindByID(ctx context.Context, id int64) (*domain.Pet, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var row petRow
	if err := r.db.GetContext(ctx, &row, petSelect+` WHERE p.id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPetNotFound
		}
		return nil, fmt.Errorf("find pet: %w", err)
	}
	return row.toDomain(), nil
}

func (r *PetRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*domain.Pet, error) {
	return r.selectPets(ctx, petSelect+` WHERE p.owner_id = $1 ORDER BY p.id`, ownerID)
}

func (r *PetRepository) List(ctx context.Context, filter ports.PetFilter) ([]*domain.Pet, error) {
	where, args := petWhere(filter)
	return r.selectPets(ctx, petSelect+where+` ORDER BY p.id`, args...)
}

func petWhere(f ports.PetFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if f.Type != "" {
		args = append(args, string(f.Type))
		conds = append(conds, fmt.Sprintf("p.type = $%d", len(args)))
	}
	if f.HappinessBelow > 0 {
		args = append(args, f.HappinessBelow)
		conds = append(conds, fmt.Sprintf("p.happiness < $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *PetRepository) selectPets(ctx context.Context, q string, args ...any) ([]*domain.Pet, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var rows []petRow
	if err := r.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, fmt.Errorf("list pets: %w", err)
	}

	out := make([]*domain.Pet, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

// Update rewrites every mutable column of one row. owner_id and created_at
// are never touched.
func (r *PetRepository) Update(ctx context.Context, pet *domain.Pet) (*domain.Pet, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	const q = `WITH changed AS (
		UPDATE pets SET name = $2, type = $3, color = $4, happiness = $5, energy = $6, hunger = $7
		WHERE id = $1
		RETURNING *
	)` + petReturning

	var row petRow
	err := r.db.GetContext(ctx, &row, q,
		pet.ID, pet.Name, string(pet.Type), pet.Color, pet.Happiness, pet.Energy, pet.Hunger)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPetNotFound
		}
		return nil, fmt.Errorf("update pet: %w", err)
	}
	return row.toDomain(), nil
}

func (r *PetRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM pets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete pet: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete pet: %w", err)
	}
	if n == 0 {
		return domain.ErrPetNotFound
	}
	return nil
}

func (r *PetRepository) CountByOwner(ctx context.Context, ownerID int64) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var n int64
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM pets WHERE owner_id = $1`, ownerID); err != nil {
		return 0, fmt.Errorf("count pets: %w", err)
	}
	return n, nil
}
