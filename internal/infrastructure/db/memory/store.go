// Package memory is an in-process Store used for development and tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/virtualpets/pet-api/internal/core/domain"
	"github.com/virtualpets/pet-api/internal/core/ports"
)

// Store keeps users and pets in maps behind a single lock so that cascading
// deletes are atomic.
type Store struct {
	mu         sync.RWMutex
	users      map[int64]*domain.User
	byUsername map[string]int64
	pets       map[int64]*domain.Pet
	nextUserID int64
	nextPetID  int64
}

func NewStore() *Store {
	return &Store{
		users:      make(map[int64]*domain.User),
		byUsername: make(map[string]int64),
		pets:       make(map[int64]*domain.Pet),
	}
}

func (s *Store) Users() ports.UserRepository { return userRepo{s} }
func (s *Store) Pets() ports.PetRepository   { return petRepo{s} }

func (s *Store) Ping(context.Context) error  { return nil }
func (s *Store) Close(context.Context) error { return nil }

func cloneUser(u *domain.User) *domain.User {
	c := *u
	return &c
}

func clonePet(p *domain.Pet) *domain.Pet {
	c := *p
	return &c
}

type userRepo struct{ s *Store }

func (r userRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, taken := r.s.byUsername[user.Username]; taken {
		return nil, domain.ErrDuplicateUsername
	}
	r.s.nextUserID++
	u := cloneUser(user)
	u.ID = r.s.nextUserID
	r.s.users[u.ID] = u
	r.s.byUsername[u.Username] = u.ID
	return cloneUser(u), nil
}

func (r userRepo) FindByID(_ context.Context, id int64) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r userRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	id, ok := r.s.byUsername[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(r.s.users[id]), nil
}

func (r userRepo) ExistsByUsername(_ context.Context, username string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	_, ok := r.s.byUsername[username]
	return ok, nil
}

func (r userRepo) List(context.Context) ([]*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*domain.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		out = append(out, cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r userRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	for pid, p := range r.s.pets {
		if p.OwnerID == id {
			delete(r.s.pets, pid)
		}
	}
	delete(r.s.byUsername, u.Username)
	delete(r.s.users, id)
	return nil
}

type petRepo struct{ s *Store }

func (r petRepo) Create(_ context.Context, pet *domain.Pet) (*domain.Pet, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	owner, ok := r.s.users[pet.OwnerID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	r.s.nextPetID++
	p := clonePet(pet)
	p.ID = r.s.nextPetID
	p.OwnerUsername = owner.Username
	r.s.pets[p.ID] = p
	return clonePet(p), nil
}

func (r petRepo) FindByID(_ context.Context, id int64) (*domain.Pet, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.pets[id]
	if !ok {
		return nil, domain.ErrPetNotFound
	}
	return clonePet(p), nil
}

func (r petRepo) ListByOwner(_ context.Context, ownerID int64) ([]*domain.Pet, error) {
	return r.collect(func(p *domain.Pet) bool { return p.OwnerID == ownerID }), nil
}

func (r petRepo) List(_ context.Context, filter ports.PetFilter) ([]*domain.Pet, error) {
	return r.collect(func(p *domain.Pet) bool {
		if filter.Type != "" && p.Type != filter.Type {
			return false
		}
		if filter.HappinessBelow > 0 && p.Happiness >= filter.HappinessBelow {
			return false
		}
		return true
	}), nil
}

func (r petRepo) collect(keep func(*domain.Pet) bool) []*domain.Pet {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*domain.Pet, 0)
	for _, p := range r.s.pets {
		if keep(p) {
			out = append(out, clonePet(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r petRepo) Update(_ context.Context, pet *domain.Pet) (*domain.Pet, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cur, ok := r.s.pets[pet.ID]
	if !ok {
		return nil, domain.ErrPetNotFound
	}
	p := clonePet(pet)
	// Ownership and creation time are immutable.
	p.OwnerID = cur.OwnerID
	p.OwnerUsername = cur.OwnerUsername
	p.CreatedAt = cur.CreatedAt
	r.s.pets[p.ID] = p
	return clonePet(p), nil
}

func (r petRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.pets[id]; !ok {
		return domain.ErrPetNotFound
	}
	delete(r.s.pets, id)
	return nil
}

func (r petRepo) CountByOwner(_ context.Context, ownerID int64) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var n int64
	for _, p := range r.s.pets {
		if p.OwnerID == ownerID {
			n++
		}
	}
	return n, nil
}
