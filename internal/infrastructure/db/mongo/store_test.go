package mongo

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/virtualpets/pet-api/internal/core/domain"
)

func aliceDoc() bson.D {
	return bson.D{
		{Key: "_id", Value: int64(1)},
		{Key: "username", Value: "alice"},
		{Key: "password_hash", Value: "$2a$10$hash"},
		{Key: "role", Value: "ROLE_USER"},
		{Key: "created_at", Value: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)},
	}
}

func counterValue(name string, seq int64) bson.E {
	return bson.E{Key: "value", Value: bson.D{{Key: "_id", Value: name}, {Key: "seq", Value: seq}}}
}

func deleted(n int) bson.D {
	return mtest.CreateSuccessResponse(bson.E{Key: "n", Value: n})
}

// commandTargets lists "<command> <collection>" for every command the mocked
// client sent, in order.
func commandTargets(mt *mtest.T) []string {
	var out []string
	for _, evt := range mt.GetAllStartedEvents() {
		target := ""
		if v, err := evt.Command.LookupErr(evt.CommandName); err == nil {
			target, _ = v.StringValueOK()
		}
		out = append(out, evt.CommandName+" "+target)
	}
	return out
}

func TestUserRepository_Mongo(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("find by username not found", func(mt *mtest.T) {
		store := NewStore(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "pets.users", mtest.FirstBatch))

		_, err := store.Users().FindByUsername(ctx, "ghost")
		if !errors.Is(err, domain.ErrUserNotFound) {
			mt.Fatalf("expected ErrUserNotFound, got %v", err)
		}
	})

	mt.Run("find by username", func(mt *mtest.T) {
		store := NewStore(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "pets.users", mtest.FirstBatch, aliceDoc()))

		u, err := store.Users().FindByUsername(ctx, "alice")
		if err != nil {
			mt.Fatalf("find: %v", err)
		}
		if u.ID != 1 || u.Role != domain.RoleUser || u.Username != "alice" {
			mt.Fatalf("unexpected user: %+v", u)
		}
	})

	mt.Run("create assigns sequence id", func(mt *mtest.T) {
		store := NewStore(mt.DB)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(counterValue(collectionUsers, 7)),
			mtest.CreateSuccessResponse(),
		)

		u, err := store.Users().Create(ctx, &domain.User{Username: "bob", PasswordHash: "h", Role: domain.RoleUser, CreatedAt: time.Now()})
		if err != nil {
			mt.Fatalf("create: %v", err)
		}
		if u.ID != 7 {
			mt.Fatalf("expected id 7, got %d", u.ID)
		}
	})

	mt.Run("create duplicate username", func(mt *mtest.T) {
		store := NewStore(mt.DB)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(counterValue(collectionUsers, 8)),
			mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "E11000 duplicate key error"}),
		)

		_, err := store.Users().Create(ctx, &domain.User{Username: "alice", PasswordHash: "h", Role: domain.RoleUser, CreatedAt: time.Now()})
		if !errors.Is(err, domain.ErrDuplicateUsername) {
			mt.Fatalf("expected ErrDuplicateUsername, got %v", err)
		}
	})

	mt.Run("delete removes user before sweeping pets", func(mt *mtest.T) {
		store := NewStore(mt.DB)
		mt.AddMockResponses(deleted(1), deleted(2))

		if err := store.Users().Delete(ctx, 1); err != nil {
			mt.Fatalf("delete: %v", err)
		}

		got := commandTargets(mt)
		want := []string{"delete users", "delete pets"}
		if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
			mt.Fatalf("expected commands %v, got %v", want, got)
		}
	})

	mt.Run("delete of missing user still sweeps pets", func(mt *mtest.T) {
		store := NewStore(mt.DB)
		mt.AddMockResponses(deleted(0), deleted(3))

		err := store.Users().Delete(ctx, 42)
		if !errors.Is(err, domain.ErrUserNotFound) {
			mt.Fatalf("expected ErrUserNotFound, got %v", err)
		}
		if got := commandTargets(mt); len(got) != 2 || got[1] != "delete pets" {
			mt.Fatalf("expected a pet sweep, got %v", got)
		}
	})
}

func TestPetRepository_Mongo(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	newPet := func() *domain.Pet {
		return &domain.Pet{
			Name: "Rex", Type: domain.PetTypeMole, Color: "#FF6B6B",
			Happiness: 50, Energy: 50, Hunger: 50,
			OwnerID: 1, CreatedAt: time.Now(),
		}
	}

	mt.Run("create denormalises owner username", func(mt *mtest.T) {
		store := NewStore(mt.DB)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "pets.users", mtest.FirstBatch, aliceDoc()),
			mtest.CreateSuccessResponse(counterValue(collectionPets, 3)),
			mtest.CreateSuccessResponse(),
			mtest.CreateCursorResponse(0, "pets.users", mtest.FirstBatch, bson.D{{Key: "_id", Value: int64(1)}}),
		)

		p, err := store.Pets().Create(ctx, newPet())
		if err != nil {
			mt.Fatalf("create: %v", err)
		}
		if p.ID != 3 || p.OwnerUsername != "alice" {
			mt.Fatalf("unexpected pet: %+v", p)
		}
	})

	mt.Run("create for missing owner", func(mt *mtest.T) {
		store := NewStore(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "pets.users", mtest.FirstBatch))

		_, err := store.Pets().Create(ctx, newPet())
		if !errors.Is(err, domain.ErrUserNotFound) {
			mt.Fatalf("expected ErrUserNotFound, got %v", err)
		}
		if got := commandTargets(mt); len(got) != 1 {
			mt.Fatalf("nothing should be written, got %v", got)
		}
	})

	mt.Run("create removes pet when owner vanished after insert", func(mt *mtest.T) {
		store := NewStore(mt.DB)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "pets.users", mtest.FirstBatch, aliceDoc()),
			mtest.CreateSuccessResponse(counterValue(collectionPets, 4)),
			mtest.CreateSuccessResponse(),
			mtest.CreateCursorResponse(0, "pets.users", mtest.FirstBatch),
			deleted(1),
		)

		_, err := store.Pets().Create(ctx, newPet())
		if !errors.Is(err, domain.ErrUserNotFound) {
			mt.Fatalf("expected ErrUserNotFound, got %v", err)
		}

		got := commandTargets(mt)
		if len(got) != 5 || got[2] != "insert pets" || got[3] != "find users" || got[4] != "delete pets" {
			mt.Fatalf("expected insert, owner recheck and cleanup, got %v", got)
		}
	})

	mt.Run("find by id not found", func(mt *mtest.T) {
		store := NewStore(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "pets.pets", mtest.FirstBatch))

		_, err := store.Pets().FindByID(ctx, 99)
		if !errors.Is(err, domain.ErrPetNotFound) {
			mt.Fatalf("expected ErrPetNotFound, got %v", err)
		}
	})

	mt.Run("update missing pet", func(mt *mtest.T) {
		store := NewStore(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		p := newPet()
		p.ID = 99
		_, err := store.Pets().Update(ctx, p)
		if !errors.Is(err, domain.ErrPetNotFound) {
			mt.Fatalf("expected ErrPetNotFound, got %v", err)
		}
	})

	mt.Run("delete missing pet", func(mt *mtest.T) {
		store := NewStore(mt.DB)
		mt.AddMockResponses(deleted(0))

		if err := store.Pets().Delete(ctx, 99); !errors.Is(err, domain.ErrPetNotFound) {
			mt.Fatalf("expected ErrPetNotFound, got %v", err)
		}
	})

	mt.Run("list by owner", func(mt *mtest.T) {
		store := NewStore(mt.DB)
		rex := toPetDoc(&domain.Pet{ID: 1, Name: "Rex", Type: domain.PetTypeMole, OwnerID: 1, OwnerUsername: "alice"})
		raw, err := bson.Marshal(rex)
		if err != nil {
			mt.Fatalf("marshal: %v", err)
		}
		var doc bson.D
		if err := bson.Unmarshal(raw, &doc); err != nil {
			mt.Fatalf("unmarshal: %v", err)
		}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "pets.pets", mtest.FirstBatch, doc))

		pets, err := store.Pets().ListByOwner(ctx, 1)
		if err != nil {
			mt.Fatalf("list: %v", err)
		}
		if len(pets) != 1 || pets[0].Name != "Rex" {
			mt.Fatalf("unexpected pets: %+v", pets)
		}
	})
}
