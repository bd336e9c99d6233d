package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/virtualpets/pet-api/internal/core/domain"
	"github.com/virtualpets/pet-api/internal/core/ports"
)

type PetRepository struct {
	col   *mongo.Collection
	users *mongo.Collection
	ids   *sequence
}

// petDoc denormalises the owner's username; usernames never change.
type petDoc struct {
	ID            int64     `bson:"_id"`
	Name          string    `bson:"name"`
	Type          string    `bson:"type"`
	Color         string    `bson:"color"`
	Happiness     int       `bson:"happiness"`
	Energy        int       `bson:"energy"`
	Hunger        int       `bson:"hunger"`
	OwnerID       int64     `bson:"owner_id"`
	OwnerUsername string    `bson:"owner_username"`
	CreatedAt     time.Time `bson:"created_at"`
}

func toPetDoc(p *domain.Pet) petDoc {
	return petDoc{
		ID:            p.ID,
		Name:          p.Name,
		Type:          string(p.Type),
		Color:         p.Color,
		Happiness:     p.Happiness,
		Energy:        p.Energy,
		Hunger:        p.Hunger,
		OwnerID:       p.OwnerID,
		OwnerUsername: p.OwnerUsername,
		CreatedAt:     p.CreatedAt.UTC().Truncate(time.Millisecond),
	}
}

func (d petDoc) toDomain() *domain.Pet {
	return &domain.Pet{
		ID:            d.ID,
		Name:          d.Name,
		Type:          domain.PetType(d.Type),
		Color:         d.Color,
		Happiness:     d.Happiness,
		Energy:        d.Energy,
		Hunger:        d.Hunger,
		OwnerID:       d.OwnerID,
		OwnerUsername: d.OwnerUsername,
		CreatedAt:     d.CreatedAt.UTC(),
	}
}

func (r *PetRepository) Create(ctx context.Context, pet *domain.Pet) (*domain.Pet, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var owner userDoc
	if err := r.users.FindOne(ctx, bson.M{"_id": pet.OwnerID}).Decode(&owner); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find pet owner: %w", err)
	}

	id, err := r.ids.next(ctx, collectionPets)
	if err != nil {
		return nil, err
	}

	doc := toPetDoc(pet)
	doc.ID = id
	doc.OwnerUsername = owner.Username
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert pet: %w", err)
	}

	// The owner may have been deleted between the lookup and the insert.
	// UserRepository.Delete sweeps pets after removing the user, so either
	// that sweep or this recheck sees the new pet.
	err = r.users.FindOne(ctx, bson.M{"_id": pet.OwnerID},
		options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
	if err == nil {
		return doc.toDomain(), nil
	}
	if _, derr := r.col.DeleteOne(ctx, bson.M{"_id": doc.ID}); derr != nil {
		return nil, fmt.Errorf("remove pet %d of missing owner: %w", doc.ID, derr)
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrUserNotFound
	}
	return nil, fmt.Errorf("recheck pet owner: %w", err)
}

func (r *PetRepository) FindByID(ctx context.Context, id int64) (*domain.Pet, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc petDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrPetNotFound
		}
		return nil, fmt.Errorf("find pet: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *PetRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*domain.Pet, error) {
	return r.find(ctx, bson.M{"owner_id": ownerID})
}

func (r *PetRepository) List(ctx context.Context, filter ports.PetFilter) ([]*domain.Pet, error) {
	return r.find(ctx, petFilter(filter))
}

func petFilter(f ports.PetFilter) bson.M {
	m := bson.M{}
	if f.Type != "" {
		m["type"] = string(f.Type)
	}
	if f.HappinessBelow > 0 {
		m["happiness"] = bson.M{"$lt": f.HappinessBelow}
	}
	return m
}

func (r *PetRepository) find(ctx context.Context, filter bson.M) ([]*domain.Pet, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list pets: %w", err)
	}

	var docs []petDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode pets: %w", err)
	}

	out := make([]*domain.Pet, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

// Update replaces the mutable fields in one atomic document write. Owner
// and creation time are left as stored.
func (r *PetRepository) Update(ctx context.Context, pet *domain.Pet) (*domain.Pet, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{"$set": bson.M{
		"name":      pet.Name,
		"type":      string(pet.Type),
		"color":     pet.Color,
		"happiness": pet.Happiness,
		"energy":    pet.Energy,
		"hunger":    pet.Hunger,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc petDoc
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": pet.ID}, set, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrPetNotFound
		}
		return nil, fmt.Errorf("update pet: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *PetRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete pet: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrPetNotFound
	}
	return nil
}

func (r *PetRepository) CountByOwner(ctx context.Context, ownerID int64) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, bson.M{"owner_id": ownerID})
	if err != nil {
		return 0, fmt.Errorf("count pets: %w", err)
	}
	return n, nil
}
