package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/virtualpets/pet-api/internal/core/ports"
)

const defaultTimeout = 10 * time.Second

const (
	collectionUsers    = "users"
	collectionPets     = "pets"
	collectionCounters = "counters"
)

// Config captures the minimal settings required to establish a MongoDB connection.
type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// Connect establishes a MongoDB client, verifies connectivity with a ping, and
// returns both the client and the selected database. A default timeout is
// applied when none is provided.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	db := client.Database(cfg.Database)
	return client, db, nil
}

// Store implements ports.Store on MongoDB.
type Store struct {
	db    *mongo.Database
	users *UserRepository
	pets  *PetRepository
}

// Open connects, ensures indexes and returns a ready Store.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	_, db, err := Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}

	s := NewStore(db)
	if err := s.EnsureIndexes(ctx); err != nil {
		_ = s.Close(ctx)
		return nil, err
	}
	return s, nil
}

func NewStore(db *mongo.Database) *Store {
	ids := &sequence{col: db.Collection(collectionCounters)}
	return &Store{
		db:    db,
		users: &UserRepository{col: db.Collection(collectionUsers), pets: db.Collection(collectionPets), ids: ids},
		pets:  &PetRepository{col: db.Collection(collectionPets), users: db.Collection(collectionUsers), ids: ids},
	}
}

func (s *Store) Users() ports.UserRepository { return s.users }
func (s *Store) Pets() ports.PetRepository   { return s.pets }

func (s *Store) Ping(ctx context.Context) error {
	return s.db.RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err()
}

func (s *Store) Close(ctx context.Context) error {
	return s.db.Client().Disconnect(ctx)
}

// EnsureIndexes creates the unique username index and the pet owner index.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := s.db.Collection(collectionUsers).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("ensure user indexes: %w", err)
	}

	_, err = s.db.Collection(collectionPets).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "owner_id", Value: 1}}},
		{Keys: bson.D{{Key: "type", Value: 1}, {Key: "happiness", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("ensure pet indexes: %w", err)
	}
	return nil
}

// sequence hands out numeric ids from the counters collection.
type sequence struct {
	col *mongo.Collection
}

type counterDoc struct {
	ID  string `bson:"_id"`
	Seq int64  `bson:"seq"`
}

func (s *sequence) next(ctx context.Context, name string) (int64, error) {
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var doc counterDoc
	err := s.col.FindOneAndUpdate(ctx, bson.M{"_id": name}, bson.M{"$inc": bson.M{"seq": int64(1)}}, opts).Decode(&doc)
	if err != nil {
		return 0, fmt.Errorf("next %s id: %w", name, err)
	}
	return doc.Seq, nil
}
