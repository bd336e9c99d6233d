package mongo

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/virtualpets/pet-api/internal/core/domain"
	"github.com/virtualpets/pet-api/internal/core/ports"
)

func TestPetDoc_RoundTripThroughBSON(t *testing.T) {
	created := time.Date(2024, 3, 4, 5, 6, 7, 891234567, time.UTC)
	in := &domain.Pet{
		ID: 4, Name: "Rex", Type: domain.PetTypeMole, Color: "#FF6B6B",
		Happiness: 60, Energy: 35, Hunger: 30,
		OwnerID: 1, OwnerUsername: "alice", CreatedAt: created,
	}

	raw, err := bson.Marshal(toPetDoc(in))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var doc petDoc
	if err := bson.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	out := doc.toDomain()

	if out.ID != 4 || out.Type != domain.PetTypeMole || out.Happiness != 60 || out.Energy != 35 || out.Hunger != 30 {
		t.Fatalf("unexpected pet: %+v", out)
	}
	if !out.CreatedAt.Equal(created.Truncate(time.Millisecond)) {
		t.Fatalf("created_at drifted: %v", out.CreatedAt)
	}

	// Stored field names are part of the index definitions.
	var m bson.M
	_ = bson.Unmarshal(raw, &m)
	for _, key := range []string{"_id", "owner_id", "owner_username", "happiness", "type"} {
		if _, ok := m[key]; !ok {
			t.Fatalf("missing bson key %q in %v", key, m)
		}
	}
}

func TestPetFilter(t *testing.T) {
	if got := petFilter(ports.PetFilter{}); len(got) != 0 {
		t.Fatalf("expected empty filter, got %v", got)
	}

	got := petFilter(ports.PetFilter{Type: domain.PetTypeToad, HappinessBelow: 30})
	if got["type"] != "TOAD" {
		t.Fatalf("unexpected type filter: %v", got["type"])
	}
	lt, ok := got["happiness"].(bson.M)
	if !ok || lt["$lt"] != 30 {
		t.Fatalf("unexpected happiness filter: %v", got["happiness"])
	}
}
