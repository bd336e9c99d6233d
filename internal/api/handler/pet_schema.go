package handler

import (
	"time"

	"github.com/virtualpets/pet-api/internal/core/domain"
	"github.com/virtualpets/pet-api/internal/core/ports"
)

// --- Requests ---

type createPetRequest struct {
	Name  string `json:"name" validate:"required,min=2,max=50"`
	Type  string `json:"type" validate:"required,pettype"`
	Color string `json:"color" validate:"omitempty,rgbhex"`
}

type updatePetRequest struct {
	Name  string `json:"name" validate:"required,min=2,max=50"`
	Type  string `json:"type" validate:"required,pettype"`
	Color string `json:"color" validate:"required,rgbhex"`
}

type adminPetsQuery struct {
	Type           string `query:"type" validate:"omitempty,pettype"`
	HappinessBelow int    `query:"happinessBelow" validate:"gte=0,lte=101"`
}

// --- Responses ---

type petResponse struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Type           string    `json:"type"`
	Color          string    `json:"color"`
	HappinessLevel int       `json:"happinessLevel"`
	EnergyLevel    int       `json:"energyLevel"`
	HungerLevel    int       `json:"hungerLevel"`
	OwnerID        int64     `json:"ownerId"`
	OwnerUsername  string    `json:"ownerUsername"`
	CreatedAt      time.Time `json:"createdAt"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// --- Mapping ---

func toPetResponse(p *domain.Pet) petResponse {
	return petResponse{
		ID:             p.ID,
		Name:           p.Name,
		Type:           string(p.Type),
		Color:          p.Color,
		HappinessLevel: p.Happiness,
		EnergyLevel:    p.Energy,
		HungerLevel:    p.Hunger,
		OwnerID:        p.OwnerID,
		OwnerUsername:  p.OwnerUsername,
		CreatedAt:      p.CreatedAt,
	}
}

func toPetResponses(pets []*domain.Pet) []petResponse {
	out := make([]petResponse, 0, len(pets))
	for _, p := range pets {
		out = append(out, toPetResponse(p))
	}
	return out
}

func toCreatePetInput(req createPetRequest) ports.CreatePetInput {
	t, _ := domain.ParsePetType(req.Type)
	return ports.CreatePetInput{Name: req.Name, Type: t, Color: req.Color}
}

func toUpdatePetInput(req updatePetRequest) ports.UpdatePetInput {
	t, _ := domain.ParsePetType(req.Type)
	return ports.UpdatePetInput{Name: req.Name, Type: t, Color: req.Color}
}
