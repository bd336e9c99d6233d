package handler

import (
	"time"

	"github.com/virtualpets/pet-api/internal/core/domain"
)

// --- Requests ---

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// --- Responses ---

// userResponse is the public projection of a user. It has no password field.
type userResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

type loginResponse struct {
	Token string       `json:"token"`
	Type  string       `json:"type"`
	User  userResponse `json:"user"`
}

type adminUserResponse struct {
	userResponse
	PetCount int64 `json:"petCount"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Username:  u.Username,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
	}
}
