package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/virtualpets/pet-api/internal/core/domain"
	"github.com/virtualpets/pet-api/internal/core/ports"
)

// AdminHandler serves the cross-tenant admin endpoints. Routes using it
// must sit behind the admin-only access gate.
type AdminHandler struct {
	service ports.AdminService
}

func NewAdminHandler(service ports.AdminService) *AdminHandler {
	return &AdminHandler{service: service}
}

// Users lists every account.
//
// @Summary      List all users
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   adminUserResponse
// @Failure      403  {object}  ErrorResponse
// @Router       /admin/users [get]
func (h *AdminHandler) Users(c echo.Context) error {
	summaries, err := h.service.ListUsers(c.Request().Context())
	if err != nil {
		return err
	}

	out := make([]adminUserResponse, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, adminUserResponse{userResponse: toUserResponse(s.User), PetCount: s.PetCount})
	}
	return c.JSON(http.StatusOK, out)
}

// Pets lists every pet, optionally filtered.
//
// @Summary      List all pets
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        type            query     string  false  "Pet type"  Enums(MOLE, MAGPIE, TOAD)
// @Param        happinessBelow  query     int     false  "Only pets with happiness below this value"
// @Success      200             {array}   petResponse
// @Failure      400             {object}  ErrorResponse
// @Failure      403             {object}  ErrorResponse
// @Router       /admin/pets [get]
func (h *AdminHandler) Pets(c echo.Context) error {
	var q adminPetsQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}
	if err := c.Validate(&q); err != nil {
		return err
	}

	t, _ := domain.ParsePetType(q.Type)
	pets, err := h.service.ListPets(c.Request().Context(), ports.PetFilter{Type: t, HappinessBelow: q.HappinessBelow})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toPetResponses(pets))
}

// DeleteUser removes an account and every pet it owns.
//
// @Summary      Delete a user
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "User ID"
// @Success      200  {object}  messageResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /admin/users/{id} [delete]
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.DeleteUser(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "User deleted successfully"})
}
