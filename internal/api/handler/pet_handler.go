package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/virtualpets/pet-api/internal/api/metrics"
	"github.com/virtualpets/pet-api/internal/core/domain"
	"github.com/virtualpets/pet-api/internal/core/ports"
)

// PetHandler handles HTTP requests for the caller's pets.
type PetHandler struct {
	service ports.PetService
}

func NewPetHandler(service ports.PetService) *PetHandler {
	return &PetHandler{service: service}
}

// List returns the caller's pets.
//
// @Summary      List my pets
// @Tags         pets
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   petResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /pets [get]
func (h *PetHandler) List(c echo.Context) error {
	sub, err := currentSubject(c)
	if err != nil {
		return err
	}

	pets, err := h.service.List(c.Request().Context(), sub)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toPetResponses(pets))
}

// Types returns the species catalogue with display metadata.
//
// @Summary      List pet types
// @Tags         pets
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  domain.PetTypeInfo
// @Router       /pets/types [get]
func (h *PetHandler) Types(c echo.Context) error {
	return c.JSON(http.StatusOK, domain.PetTypes())
}

// Create adopts a new pet owned by the caller.
//
// @Summary      Create a pet
// @Tags         pets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createPetRequest  true  "Name, type and optional color"
// @Success      201   {object}  petResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Router       /pets [post]
func (h *PetHandler) Create(c echo.Context) error {
	sub, err := currentSubject(c)
	if err != nil {
		return err
	}

	var req createPetRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	pet, err := h.service.Create(c.Request().Context(), sub, toCreatePetInput(req))
	if err != nil {
		return err
	}

	metrics.PetsCreatedTotal.WithLabelValues(string(pet.Type)).Inc()
	return c.JSON(http.StatusCreated, toPetResponse(pet))
}

// Get returns a single pet.
//
// @Summary      Get a pet
// @Tags         pets
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Pet ID"
// @Success      200  {object}  petResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /pets/{id} [get]
func (h *PetHandler) Get(c echo.Context) error {
	sub, id, err := ownedTarget(c)
	if err != nil {
		return err
	}

	pet, err := h.service.Get(c.Request().Context(), sub, id)
	observeOwnedAccess(err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toPetResponse(pet))
}

// Update replaces name, type and color of a pet.
//
// @Summary      Update a pet
// @Tags         pets
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int               true  "Pet ID"
// @Param        body  body      updatePetRequest  true  "New name, type and color"
// @Success      200   {object}  petResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Router       /pets/{id} [put]
func (h *PetHandler) Update(c echo.Context) error {
	sub, id, err := ownedTarget(c)
	if err != nil {
		return err
	}

	var req updatePetRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	pet, err := h.service.Update(c.Request().Context(), sub, id, toUpdatePetInput(req))
	observeOwnedAccess(err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toPetResponse(pet))
}

// Delete removes a pet.
//
// @Summary      Delete a pet
// @Tags         pets
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Pet ID"
// @Success      200  {object}  messageResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /pets/{id} [delete]
func (h *PetHandler) Delete(c echo.Context) error {
	sub, id, err := ownedTarget(c)
	if err != nil {
		return err
	}

	err = h.service.Delete(c.Request().Context(), sub, id)
	observeOwnedAccess(err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Pet deleted successfully"})
}

// Interact applies the action named in the path to the pet.
//
// @Summary      Feed, play with or rest a pet
// @Tags         pets
// @Produce      json
// @Security     BearerAuth
// @Param        id      path      int     true  "Pet ID"
// @Param        action  path      string  true  "Interaction"  Enums(feed, play, rest)
// @Success      200     {object}  petResponse
// @Failure      403     {object}  ErrorResponse
// @Failure      404     {object}  ErrorResponse
// @Router       /pets/{id}/{action} [post]
func (h *PetHandler) Interact(c echo.Context) error {
	action, ok := domain.ParseInteraction(c.Param("action"))
	if !ok {
		return echo.ErrNotFound
	}

	sub, id, err := ownedTarget(c)
	if err != nil {
		return err
	}

	pet, err := h.service.Interact(c.Request().Context(), sub, id, action)
	observeOwnedAccess(err)
	if err != nil {
		return err
	}

	metrics.PetInteractionsTotal.WithLabelValues(string(action)).Inc()
	return c.JSON(http.StatusOK, toPetResponse(pet))
}

func ownedTarget(c echo.Context) (*domain.Subject, int64, error) {
	sub, err := currentSubject(c)
	if err != nil {
		return nil, 0, err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return nil, 0, err
	}
	return sub, id, nil
}

// observeOwnedAccess records the ownership decision taken inside the pet service.
func observeOwnedAccess(err error) {
	cat := string(domain.CategoryOwnedResource)
	switch {
	case err == nil:
		metrics.AccessDecisionsTotal.WithLabelValues(cat, domain.Allow.String()).Inc()
	case errors.Is(err, domain.ErrForbidden):
		metrics.AccessDecisionsTotal.WithLabelValues(cat, domain.Deny.String()).Inc()
	}
}
