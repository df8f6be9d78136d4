package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"stockpile/internal/auth"
	apperrors "stockpile/internal/errors"
	"stockpile/internal/service"
)

// ItemHandler handles item endpoints. Every route is owner-scoped.
type ItemHandler struct {
	itemService service.ItemService
}

// NewItemHandler creates a new item handler.
func NewItemHandler(itemService service.ItemService) *ItemHandler {
	return &ItemHandler{itemService: itemService}
}

// CreateItemRequest represents an item creation request.
type CreateItemRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

// UpdateItemRequest represents an item update. Empty fields keep their value.
type UpdateItemRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// DeleteItemResponse confirms a deletion.
type DeleteItemResponse struct {
	Message string    `json:"message"`
	ID      uuid.UUID `json:"id"`
}

// List godoc
// @Summary List the caller's items
// @Tags items
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Item
// @Failure 401 {object} errors.ErrorResponse
// @Router /items [get]
func (h *ItemHandler) List(c echo.Context, p *auth.Principal) error {
	items, err := h.itemService.List(c.Request().Context(), p.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

// Create godoc
// @Summary Create an item
// @Tags items
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateItemRequest true "Item data"
// @Success 201 {object} model.Item
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /items [post]
func (h *ItemHandler) Create(c echo.Context, p *auth.Principal) error {
	var req CreateItemRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	item, err := h.itemService.Create(c.Request().Context(), p.UserID, req.Name, req.Description)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, item)
}

// Update godoc
// @Summary Update an item
// @Tags items
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Item ID"
// @Param request body UpdateItemRequest true "Fields to change"
// @Success 200 {object} model.Item
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /items/{id} [put]
func (h *ItemHandler) Update(c echo.Context, p *auth.Principal) error {
	itemID, err := parseItemID(c)
	if err != nil {
		return err
	}

	var req UpdateItemRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	item, err := h.itemService.Update(c.Request().Context(), p.UserID, itemID, req.Name, req.Description)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, item)
}

// Delete godoc
// @Summary Delete an item
// @Tags items
// @Produce json
// @Security BearerAuth
// @Param id path string true "Item ID"
// @Success 200 {object} DeleteItemResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /items/{id} [delete]
func (h *ItemHandler) Delete(c echo.Context, p *auth.Principal) error {
	itemID, err := parseItemID(c)
	if err != nil {
		return err
	}

	deleted, err := h.itemService.Delete(c.Request().Context(), p.UserID, itemID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, DeleteItemResponse{Message: "item deleted", ID: deleted})
}

// parseItemID treats a malformed id like an unknown one.
func parseItemID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, apperrors.ErrNotFound
	}
	return id, nil
}
