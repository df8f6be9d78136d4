package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"stockpile/internal/auth"
)

// UserHandler serves the authenticated user's own data.
type UserHandler struct{}

// NewUserHandler creates a new user handler.
func NewUserHandler() *UserHandler {
	return &UserHandler{}
}

// ProfileResponse is the public view of the caller's account.
type ProfileResponse struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Name     string    `json:"name,omitempty"`
	Picture  string    `json:"picture,omitempty"`
}

// Profile godoc
// @Summary Get the caller's profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} ProfileResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /users/profile [get]
func (h *UserHandler) Profile(c echo.Context, p *auth.Principal) error {
	return c.JSON(http.StatusOK, ProfileResponse{
		ID:       p.UserID,
		Username: p.Username,
		Name:     p.Name,
		Picture:  p.Picture,
	})
}
