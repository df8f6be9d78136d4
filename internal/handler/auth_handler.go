package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"stockpile/internal/model"
	"stockpile/internal/service"
)

// AuthHandler handles credential exchange endpoints.
type AuthHandler struct {
	authService      service.AuthService
	federatedService service.FederatedService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService, federatedService service.FederatedService) *AuthHandler {
	return &AuthHandler{
		authService:      authService,
		federatedService: federatedService,
	}
}

// CredentialsRequest is the body of register and login requests.
type CredentialsRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// GoogleRequest carries the ID token issued by Google Identity Services.
type GoogleRequest struct {
	Credential string `json:"credential" validate:"required"`
}

// AuthResponse is returned by every successful credential exchange.
type AuthResponse struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Token    string    `json:"token"`
}

func newAuthResponse(user *model.User, token string) AuthResponse {
	return AuthResponse{ID: user.ID, Username: user.Username, Token: token}
}

// Register godoc
// @Summary Register a new user
// @Tags users
// @Accept json
// @Produce json
// @Param request body CredentialsRequest true "Registration data"
// @Success 201 {object} AuthResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /users/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req CredentialsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, token, err := h.authService.Register(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, newAuthResponse(user, token))
}

// Login godoc
// @Summary Login with username and password
// @Tags users
// @Accept json
// @Produce json
// @Param request body CredentialsRequest true "Login credentials"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /users/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req CredentialsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, token, err := h.authService.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, newAuthResponse(user, token))
}

// Google godoc
// @Summary Sign in with a Google ID token
// @Description Creates the account on first sign-in and links an existing password account with the same email.
// @Tags users
// @Accept json
// @Produce json
// @Param request body GoogleRequest true "Google credential"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /users/google [post]
func (h *AuthHandler) Google(c echo.Context) error {
	var req GoogleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, token, err := h.federatedService.LoginWithAssertion(c.Request().Context(), req.Credential)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, newAuthResponse(user, token))
}
