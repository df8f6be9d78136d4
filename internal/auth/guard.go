package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	apperrors "stockpile/internal/errors"
	"stockpile/internal/metrics"
	"stockpile/internal/model"
)

const bearerPrefix = "Bearer "

// Principal is the authenticated caller of a protected request. It never
// carries the password hash.
type Principal struct {
	UserID   uuid.UUID
	Username string
	Name     string
	Picture  string
}

// TokenVerifier resolves a bearer token to a user id.
type TokenVerifier interface {
	Verify(token string) (uuid.UUID, error)
}

// UserFinder loads users by id; it returns gorm.ErrRecordNotFound for unknown ids.
type UserFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
}

// ProtectedHandler is an echo handler that receives the authorized principal explicitly.
type ProtectedHandler func(c echo.Context, p *Principal) error

// Guard authorizes requests for protected routes.
type Guard struct {
	tokens  TokenVerifier
	users   UserFinder
	metrics *metrics.Metrics
}

// NewGuard creates a guard. m may be nil.
func NewGuard(tokens TokenVerifier, users UserFinder, m *metrics.Metrics) *Guard {
	return &Guard{tokens: tokens, users: users, metrics: m}
}

// Authorize resolves the raw Authorization header to a principal. The user
// is reloaded on every call, so deleting an account revokes its tokens
// immediately.
func (g *Guard) Authorize(ctx context.Context, header string) (*Principal, error) {
	if !strings.HasPrefix(header, bearerPrefix) {
		g.metrics.ObserveRejection("no_token")
		return nil, apperrors.ErrNoToken
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))

	userID, err := g.tokens.Verify(token)
	if err != nil {
		g.metrics.ObserveRejection("invalid_token")
		if errors.Is(err, apperrors.ErrInvalidToken) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidToken, err)
	}

	user, err := g.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			g.metrics.ObserveRejection("user_not_found")
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	return &Principal{
		UserID:   user.ID,
		Username: user.Username,
		Name:     user.Name,
		Picture:  user.Picture,
	}, nil
}

// Protect adapts fn to an echo handler that runs only for authorized
// requests. Rejections are returned to echo's error handler unchanged.
func (g *Guard) Protect(fn ProtectedHandler) echo.HandlerFunc {
	return func(c echo.Context) error {
		p, err := g.Authorize(c.Request().Context(), c.Request().Header.Get(echo.HeaderAuthorization))
		if err != nil {
			return err
		}
		return fn(c, p)
	}
}
