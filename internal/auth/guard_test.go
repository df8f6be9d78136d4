package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	apperrors "stockpile/internal/errors"
	"stockpile/internal/metrics"
	"stockpile/internal/model"
)

type fakeUsers map[uuid.UUID]*model.User

func (f fakeUsers) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	if u, ok := f[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type brokenUsers struct{}

func (brokenUsers) FindByID(context.Context, uuid.UUID) (*model.User, error) {
	return nil, errors.New("connection refused")
}

func newGuardFixture(t *testing.T) (*Guard, *JWTService, *model.User, fakeUsers, *metrics.Metrics) {
	t.Helper()
	user := &model.User{ID: uuid.New(), Username: "bob", PasswordHash: "secret-hash", Name: "Bob"}
	users := fakeUsers{user.ID: user}
	jwtService := NewJWTService("test-secret")
	m := metrics.New()
	return NewGuard(jwtService, users, m), jwtService, user, users, m
}

func TestGuard_Authorize(t *testing.T) {
	guard, jwtService, user, _, _ := newGuardFixture(t)
	token, err := jwtService.Issue(user.ID)
	require.NoError(t, err)

	p, err := guard.Authorize(context.Background(), "Bearer "+token)
	require.NoError(t, err)
	assert.Equal(t, &Principal{UserID: user.ID, Username: "bob", Name: "Bob"}, p)
}

func TestGuard_Rejections(t *testing.T) {
	guard, jwtService, _, _, m := newGuardFixture(t)
	ghostToken, err := jwtService.Issue(uuid.New())
	require.NoError(t, err)
	foreignToken, err := NewJWTService("other-secret").Issue(uuid.New())
	require.NoError(t, err)

	tests := []struct {
		name    string
		header  string
		wantErr error
		reason  string
	}{
		{"no header", "", apperrors.ErrNoToken, "no_token"},
		{"basic scheme", "Basic Ym9iOnB3", apperrors.ErrNoToken, "no_token"},
		{"lowercase scheme", "bearer " + ghostToken, apperrors.ErrNoToken, "no_token"},
		{"garbage token", "Bearer garbage", apperrors.ErrInvalidToken, "invalid_token"},
		{"empty token", "Bearer ", apperrors.ErrInvalidToken, "invalid_token"},
		{"foreign secret", "Bearer " + foreignToken, apperrors.ErrInvalidToken, "invalid_token"},
		{"deleted user", "Bearer " + ghostToken, apperrors.ErrUserNotFound, "user_not_found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(m.GuardRejections.WithLabelValues(tt.reason))

			p, err := guard.Authorize(context.Background(), tt.header)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, p)

			after := testutil.ToFloat64(m.GuardRejections.WithLabelValues(tt.reason))
			assert.Equal(t, before+1, after)
		})
	}
}

func TestGuard_DeletionRevokesImmediately(t *testing.T) {
	guard, jwtService, user, users, _ := newGuardFixture(t)
	token, err := jwtService.Issue(user.ID)
	require.NoError(t, err)

	_, err = guard.Authorize(context.Background(), "Bearer "+token)
	require.NoError(t, err)

	delete(users, user.ID)

	_, err = guard.Authorize(context.Background(), "Bearer "+token)
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestGuard_StoreErrorIsNotARejection(t *testing.T) {
	jwtService := NewJWTService("test-secret")
	guard := NewGuard(jwtService, brokenUsers{}, nil)
	token, err := jwtService.Issue(uuid.New())
	require.NoError(t, err)

	_, err = guard.Authorize(context.Background(), "Bearer "+token)
	require.Error(t, err)
	assert.NotErrorIs(t, err, apperrors.ErrUserNotFound)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestGuard_Protect(t *testing.T) {
	guard, jwtService, user, _, _ := newGuardFixture(t)
	token, err := jwtService.Issue(user.ID)
	require.NoError(t, err)

	var seen *Principal
	h := guard.Protect(func(c echo.Context, p *Principal) error {
		seen = p
		return c.NoContent(http.StatusNoContent)
	})

	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec := httptest.NewRecorder()
	require.NoError(t, h(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, user.ID, seen.UserID)

	seen = nil
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	rec = httptest.NewRecorder()
	err = h(e.NewContext(req, rec))
	assert.ErrorIs(t, err, apperrors.ErrNoToken)
	assert.Nil(t, seen, "handler must not run for rejected requests")
}
