package auth

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "stockpile/internal/errors"
)

func TestJWTService_IssueAndVerify(t *testing.T) {
	svc := NewJWTService("test-secret")
	userID := uuid.New()

	token, err := svc.Issue(userID)
	require.NoError(t, err)

	got, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestJWTService_ExpiresAfterThirtyDays(t *testing.T) {
	issuedAt := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	svc := NewJWTService("test-secret").WithClock(func() time.Time { return issuedAt })

	token, err := svc.Issue(uuid.New())
	require.NoError(t, err)

	claims := &Claims{}
	_, _, err = jwt.NewParser().ParseUnverified(token, claims)
	require.NoError(t, err)
	assert.Equal(t, issuedAt.Add(30*24*time.Hour).Unix(), claims.ExpiresAt.Unix())
	assert.Equal(t, issuedAt.Unix(), claims.IssuedAt.Unix())
}

func TestJWTService_RejectsExpired(t *testing.T) {
	past := time.Now().Add(-31 * 24 * time.Hour)
	svc := NewJWTService("test-secret").WithClock(func() time.Time { return past })

	token, err := svc.Issue(uuid.New())
	require.NoError(t, err)

	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestJWTService_TokensAreBoundToTheirUser(t *testing.T) {
	svc := NewJWTService("test-secret")
	alice, bob := uuid.New(), uuid.New()

	aliceToken, err := svc.Issue(alice)
	require.NoError(t, err)
	bobToken, err := svc.Issue(bob)
	require.NoError(t, err)

	gotAlice, err := svc.Verify(aliceToken)
	require.NoError(t, err)
	gotBob, err := svc.Verify(bobToken)
	require.NoError(t, err)

	assert.Equal(t, alice, gotAlice)
	assert.NotEqual(t, bob, gotAlice)
	assert.Equal(t, bob, gotBob)
}

func TestJWTService_RejectsOneBitSignatureChange(t *testing.T) {
	svc := NewJWTService("test-secret")
	token, err := svc.Issue(uuid.New())
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	sig, err := base64.RawURLEncoding.DecodeString(parts[2])
	require.NoError(t, err)
	sig[0] ^= 0x01
	parts[2] = base64.RawURLEncoding.EncodeToString(sig)

	_, err = svc.Verify(strings.Join(parts, "."))
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestJWTService_RejectsWrongSecret(t *testing.T) {
	token, err := NewJWTService("right-secret").Issue(uuid.New())
	require.NoError(t, err)

	_, err = NewJWTService("wrong-secret").Verify(token)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestJWTService_RejectsMalformed(t *testing.T) {
	svc := NewJWTService("test-secret")

	for _, token := range []string{"", "not.a.jwt", "abc"} {
		_, err := svc.Verify(token)
		assert.ErrorIs(t, err, apperrors.ErrInvalidToken, token)
	}
}

func TestJWTService_RejectsNoneAlgorithm(t *testing.T) {
	claims := &Claims{
		UserID: uuid.NewString(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewJWTService("test-secret").Verify(token)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestJWTService_RejectsMissingExpiryOrBadID(t *testing.T) {
	secret := []byte("test-secret")

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{UserID: uuid.NewString()}).SignedString(secret)
	require.NoError(t, err)

	badID, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID: "not-a-uuid",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(secret)
	require.NoError(t, err)

	svc := NewJWTService("test-secret")
	for _, token := range []string{noExpiry, badID} {
		_, err := svc.Verify(token)
		assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
	}
}
