package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"

	apperrors "stockpile/internal/errors"
)

// Identity holds the verified claims of a federated assertion.
type Identity struct {
	Subject string
	Email   string
	Name    string
	Picture string
}

// AssertionVerifier verifies a third-party identity assertion.
type AssertionVerifier interface {
	Verify(ctx context.Context, credential string) (*Identity, error)
}

// GoogleVerifier verifies Google Identity Services ID tokens: signature
// against Google's published keys, issuer, audience (our client id) and expiry.
type GoogleVerifier struct {
	verifier *oidc.IDTokenVerifier
}

// NewGoogleVerifier builds a verifier that fetches signing keys from jwksURL
// on first use. ctx bounds the lifetime of those background key fetches.
func NewGoogleVerifier(ctx context.Context, issuer, jwksURL, clientID string) (*GoogleVerifier, error) {
	if clientID == "" {
		return nil, errors.New("google client id is required")
	}
	return NewGoogleVerifierWithKeySet(issuer, clientID, oidc.NewRemoteKeySet(ctx, jwksURL)), nil
}

// NewGoogleVerifierWithKeySet builds a verifier over an explicit key set.
func NewGoogleVerifierWithKeySet(issuer, clientID string, keys oidc.KeySet) *GoogleVerifier {
	return &GoogleVerifier{
		verifier: oidc.NewVerifier(issuer, keys, &oidc.Config{ClientID: clientID}),
	}
}

type googleClaims struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// Verify validates credential and extracts the identity claims.
func (v *GoogleVerifier) Verify(ctx context.Context, credential string) (*Identity, error) {
	idToken, err := v.verifier.Verify(ctx, credential)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidAssertion, err)
	}

	var claims googleClaims
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("%w: parse claims: %v", apperrors.ErrInvalidAssertion, err)
	}
	if idToken.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", apperrors.ErrInvalidAssertion)
	}
	if claims.Email == "" {
		return nil, fmt.Errorf("%w: missing email", apperrors.ErrInvalidAssertion)
	}
	// Accounts are keyed by email, so an unverified address could claim someone else's account.
	if !claims.EmailVerified {
		return nil, fmt.Errorf("%w: email not verified", apperrors.ErrInvalidAssertion)
	}

	return &Identity{
		Subject: idToken.Subject,
		Email:   claims.Email,
		Name:    claims.Name,
		Picture: claims.Picture,
	}, nil
}

// DisabledVerifier rejects every assertion; it stands in when no client id is configured.
type DisabledVerifier struct{}

// Verify always fails with ErrInvalidAssertion.
func (DisabledVerifier) Verify(context.Context, string) (*Identity, error) {
	return nil, fmt.Errorf("%w: federated sign-in is not configured", apperrors.ErrInvalidAssertion)
}
