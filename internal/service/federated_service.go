package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"stockpile/internal/auth"
	apperrors "stockpile/internal/errors"
	"stockpile/internal/metrics"
	"stockpile/internal/model"
	"stockpile/internal/repository"
)

// FederatedService signs users in with a third-party identity assertion.
type FederatedService interface {
	LoginWithAssertion(ctx context.Context, credential string) (*model.User, string, error)
}

type federatedService struct {
	users      repository.UserRepository
	verifier   auth.AssertionVerifier
	jwtService *auth.JWTService
	metrics    *metrics.Metrics
	log        logrus.FieldLogger
}

// NewFederatedService creates a federated sign-in service. m may be nil.
func NewFederatedService(
	users repository.UserRepository,
	verifier auth.AssertionVerifier,
	jwtService *auth.JWTService,
	m *metrics.Metrics,
	log logrus.FieldLogger,
) FederatedService {
	return &federatedService{
		users:      users,
		verifier:   verifier,
		jwtService: jwtService,
		metrics:    m,
		log:        log,
	}
}

// LoginWithAssertion verifies credential and maps it onto a local user. The
// Google subject is matched first, so a linked account keeps signing in after
// its email changes. Otherwise unknown emails get a new account, password
// accounts are linked once and a linked account is never relinked to another
// subject.
func (s *federatedService) LoginWithAssertion(ctx context.Context, credential string) (user *model.User, token string, err error) {
	defer func() { s.metrics.ObserveAuth(metrics.MethodGoogle, err) }()

	if strings.TrimSpace(credential) == "" {
		return nil, "", fmt.Errorf("%w: credential is required", apperrors.ErrMissingField)
	}

	identity, err := s.verifier.Verify(ctx, credential)
	if err != nil {
		return nil, "", err
	}

	user, err = s.resolve(ctx, identity)
	if err != nil {
		return nil, "", err
	}

	token, err = s.jwtService.Issue(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	return user, token, nil
}

func (s *federatedService) resolve(ctx context.Context, identity *auth.Identity) (*model.User, error) {
	username := NormalizeUsername(identity.Email)

	user, err := s.find(ctx, identity.Subject, username)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return s.create(ctx, username, identity)
	case err != nil:
		return nil, err
	case !user.HasGoogleID():
		return s.link(ctx, user, identity)
	}
	return user, nil
}

// find looks the identity up by Google subject, then by username.
func (s *federatedService) find(ctx context.Context, subject, username string) (*model.User, error) {
	user, err := s.users.FindByGoogleID(ctx, subject)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("find user by google id: %w", err)
	}

	user, err = s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

func (s *federatedService) create(ctx context.Context, username string, identity *auth.Identity) (*model.User, error) {
	hash, err := unusablePasswordHash()
	if err != nil {
		return nil, err
	}

	subject := identity.Subject
	user := &model.User{
		Username:     username,
		PasswordHash: hash,
		GoogleID:     &subject,
		Name:         displayName(identity),
		Picture:      identity.Picture,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("create user: %w", err)
		}
		// A concurrent sign-in created the row first.
		existing, findErr := s.find(ctx, subject, username)
		if findErr != nil {
			return nil, fmt.Errorf("reload user after conflict: %w", findErr)
		}
		return existing, nil
	}

	s.log.WithFields(logrus.Fields{"user_id": user.ID, "username": username}).Info("created federated account")
	return user, nil
}

func (s *federatedService) link(ctx context.Context, user *model.User, identity *auth.Identity) (*model.User, error) {
	subject := identity.Subject
	user.GoogleID = &subject
	if user.Name == "" {
		user.Name = displayName(identity)
	}
	if user.Picture == "" {
		user.Picture = identity.Picture
	}
	if err := s.users.Update(ctx, user); err != nil {
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("link google account: %w", err)
		}
		// A concurrent sign-in linked the subject to another row first.
		existing, findErr := s.users.FindByGoogleID(ctx, subject)
		if findErr != nil {
			return nil, fmt.Errorf("reload user after conflict: %w", findErr)
		}
		return existing, nil
	}

	s.log.WithField("user_id", user.ID).Info("linked google account")
	return user, nil
}

func displayName(identity *auth.Identity) string {
	if identity.Name != "" {
		return identity.Name
	}
	local, _, _ := strings.Cut(identity.Email, "@")
	return local
}

// unusablePasswordHash hashes a random secret nobody knows, so federated
// accounts cannot be entered through password login.
func unusablePasswordHash() (string, error) {
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return "", fmt.Errorf("generate password secret: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(hex.EncodeToString(secret)), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
