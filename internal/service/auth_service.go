package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"stockpile/internal/auth"
	apperrors "stockpile/internal/errors"
	"stockpile/internal/metrics"
	"stockpile/internal/model"
	"stockpile/internal/repository"
)

const bcryptCost = 10

// dummyHash is compared against when the username is unknown so that both
// failure paths cost one bcrypt comparison.
var dummyHash = sync.OnceValue(func() []byte {
	h, _ := bcrypt.GenerateFromPassword([]byte("stockpile-dummy-password"), bcryptCost)
	return h
})

// NormalizeUsername lowercases and trims a username. Every lookup and insert
// goes through it so "Ann@Example.com " and "ann@example.com" are one account.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// AuthService handles password authentication.
type AuthService interface {
	Register(ctx context.Context, username, password string) (*model.User, string, error)
	Login(ctx context.Context, username, password string) (*model.User, string, error)
}

type authService struct {
	users      repository.UserRepository
	jwtService *auth.JWTService
	metrics    *metrics.Metrics
}

// NewAuthService creates a new authentication service. m may be nil.
func NewAuthService(users repository.UserRepository, jwtService *auth.JWTService, m *metrics.Metrics) AuthService {
	return &authService{
		users:      users,
		jwtService: jwtService,
		metrics:    m,
	}
}

// Register creates a user with a hashed password and returns it with a fresh token.
func (s *authService) Register(ctx context.Context, username, password string) (user *model.User, token string, err error) {
	defer func() { s.metrics.ObserveAuth(metrics.MethodRegister, err) }()

	username = NormalizeUsername(username)
	if username == "" || password == "" {
		return nil, "", fmt.Errorf("%w: username and password are required", apperrors.ErrMissingField)
	}

	_, err = s.users.FindByUsername(ctx, username)
	if err == nil {
		return nil, "", apperrors.ErrDuplicateUser
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", fmt.Errorf("check user existence: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user = &model.User{
		Username:     username,
		PasswordHash: string(hashed),
	}
	if err = s.users.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, "", apperrors.ErrDuplicateUser
		}
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	token, err = s.jwtService.Issue(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	return user, token, nil
}

// Login verifies username and password. Unknown users and wrong passwords
// produce the same error.
func (s *authService) Login(ctx context.Context, username, password string) (user *model.User, token string, err error) {
	defer func() { s.metrics.ObserveAuth(metrics.MethodPassword, err) }()

	username = NormalizeUsername(username)
	if username == "" || password == "" {
		return nil, "", fmt.Errorf("%w: username and password are required", apperrors.ErrMissingField)
	}

	user, err = s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(password))
			return nil, "", apperrors.ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("find user: %w", err)
	}

	if err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", apperrors.ErrInvalidCredentials
	}

	token, err = s.jwtService.Issue(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	return user, token, nil
}
