package errors

import (
	stderrors "errors"
	"net/http"
)

var (
	// ErrMissingField is returned when a required request field is absent or empty.
	ErrMissingField = stderrors.New("missing required field")
	// ErrDuplicateUser is returned when registering a username that is already taken.
	ErrDuplicateUser = stderrors.New("user already exists")
	// ErrInvalidCredentials is returned for an unknown username and for a wrong password alike.
	ErrInvalidCredentials = stderrors.New("invalid username or password")
	// ErrInvalidAssertion is returned when a federated identity assertion fails verification.
	ErrInvalidAssertion = stderrors.New("invalid federated credential")
	// ErrInvalidToken is returned when a bearer token is malformed, tampered with or expired.
	ErrInvalidToken = stderrors.New("not authorized, token failed")
	// ErrNoToken is returned when a protected request carries no bearer token.
	ErrNoToken = stderrors.New("not authorized, no token")
	// ErrUserNotFound is returned when a valid token references a user that no longer exists.
	ErrUserNotFound = stderrors.New("not authorized, user not found")
	// ErrNotFound is returned when an item does not exist.
	ErrNotFound = stderrors.New("item not found")
	// ErrForbidden is returned when a caller tries to mutate an item it does not own.
	ErrForbidden = stderrors.New("action not authorized")
	// ErrUpstreamUnavailable is returned when the public-API directory cannot be reached.
	ErrUpstreamUnavailable = stderrors.New("upstream unavailable")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
	Stack string `json:"stack,omitempty"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

type mapping struct {
	target error
	status int
	code   string
	// verbose keeps the wrapped message (e.g. the name of the missing field).
	verbose bool
}

var mappings = []mapping{
	{ErrMissingField, http.StatusBadRequest, "MISSING_FIELD", true},
	{ErrDuplicateUser, http.StatusBadRequest, "DUPLICATE_USER", false},
	{ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS", false},
	{ErrInvalidAssertion, http.StatusUnauthorized, "INVALID_ASSERTION", false},
	{ErrNoToken, http.StatusUnauthorized, "NO_TOKEN", false},
	{ErrInvalidToken, http.StatusUnauthorized, "INVALID_TOKEN", false},
	{ErrUserNotFound, http.StatusUnauthorized, "USER_NOT_FOUND", false},
	{ErrNotFound, http.StatusNotFound, "NOT_FOUND", false},
	// Ownership violations answer 401 rather than 403, matching the existing clients.
	{ErrForbidden, http.StatusUnauthorized, "FORBIDDEN", false},
	{ErrUpstreamUnavailable, http.StatusBadGateway, "UPSTREAM_UNAVAILABLE", true},
}

// MapErrorToHTTP maps domain errors (possibly wrapped) to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	for _, m := range mappings {
		if stderrors.Is(err, m.target) {
			msg := m.target.Error()
			if m.verbose {
				msg = err.Error()
			}
			return NewHTTPError(m.status, msg, m.code)
		}
	}
	return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
}
