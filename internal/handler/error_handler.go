package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	apperrors "stockpile/internal/errors"
)

// ErrorHandler renders every error returned by a handler, the guard or the
// router as the JSON error envelope. The stack field carries the full error
// chain and is omitted in production.
func ErrorHandler(production bool, log logrus.FieldLogger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, resp := toResponse(err, c)
		if !production {
			resp.Stack = err.Error()
		}
		if status >= http.StatusInternalServerError {
			log.WithError(err).WithField("path", c.Request().URL.Path).Error("request failed")
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(status)
		} else {
			writeErr = c.JSON(status, resp)
		}
		if writeErr != nil {
			log.WithError(writeErr).Warn("write error response")
		}
	}
}

func toResponse(err error, c echo.Context) (int, apperrors.ErrorResponse) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Internal != nil {
			if mapped := apperrors.MapErrorToHTTP(he.Internal); mapped.StatusCode != http.StatusInternalServerError {
				return mapped.StatusCode, mapped.ToErrorResponse()
			}
		}
		msg := http.StatusText(he.Code)
		if s, ok := he.Message.(string); ok && s != "" {
			msg = s
		}
		if he.Code == http.StatusNotFound {
			msg = fmt.Sprintf("not found - %s", c.Request().URL.RequestURI())
		}
		return he.Code, apperrors.ErrorResponse{Error: msg, Code: statusCode(he.Code)}
	}

	mapped := apperrors.MapErrorToHTTP(err)
	return mapped.StatusCode, mapped.ToErrorResponse()
}

// statusCode turns 404 into "NOT_FOUND".
func statusCode(status int) string {
	text := http.StatusText(status)
	if text == "" {
		return "HTTP_ERROR"
	}
	return strings.ToUpper(strings.ReplaceAll(text, " ", "_"))
}

// bindAndValidate decodes the request body into req and runs its validate
// tags. Missing required fields are reported as ErrMissingField.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body").SetInternal(err)
	}
	if err := c.Validate(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fe.Field())
			}
			return fmt.Errorf("%w: %s", apperrors.ErrMissingField, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %v", apperrors.ErrMissingField, err)
	}
	return nil
}
