package router

import (
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	echoSwagger "github.com/swaggo/echo-swagger"

	"stockpile/internal/auth"
	"stockpile/internal/config"
	"stockpile/internal/handler"
	"stockpile/internal/logging"
	"stockpile/internal/metrics"
)

// Handlers groups the HTTP handlers mounted under /api.
type Handlers struct {
	Auth     *handler.AuthHandler
	User     *handler.UserHandler
	Item     *handler.ItemHandler
	External *handler.ExternalHandler
}

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	log logrus.FieldLogger,
	m *metrics.Metrics,
	guard *auth.Guard,
	h Handlers,
) {
	e.HTTPErrorHandler = handler.ErrorHandler(cfg.IsProduction(), log)
	e.Validator = NewValidator()

	e.Use(middleware.RequestID())
	e.Use(logging.RequestLogger(log))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	if cfg.StaticDir != "" {
		e.Use(middleware.StaticWithConfig(middleware.StaticConfig{
			Root:    cfg.StaticDir,
			HTML5:   true,
			Skipper: skipNonSPA,
		}))
	}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/metrics", echo.WrapHandler(m.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	api.GET("", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"message": "API is running"})
	})

	// Public routes
	api.POST("/users/register", h.Auth.Register)
	api.POST("/users/login", h.Auth.Login)
	api.POST("/users/google", h.Auth.Google)
	api.GET("/external/random-api", h.External.RandomAPI)

	// Protected routes receive the principal from the guard.
	api.GET("/users/profile", guard.Protect(h.User.Profile))
	api.GET("/items", guard.Protect(h.Item.List))
	api.POST("/items", guard.Protect(h.Item.Create))
	api.PUT("/items/:id", guard.Protect(h.Item.Update))
	api.DELETE("/items/:id", guard.Protect(h.Item.Delete))
}

// skipNonSPA keeps API and tooling paths out of the static fallback so their
// unknown routes still answer with the JSON envelope.
func skipNonSPA(c echo.Context) bool {
	p := c.Request().URL.Path
	for _, prefix := range []string{"/api", "/swagger", "/metrics", "/healthz"} {
		if p == prefix || strings.HasPrefix(p, prefix+"/") {
			return true
		}
	}
	return false
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator reports field errors by their JSON names.
func NewValidator() *CustomValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &CustomValidator{validator: v}
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
