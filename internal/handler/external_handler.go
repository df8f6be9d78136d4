package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"stockpile/internal/service"
)

// ExternalHandler proxies third-party APIs.
type ExternalHandler struct {
	directoryService service.DirectoryService
}

// NewExternalHandler creates a new external handler.
func NewExternalHandler(directoryService service.DirectoryService) *ExternalHandler {
	return &ExternalHandler{directoryService: directoryService}
}

// RandomAPI godoc
// @Summary Fetch an entry from the public-API directory
// @Description Returns the upstream body verbatim, or a sample entry when the directory is unavailable.
// @Tags external
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 502 {object} errors.ErrorResponse
// @Router /external/random-api [get]
func (h *ExternalHandler) RandomAPI(c echo.Context) error {
	body, err := h.directoryService.Fetch(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSONBlob(http.StatusOK, body)
}
