package socialimg

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// CacheControl is sent with every card. Cards only change when an article
// is renamed, which is rare enough to let clients keep them for six hours.
const CacheControl = "public, max-age=21600, immutable"

// Route is the path the handler is mounted on.
const Route = "/articles/:slug/social-image.png"

// Handler serves cards over HTTP.
type Handler struct {
	service *Service
}

// NewHandler creates a Handler backed by service.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the card endpoint on e, behind any route-level
// middleware given.
func (h *Handler) RegisterRoutes(e *echo.Echo, m ...echo.MiddlewareFunc) {
	e.GET(Route, h.Image, m...)
}

// Image writes the card for the :slug path parameter.
func (h *Handler) Image(c echo.Context) error {
	img, err := h.service.Handle(c.Request().Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound)
		}
		return err
	}
	c.Response().Header().Set("Cache-Control", CacheControl)
	return c.Blob(http.StatusOK, img.ContentType, img.Data)
}
