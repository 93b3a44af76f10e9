package http

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/njprem/recipe_browser/internal/service"
)

type ImageHandler struct {
	thumbnails *service.ThumbnailService
	fallback   string
	logger     *slog.Logger
}

func RegisterImages(g *echo.Group, thumbnails *service.ThumbnailService, fallbackURL string, logger *slog.Logger) {
	if fallbackURL == "" {
		fallbackURL = fallbackAssetPath
	}
	if logger == nil {
		logger = slog.Default()
	}
	handler := &ImageHandler{thumbnails: thumbnails, fallback: fallbackURL, logger: logger}
	g.GET("/images/:id", handler.thumbnail)
}

// thumbnail always answers with an image: any failure falls back to the
// placeholder asset.
func (h *ImageHandler) thumbnail(c echo.Context) error {
	recipeID := c.Param("id")
	thumb, err := h.thumbnails.Thumbnail(c.Request().Context(), CurrentSession(c), recipeID)
	if err != nil {
		h.logger.Warn("thumbnail unavailable", "recipe_id", recipeID, "error", err)
		return c.Redirect(http.StatusFound, h.fallback)
	}
	c.Response().Header().Set("Cache-Control", "private, max-age=3600")
	c.Response().Header().Set("X-Thumbnail-Source", thumb.Source)
	return c.Blob(http.StatusOK, thumb.ContentType, thumb.Bytes)
}
