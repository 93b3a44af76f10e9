package http

import (
	_ "embed"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/njprem/recipe_browser/internal/browser"
	"github.com/njprem/recipe_browser/internal/domain"
)

const fallbackAssetPath = "/static/cake.svg"

//go:embed static/cake.svg
var cakeSVG []byte

type recipePage struct {
	ID       string
	Found    bool
	Recipe   domain.Recipe
	ImageURL string
}

// RegisterPages serves the recipe detail link targets and the placeholder image.
// With a detailBaseURL the detail link redirects to the external recipe page.
func RegisterPages(g *echo.Group, registry *browser.Registry, detailBaseURL, fallbackURL string) {
	if fallbackURL == "" {
		fallbackURL = fallbackAssetPath
	}
	detailBaseURL = strings.TrimRight(detailBaseURL, "/")

	g.GET(fallbackAssetPath, func(c echo.Context) error {
		c.Response().Header().Set("Cache-Control", "public, max-age=86400")
		return c.Blob(http.StatusOK, "image/svg+xml", cakeSVG)
	})

	g.GET("/recipe/:id", func(c echo.Context) error {
		id := c.Param("id")
		if detailBaseURL != "" {
			return c.Redirect(http.StatusTemporaryRedirect, detailBaseURL+"/"+url.PathEscape(id))
		}

		page := recipePage{ID: id}
		if inst, ok := registry.Lookup(CurrentSession(c)); ok {
			for _, r := range inst.Snapshot().Recipes {
				if r.ID == id {
					page.Found = true
					page.Recipe = r
					page.ImageURL = r.ImageOr(fallbackURL)
					break
				}
			}
		}
		status := http.StatusOK
		if !page.Found {
			status = http.StatusNotFound
		}
		var sb strings.Builder
		if err := pageTemplates.ExecuteTemplate(&sb, "recipe", page); err != nil {
			return err
		}
		return c.HTML(status, sb.String())
	})
}
