package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/njprem/recipe_browser/internal/domain"
	"github.com/njprem/recipe_browser/internal/repository/recipeapi"
	"github.com/njprem/recipe_browser/internal/service"
	"github.com/njprem/recipe_browser/internal/util"
)

type FavoriteHandler struct {
	browser *service.BrowserService
}

type ToggleFavoriteRequest struct {
	RecipeID string `json:"recipeId" form:"recipeId"`
}

type ToggleFavoriteResponse struct {
	RecipeID string               `json:"recipeId"`
	Outcome  domain.ToggleOutcome `json:"outcome"`
	Favorite bool                 `json:"favorite"`
}

func RegisterFavorites(g *echo.Group, browserSvc *service.BrowserService) {
	handler := &FavoriteHandler{browser: browserSvc}

	g.POST("/favorites/toggle", handler.toggleForm)
	g.POST("/api/v1/favorites/toggle", handler.toggleJSON)
}

// toggleForm keeps the page silent on failure: the error is logged by the
// service and the user lands back on an unchanged grid.
func (h *FavoriteHandler) toggleForm(c echo.Context) error {
	sessionID := CurrentSession(c)
	var req ToggleFavoriteRequest
	if err := c.Bind(&req); err == nil {
		_, _ = h.browser.Toggle(c.Request().Context(), sessionID, req.RecipeID)
	}
	return c.Redirect(http.StatusSeeOther, "/browse")
}

func (h *FavoriteHandler) toggleJSON(c echo.Context) error {
	sessionID := CurrentSession(c)
	var req ToggleFavoriteRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}
	recipeID := req.RecipeID

	outcome, err := h.browser.Toggle(c.Request().Context(), sessionID, recipeID)
	if err != nil {
		var apiErr *recipeapi.APIError
		switch {
		case errors.Is(err, service.ErrRecipeIDRequired):
			return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
		case errors.Is(err, service.ErrMissingCredential):
			return c.JSON(http.StatusUnauthorized, util.Error(err.Error()))
		case errors.As(err, &apiErr) && apiErr.Unauthorized():
			return c.JSON(http.StatusUnauthorized, util.Error("recipe api rejected the stored credential"))
		default:
			return c.JSON(http.StatusBadGateway, util.Error("unable to toggle favorite"))
		}
	}

	return c.JSON(http.StatusOK, ToggleFavoriteResponse{
		RecipeID: recipeID,
		Outcome:  outcome,
		Favorite: h.browser.IsFavorite(sessionID, recipeID),
	})
}
