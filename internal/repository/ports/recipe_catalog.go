package ports

import (
	"context"
	"errors"

	"github.com/njprem/recipe_browser/internal/domain"
)

var ErrObjectNotFound = errors.New("object not found")

// RecipeCatalog is the remote recipe API.
type RecipeCatalog interface {
	ListRecipes(ctx context.Context) ([]domain.Recipe, error)
	ListFavorites(ctx context.Context, token string) ([]domain.FavoriteAssociation, error)
	ToggleFavorite(ctx context.Context, token, recipeID string) (domain.ToggleResponse, error)
}

// ImageSource fetches the raw bytes behind a recipe image reference.
type ImageSource interface {
	Fetch(ctx context.Context, url string) ([]byte, string, error)
}
