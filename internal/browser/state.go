// Package browser holds the recipe browser view model: an immutable State,
// the events that transition it, and the pure derivation of what is rendered.
package browser

import (
	"fmt"
	"strings"

	"github.com/njprem/recipe_browser/internal/domain"
)

type LoadStatus string

const (
	StatusIdle    LoadStatus = "idle"
	StatusLoading LoadStatus = "loading"
	StatusLoaded  LoadStatus = "loaded"
	StatusFailed  LoadStatus = "failed"
	StatusSkipped LoadStatus = "skipped"
)

// State is treated as a value: the reducer returns a new State for every
// applied event and never mutates the slices held by the previous one.
type State struct {
	Recipes         []domain.Recipe
	Favorites       domain.FavoriteSet
	SearchText      string
	Page            int
	Generation      uint64
	CatalogStatus   LoadStatus
	FavoritesStatus LoadStatus
}

func NewState() State {
	return State{
		Page:            1,
		CatalogStatus:   StatusIdle,
		FavoritesStatus: StatusIdle,
	}
}

// PagePolicy decides what happens to the current page when the search text
// changes.
type PagePolicy string

const (
	// PreservePage keeps the page number as is; a page past the end of the
	// filtered results renders as empty until the user navigates back.
	PreservePage PagePolicy = "preserve"
	// ClampPage pulls the page back into [1, pageCount] on every search change.
	ClampPage PagePolicy = "clamp"
)

func ParsePagePolicy(raw string) (PagePolicy, error) {
	switch PagePolicy(strings.ToLower(strings.TrimSpace(raw))) {
	case "", PreservePage:
		return PreservePage, nil
	case ClampPage:
		return ClampPage, nil
	default:
		return "", fmt.Errorf("unknown page policy %q", raw)
	}
}
