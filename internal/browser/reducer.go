package browser

import (
	"github.com/njprem/recipe_browser/internal/domain"
)

// Event is anything the reducer knows how to apply.
type Event interface {
	Name() string
}

// Activated starts a new generation: the view was (re)mounted and every
// result issued under an older generation is now stale.
type Activated struct {
	Generation uint64
}

type CatalogLoaded struct {
	Generation uint64
	Recipes    []domain.Recipe
}

type CatalogFailed struct {
	Generation uint64
	Err        error
}

type FavoritesLoaded struct {
	Generation uint64
	RecipeIDs  []string
}

type FavoritesFailed struct {
	Generation uint64
	Err        error
}

// FavoritesSkipped records that no credential was present, so favorites were
// never requested.
type FavoritesSkipped struct {
	Generation uint64
}

type ToggleCompleted struct {
	Generation uint64
	RecipeID   string
	Outcome    domain.ToggleOutcome
}

type SearchChanged struct {
	Text string
}

type PageSelected struct {
	Page int
}

type PreviousPage struct{}

type NextPage struct{}

func (Activated) Name() string        { return "activated" }
func (CatalogLoaded) Name() string    { return "catalog_loaded" }
func (CatalogFailed) Name() string    { return "catalog_failed" }
func (FavoritesLoaded) Name() string  { return "favorites_loaded" }
func (FavoritesFailed) Name() string  { return "favorites_failed" }
func (FavoritesSkipped) Name() string { return "favorites_skipped" }
func (ToggleCompleted) Name() string  { return "toggle_completed" }
func (SearchChanged) Name() string    { return "search_changed" }
func (PageSelected) Name() string     { return "page_selected" }
func (PreviousPage) Name() string     { return "previous_page" }
func (NextPage) Name() string         { return "next_page" }

// Reducer applies events to a State.
type Reducer struct {
	PageSize int
	Policy   PagePolicy
}

func NewReducer(pageSize int, policy PagePolicy) Reducer {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if policy == "" {
		policy = PreservePage
	}
	return Reducer{PageSize: pageSize, Policy: policy}
}

// Reduce returns the state after ev and whether ev was applied. Results
// carrying a generation other than the state's are discarded.
func (r Reducer) Reduce(s State, ev Event) (State, bool) {
	switch e := ev.(type) {
	case Activated:
		next := NewState()
		next.Generation = e.Generation
		next.CatalogStatus = StatusLoading
		next.FavoritesStatus = StatusLoading
		return next, true

	case CatalogLoaded:
		if e.Generation != s.Generation {
			return s, false
		}
		s.Recipes = append([]domain.Recipe(nil), e.Recipes...)
		s.CatalogStatus = StatusLoaded
		return s, true

	case CatalogFailed:
		if e.Generation != s.Generation {
			return s, false
		}
		s.Recipes = nil
		s.CatalogStatus = StatusFailed
		return s, true

	case FavoritesLoaded:
		if e.Generation != s.Generation {
			return s, false
		}
		s.Favorites = domain.NewFavoriteSet(e.RecipeIDs...)
		s.FavoritesStatus = StatusLoaded
		return s, true

	case FavoritesFailed:
		if e.Generation != s.Generation {
			return s, false
		}
		s.Favorites = domain.FavoriteSet{}
		s.FavoritesStatus = StatusFailed
		return s, true

	case FavoritesSkipped:
		if e.Generation != s.Generation {
			return s, false
		}
		s.Favorites = domain.FavoriteSet{}
		s.FavoritesStatus = StatusSkipped
		return s, true

	case ToggleCompleted:
		if e.Generation != s.Generation || e.RecipeID == "" {
			return s, false
		}
		s.Favorites = e.Outcome.Apply(s.Favorites, e.RecipeID)
		return s, true

	case SearchChanged:
		s.SearchText = e.Text
		if r.Policy == ClampPage {
			s.Page = clamp(s.Page, 1, r.pageCount(s))
		}
		return s, true

	case PageSelected:
		page := e.Page
		if page < 1 {
			page = 1
		}
		if r.Policy == ClampPage {
			page = clamp(page, 1, r.pageCount(s))
		}
		s.Page = page
		return s, true

	case PreviousPage:
		page := s.Page - 1
		if page < 1 {
			page = 1
		}
		if count := r.pageCount(s); count > 0 && page > count {
			page = count
		}
		s.Page = page
		return s, true

	case NextPage:
		count := r.pageCount(s)
		if count == 0 {
			return s, true
		}
		page := s.Page + 1
		if page > count {
			page = count
		}
		if page < 1 {
			page = 1
		}
		s.Page = page
		return s, true
	}
	return s, false
}

// View derives the render model of s with the reducer's page size.
func (r Reducer) View(s State) View {
	return Derive(s, r.size())
}

func (r Reducer) size() int {
	if r.PageSize <= 0 {
		return DefaultPageSize
	}
	return r.PageSize
}

func (r Reducer) pageCount(s State) int {
	return PageCount(len(Filter(s.Recipes, s.SearchText)), r.size())
}

// clamp bounds v to [lo, hi]; an empty range (hi < lo) yields lo.
func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
