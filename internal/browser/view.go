package browser

import (
	"strings"

	"github.com/njprem/recipe_browser/internal/domain"
)

const (
	DefaultPageSize  = 4
	NoResultsMessage = "No results available"
)

// Card is one rendered recipe in the grid.
type Card struct {
	domain.Recipe
	Favorite   bool   `json:"favorite"`
	DetailPath string `json:"detailPath"`
}

// View is the derived, render-ready projection of a State.
type View struct {
	SearchText      string     `json:"searchText"`
	CurrentPage     int        `json:"currentPage"`
	PageSize        int        `json:"pageSize"`
	PageCount       int        `json:"pageCount"`
	PageNumbers     []int      `json:"pageNumbers"`
	TotalResults    int        `json:"totalResults"`
	Records         []Card     `json:"records"`
	HasPrevious     bool       `json:"hasPrevious"`
	HasNext         bool       `json:"hasNext"`
	Empty           bool       `json:"empty"`
	EmptyMessage    string     `json:"emptyMessage,omitempty"`
	CatalogStatus   LoadStatus `json:"catalogStatus"`
	FavoritesStatus LoadStatus `json:"favoritesStatus"`
	FavoriteCount   int        `json:"favoriteCount"`
}

// Filter keeps the recipes whose name contains text, ignoring case. Order is
// preserved; an empty text keeps everything.
func Filter(recipes []domain.Recipe, text string) []domain.Recipe {
	needle := strings.ToLower(text)
	out := make([]domain.Recipe, 0, len(recipes))
	for _, r := range recipes {
		if strings.Contains(strings.ToLower(r.Name), needle) {
			out = append(out, r)
		}
	}
	return out
}

// PageCount is ceil(n / size).
func PageCount(n, size int) int {
	if n <= 0 || size <= 0 {
		return 0
	}
	return (n + size - 1) / size
}

// Paginate returns the 1-based page of items. Out-of-range pages yield an
// empty slice instead of failing.
func Paginate[T any](items []T, page, size int) []T {
	if page < 1 || size <= 0 {
		return []T{}
	}
	start := (page - 1) * size
	if start >= len(items) {
		return []T{}
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// PageNumbers returns 1..count.
func PageNumbers(count int) []int {
	if count <= 0 {
		return []int{}
	}
	out := make([]int, count)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

// DetailPath is the link of a recipe card.
func DetailPath(recipeID string) string {
	return "recipe/" + recipeID
}

// Derive computes the view of s. It runs on every render and never mutates s.
func Derive(s State, pageSize int) View {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	filtered := Filter(s.Recipes, s.SearchText)
	count := PageCount(len(filtered), pageSize)
	page := Paginate(filtered, s.Page, pageSize)

	cards := make([]Card, 0, len(page))
	for _, r := range page {
		cards = append(cards, Card{
			Recipe:     r,
			Favorite:   s.Favorites.Has(r.ID),
			DetailPath: DetailPath(r.ID),
		})
	}

	v := View{
		SearchText:      s.SearchText,
		CurrentPage:     s.Page,
		PageSize:        pageSize,
		PageCount:       count,
		PageNumbers:     PageNumbers(count),
		TotalResults:    len(filtered),
		Records:         cards,
		HasPrevious:     s.Page > 1,
		HasNext:         s.Page < count,
		Empty:           len(cards) == 0,
		CatalogStatus:   s.CatalogStatus,
		FavoritesStatus: s.FavoritesStatus,
		FavoriteCount:   s.Favorites.Len(),
	}
	if v.Empty {
		v.EmptyMessage = NoResultsMessage
	}
	return v
}
