package domain

import "strings"

// Recipe is a catalog entry as served by the recipe API.
type Recipe struct {
	ID         string  `json:"_id"`
	Name       string  `json:"name"`
	TimeToCook string  `json:"timeToCook"`
	Image      *string `json:"image"`
}

// ImageOr returns the recipe image, or fallback when the recipe has none.
func (r Recipe) ImageOr(fallback string) string {
	if r.Image == nil || strings.TrimSpace(*r.Image) == "" {
		return fallback
	}
	return *r.Image
}

// HasImage reports whether the recipe carries a non-empty image reference.
func (r Recipe) HasImage() bool {
	return r.Image != nil && strings.TrimSpace(*r.Image) != ""
}
