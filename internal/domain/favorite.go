package domain

import (
	"bytes"
	"encoding/json"
	"sort"
)

// RemovedFromFavoritesMessage is the literal the recipe API answers with when a
// toggle removed the recipe. Every other message means it was added.
const RemovedFromFavoritesMessage = "Removed from favorites"

// FavoriteAssociation links the current user to a recipe on the server side.
type FavoriteAssociation struct {
	ID       string    `json:"_id,omitempty"`
	UserID   string    `json:"userId,omitempty"`
	RecipeID RecipeRef `json:"recipeId"`
}

// RecipeRef is the recipe side of a favorite association. The API populates it
// as an object ({"_id": ...}); a bare string id is accepted as well.
type RecipeRef struct {
	ID string `json:"_id"`
}

func (r *RecipeRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*r = RecipeRef{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		r.ID = id
		return nil
	}
	var obj struct {
		ID string `json:"_id"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	r.ID = obj.ID
	return nil
}

// FavoriteRecipeIDs maps associations to bare recipe ids, skipping entries
// whose recipe reference is empty (e.g. the recipe was deleted upstream).
func FavoriteRecipeIDs(items []FavoriteAssociation) []string {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		if item.RecipeID.ID == "" {
			continue
		}
		ids = append(ids, item.RecipeID.ID)
	}
	return ids
}

// FavoriteSet is an immutable set of recipe ids. The zero value is empty and
// ready to use.
type FavoriteSet struct {
	ids map[string]struct{}
}

func NewFavoriteSet(ids ...string) FavoriteSet {
	set := FavoriteSet{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		set.ids[id] = struct{}{}
	}
	return set
}

func (s FavoriteSet) Has(id string) bool {
	_, ok := s.ids[id]
	return ok
}

func (s FavoriteSet) Len() int {
	return len(s.ids)
}

// With returns a set that also contains id. Adding a member twice is a no-op.
func (s FavoriteSet) With(id string) FavoriteSet {
	if s.Has(id) {
		return s
	}
	next := s.clone(len(s.ids) + 1)
	next.ids[id] = struct{}{}
	return next
}

// Without returns a set that no longer contains id.
func (s FavoriteSet) Without(id string) FavoriteSet {
	if !s.Has(id) {
		return s
	}
	next := s.clone(len(s.ids))
	delete(next.ids, id)
	return next
}

// IDs returns the members in ascending order.
func (s FavoriteSet) IDs() []string {
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (s FavoriteSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.IDs())
}

func (s FavoriteSet) clone(capacity int) FavoriteSet {
	next := FavoriteSet{ids: make(map[string]struct{}, capacity)}
	for id := range s.ids {
		next.ids[id] = struct{}{}
	}
	return next
}

// ToggleResponse is the body of a successful toggle call.
type ToggleResponse struct {
	Message string `json:"message"`
}

type ToggleOutcome string

const (
	ToggleAdded   ToggleOutcome = "added"
	ToggleRemoved ToggleOutcome = "removed"
)

// DecodeToggleOutcome is the only place the toggle message literal is
// interpreted. Unknown and empty messages count as Added.
// TODO: switch to a boolean/enum field once the recipe API exposes one.
func DecodeToggleOutcome(resp ToggleResponse) ToggleOutcome {
	if resp.Message == RemovedFromFavoritesMessage {
		return ToggleRemoved
	}
	return ToggleAdded
}

// Apply returns the favorite set after the outcome for recipeID.
func (o ToggleOutcome) Apply(set FavoriteSet, recipeID string) FavoriteSet {
	if o == ToggleRemoved {
		return set.Without(recipeID)
	}
	return set.With(recipeID)
}
