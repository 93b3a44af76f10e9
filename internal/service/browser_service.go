package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/njprem/recipe_browser/internal/browser"
	"github.com/njprem/recipe_browser/internal/domain"
	"github.com/njprem/recipe_browser/internal/metrics"
	"github.com/njprem/recipe_browser/internal/repository/ports"
)

var (
	ErrRecipeIDRequired  = errors.New("recipeId is required")
	ErrMissingCredential = errors.New("no credential stored for this session")
)

// CredentialSource yields the bearer credential of a session, if any.
type CredentialSource interface {
	Token(ctx context.Context, sessionID string) (string, bool)
}

// BrowserService drives the per-session recipe browser: loading on
// activation, search and paging, and favorite toggles.
type BrowserService struct {
	catalog     ports.RecipeCatalog
	credentials CredentialSource
	registry    *browser.Registry
	logger      *slog.Logger
}

func NewBrowserService(catalog ports.RecipeCatalog, credentials CredentialSource, registry *browser.Registry, logger *slog.Logger) *BrowserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &BrowserService{catalog: catalog, credentials: credentials, registry: registry, logger: logger}
}

// Activate mounts the browser of sessionID: the state is reset and the
// catalog and favorites are fetched concurrently. Each fetch settles on its
// own; a failure leaves its collection empty and is only logged. The returned
// snapshot reflects both results unless a newer activation superseded them.
func (s *BrowserService) Activate(ctx context.Context, sessionID string) browser.State {
	inst := s.registry.Get(sessionID)
	gen := inst.Activate()
	metrics.ActivationsTotal.Inc()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		recipes, err := s.catalog.ListRecipes(gctx)
		if err != nil {
			s.logger.Error("error fetching recipes", "error", err, "generation", gen)
			s.dispatch(inst, browser.CatalogFailed{Generation: gen, Err: err})
			return nil
		}
		s.dispatch(inst, browser.CatalogLoaded{Generation: gen, Recipes: recipes})
		return nil
	})
	g.Go(func() error {
		token, ok := s.credentials.Token(gctx, sessionID)
		if !ok {
			s.dispatch(inst, browser.FavoritesSkipped{Generation: gen})
			return nil
		}
		items, err := s.catalog.ListFavorites(gctx, token)
		if err != nil {
			s.logger.Error("error fetching favorites", "error", err, "generation", gen)
			s.dispatch(inst, browser.FavoritesFailed{Generation: gen, Err: err})
			return nil
		}
		s.dispatch(inst, browser.FavoritesLoaded{Generation: gen, RecipeIDs: domain.FavoriteRecipeIDs(items)})
		return nil
	})
	_ = g.Wait()

	return inst.Snapshot()
}

// Ensure activates sessionID unless it already has a mounted browser.
func (s *BrowserService) Ensure(ctx context.Context, sessionID string) browser.State {
	inst := s.registry.Get(sessionID)
	if inst.Activated() {
		return inst.Snapshot()
	}
	return s.Activate(ctx, sessionID)
}

// Apply runs user interactions (search, page selection, previous/next)
// against the session state. No data is refetched.
func (s *BrowserService) Apply(sessionID string, events ...browser.Event) browser.State {
	return s.registry.Get(sessionID).Apply(events...)
}

func (s *BrowserService) View(sessionID string) browser.View {
	return s.registry.Get(sessionID).View()
}

// IsFavorite reports whether recipeID is in the session's favorite set.
func (s *BrowserService) IsFavorite(sessionID, recipeID string) bool {
	return s.registry.Get(sessionID).Snapshot().Favorites.Has(recipeID)
}

// Forget drops the browser state of sessionID; the next request mounts afresh.
func (s *BrowserService) Forget(sessionID string) {
	s.registry.Remove(sessionID)
}

// Toggle flips the favorite state of recipeID, sent upstream as given. Without a
// credential no request is made and the failure is logged. On failure the favorite set is left unchanged. Concurrent toggles
// are not coalesced: each response is applied in the order it arrives.
func (s *BrowserService) Toggle(ctx context.Context, sessionID, recipeID string) (domain.ToggleOutcome, error) {
	if strings.TrimSpace(recipeID) == "" {
		return "", ErrRecipeIDRequired
	}
	inst := s.registry.Get(sessionID)
	gen := inst.Snapshot().Generation

	token, ok := s.credentials.Token(ctx, sessionID)
	if !ok {
		metrics.RecordToggle("skipped")
		s.logger.Error("error toggling favorite", "error", ErrMissingCredential, "recipe_id", recipeID)
		return "", ErrMissingCredential
	}

	resp, err := s.catalog.ToggleFavorite(ctx, token, recipeID)
	if err != nil {
		metrics.RecordToggle("error")
		s.logger.Error("error toggling favorite", "error", err, "recipe_id", recipeID)
		return "", fmt.Errorf("toggle favorite %s: %w", recipeID, err)
	}

	outcome := domain.DecodeToggleOutcome(resp)
	s.dispatch(inst, browser.ToggleCompleted{Generation: gen, RecipeID: recipeID, Outcome: outcome})
	metrics.RecordToggle(string(outcome))
	return outcome, nil
}

func (s *BrowserService) dispatch(inst *browser.Instance, ev browser.Event) {
	if _, ok := inst.Dispatch(ev); !ok {
		metrics.RecordStale(ev.Name())
		s.logger.Debug("discarded stale result", "event", ev.Name())
	}
}
