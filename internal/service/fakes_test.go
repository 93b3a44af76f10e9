package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/njprem/recipe_browser/internal/browser"
	"github.com/njprem/recipe_browser/internal/domain"
	"github.com/njprem/recipe_browser/internal/logging"
	"github.com/njprem/recipe_browser/internal/repository/ports"
)

type fakeCatalog struct {
	mu          sync.Mutex
	recipes     []domain.Recipe
	favorites   []domain.FavoriteAssociation
	recipesErr  error
	favErr      error
	toggleResp  map[string]domain.ToggleResponse
	toggleErr   error
	recipeCalls int
	favCalls    int
	toggleCalls []string
	tokens      []string

	// gate, when set, blocks ListRecipes until a value is received.
	gate chan struct{}
}

func (f *fakeCatalog) ListRecipes(ctx context.Context) ([]domain.Recipe, error) {
	f.mu.Lock()
	f.recipeCalls++
	gate := f.gate
	recipes, err := f.recipes, f.recipesErr
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return recipes, err
}

func (f *fakeCatalog) ListFavorites(_ context.Context, token string) ([]domain.FavoriteAssociation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.favCalls++
	f.tokens = append(f.tokens, token)
	return f.favorites, f.favErr
}

func (f *fakeCatalog) ToggleFavorite(_ context.Context, token, recipeID string) (domain.ToggleResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.toggleCalls = append(f.toggleCalls, recipeID)
	f.tokens = append(f.tokens, token)
	if f.toggleErr != nil {
		return domain.ToggleResponse{}, f.toggleErr
	}
	return f.toggleResp[recipeID], nil
}

func (f *fakeCatalog) calls() (int, int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.recipeCalls, f.favCalls, len(f.toggleCalls)
}

type staticCredentials map[string]string

func (c staticCredentials) Token(_ context.Context, sessionID string) (string, bool) {
	tok, ok := c[sessionID]
	return tok, ok && tok != ""
}

type memoryStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	uploads int
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{objects: make(map[string][]byte)}
}

func (m *memoryStorage) Upload(_ context.Context, bucket, objectName, _ string, reader io.Reader, _ int64) (string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[bucket+"/"+objectName] = data
	m.uploads++
	return objectName, nil
}

func (m *memoryStorage) Download(_ context.Context, bucket, objectName string) (io.ReadCloser, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[bucket+"/"+objectName]
	if !ok {
		return nil, "", ports.ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), "image/jpeg", nil
}

type fakeImages struct {
	mu    sync.Mutex
	data  []byte
	err   error
	calls int
}

func (f *fakeImages) Fetch(_ context.Context, _ string) ([]byte, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.data, "image/png", f.err
}

func recipes(n int) []domain.Recipe {
	out := make([]domain.Recipe, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, domain.Recipe{ID: fmt.Sprintf("r%d", i), Name: fmt.Sprintf("Pasta %d", i), TimeToCook: "20 min"})
	}
	return out
}

func newRegistry(policy browser.PagePolicy) *browser.Registry {
	return browser.NewRegistry(browser.NewReducer(browser.DefaultPageSize, policy), 16, time.Minute)
}

func newBrowserService(t *testing.T, catalog ports.RecipeCatalog, creds CredentialSource) (*BrowserService, *browser.Registry) {
	t.Helper()
	reg := newRegistry(browser.PreservePage)
	return NewBrowserService(catalog, creds, reg, logging.Discard()), reg
}
