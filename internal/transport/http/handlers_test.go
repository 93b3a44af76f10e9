package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/njprem/recipe_browser/internal/browser"
	"github.com/njprem/recipe_browser/internal/domain"
	"github.com/njprem/recipe_browser/internal/logging"
	"github.com/njprem/recipe_browser/internal/repository/memory"
	"github.com/njprem/recipe_browser/internal/repository/recipeapi"
	"github.com/njprem/recipe_browser/internal/service"
)

const cookieName = "rb_session"

type stubCatalog struct {
	mu        sync.Mutex
	recipes   []domain.Recipe
	favorites []domain.FavoriteAssociation
	toggleErr error
	toggled   []string
	favCalls  int
}

func (s *stubCatalog) ListRecipes(context.Context) ([]domain.Recipe, error) {
	return s.recipes, nil
}

func (s *stubCatalog) ListFavorites(context.Context, string) ([]domain.FavoriteAssociation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.favCalls++
	return s.favorites, nil
}

func (s *stubCatalog) ToggleFavorite(_ context.Context, _ string, recipeID string) (domain.ToggleResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.toggleErr != nil {
		return domain.ToggleResponse{}, s.toggleErr
	}
	s.toggled = append(s.toggled, recipeID)
	for _, id := range s.toggled[:len(s.toggled)-1] {
		if id == recipeID {
			return domain.ToggleResponse{Message: domain.RemovedFromFavoritesMessage}, nil
		}
	}
	return domain.ToggleResponse{Message: "Added to favorites"}, nil
}

type testApp struct {
	e        *echo.Echo
	catalog  *stubCatalog
	sessions *service.SessionService
	cookie   *http.Cookie
}

func newTestApp(t *testing.T, n int) *testApp {
	t.Helper()
	catalog := &stubCatalog{}
	for i := 1; i <= n; i++ {
		catalog.recipes = append(catalog.recipes, domain.Recipe{ID: fmt.Sprintf("r%d", i), Name: fmt.Sprintf("Pasta %d", i), TimeToCook: "20 min"})
	}
	logger := logging.Discard()
	registry := browser.NewRegistry(browser.NewReducer(browser.DefaultPageSize, browser.PreservePage), 16, time.Minute)
	sessions := service.NewSessionService(memory.NewSessionRepo(), time.Hour, logger)
	browserSvc := service.NewBrowserService(catalog, sessions, registry, logger)

	e := NewRouter([]string{"*"}, logger)
	app := e.Group("", SessionCookie(SessionCookieConfig{Name: cookieName, TTL: time.Hour}))
	RegisterBrowser(app, browserSvc, sessions, PageOptions{})
	RegisterFavorites(app, browserSvc)
	RegisterSession(app, sessions, browserSvc)
	RegisterPages(app, registry, "", "")
	return &testApp{e: e, catalog: catalog, sessions: sessions}
}

func (a *testApp) do(t *testing.T, method, target, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	if a.cookie != nil {
		req.AddCookie(a.cookie)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	for _, c := range rec.Result().Cookies() {
		if c.Name == cookieName {
			a.cookie = c
		}
	}
	return rec
}

func (a *testApp) login(t *testing.T) {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/api/v1/session", echo.MIMEApplicationJSON, `{"token":"tok-1"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 from login, got %d: %s", rec.Code, rec.Body.String())
	}
}

func decodeView(t *testing.T, rec *httptest.ResponseRecorder) browser.View {
	t.Helper()
	var body struct {
		View browser.View `json:"view"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode view: %v (%s)", err, rec.Body.String())
	}
	return body.View
}

func TestHomeRendersGrid(t *testing.T) {
	app := newTestApp(t, 5)

	rec := app.do(t, http.MethodGet, "/", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if app.cookie == nil || app.cookie.Value == "" {
		t.Fatalf("expected a session cookie to be issued")
	}
	html := rec.Body.String()
	for _, want := range []string{"Discover delicious recipes", `placeholder="Search recipes..."`, "Pasta 1", "Pasta 4", `href="/recipe/r1"`, "/static/cake.svg"} {
		if !strings.Contains(html, want) {
			t.Fatalf("expected page to contain %q", want)
		}
	}
	if strings.Contains(html, "Pasta 5") {
		t.Fatalf("expected Pasta 5 to be on page 2")
	}
	if app.catalog.favCalls != 0 {
		t.Fatalf("expected no favorites call without a credential")
	}
}

func TestBrowseKeepsStateBetweenRequests(t *testing.T) {
	app := newTestApp(t, 10)
	app.do(t, http.MethodGet, "/", "", "")

	rec := app.do(t, http.MethodGet, "/api/v1/browse?q=pasta+1", "", "")
	v := decodeView(t, rec)
	if v.TotalResults != 2 || len(v.Records) != 2 || v.Records[1].Name != "Pasta 10" {
		t.Fatalf("expected Pasta 1 and Pasta 10, got %+v", v.Records)
	}

	// Search text persists; a page change alone keeps the filter.
	rec = app.do(t, http.MethodGet, "/api/v1/browse?page=3", "", "")
	v = decodeView(t, rec)
	if v.SearchText != "pasta 1" || v.CurrentPage != 3 || !v.Empty || v.EmptyMessage != browser.NoResultsMessage {
		t.Fatalf("expected silent empty page 3, got %+v", v)
	}

	rec = app.do(t, http.MethodGet, "/api/v1/browse?nav=next", "", "")
	if v = decodeView(t, rec); v.CurrentPage != 1 {
		t.Fatalf("expected next to clamp to page 1, got %d", v.CurrentPage)
	}
}

func TestBrowseRejectsBadParams(t *testing.T) {
	app := newTestApp(t, 2)
	if rec := app.do(t, http.MethodGet, "/api/v1/browse?page=zero", "", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad page, got %d", rec.Code)
	}
	if rec := app.do(t, http.MethodGet, "/browse?nav=sideways", "", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad nav, got %d", rec.Code)
	}
}

func TestPaginationControls(t *testing.T) {
	app := newTestApp(t, 9)
	html := app.do(t, http.MethodGet, "/", "", "").Body.String()
	if !strings.Contains(html, `<li class="page-item disabled"><span>Previous</span>`) {
		t.Fatalf("expected Previous disabled on page 1")
	}
	if !strings.Contains(html, `<li class="page-item active"><a href="/browse?page=1">1</a>`) {
		t.Fatalf("expected page 1 active")
	}
	if !strings.Contains(html, `href="/browse?nav=next"`) {
		t.Fatalf("expected Next enabled")
	}

	html = app.do(t, http.MethodGet, "/browse?page=3", "", "").Body.String()
	if !strings.Contains(html, `<span>Next</span>`) {
		t.Fatalf("expected Next disabled on the last page")
	}
}

func TestToggleJSON(t *testing.T) {
	app := newTestApp(t, 3)
	app.do(t, http.MethodGet, "/", "", "")

	rec := app.do(t, http.MethodPost, "/api/v1/favorites/toggle", echo.MIMEApplicationJSON, `{"recipeId":"r1"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without credential, got %d", rec.Code)
	}
	if len(app.catalog.toggled) != 0 {
		t.Fatalf("expected no upstream toggle without credential")
	}

	app.login(t)
	rec = app.do(t, http.MethodPost, "/api/v1/favorites/toggle", echo.MIMEApplicationJSON, `{"recipeId":"r1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp ToggleFavoriteResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Outcome != domain.ToggleAdded || !resp.Favorite {
		t.Fatalf("expected r1 added, got %+v", resp)
	}

	rec = app.do(t, http.MethodPost, "/api/v1/favorites/toggle", echo.MIMEApplicationJSON, `{"recipeId":"r1"}`)
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Outcome != domain.ToggleRemoved || resp.Favorite {
		t.Fatalf("expected r1 removed, got %+v", resp)
	}

	if rec := app.do(t, http.MethodPost, "/api/v1/favorites/toggle", echo.MIMEApplicationJSON, `{"recipeId":" "}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing recipeId, got %d", rec.Code)
	}
}

func TestToggleJSONUpstreamErrors(t *testing.T) {
	app := newTestApp(t, 1)
	app.login(t)
	app.do(t, http.MethodGet, "/", "", "")

	app.catalog.toggleErr = &recipeapi.APIError{Operation: recipeapi.OpToggleFavorite, StatusCode: http.StatusUnauthorized}
	if rec := app.do(t, http.MethodPost, "/api/v1/favorites/toggle", echo.MIMEApplicationJSON, `{"recipeId":"r1"}`); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for rejected credential, got %d", rec.Code)
	}
	app.catalog.toggleErr = &recipeapi.APIError{Operation: recipeapi.OpToggleFavorite, StatusCode: http.StatusInternalServerError}
	if rec := app.do(t, http.MethodPost, "/api/v1/favorites/toggle", echo.MIMEApplicationJSON, `{"recipeId":"r1"}`); rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502 for upstream failure, got %d", rec.Code)
	}
}

func TestToggleFormIsSilent(t *testing.T) {
	app := newTestApp(t, 2)
	app.do(t, http.MethodGet, "/", "", "")

	form := url.Values{"recipeId": {"r1"}}.Encode()
	rec := app.do(t, http.MethodPost, "/favorites/toggle", echo.MIMEApplicationForm, form)
	if rec.Code != http.StatusSeeOther || rec.Header().Get(echo.HeaderLocation) != "/browse" {
		t.Fatalf("expected silent redirect, got %d %s", rec.Code, rec.Header().Get(echo.HeaderLocation))
	}

	app.login(t)
	app.do(t, http.MethodGet, "/", "", "")
	app.do(t, http.MethodPost, "/favorites/toggle", echo.MIMEApplicationForm, form)
	html := app.do(t, http.MethodGet, "/browse", "", "").Body.String()
	if !strings.Contains(html, `class="heart favorite"`) {
		t.Fatalf("expected a filled heart after toggling")
	}
}

func TestSessionLifecycle(t *testing.T) {
	app := newTestApp(t, 2)
	app.catalog.favorites = []domain.FavoriteAssociation{{RecipeID: domain.RecipeRef{ID: "r2"}}}

	if rec := app.do(t, http.MethodPost, "/api/v1/session", echo.MIMEApplicationJSON, `{"token":""}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty token, got %d", rec.Code)
	}

	app.login(t)
	v := decodeView(t, app.do(t, http.MethodGet, "/api/v1/browse", "", ""))
	if v.FavoritesStatus != browser.StatusLoaded || v.FavoriteCount != 1 {
		t.Fatalf("expected favorites loaded after login, got %s/%d", v.FavoritesStatus, v.FavoriteCount)
	}

	if rec := app.do(t, http.MethodDelete, "/api/v1/session", "", ""); rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	v = decodeView(t, app.do(t, http.MethodPost, "/api/v1/browse/reload", "", ""))
	if v.FavoritesStatus != browser.StatusSkipped || v.FavoriteCount != 0 {
		t.Fatalf("expected favorites skipped after logout, got %s/%d", v.FavoritesStatus, v.FavoriteCount)
	}
}

func TestRecipePageAndFallbackAsset(t *testing.T) {
	app := newTestApp(t, 1)
	app.do(t, http.MethodGet, "/", "", "")

	rec := app.do(t, http.MethodGet, "/recipe/r1", "", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Pasta 1") {
		t.Fatalf("expected recipe page, got %d", rec.Code)
	}
	if rec := app.do(t, http.MethodGet, "/recipe/nope", "", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown recipe, got %d", rec.Code)
	}
	rec = app.do(t, http.MethodGet, "/static/cake.svg", "", "")
	if rec.Code != http.StatusOK || rec.Header().Get(echo.HeaderContentType) != "image/svg+xml" {
		t.Fatalf("expected svg asset, got %d %s", rec.Code, rec.Header().Get(echo.HeaderContentType))
	}
}

func TestRecipePageRedirectsToDetailBase(t *testing.T) {
	e := echo.New()
	registry := browser.NewRegistry(browser.NewReducer(0, ""), 4, time.Minute)
	RegisterPages(e.Group(""), registry, "https://recipes.example/recipe/", "")

	req := httptest.NewRequest(http.MethodGet, "/recipe/r%201", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusTemporaryRedirect {
		t.Fatalf("expected redirect, got %d", rec.Code)
	}
	if loc := rec.Header().Get(echo.HeaderLocation); !strings.HasPrefix(loc, "https://recipes.example/recipe/r") {
		t.Fatalf("unexpected location %s", loc)
	}
}

func TestSessionCookieReusesValidID(t *testing.T) {
	app := newTestApp(t, 1)
	app.do(t, http.MethodGet, "/", "", "")
	first := app.cookie.Value

	rec := app.do(t, http.MethodGet, "/browse", "", "")
	for _, c := range rec.Result().Cookies() {
		if c.Name == cookieName {
			t.Fatalf("expected no new cookie for a known session")
		}
	}
	if app.cookie.Value != first {
		t.Fatalf("expected the session id to be stable")
	}

	app.cookie = &http.Cookie{Name: cookieName, Value: "forged"}
	app.do(t, http.MethodGet, "/browse", "", "")
	if app.cookie.Value == "forged" {
		t.Fatalf("expected a malformed session id to be replaced")
	}
}

func TestHealthAndMetrics(t *testing.T) {
	app := newTestApp(t, 0)
	if rec := app.do(t, http.MethodGet, "/health", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from health, got %d", rec.Code)
	}
	rec := app.do(t, http.MethodGet, "/metrics", "", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "go_goroutines") {
		t.Fatalf("expected prometheus exposition, got %d", rec.Code)
	}
	if app.cookie != nil {
		t.Fatalf("expected ops endpoints to skip the session cookie")
	}
}
