package http

import (
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/njprem/recipe_browser/internal/browser"
	"github.com/njprem/recipe_browser/internal/service"
	"github.com/njprem/recipe_browser/internal/util"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

var (
	errInvalidPage = errors.New("page must be a positive integer")
	errInvalidNav  = errors.New("nav must be previous or next")
)

// PageOptions controls how recipe cards are rendered.
type PageOptions struct {
	FallbackImageURL string
	// Thumbnails routes card images through /images/:id.
	Thumbnails bool
}

type BrowserHandler struct {
	browser     *service.BrowserService
	credentials service.CredentialSource
	opts        PageOptions
}

type cardView struct {
	browser.Card
	ImageURL string
}

type browsePage struct {
	View     browser.View
	Cards    []cardView
	LoggedIn bool
}

func RegisterBrowser(g *echo.Group, browserSvc *service.BrowserService, credentials service.CredentialSource, opts PageOptions) {
	if opts.FallbackImageURL == "" {
		opts.FallbackImageURL = fallbackAssetPath
	}
	handler := &BrowserHandler{browser: browserSvc, credentials: credentials, opts: opts}

	g.GET("/", handler.home)
	g.GET("/browse", handler.browse)

	api := g.Group("/api/v1/browse")
	api.GET("", handler.browseJSON)
	api.POST("/reload", handler.reloadJSON)
}

// home is a fresh mount: state is reset and both collections are refetched.
func (h *BrowserHandler) home(c echo.Context) error {
	sessionID := CurrentSession(c)
	events, err := browseEvents(c)
	if err != nil {
		return c.String(http.StatusBadRequest, err.Error())
	}
	h.browser.Activate(c.Request().Context(), sessionID)
	h.browser.Apply(sessionID, events...)
	return h.render(c, sessionID)
}

func (h *BrowserHandler) browse(c echo.Context) error {
	sessionID := CurrentSession(c)
	events, err := browseEvents(c)
	if err != nil {
		return c.String(http.StatusBadRequest, err.Error())
	}
	h.browser.Ensure(c.Request().Context(), sessionID)
	h.browser.Apply(sessionID, events...)
	return h.render(c, sessionID)
}

func (h *BrowserHandler) browseJSON(c echo.Context) error {
	sessionID := CurrentSession(c)
	events, err := browseEvents(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
	}
	h.browser.Ensure(c.Request().Context(), sessionID)
	h.browser.Apply(sessionID, events...)
	return c.JSON(http.StatusOK, util.Data("view", h.browser.View(sessionID)))
}

func (h *BrowserHandler) reloadJSON(c echo.Context) error {
	sessionID := CurrentSession(c)
	h.browser.Activate(c.Request().Context(), sessionID)
	return c.JSON(http.StatusOK, util.Data("view", h.browser.View(sessionID)))
}

func (h *BrowserHandler) render(c echo.Context, sessionID string) error {
	view := h.browser.View(sessionID)
	_, loggedIn := h.credentials.Token(c.Request().Context(), sessionID)

	page := browsePage{View: view, LoggedIn: loggedIn, Cards: make([]cardView, 0, len(view.Records))}
	for _, card := range view.Records {
		page.Cards = append(page.Cards, cardView{Card: card, ImageURL: h.imageURL(card)})
	}

	var sb strings.Builder
	if err := pageTemplates.ExecuteTemplate(&sb, "browse", page); err != nil {
		return err
	}
	return c.HTML(http.StatusOK, sb.String())
}

func (h *BrowserHandler) imageURL(card browser.Card) string {
	if h.opts.Thumbnails && card.HasImage() {
		return "/images/" + card.ID
	}
	return card.ImageOr(h.opts.FallbackImageURL)
}

// browseEvents maps query parameters to interactions, applied in a fixed
// order: search text, page selection, then previous/next.
func browseEvents(c echo.Context) ([]browser.Event, error) {
	params := c.QueryParams()
	var events []browser.Event

	if _, ok := params["q"]; ok {
		events = append(events, browser.SearchChanged{Text: params.Get("q")})
	}
	if raw := strings.TrimSpace(params.Get("page")); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return nil, errInvalidPage
		}
		events = append(events, browser.PageSelected{Page: page})
	}
	switch strings.ToLower(strings.TrimSpace(params.Get("nav"))) {
	case "":
	case "previous", "prev":
		events = append(events, browser.PreviousPage{})
	case "next":
		events = append(events, browser.NextPage{})
	default:
		return nil, errInvalidNav
	}
	return events, nil
}
