package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/njprem/recipe_browser/internal/service"
	"github.com/njprem/recipe_browser/internal/util"
)

type SessionHandler struct {
	sessions *service.SessionService
	browser  *service.BrowserService
}

type StoreTokenRequest struct {
	Token string `json:"token" form:"token"`
}

type StoreTokenResponse struct {
	Stored    bool       `json:"stored"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

func RegisterSession(g *echo.Group, sessions *service.SessionService, browserSvc *service.BrowserService) {
	handler := &SessionHandler{sessions: sessions, browser: browserSvc}

	g.POST("/session", handler.storeForm)
	g.POST("/session/logout", handler.logoutForm)
	g.POST("/api/v1/session", handler.storeJSON)
	g.DELETE("/api/v1/session", handler.logoutJSON)
}

func (h *SessionHandler) storeForm(c echo.Context) error {
	var req StoreTokenRequest
	if err := c.Bind(&req); err != nil {
		return c.String(http.StatusBadRequest, "invalid request body")
	}
	sessionID := CurrentSession(c)
	if _, err := h.sessions.StoreToken(c.Request().Context(), sessionID, req.Token); err != nil {
		status, msg := storeTokenError(err)
		return c.String(status, msg)
	}
	// Favorites depend on the credential; the next page load mounts afresh.
	h.browser.Forget(sessionID)
	return c.Redirect(http.StatusSeeOther, "/")
}

func (h *SessionHandler) storeJSON(c echo.Context) error {
	var req StoreTokenRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}
	sessionID := CurrentSession(c)
	saved, err := h.sessions.StoreToken(c.Request().Context(), sessionID, req.Token)
	if err != nil {
		status, msg := storeTokenError(err)
		return c.JSON(status, util.Error(msg))
	}
	h.browser.Forget(sessionID)
	return c.JSON(http.StatusCreated, StoreTokenResponse{Stored: true, ExpiresAt: saved.ExpiresAt})
}

func (h *SessionHandler) logoutForm(c echo.Context) error {
	sessionID := CurrentSession(c)
	if err := h.sessions.Clear(c.Request().Context(), sessionID); err != nil {
		return c.String(http.StatusInternalServerError, "unable to clear session")
	}
	h.browser.Forget(sessionID)
	return c.Redirect(http.StatusSeeOther, "/")
}

func (h *SessionHandler) logoutJSON(c echo.Context) error {
	sessionID := CurrentSession(c)
	if err := h.sessions.Clear(c.Request().Context(), sessionID); err != nil {
		return c.JSON(http.StatusInternalServerError, util.Error("unable to clear session"))
	}
	h.browser.Forget(sessionID)
	return c.NoContent(http.StatusNoContent)
}

func storeTokenError(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrTokenRequired):
		return http.StatusBadRequest, "token is required"
	case errors.Is(err, service.ErrTokenExpired):
		return http.StatusBadRequest, "token has expired"
	case errors.Is(err, service.ErrSessionRequired):
		return http.StatusBadRequest, "browser session required"
	default:
		return http.StatusInternalServerError, "unable to store token"
	}
}
