package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/njprem/recipe_browser/internal/util"
)

const contextSessionKey = "browser.session"

type SessionCookieConfig struct {
	Name   string
	TTL    time.Duration
	Secure bool
}

// SessionCookie makes sure every request belongs to a browser session,
// issuing a fresh id when the cookie is absent or malformed.
func SessionCookie(cfg SessionCookieConfig) echo.MiddlewareFunc {
	if cfg.Name == "" {
		cfg.Name = "rb_session"
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sessionID := ""
			if cookie, err := c.Cookie(cfg.Name); err == nil && util.ValidSessionID(cookie.Value) {
				sessionID = cookie.Value
			}
			if sessionID == "" {
				sessionID = util.NewSessionID()
				cookie := &http.Cookie{
					Name:     cfg.Name,
					Value:    sessionID,
					Path:     "/",
					HttpOnly: true,
					Secure:   cfg.Secure,
					SameSite: http.SameSiteLaxMode,
				}
				if cfg.TTL > 0 {
					cookie.MaxAge = int(cfg.TTL.Seconds())
				}
				c.SetCookie(cookie)
			}
			c.Set(contextSessionKey, sessionID)
			return next(c)
		}
	}
}

// CurrentSession returns the session id the middleware assigned.
func CurrentSession(c echo.Context) string {
	id, _ := c.Get(contextSessionKey).(string)
	return id
}
