package http

import (
	"encoding/json"
	"log/slog"
	"net/url"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/njprem/recipe_browser/internal/util"
)

const (
	requestBodyLogKey  = "http.request.body.summary"
	responseBodyLogKey = "http.response.body.summary"
	maxLoggedBody      = 2048
	redacted           = "redacted"
)

// sensitiveKeys never reach the log, at any nesting depth.
var sensitiveKeys = []string{"password", "token", "authorization", "secret"}

func registerLogging(e *echo.Echo, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogMethod:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			session := "none"
			if id := CurrentSession(c); id != "" {
				session = util.HashSessionKey(id)[:12]
			}

			attrs := []any{
				slog.String("session", session),
				slog.Int64("latency_ms", v.Latency.Milliseconds()),
				slog.Group("request",
					slog.String("method", v.Method),
					slog.String("uri", redactURI(v.URI)),
					slog.Any("body", c.Get(requestBodyLogKey)),
				),
				slog.Group("response",
					slog.Int("status", v.Status),
					slog.Any("body", c.Get(responseBodyLogKey)),
				),
			}
			level := slog.LevelInfo
			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
				level = slog.LevelError
			} else if v.Status >= 500 {
				level = slog.LevelError
			}
			logger.Log(c.Request().Context(), level, "http request", attrs...)
			return nil
		},
	}))

	e.Use(middleware.BodyDumpWithConfig(middleware.BodyDumpConfig{
		Skipper: func(c echo.Context) bool {
			path := c.Request().URL.Path
			return path == "/metrics" || strings.HasPrefix(path, "/images/") || strings.HasPrefix(path, "/static/")
		},
		Handler: func(c echo.Context, reqBody, resBody []byte) {
			if summary := sanitizeBody(reqBody, c.Request().Header.Get(echo.HeaderContentType)); summary != nil {
				c.Set(requestBodyLogKey, summary)
			}
			if summary := sanitizeBody(resBody, c.Response().Header().Get(echo.HeaderContentType)); summary != nil {
				c.Set(responseBodyLogKey, summary)
			}
		},
	}))
}

func isSensitive(key string) bool {
	lower := strings.ToLower(key)
	for _, s := range sensitiveKeys {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}

func redactURI(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.RawQuery == "" {
		return raw
	}
	q := u.Query()
	changed := false
	for key := range q {
		if isSensitive(key) {
			q.Set(key, redacted)
			changed = true
		}
	}
	if !changed {
		return raw
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func sanitizeBody(body []byte, contentType string) any {
	if len(body) == 0 {
		return nil
	}
	loweredType := strings.ToLower(strings.TrimSpace(contentType))

	switch {
	case strings.HasPrefix(loweredType, "text/html"):
		return "html"
	case strings.HasPrefix(loweredType, "image/"):
		return "binary"
	}

	if strings.HasPrefix(loweredType, "application/json") || json.Valid(body) {
		var data any
		if err := json.Unmarshal(body, &data); err == nil {
			return limitJSONSize(sanitizeJSON(data, ""))
		}
	}

	if strings.HasPrefix(loweredType, "application/x-www-form-urlencoded") {
		if values, err := url.ParseQuery(string(body)); err == nil && len(values) > 0 {
			fields := make(map[string]any, len(values))
			for key, vals := range values {
				if isSensitive(key) {
					fields[key] = redacted
					continue
				}
				if len(vals) == 1 {
					fields[key] = sanitizeStringValue(vals[0], key)
					continue
				}
				items := make([]any, 0, len(vals))
				for _, v := range vals {
					items = append(items, sanitizeStringValue(v, key))
				}
				fields[key] = items
			}
			return limitJSONSize(fields)
		}
	}

	if containsBinaryBytes(body) {
		return "binary"
	}
	text := string(body)
	if isSensitive(text) {
		return redacted
	}
	return clampString(text)
}

func sanitizeJSON(value any, keyHint string) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, val := range v {
			if isSensitive(key) {
				out[key] = redacted
				continue
			}
			out[key] = sanitizeJSON(val, key)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = sanitizeJSON(item, keyHint)
		}
		return out
	case string:
		return sanitizeStringValue(v, keyHint)
	default:
		return v
	}
}

func sanitizeStringValue(value, keyHint string) string {
	if keyHint != "" && isSensitive(keyHint) {
		return redacted
	}
	if containsBinaryBytes([]byte(value)) {
		return "binary"
	}
	return clampString(value)
}

// limitJSONSize replaces oversized payloads with a shallow preview.
func limitJSONSize(value any) any {
	buf, err := json.Marshal(value)
	if err != nil || len(buf) <= maxLoggedBody {
		return value
	}
	return map[string]any{
		"_truncated": true,
		"_preview":   preview(value, 0),
	}
}

func preview(value any, depth int) any {
	const (
		maxDepth        = 2
		maxMapEntries   = 6
		maxArraySamples = 2
	)
	if depth >= maxDepth {
		return "...(omitted)..."
	}
	switch v := value.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make(map[string]any)
		for i, key := range keys {
			if i == maxMapEntries {
				out["_omitted_fields"] = len(keys) - i
				break
			}
			out[key] = preview(v[key], depth+1)
		}
		return out
	case []any:
		n := len(v)
		if n > maxArraySamples {
			n = maxArraySamples
		}
		sample := make([]any, 0, n)
		for _, item := range v[:n] {
			sample = append(sample, preview(item, depth+1))
		}
		return map[string]any{"_total_items": len(v), "_sample": sample}
	case string:
		return clampString(v)
	default:
		return v
	}
}

func containsBinaryBytes(data []byte) bool {
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			return true
		}
		if !unicode.IsPrint(r) && !unicode.IsSpace(r) {
			return true
		}
		data = data[size:]
	}
	return false
}

func clampString(value string) string {
	if len(value) <= maxLoggedBody {
		return value
	}
	truncated := value[:maxLoggedBody]
	for !utf8.ValidString(truncated) && len(truncated) > 0 {
		truncated = truncated[:len(truncated)-1]
	}
	return truncated + "...(truncated)"
}
