package recipeapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/njprem/recipe_browser/internal/domain"
	"github.com/njprem/recipe_browser/internal/metrics"
	"github.com/njprem/recipe_browser/internal/repository/ports"
)

const (
	DefaultBaseURL   = "https://foodrecipe-fullstack.onrender.com"
	defaultTimeout   = 10 * time.Second
	defaultUserAgent = "recipe-browser/1.0"
	maxErrorBody     = 4 << 10
)

// DefaultMaxImageBytes bounds a downloaded image body.
const DefaultMaxImageBytes = 5 << 20

var ErrImageTooLarge = errors.New("recipe api: image exceeds size limit")

const (
	OpListRecipes    = "list_recipes"
	OpListFavorites  = "list_favorites"
	OpToggleFavorite = "toggle_favorite"
	OpFetchImage     = "fetch_image"
)

// APIError is returned for any non-2xx response of the recipe API.
type APIError struct {
	Operation  string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("recipe api %s: status %d", e.Operation, e.StatusCode)
	}
	return fmt.Sprintf("recipe api %s: status %d: %s", e.Operation, e.StatusCode, e.Message)
}

// Unauthorized reports whether the API rejected the bearer credential.
func (e *APIError) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
	// RateLimit is requests per second; zero disables limiting.
	RateLimit float64
	Burst     int
	UserAgent string
	// MaxImageBytes caps Fetch bodies; zero means DefaultMaxImageBytes.
	MaxImageBytes int64
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	userAgent  string
	maxImage   int64
}

func NewClient(opts Options) *Client {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	ua := opts.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}
	maxImage := opts.MaxImageBytes
	if maxImage <= 0 {
		maxImage = DefaultMaxImageBytes
	}
	return &Client{baseURL: base, httpClient: httpClient, limiter: limiter, userAgent: ua, maxImage: maxImage}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// ListRecipes returns the full catalog in server order.
func (c *Client) ListRecipes(ctx context.Context) ([]domain.Recipe, error) {
	var recipes []domain.Recipe
	if err := c.do(ctx, OpListRecipes, http.MethodGet, "/recipes/", "", nil, &recipes); err != nil {
		return nil, err
	}
	if recipes == nil {
		recipes = []domain.Recipe{}
	}
	return recipes, nil
}

// ListFavorites returns the favorite associations of the token's user.
func (c *Client) ListFavorites(ctx context.Context, token string) ([]domain.FavoriteAssociation, error) {
	var items []domain.FavoriteAssociation
	if err := c.do(ctx, OpListFavorites, http.MethodGet, "/favorites", token, nil, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.FavoriteAssociation{}
	}
	return items, nil
}

// ToggleFavorite flips the favorite state of recipeID on the server.
func (c *Client) ToggleFavorite(ctx context.Context, token, recipeID string) (domain.ToggleResponse, error) {
	payload := struct {
		RecipeID string `json:"recipeId"`
	}{RecipeID: recipeID}
	var resp domain.ToggleResponse
	if err := c.do(ctx, OpToggleFavorite, http.MethodPost, "/favorites/toggle", token, payload, &resp); err != nil {
		return domain.ToggleResponse{}, err
	}
	return resp, nil
}

// Fetch downloads an image. Relative references resolve against the API base.
func (c *Client) Fetch(ctx context.Context, ref string) ([]byte, string, error) {
	target := ref
	if !strings.HasPrefix(ref, "http://") && !strings.HasPrefix(ref, "https://") {
		target = c.baseURL + "/" + strings.TrimLeft(ref, "/")
	}
	if err := c.wait(ctx); err != nil {
		return nil, "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordUpstream(OpFetchImage, "error", time.Since(start).Seconds())
		return nil, "", fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()
	metrics.RecordUpstream(OpFetchImage, statusClass(resp.StatusCode), time.Since(start).Seconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", &APIError{Operation: OpFetchImage, StatusCode: resp.StatusCode}
	}
	if resp.ContentLength > c.maxImage {
		return nil, "", ErrImageTooLarge
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxImage+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read image: %w", err)
	}
	if int64(len(body)) > c.maxImage {
		return nil, "", ErrImageTooLarge
	}
	return body, resp.Header.Get("Content-Type"), nil
}

func (c *Client) do(ctx context.Context, op, method, path, token string, in, out any) error {
	if err := c.wait(ctx); err != nil {
		return err
	}

	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordUpstream(op, "error", time.Since(start).Seconds())
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()
	metrics.RecordUpstream(op, statusClass(resp.StatusCode), time.Since(start).Seconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{Operation: op, StatusCode: resp.StatusCode, Message: errorMessage(raw)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if err == io.EOF {
			return nil
		}
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// wait blocks on the limiter; requests are delayed, never dropped.
func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	return nil
}

func errorMessage(raw []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return strings.TrimSpace(string(raw))
}

func statusClass(code int) string {
	return strconv.Itoa(code/100) + "xx"
}

var (
	_ ports.RecipeCatalog = (*Client)(nil)
	_ ports.ImageSource   = (*Client)(nil)
)
