package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/njprem/recipe_browser/internal/browser"
	"github.com/njprem/recipe_browser/internal/domain"
	"github.com/njprem/recipe_browser/internal/media"
	"github.com/njprem/recipe_browser/internal/metrics"
	"github.com/njprem/recipe_browser/internal/repository/ports"
)

var (
	ErrNoImage        = errors.New("recipe has no image")
	ErrRecipeNotFound = errors.New("recipe not found")
)

type ThumbnailServiceConfig struct {
	Bucket       string
	MaxDimension int
}

type Thumbnail struct {
	Bytes       []byte
	ContentType string
	// Source is "cache" when served from object storage, "rendered" otherwise.
	Source string
}

// ThumbnailService renders card images for recipes of a session catalog.
type ThumbnailService struct {
	registry  *browser.Registry
	images    ports.ImageSource
	processor media.Processor
	storage   ports.ObjectStorage
	cfg       ThumbnailServiceConfig
	logger    *slog.Logger
}

// NewThumbnailService builds the service; storage may be nil to disable caching.
func NewThumbnailService(registry *browser.Registry, images ports.ImageSource, processor media.Processor, storage ports.ObjectStorage, cfg ThumbnailServiceConfig, logger *slog.Logger) *ThumbnailService {
	if cfg.MaxDimension <= 0 {
		cfg.MaxDimension = media.DefaultMaxDimension
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ThumbnailService{
		registry:  registry,
		images:    images,
		processor: processor,
		storage:   storage,
		cfg:       cfg,
		logger:    logger,
	}
}

func (s *ThumbnailService) Thumbnail(ctx context.Context, sessionID, recipeID string) (*Thumbnail, error) {
	recipe, err := s.findRecipe(sessionID, recipeID)
	if err != nil {
		return nil, err
	}
	if !recipe.HasImage() {
		return nil, ErrNoImage
	}
	key := ThumbnailKey(recipe.ID, *recipe.Image)

	if thumb, ok := s.cached(ctx, key); ok {
		metrics.RecordThumbnail("cache")
		return thumb, nil
	}

	data, contentType, err := s.images.Fetch(ctx, *recipe.Image)
	if err != nil {
		return nil, fmt.Errorf("fetch image of %s: %w", recipe.ID, err)
	}
	res, err := renderThumbnail(ctx, s.processor, data, contentType, s.cfg.MaxDimension)
	if err != nil {
		return nil, fmt.Errorf("render thumbnail of %s: %w", recipe.ID, err)
	}

	if s.storage != nil && s.cfg.Bucket != "" {
		if _, err := s.storage.Upload(ctx, s.cfg.Bucket, key, res.ContentType, bytes.NewReader(res.Bytes), int64(len(res.Bytes))); err != nil {
			s.logger.Warn("thumbnail cache upload failed", "error", err, "key", key)
		}
	}
	metrics.RecordThumbnail("rendered")
	return &Thumbnail{Bytes: res.Bytes, ContentType: res.ContentType, Source: "rendered"}, nil
}

func (s *ThumbnailService) findRecipe(sessionID, recipeID string) (domain.Recipe, error) {
	inst, ok := s.registry.Lookup(sessionID)
	if !ok {
		return domain.Recipe{}, ErrRecipeNotFound
	}
	for _, r := range inst.Snapshot().Recipes {
		if r.ID == recipeID {
			return r, nil
		}
	}
	return domain.Recipe{}, ErrRecipeNotFound
}

func (s *ThumbnailService) cached(ctx context.Context, key string) (*Thumbnail, bool) {
	if s.storage == nil || s.cfg.Bucket == "" {
		return nil, false
	}
	body, contentType, err := s.storage.Download(ctx, s.cfg.Bucket, key)
	if err != nil {
		if !errors.Is(err, ports.ErrObjectNotFound) {
			s.logger.Warn("thumbnail cache read failed", "error", err, "key", key)
		}
		return nil, false
	}
	defer body.Close()
	data, err := io.ReadAll(body)
	if err != nil {
		s.logger.Warn("thumbnail cache read failed", "error", err, "key", key)
		return nil, false
	}
	if contentType == "" {
		contentType = "image/jpeg"
	}
	return &Thumbnail{Bytes: data, ContentType: contentType, Source: "cache"}, true
}
