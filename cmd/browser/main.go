package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/njprem/recipe_browser/internal/browser"
	"github.com/njprem/recipe_browser/internal/config"
	"github.com/njprem/recipe_browser/internal/logging"
	"github.com/njprem/recipe_browser/internal/media"
	"github.com/njprem/recipe_browser/internal/repository/memory"
	"github.com/njprem/recipe_browser/internal/repository/minio"
	"github.com/njprem/recipe_browser/internal/repository/ports"
	"github.com/njprem/recipe_browser/internal/repository/postgres"
	"github.com/njprem/recipe_browser/internal/repository/recipeapi"
	"github.com/njprem/recipe_browser/internal/service"
	httpx "github.com/njprem/recipe_browser/internal/transport/http"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg := config.Load()
	logger, closer := logging.Setup(cfg.LogLevel, cfg.LogstashTCPAddr)
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("browser stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	policy, err := browser.ParsePagePolicy(cfg.PagePolicy)
	if err != nil {
		return err
	}

	sessions, err := sessionRepository(ctx, cfg, logger)
	if err != nil {
		return err
	}

	client := recipeapi.NewClient(recipeapi.Options{
		BaseURL:       cfg.RecipeAPIBaseURL,
		Timeout:       cfg.RecipeAPITimeout,
		RateLimit:     cfg.RecipeAPIRateLimit,
		Burst:         cfg.RecipeAPIBurst,
		MaxImageBytes: cfg.ThumbnailMaxBytes,
	})

	registry := browser.NewRegistry(browser.NewReducer(cfg.PageSize, policy), cfg.ViewCacheSize, cfg.ViewCacheTTL)
	sessionSvc := service.NewSessionService(sessions, cfg.SessionTTL, logger)
	browserSvc := service.NewBrowserService(client, sessionSvc, registry, logger)

	e := httpx.NewRouter(cfg.AllowOrigins, logger)
	httpx.RegisterSwagger(e)

	app := e.Group("", httpx.SessionCookie(httpx.SessionCookieConfig{
		Name:   cfg.SessionCookieName,
		TTL:    cfg.SessionTTL,
		Secure: cfg.SessionCookieSecure,
	}))
	httpx.RegisterBrowser(app, browserSvc, sessionSvc, httpx.PageOptions{
		FallbackImageURL: cfg.FallbackImageURL,
		Thumbnails:       cfg.EnableThumbnails,
	})
	httpx.RegisterFavorites(app, browserSvc)
	httpx.RegisterSession(app, sessionSvc, browserSvc)
	httpx.RegisterPages(app, registry, cfg.RecipeDetailBaseURL, cfg.FallbackImageURL)

	if cfg.EnableThumbnails {
		storage, err := thumbnailStorage(ctx, cfg)
		if err != nil {
			return err
		}
		thumbs := service.NewThumbnailService(registry, client, media.NewThumbnailer(cfg.ThumbnailMaxDimension), storage,
			service.ThumbnailServiceConfig{Bucket: cfg.MinIOBucketThumbnails, MaxDimension: cfg.ThumbnailMaxDimension}, logger)
		httpx.RegisterImages(app, thumbs, cfg.FallbackImageURL, logger)
	}

	return serve(ctx, e, ":"+cfg.Port, logger)
}

func sessionRepository(ctx context.Context, cfg config.Config, logger *slog.Logger) (ports.SessionRepository, error) {
	if cfg.DatabaseURL == "" {
		logger.Warn("DATABASE_URL not set, credentials are kept in memory")
		return memory.NewSessionRepo(), nil
	}
	db, err := postgres.New(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		return nil, err
	}
	repo := postgres.NewSessionRepo(db)
	go purgeExpired(ctx, repo, logger)
	return repo, nil
}

func purgeExpired(ctx context.Context, repo *postgres.SessionRepository, logger *slog.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := repo.PurgeExpired(ctx)
			if err != nil {
				logger.Warn("purge expired sessions failed", "error", err)
				continue
			}
			if n > 0 {
				logger.Info("purged expired sessions", "count", n)
			}
		}
	}
}

// thumbnailStorage returns nil when MinIO is not configured; thumbnails are
// then rendered on every request.
func thumbnailStorage(ctx context.Context, cfg config.Config) (ports.ObjectStorage, error) {
	if !cfg.ThumbnailCacheEnabled() {
		return nil, nil
	}
	client, err := minio.NewClient(cfg.MinIOEndpoint, cfg.MinIOAccessKey, cfg.MinIOSecretKey, cfg.MinIOUseSSL)
	if err != nil {
		return nil, err
	}
	storage := minio.NewStorage(client)
	if err := storage.EnsureBucket(ctx, cfg.MinIOBucketThumbnails); err != nil {
		return nil, err
	}
	return storage, nil
}

func serve(ctx context.Context, e *echo.Echo, addr string, logger *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("browser listening", "addr", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
