package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port                  string
	RecipeAPIBaseURL      string
	RecipeAPITimeout      time.Duration
	RecipeAPIRateLimit    float64
	RecipeAPIBurst        int
	DatabaseURL           string
	SessionCookieName     string
	SessionTTL            time.Duration
	SessionCookieSecure   bool
	ViewCacheSize         int
	ViewCacheTTL          time.Duration
	PageSize              int
	PagePolicy            string
	FallbackImageURL      string
	RecipeDetailBaseURL   string
	AllowOrigins          []string
	LogLevel              string
	LogstashTCPAddr       string
	EnableThumbnails      bool
	ThumbnailMaxDimension int
	ThumbnailMaxBytes     int64
	MinIOEndpoint         string
	MinIOAccessKey        string
	MinIOSecretKey        string
	MinIOUseSSL           bool
	MinIOBucketThumbnails string
}

func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}
	return FromEnv()
}

// FromEnv reads the configuration from the process environment only.
func FromEnv() Config {
	cfg := Config{
		Port:                  getenv("PORT", "8080"),
		RecipeAPIBaseURL:      strings.TrimRight(getenv("RECIPE_API_BASE_URL", "https://foodrecipe-fullstack.onrender.com"), "/"),
		RecipeAPITimeout:      durationEnv("RECIPE_API_TIMEOUT", 10*time.Second),
		RecipeAPIRateLimit:    floatEnv("RECIPE_API_RATE_LIMIT", 0),
		RecipeAPIBurst:        intEnv("RECIPE_API_BURST", 5),
		DatabaseURL:           getenv("DATABASE_URL", ""),
		SessionCookieName:     getenv("SESSION_COOKIE_NAME", "rb_session"),
		SessionTTL:            durationEnv("SESSION_TTL", 720*time.Hour),
		SessionCookieSecure:   getenv("SESSION_COOKIE_SECURE", "false") == "true",
		ViewCacheSize:         intEnv("VIEW_CACHE_SIZE", 1024),
		ViewCacheTTL:          durationEnv("VIEW_CACHE_TTL", 30*time.Minute),
		PageSize:              intEnv("PAGE_SIZE", 4),
		PagePolicy:            strings.ToLower(getenv("PAGE_POLICY", "preserve")),
		FallbackImageURL:      getenv("FALLBACK_IMAGE_URL", "/static/cake.svg"),
		RecipeDetailBaseURL:   strings.TrimRight(getenv("RECIPE_DETAIL_BASE_URL", ""), "/"),
		AllowOrigins:          splitAndTrim(getenv("ALLOW_ORIGINS", "*")),
		LogLevel:              getenv("LOG_LEVEL", "info"),
		LogstashTCPAddr:       getenv("LOGSTASH_TCP_ADDR", ""),
		EnableThumbnails:      getenv("ENABLE_THUMBNAILS", "false") == "true",
		ThumbnailMaxDimension: intEnv("THUMBNAIL_MAX_DIMENSION", 400),
		ThumbnailMaxBytes:     int64(intEnv("THUMBNAIL_MAX_BYTES", 5<<20)),
		MinIOEndpoint:         getenv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:        getenv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:        getenv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:           getenv("MINIO_USE_SSL", "false") == "true",
		MinIOBucketThumbnails: getenv("MINIO_BUCKET_THUMBNAILS", "recipe-thumbnails"),
	}
	if cfg.MinIOEndpoint != "" {
		cfg.MinIOAccessKey = must("MINIO_ACCESS_KEY")
		cfg.MinIOSecretKey = must("MINIO_SECRET_KEY")
	}
	return cfg
}

// ThumbnailCacheEnabled reports whether rendered thumbnails go to MinIO.
func (c Config) ThumbnailCacheEnabled() bool {
	return c.EnableThumbnails && c.MinIOEndpoint != ""
}

func splitAndTrim(input string) []string {
	parts := strings.Split(input, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

func durationEnv(k string, d time.Duration) time.Duration {
	if v, err := time.ParseDuration(getenv(k, "")); err == nil && v > 0 {
		return v
	}
	return d
}

func intEnv(k string, d int) int {
	if v, err := strconv.Atoi(getenv(k, "")); err == nil && v > 0 {
		return v
	}
	return d
}

func floatEnv(k string, d float64) float64 {
	if v, err := strconv.ParseFloat(getenv(k, ""), 64); err == nil && v >= 0 {
		return v
	}
	return d
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func must(k string) string {
	v := os.Getenv(k)
	if v == "" {
		panic("missing env: " + k)
	}
	return v
}
