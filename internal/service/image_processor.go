package service

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"net/url"

	"golang.org/x/crypto/blake2b"

	"github.com/njprem/recipe_browser/internal/media"
)

func renderThumbnail(ctx context.Context, processor media.Processor, data []byte, contentType string, maxDimension int) (*media.Result, error) {
	if processor == nil {
		return &media.Result{Bytes: data, ContentType: contentType}, nil
	}
	return processor.Process(ctx, media.Upload{
		Reader:      bytes.NewReader(data),
		Size:        int64(len(data)),
		ContentType: contentType,
	}, maxDimension)
}

// ThumbnailKey names the cached rendition of image for recipeID. The id is
// path-escaped so it stays a single key segment; a changed image reference
// yields a new key.
func ThumbnailKey(recipeID, image string) string {
	sum := blake2b.Sum256([]byte(image))
	return fmt.Sprintf("thumbnails/%s-%s.jpg", url.PathEscape(recipeID), hex.EncodeToString(sum[:8]))
}
