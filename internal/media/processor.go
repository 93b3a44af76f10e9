package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"math"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	DefaultMaxDimension = 400
	defaultJPEGQuality  = 82
	// maxSourcePixels bounds the decoded size of a remote image.
	maxSourcePixels = 40_000_000
)

var ErrImageTooLarge = errors.New("media: image too large")

type Upload struct {
	Reader      io.Reader
	Size        int64
	FileName    string
	ContentType string
}

type Result struct {
	Bytes       []byte
	ContentType string
	Width       int
	Height      int
	Resized     bool
}

type Processor interface {
	Process(ctx context.Context, upload Upload, maxDimension int) (*Result, error)
}

// Thumbnailer decodes jpeg, png, gif and webp sources and re-encodes them as
// JPEG scaled to fit a square of maxDimension.
type Thumbnailer struct {
	maxDimension int
	quality      int
}

func NewThumbnailer(maxDimension int) *Thumbnailer {
	if maxDimension <= 0 {
		maxDimension = DefaultMaxDimension
	}
	return &Thumbnailer{maxDimension: maxDimension, quality: defaultJPEGQuality}
}

func (p *Thumbnailer) MaxDimension() int {
	return p.maxDimension
}

func (p *Thumbnailer) Process(ctx context.Context, upload Upload, maxDimension int) (*Result, error) {
	if upload.Reader == nil {
		return nil, fmt.Errorf("media: empty reader")
	}
	data, err := io.ReadAll(upload.Reader)
	if err != nil {
		return nil, fmt.Errorf("media: read image: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("media: empty image data")
	}

	width, height, err := decodeDimensions(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("media: decode dimensions: %w", err)
	}
	if width*height > maxSourcePixels {
		return nil, ErrImageTooLarge
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("media: decode image: %w", err)
	}

	targetMax := maxDimension
	if targetMax <= 0 {
		targetMax = p.maxDimension
	}
	targetW, targetH := width, height
	resized := false
	if width > targetMax || height > targetMax {
		targetW, targetH = scaleToFit(width, height, targetMax)
		resized = true
	}

	dst := image.NewRGBA(image.Rect(0, 0, targetW, targetH))
	// JPEG has no alpha; flatten onto white so transparent areas do not turn black.
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	var out bytes.Buffer
	if err := jpeg.Encode(&out, dst, &jpeg.Options{Quality: p.quality}); err != nil {
		return nil, fmt.Errorf("media: encode jpeg: %w", err)
	}
	return &Result{
		Bytes:       out.Bytes(),
		ContentType: "image/jpeg",
		Width:       targetW,
		Height:      targetH,
		Resized:     resized,
	}, nil
}

func decodeDimensions(r io.Reader) (int, int, error) {
	cfg, _, err := image.DecodeConfig(r)
	if err != nil {
		return 0, 0, err
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return 0, 0, fmt.Errorf("invalid dimensions %dx%d", cfg.Width, cfg.Height)
	}
	return cfg.Width, cfg.Height, nil
}

func scaleToFit(width, height, maxDim int) (int, int) {
	if width >= height {
		newH := int(math.Round(float64(height) * float64(maxDim) / float64(width)))
		return ensureMin(maxDim), ensureMin(newH)
	}
	newW := int(math.Round(float64(width) * float64(maxDim) / float64(height)))
	return ensureMin(newW), ensureMin(maxDim)
}

func ensureMin(value int) int {
	if value < 2 {
		return 2
	}
	return value
}
