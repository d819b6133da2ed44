// Package preview derives bounded JPEG thumbnails for uploaded images.
package preview

import (
	"bytes"
	"image"
	"strings"

	"github.com/disintegration/imaging"
)

// KeySuffix is appended to a file's storage key to locate its preview object.
const KeySuffix = "_preview.jpg"

// ContentType of every generated preview.
const ContentType = "image/jpeg"

// Options bound the generated thumbnail.
type Options struct {
	MaxWidth  int
	MaxHeight int
	Quality   int
}

// DefaultOptions is a 300x300 box at JPEG quality 80.
var DefaultOptions = Options{MaxWidth: 300, MaxHeight: 300, Quality: 80}

// Generator turns an image payload into a thumbnail.
type Generator interface {
	// Generate returns the thumbnail bytes and true, or false when no preview applies or processing failed.
	Generate(data []byte, mimeType string) ([]byte, bool)
}

type imagingGenerator struct {
	opts Options
}

// New returns an imaging-backed Generator. Zero option fields fall back to DefaultOptions.
func New(opts Options) Generator {
	if opts.MaxWidth <= 0 {
		opts.MaxWidth = DefaultOptions.MaxWidth
	}
	if opts.MaxHeight <= 0 {
		opts.MaxHeight = DefaultOptions.MaxHeight
	}
	if opts.Quality <= 0 || opts.Quality > 100 {
		opts.Quality = DefaultOptions.Quality
	}
	return &imagingGenerator{opts: opts}
}

// Applies reports whether a preview is attempted for mimeType.
func Applies(mimeType string) bool {
	return strings.HasPrefix(strings.ToLower(mimeType), "image/")
}

// Key returns the preview object key for a storage key.
func Key(storageKey string) string {
	return storageKey + KeySuffix
}

func (g *imagingGenerator) Generate(data []byte, mimeType string) (out []byte, ok bool) {
	if !Applies(mimeType) || len(data) == 0 {
		return nil, false
	}
	// Decoders can panic on malformed input.
	defer func() {
		if r := recover(); r != nil {
			out, ok = nil, false
		}
	}()

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, false
	}

	// Fit keeps the aspect ratio and never upscales.
	thumb := imaging.Fit(img, g.opts.MaxWidth, g.opts.MaxHeight, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(g.opts.Quality)); err != nil {
		return nil, false
	}
	return buf.Bytes(), true
}

// Bounds decodes only the header of an encoded image.
func Bounds(data []byte) (image.Point, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return image.Point{}, err
	}
	return image.Point{X: cfg.Width, Y: cfg.Height}, nil
}
