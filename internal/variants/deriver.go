// Package variants turns a staged original image into the derivative set the
// viewers consume: a deep-zoom pyramid TIFF, a cropped thumbnail, a bounded
// medium JPEG and a bounded medium WebP.
package variants

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/davidbyttow/govips/v2/vips"

	"github.com/dishly/photo-functions/internal/models"
)

// Output geometry and quality settings. The pyramid carries the bulk of the
// bytes, so its quality sits below the medium JPEG; the WebP is tuned for
// smaller payloads at comparable visual quality.
const (
	ThumbSize      = 300
	MediumMaxPx    = 1600
	pyramidQuality = 80
	thumbQuality   = 75
	mediumQuality  = 85
	webpQuality    = 80
)

// Derivatives holds the encoded variant bytes plus the source dimensions.
type Derivatives struct {
	Pyramid []byte
	Thumb   []byte
	Medium  []byte
	WebP    []byte
	Width   int
	Height  int
}

// Generator produces the derivative set from a local copy of the original.
type Generator interface {
	Derive(ctx context.Context, srcPath string) (*Derivatives, error)
}

var vipsOnce sync.Once

// VipsGenerator implements Generator on libvips.
type VipsGenerator struct{}

// NewVipsGenerator initializes libvips (once per process) and returns a
// generator. libvips keeps its own operation cache, so a single instance is
// shared across invocations.
func NewVipsGenerator() *VipsGenerator {
	vipsOnce.Do(func() {
		vips.LoggingSettings(nil, vips.LogLevelError)
		vips.Startup(nil)
	})
	return &VipsGenerator{}
}

// Derive loads the source once and derives each output from a clone of that
// pipeline, so the original is decoded a single time. Any failing step aborts
// the whole set; partial derivative sets are never returned.
func (g *VipsGenerator) Derive(ctx context.Context, srcPath string) (*Derivatives, error) {
	src, err := vips.NewImageFromFile(srcPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load source image: %w", err)
	}
	defer src.Close()

	out := &Derivatives{Width: src.Width(), Height: src.Height()}
	if out.Width == 0 || out.Height == 0 {
		slog.Warn("Source image reports no dimensions.", "path", srcPath)
	}

	if out.Pyramid, err = g.encodePyramid(src); err != nil {
		return nil, fmt.Errorf("pyramid: %w", err)
	}
	if out.Thumb, err = g.encodeThumb(src); err != nil {
		return nil, fmt.Errorf("thumb: %w", err)
	}
	if out.Medium, err = g.encodeMedium(src); err != nil {
		return nil, fmt.Errorf("medium: %w", err)
	}
	if out.WebP, err = g.encodeWebP(src); err != nil {
		return nil, fmt.Errorf("webp: %w", err)
	}
	return out, nil
}

// encodePyramid writes a tiled, pyramid-structured TIFF with JPEG-compressed
// tiles, the format deep-zoom viewers read progressively.
func (g *VipsGenerator) encodePyramid(src *vips.ImageRef) ([]byte, error) {
	img, err := src.Copy()
	if err != nil {
		return nil, fmt.Errorf("failed to clone pipeline: %w", err)
	}
	defer img.Close()

	params := vips.NewTiffExportParams()
	params.Compression = vips.TiffCompressionJpeg
	params.Quality = pyramidQuality
	params.Tile = true
	params.TileWidth = models.TileSize
	params.TileHeight = models.TileSize
	params.Pyramid = true

	buf, _, err := img.ExportTiff(params)
	if err != nil {
		return nil, fmt.Errorf("failed to encode pyramid tiff: %w", err)
	}
	return buf, nil
}

// encodeThumb produces the fixed 300x300 cover crop. The entropy interest
// setting anchors the crop on the visually busiest region of the source
// instead of its geometric center.
func (g *VipsGenerator) encodeThumb(src *vips.ImageRef) ([]byte, error) {
	img, err := src.Copy()
	if err != nil {
		return nil, fmt.Errorf("failed to clone pipeline: %w", err)
	}
	defer img.Close()

	if err := img.Thumbnail(ThumbSize, ThumbSize, vips.InterestingEntropy); err != nil {
		return nil, fmt.Errorf("failed to crop thumbnail: %w", err)
	}

	params := vips.NewJpegExportParams()
	params.Quality = thumbQuality
	buf, _, err := img.ExportJpeg(params)
	if err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail jpeg: %w", err)
	}
	return buf, nil
}

// encodeMedium bounds the image to MediumMaxPx on its longer edge without
// upscaling and encodes a JPEG.
func (g *VipsGenerator) encodeMedium(src *vips.ImageRef) ([]byte, error) {
	img, err := g.boundedCopy(src)
	if err != nil {
		return nil, err
	}
	defer img.Close()

	params := vips.NewJpegExportParams()
	params.Quality = mediumQuality
	buf, _, err := img.ExportJpeg(params)
	if err != nil {
		return nil, fmt.Errorf("failed to encode medium jpeg: %w", err)
	}
	return buf, nil
}

// encodeWebP applies the same bound as the medium JPEG and encodes WebP.
func (g *VipsGenerator) encodeWebP(src *vips.ImageRef) ([]byte, error) {
	img, err := g.boundedCopy(src)
	if err != nil {
		return nil, err
	}
	defer img.Close()

	params := vips.NewWebpExportParams()
	params.Quality = webpQuality
	buf, _, err := img.ExportWebp(params)
	if err != nil {
		return nil, fmt.Errorf("failed to encode medium webp: %w", err)
	}
	return buf, nil
}

// boundedCopy clones the source and shrinks it so neither dimension exceeds
// MediumMaxPx, preserving aspect ratio. Smaller sources pass through at their
// native size.
func (g *VipsGenerator) boundedCopy(src *vips.ImageRef) (*vips.ImageRef, error) {
	img, err := src.Copy()
	if err != nil {
		return nil, fmt.Errorf("failed to clone pipeline: %w", err)
	}
	if err := img.ThumbnailWithSize(MediumMaxPx, MediumMaxPx, vips.InterestingNone, vips.SizeDown); err != nil {
		img.Close()
		return nil, fmt.Errorf("failed to resize: %w", err)
	}
	return img, nil
}
