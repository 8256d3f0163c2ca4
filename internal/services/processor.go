package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dishly/photo-functions/internal/models"
	"github.com/dishly/photo-functions/internal/staging"
	"github.com/dishly/photo-functions/internal/store"
	"github.com/dishly/photo-functions/internal/variants"
)

// Fixed derivative filenames under variants/{id}/.
const (
	pyramidFile = "pyramid.tif"
	thumbFile   = "thumb.jpg"
	mediumFile  = "medium.jpg"
	webpFile    = "medium.webp"
)

// ProcessorFunction turns a finalized original upload into the full
// derivative set and records the outcome on the owning Photo record.
type ProcessorFunction struct {
	photos    store.PhotoStore
	blobs     store.BlobStore
	generator variants.Generator
}

// NewProcessor wires the pipeline from its injected collaborators.
func NewProcessor(photos store.PhotoStore, blobs store.BlobStore, generator variants.Generator) *ProcessorFunction {
	return &ProcessorFunction{
		photos:    photos,
		blobs:     blobs,
		generator: generator,
	}
}

// Process handles one object-finalized event. Events for derivative objects
// and for objects no record claims are skipped cleanly; everything else runs
// the pipeline to a terminal done or error status on the record.
func (f *ProcessorFunction) Process(ctx context.Context, e models.GCSEvent) error {
	logCtx := slog.With("gcsBucket", e.Bucket, "gcsObject", e.Name)

	if strings.HasPrefix(e.Name, models.VariantPrefix) {
		logCtx.Info("Skipping derivative object; derivatives are never re-processed.")
		return nil
	}

	photo, err := f.photos.FindByOriginalPath(ctx, e.Name)
	if err != nil {
		logCtx.Error("Failed to resolve owning photo record", "error", err)
		return err
	}
	if photo == nil {
		logCtx.Info("No photo record claims this object. Skipping.")
		return nil
	}
	logCtx = logCtx.With("photoId", photo.ID)
	logCtx.Info("Processing original upload.")

	scratch, err := staging.Acquire()
	if err != nil {
		return f.fail(ctx, logCtx, photo.ID, "failed to provision scratch directory", err)
	}
	defer scratch.Release()

	originalPath := scratch.Join("original")
	if err := f.blobs.Download(ctx, e.Name, originalPath); err != nil {
		return f.fail(ctx, logCtx, photo.ID, "failed to download original", err)
	}

	derived, err := f.generator.Derive(ctx, originalPath)
	if err != nil {
		return f.fail(ctx, logCtx, photo.ID, "derivative generation failed", err)
	}
	logCtx.Info("Derivatives generated.", "width", derived.Width, "height", derived.Height)

	if err := f.uploadDerivatives(ctx, photo.ID, derived); err != nil {
		return f.fail(ctx, logCtx, photo.ID, "failed to upload derivatives", err)
	}

	paths := map[string]string{
		models.VariantPyramid: models.VariantObjectPath(photo.ID, pyramidFile),
		models.VariantThumb:   models.VariantObjectPath(photo.ID, thumbFile),
		models.VariantMedium:  models.VariantObjectPath(photo.ID, mediumFile),
		models.VariantWebP:    models.VariantObjectPath(photo.ID, webpFile),
	}
	updates := map[string]interface{}{
		"variants":  paths,
		"width":     derived.Width,
		"height":    derived.Height,
		"tileSize":  models.TileSize,
		"status":    models.StatusDone,
		"updatedAt": time.Now(),
	}
	if err := f.photos.Update(ctx, photo.ID, updates); err != nil {
		return f.fail(ctx, logCtx, photo.ID, "failed to record derivatives on photo", err)
	}

	logCtx.Info("Processing complete.")
	return nil
}

// uploadDerivatives writes the four variant objects concurrently. Every
// object carries the immutable cache directive; the paths never change
// contents once written.
func (f *ProcessorFunction) uploadDerivatives(ctx context.Context, photoID string, d *variants.Derivatives) error {
	outputs := []struct {
		filename    string
		contentType string
		data        []byte
	}{
		{pyramidFile, "image/tiff", d.Pyramid},
		{thumbFile, "image/jpeg", d.Thumb},
		{mediumFile, "image/jpeg", d.Medium},
		{webpFile, "image/webp", d.WebP},
	}

	eg, gctx := errgroup.WithContext(ctx)
	for _, out := range outputs {
		eg.Go(func() error {
			object := models.VariantObjectPath(photoID, out.filename)
			if err := f.blobs.Upload(gctx, object, out.data, out.contentType, models.CacheControlImmutable); err != nil {
				return fmt.Errorf("%s: %w", out.filename, err)
			}
			return nil
		})
	}
	return eg.Wait()
}

// fail records the error status on the photo, then returns the wrapped error
// so the invocation is marked failed for the trigger's own retry policy.
func (f *ProcessorFunction) fail(ctx context.Context, logCtx *slog.Logger, photoID, message string, originalErr error) error {
	fullError := fmt.Sprintf("%s: %v", message, originalErr)
	logCtx.Error(message, "error", originalErr)

	updates := map[string]interface{}{
		"status":    models.StatusError,
		"error":     fullError,
		"updatedAt": time.Now(),
	}
	if err := f.photos.Update(ctx, photoID, updates); err != nil {
		logCtx.Error("CRITICAL: Failed to record error status after a processing failure.", "updateError", err)
	}
	return fmt.Errorf("%s", fullError)
}
