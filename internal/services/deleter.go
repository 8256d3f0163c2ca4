package services

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/dishly/photo-functions/internal/fnerr"
	"github.com/dishly/photo-functions/internal/models"
	"github.com/dishly/photo-functions/internal/store"
)

// deleteConcurrency bounds parallel object deletions per request.
const deleteConcurrency = 8

// DeleterFunction removes a photo's storage objects and, only once storage is
// clean, its metadata record.
type DeleterFunction struct {
	photos store.PhotoStore
	blobs  store.BlobStore
}

// NewDeleter wires the deletion coordinator from its injected collaborators.
func NewDeleter(photos store.PhotoStore, blobs store.BlobStore) *DeleterFunction {
	return &DeleterFunction{photos: photos, blobs: blobs}
}

// Process authorizes and executes one deletion request. The record is only
// removed after every referenced object has been deleted or confirmed absent,
// so a surviving record always signals incomplete cleanup.
func (f *DeleterFunction) Process(ctx context.Context, caller models.Principal, req models.DeletePhotoRequest) (*models.DeletePhotoResponse, error) {
	if caller.UID == "" {
		return nil, fnerr.New(fnerr.Unauthenticated, "caller identity required")
	}
	if req.PhotoID == "" {
		return nil, fnerr.New(fnerr.InvalidArgument, "photoId is required")
	}
	logCtx := slog.With("photoId", req.PhotoID, "caller", caller.UID)

	photo, err := f.photos.Get(ctx, req.PhotoID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fnerr.New(fnerr.NotFound, "photo not found")
		}
		logCtx.Error("Failed to load photo record", "error", err)
		return nil, fnerr.Wrap(fnerr.Internal, "failed to load photo", err)
	}
	if photo.OwnerID != caller.UID && !caller.Admin {
		logCtx.Warn("Rejected deletion by non-owner.", "ownerId", photo.OwnerID)
		return nil, fnerr.New(fnerr.PermissionDenied, "only the owner or an admin may delete a photo")
	}

	// Enumerate storage at delete time rather than trusting the variants map,
	// so orphaned objects under the prefix are swept too.
	objects, err := f.blobs.List(ctx, models.VariantObjectPrefix(photo.ID))
	if err != nil {
		logCtx.Error("Failed to list derivative objects", "error", err)
		return nil, fnerr.Wrap(fnerr.Internal, "failed to enumerate photo objects", err)
	}
	if photo.OriginalPath != "" {
		objects = append(objects, photo.OriginalPath)
	}

	var deleted int64
	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(deleteConcurrency)
	for _, object := range objects {
		eg.Go(func() error {
			if err := f.blobs.Delete(gctx, object); err != nil {
				return err
			}
			atomic.AddInt64(&deleted, 1)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		logCtx.Error("Storage cleanup incomplete; keeping photo record.", "error", err)
		return nil, fnerr.Wrap(fnerr.Internal, "failed to delete photo objects", err)
	}

	if err := f.photos.Delete(ctx, photo.ID); err != nil {
		logCtx.Error("Failed to delete photo record after storage cleanup", "error", err)
		return nil, fnerr.Wrap(fnerr.Internal, "failed to delete photo record", err)
	}

	logCtx.Info("Photo deleted.", "objectsDeleted", deleted)
	return &models.DeletePhotoResponse{Success: true, Deleted: int(deleted)}, nil
}
