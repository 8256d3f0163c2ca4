// Package store defines the metadata-store and object-storage surfaces the
// functions depend on. Both functions receive these as constructed
// dependencies, so tests substitute in-memory fakes without touching GCP.
package store

import (
	"context"
	"errors"

	"github.com/dishly/photo-functions/internal/models"
)

// ErrNotFound is returned by PhotoStore.Get for a missing record.
var ErrNotFound = errors.New("photo record not found")

// PhotoStore is the document-store surface for Photo records.
type PhotoStore interface {
	// FindByOriginalPath returns the single record claiming originalPath as
	// its source object, or (nil, nil) when no record claims it.
	FindByOriginalPath(ctx context.Context, originalPath string) (*models.Photo, error)

	// Get returns the record with the given id, or ErrNotFound.
	Get(ctx context.Context, id string) (*models.Photo, error)

	// Update merges the given fields into the record in a single write.
	Update(ctx context.Context, id string, fields map[string]interface{}) error

	// Delete removes the record.
	Delete(ctx context.Context, id string) error
}

// BlobStore is the object-storage surface for originals and derivatives.
type BlobStore interface {
	// Download copies the named object to a local file path.
	Download(ctx context.Context, object, destPath string) error

	// Upload writes data to the named object with the given content type and
	// cache-control directive.
	Upload(ctx context.Context, object string, data []byte, contentType, cacheControl string) error

	// List returns the names of all objects under the given prefix.
	List(ctx context.Context, prefix string) ([]string, error)

	// Delete removes the named object. An already-missing object is not an
	// error.
	Delete(ctx context.Context, object string) error

	// Bucket returns the bucket identity objects live in.
	Bucket() string
}
