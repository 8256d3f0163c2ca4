package models

import "time"

// Photo statuses. Pending is written by the upload flow when the record is
// created; the pipeline only ever transitions a record to Done or Error.
const (
	StatusPending = "pending"
	StatusDone    = "done"
	StatusError   = "error"
)

// Variant names, the keys of the Variants map.
const (
	VariantPyramid = "pyramid"
	VariantThumb   = "thumb"
	VariantMedium  = "medium"
	VariantWebP    = "webp"
)

// VariantPrefix is the reserved GCS prefix for generated derivatives.
// Objects under it never trigger re-processing.
const VariantPrefix = "variants/"

// CacheControlImmutable is set on every derivative object. Derivative paths
// never change contents once written, so aggressive caching is safe.
const CacheControlImmutable = "public, max-age=31536000, immutable"

// TileSize is the internal tile edge of the pyramid TIFF, recorded on the
// Photo so viewers can configure their tile requests without probing the file.
const TileSize = 256

// Photo is the main record for an uploaded image in Firestore.
// It tracks the original object, its derivatives and the processing state.
type Photo struct {
	ID           string            `firestore:"-"`
	OwnerID      string            `firestore:"ownerId,omitempty"`
	OriginalPath string            `firestore:"originalPath,omitempty"`
	Variants     map[string]string `firestore:"variants,omitempty"`
	Width        int               `firestore:"width,omitempty"`
	Height       int               `firestore:"height,omitempty"`
	TileSize     int               `firestore:"tileSize,omitempty"`
	Status       string            `firestore:"status,omitempty"`
	Error        string            `firestore:"error,omitempty"`
	UpdatedAt    time.Time         `firestore:"updatedAt,omitempty"`
}

// VariantObjectPath returns the storage path of a named derivative file for
// the given photo id, e.g. "variants/p1/thumb.jpg".
func VariantObjectPath(photoID, filename string) string {
	return VariantPrefix + photoID + "/" + filename
}

// VariantObjectPrefix returns the storage prefix under which all of a photo's
// derivatives live.
func VariantObjectPrefix(photoID string) string {
	return VariantPrefix + photoID + "/"
}
