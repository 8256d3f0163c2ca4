package models

// These structs define the JSON payloads exchanged with the functions'
// external collaborators: the GCS trigger and the deletion caller.

// GCSEvent is the data payload of a google.cloud.storage.object.v1.finalized
// CloudEvent, reduced to the fields this pipeline reads.
type GCSEvent struct {
	Bucket string `json:"bucket"`
	Name   string `json:"name"`
}

// DeletePhotoRequest is the body of a call to the photo-deleter function.
type DeletePhotoRequest struct {
	PhotoID string `json:"photoId"`
}

// DeletePhotoResponse is returned on successful deletion. Deleted counts the
// storage objects removed (or confirmed already absent).
type DeletePhotoResponse struct {
	Success bool `json:"success"`
	Deleted int  `json:"deleted"`
}

// Principal identifies the caller of the deletion entry point, as established
// by the upstream authentication layer.
type Principal struct {
	UID   string
	Admin bool
}
