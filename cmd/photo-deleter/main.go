package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"

	"github.com/dishly/photo-functions/internal/config"
	"github.com/dishly/photo-functions/internal/fnerr"
	"github.com/dishly/photo-functions/internal/gcp"
	"github.com/dishly/photo-functions/internal/models"
	"github.com/dishly/photo-functions/internal/services"
	"github.com/dishly/photo-functions/internal/store"
)

var (
	deleterInstance *services.DeleterFunction
	once            sync.Once
	initErr         error
)

func init() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	functions.HTTP("DeletePhoto", handleDeletePhoto)
}

func main() {}

func initDeleter(ctx context.Context) (*services.DeleterFunction, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	firestoreClient, err := gcp.NewFirestoreClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, err
	}
	storageClient, err := gcp.NewStorageClient(ctx)
	if err != nil {
		return nil, err
	}

	photos := store.NewFirestorePhotoStore(firestoreClient, cfg.PhotosCollection)
	blobs := store.NewGCSBlobStore(storageClient, cfg.PhotosBucket)
	return services.NewDeleter(photos, blobs), nil
}

// callerFromRequest reads the identity the upstream auth layer attached to
// the request. An absent user id means the call is unauthenticated.
func callerFromRequest(r *http.Request) models.Principal {
	return models.Principal{
		UID:   r.Header.Get("X-Auth-User"),
		Admin: strings.EqualFold(r.Header.Get("X-Auth-Role"), "admin"),
	}
}

// handleDeletePhoto is the HTTP entry point for photo deletion.
func handleDeletePhoto(w http.ResponseWriter, r *http.Request) {
	once.Do(func() {
		deleterInstance, initErr = initDeleter(context.Background())
	})
	if initErr != nil {
		slog.Error("Critical: Deleter initialization failed", "error", initErr)
		writeError(w, fnerr.Wrap(fnerr.Internal, "failed to initialize service", initErr))
		return
	}

	var req models.DeletePhotoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Could not decode request body", "error", err)
		writeError(w, fnerr.New(fnerr.InvalidArgument, "could not parse request body"))
		return
	}

	res, err := deleterInstance.Process(r.Context(), callerFromRequest(r), req)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(res); err != nil {
		slog.Error("Failed to write response", "error", err, "photoId", req.PhotoID)
	}
}

// writeError maps a typed failure onto its HTTP status and a JSON body with
// the stable machine-readable code.
func writeError(w http.ResponseWriter, err error) {
	code := fnerr.CodeOf(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(fnerr.HTTPStatus(code))
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]string{
			"code":    string(code),
			"message": fnerr.MessageOf(err),
		},
	})
}
