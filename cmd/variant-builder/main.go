package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	cloudevents "github.com/cloudevents/sdk-go/v2"

	"github.com/dishly/photo-functions/internal/config"
	"github.com/dishly/photo-functions/internal/gcp"
	"github.com/dishly/photo-functions/internal/models"
	"github.com/dishly/photo-functions/internal/services"
	"github.com/dishly/photo-functions/internal/store"
	"github.com/dishly/photo-functions/internal/variants"
)

var (
	processorInstance *services.ProcessorFunction
	once              sync.Once
	initErr           error
)

func init() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	functions.CloudEvent("BuildVariants", buildVariants)
}

// main is required by the Go Functions Framework.
func main() {}

// initProcessor constructs the real GCP-backed dependencies once per process
// and hands them to the pipeline.
func initProcessor(ctx context.Context) (*services.ProcessorFunction, error) {
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
	return services.NewProcessor(photos, blobs, variants.NewVipsGenerator()), nil
}

// buildVariants is the Cloud Function entry point for the object-finalized
// trigger.
func buildVariants(ctx context.Context, e cloudevents.Event) error {
	once.Do(func() {
		processorInstance, initErr = initProcessor(context.Background())
	})
	if initErr != nil {
		slog.Error("Critical error during function initialization", "error", initErr)
		return initErr
	}

	var gcsEvent models.GCSEvent
	if err := json.Unmarshal(e.Data(), &gcsEvent); err != nil {
		slog.Error("Failed to unmarshal event data", "error", err, "data", string(e.Data()))
		return fmt.Errorf("json.Unmarshal: %w", err)
	}

	return processorInstance.Process(ctx, gcsEvent)
}
