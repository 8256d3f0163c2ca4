package store

import (
	"context"
	"fmt"
	"log/slog"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dishly/photo-functions/internal/models"
)

// FirestorePhotoStore implements PhotoStore on a Firestore collection.
type FirestorePhotoStore struct {
	client     *firestore.Client
	collection string
}

// NewFirestorePhotoStore wraps a Firestore client and collection name.
func NewFirestorePhotoStore(client *firestore.Client, collection string) *FirestorePhotoStore {
	return &FirestorePhotoStore{client: client, collection: collection}
}

func (s *FirestorePhotoStore) FindByOriginalPath(ctx context.Context, originalPath string) (*models.Photo, error) {
	docs, err := s.client.Collection(s.collection).
		Where("originalPath", "==", originalPath).
		Limit(1).
		Documents(ctx).
		GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to query photos by originalPath: %w", err)
	}
	if len(docs) == 0 {
		return nil, nil
	}
	return decodePhoto(docs[0])
}

func (s *FirestorePhotoStore) Get(ctx context.Context, id string) (*models.Photo, error) {
	snap, err := s.client.Collection(s.collection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get photo %s: %w", id, err)
	}
	return decodePhoto(snap)
}

func (s *FirestorePhotoStore) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	updates := make([]firestore.Update, 0, len(fields))
	for path, value := range fields {
		updates = append(updates, firestore.Update{Path: path, Value: value})
	}
	if _, err := s.client.Collection(s.collection).Doc(id).Update(ctx, updates); err != nil {
		return fmt.Errorf("failed to update photo %s: %w", id, err)
	}
	return nil
}

func (s *FirestorePhotoStore) Delete(ctx context.Context, id string) error {
	if _, err := s.client.Collection(s.collection).Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete photo %s: %w", id, err)
	}
	return nil
}

func decodePhoto(snap *firestore.DocumentSnapshot) (*models.Photo, error) {
	var photo models.Photo
	if err := snap.DataTo(&photo); err != nil {
		slog.Error("Photo document has an unexpected shape.", "documentId", snap.Ref.ID, "error", err)
		return nil, fmt.Errorf("failed to decode photo %s: %w", snap.Ref.ID, err)
	}
	photo.ID = snap.Ref.ID
	return &photo, nil
}
