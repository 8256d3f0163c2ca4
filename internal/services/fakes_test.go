package services

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"

	"github.com/dishly/photo-functions/internal/models"
	"github.com/dishly/photo-functions/internal/store"
	"github.com/dishly/photo-functions/internal/variants"
)

// fakePhotoStore is an in-memory PhotoStore. Updates are applied as whole
// field merges, mirroring Firestore's partial-update semantics closely enough
// for pipeline tests.
type fakePhotoStore struct {
	mu     sync.Mutex
	photos map[string]*models.Photo

	updateErr error
	updates   int
}

func newFakePhotoStore(photos ...*models.Photo) *fakePhotoStore {
	s := &fakePhotoStore{photos: make(map[string]*models.Photo)}
	for _, p := range photos {
		cp := *p
		s.photos[p.ID] = &cp
	}
	return s
}

func (s *fakePhotoStore) FindByOriginalPath(ctx context.Context, originalPath string) (*models.Photo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.photos {
		if p.OriginalPath == originalPath {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *fakePhotoStore) Get(ctx context.Context, id string) (*models.Photo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.photos[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *fakePhotoStore) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateErr != nil {
		return s.updateErr
	}
	p, ok := s.photos[id]
	if !ok {
		return store.ErrNotFound
	}
	s.updates++
	for path, value := range fields {
		switch path {
		case "variants":
			p.Variants = value.(map[string]string)
		case "width":
			p.Width = value.(int)
		case "height":
			p.Height = value.(int)
		case "tileSize":
			p.TileSize = value.(int)
		case "status":
			p.Status = value.(string)
		case "error":
			p.Error = value.(string)
		}
	}
	return nil
}

func (s *fakePhotoStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.photos[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.photos, id)
	return nil
}

func (s *fakePhotoStore) get(id string) *models.Photo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.photos[id]
}

// storedObject captures the metadata the tests assert on.
type storedObject struct {
	data         []byte
	contentType  string
	cacheControl string
}

// fakeBlobStore is an in-memory BlobStore keyed by object name.
type fakeBlobStore struct {
	mu      sync.Mutex
	objects map[string]storedObject

	uploadErr    error
	deleteErrFor string
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{objects: make(map[string]storedObject)}
}

func (s *fakeBlobStore) put(object string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[object] = storedObject{data: data}
}

func (s *fakeBlobStore) Download(ctx context.Context, object, destPath string) error {
	s.mu.Lock()
	obj, ok := s.objects[object]
	s.mu.Unlock()
	if !ok {
		return errors.New("object does not exist: " + object)
	}
	return os.WriteFile(destPath, obj.data, 0o644)
}

func (s *fakeBlobStore) Upload(ctx context.Context, object string, data []byte, contentType, cacheControl string) error {
	if s.uploadErr != nil {
		return s.uploadErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[object] = storedObject{data: data, contentType: contentType, cacheControl: cacheControl}
	return nil
}

func (s *fakeBlobStore) List(ctx context.Context, prefix string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var names []string
	for name := range s.objects {
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	return names, nil
}

func (s *fakeBlobStore) Delete(ctx context.Context, object string) error {
	if s.deleteErrFor == object {
		return errors.New("storage unavailable")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, object) // absent objects delete cleanly
	return nil
}

func (s *fakeBlobStore) Bucket() string { return "test-bucket" }

func (s *fakeBlobStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

// fakeGenerator returns canned derivatives, or fails like a corrupt source.
type fakeGenerator struct {
	derived *variants.Derivatives
	err     error
}

func (g *fakeGenerator) Derive(ctx context.Context, srcPath string) (*variants.Derivatives, error) {
	if g.err != nil {
		return nil, g.err
	}
	if g.derived != nil {
		return g.derived, nil
	}
	return &variants.Derivatives{
		Pyramid: []byte("tif"),
		Thumb:   []byte("thumb"),
		Medium:  []byte("medium"),
		WebP:    []byte("webp"),
		Width:   2000,
		Height:  1500,
	}, nil
}
