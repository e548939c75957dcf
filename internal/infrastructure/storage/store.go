package storage

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"portfolio-backend/internal/config"
)

// ObjectStore is a storage driver: it writes bytes under a key and returns the public URL.
type ObjectStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	// DeleteURL removes the object a previously returned URL points at.
	DeleteURL(ctx context.Context, url string) error
}

// ImageService validates, normalizes and stores images on the configured driver.
type ImageService struct {
	store     ObjectStore
	processor *ImageProcessor
	now       func() time.Time
}

func NewImageService(store ObjectStore, processor *ImageProcessor) *ImageService {
	return &ImageService{store: store, processor: processor, now: time.Now}
}

// NewObjectStore picks the driver from config (local disk or MinIO).
func NewObjectStore(ctx context.Context, cfg *config.Config) (ObjectStore, error) {
	switch cfg.Storage.Driver {
	case "minio":
		return NewMinIOStorage(ctx, cfg.MinIO)
	case "local", "":
		return NewLocalStorage(cfg.Storage.UploadDir, cfg.Storage.PublicPrefix)
	default:
		return nil, fmt.Errorf("unknown image store driver %q", cfg.Storage.Driver)
	}
}

// Validate reports whether data would be accepted by Store.
func (s *ImageService) Validate(data []byte) error {
	_, err := s.processor.ValidateImage(data)
	return err
}

// Store persists data under folder with a timestamp-randomized name and returns its URL.
func (s *ImageService) Store(ctx context.Context, folder string, data []byte) (string, error) {
	img, err := s.processor.Process(data)
	if err != nil {
		return "", err
	}

	key := s.objectKey(folder, img.Extension)
	url, err := s.store.Upload(ctx, key, img.Data, img.ContentType)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}

	log.Debug().Str("key", key).Int("bytes", len(img.Data)).Msg("image stored")
	return url, nil
}

// Remove deletes the object behind url. Unknown URLs are ignored by the drivers.
func (s *ImageService) Remove(ctx context.Context, url string) error {
	if strings.TrimSpace(url) == "" {
		return nil
	}
	return s.store.DeleteURL(ctx, url)
}

// objectKey → projects/20261016T101500-3f2a9c1d.png
func (s *ImageService) objectKey(folder, ext string) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	name := fmt.Sprintf("%s-%s.%s", s.now().UTC().Format("20060102T150405"), id, ext)
	return path.Join(strings.Trim(folder, "/"), name)
}
