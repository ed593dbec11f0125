package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sadsod/storefront/internal/domain/shared"
)

// AllowedImageTypes maps the accepted upload content types to the key extension.
// SVG is excluded because it can carry scripts.
var AllowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ImageKeyPrefix prefixes every object key issued for product images.
// Image values without it are external URLs or legacy file names.
const ImageKeyPrefix = "products/"

// ImageStorage is the object storage used for product images.
// Implemented by the infrastructure layer (S3-compatible or stub).
type ImageStorage interface {
	// GenerateUploadURL presigns an upload of contentType to storageKey
	GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error)
	// PublicURL returns the URL browsers load the object from
	PublicURL(storageKey string) string
	DeleteObject(ctx context.Context, storageKey string) error
	ObjectExists(ctx context.Context, storageKey string) (bool, error)
}

// ImageService issues upload URLs for product images and resolves stored
// image references to URLs
type ImageService struct {
	storage   ImageStorage
	expiresIn time.Duration
}

// NewImageService creates a new ImageService
func NewImageService(storage ImageStorage, expiresIn time.Duration) *ImageService {
	if expiresIn <= 0 {
		expiresIn = 15 * time.Minute
	}
	return &ImageService{storage: storage, expiresIn: expiresIn}
}

// RequestUploadURL returns a presigned URL and the key the product should reference
func (s *ImageService) RequestUploadURL(ctx context.Context, req ImageUploadRequest) (*ImageUploadResponse, error) {
	contentType := strings.ToLower(strings.TrimSpace(req.ContentType))
	ext, ok := AllowedImageTypes[contentType]
	if !ok {
		return nil, shared.NewDomainError("INVALID_CONTENT_TYPE",
			fmt.Sprintf("Content type '%s' is not allowed. Use JPEG, PNG, GIF or WebP.", req.ContentType))
	}

	key := ImageKeyPrefix + uuid.New().String() + ext
	uploadURL, expiresAt, err := s.storage.GenerateUploadURL(ctx, key, contentType, s.expiresIn)
	if err != nil {
		return nil, fmt.Errorf("failed to generate upload URL: %w", err)
	}

	return &ImageUploadResponse{
		UploadURL: uploadURL,
		Key:       key,
		PublicURL: s.storage.PublicURL(key),
		ExpiresAt: expiresAt,
	}, nil
}

// URL resolves a stored image reference. Storage keys map to the storage's
// public URL; anything else is returned unchanged.
func (s *ImageService) URL(image string) string {
	if !IsStorageKey(image) {
		return image
	}
	return s.storage.PublicURL(image)
}

// Verify checks that an image key points to an uploaded object
func (s *ImageService) Verify(ctx context.Context, image string) error {
	if !IsStorageKey(image) {
		return nil
	}
	exists, err := s.storage.ObjectExists(ctx, image)
	if err != nil {
		return err
	}
	if !exists {
		return shared.NewDomainError("IMAGE_NOT_UPLOADED", "The product image has not been uploaded")
	}
	return nil
}

// Delete removes a stored image; references that are not storage keys are ignored
func (s *ImageService) Delete(ctx context.Context, image string) error {
	if !IsStorageKey(image) {
		return nil
	}
	return s.storage.DeleteObject(ctx, image)
}

// IsStorageKey reports whether image is an object key issued by RequestUploadURL
func IsStorageKey(image string) bool {
	return strings.HasPrefix(image, ImageKeyPrefix)
}
