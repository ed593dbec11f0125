package storage

import (
	"context"
	"errors"
	"strings"
	"time"

	catalogapp "github.com/sadsod/storefront/internal/application/catalog"
)

// StubObjectStorage is used when object storage is disabled. It hands out
// URLs under BaseURL without talking to any backend, so images can be served
// by a reverse proxy from a local directory.
type StubObjectStorage struct {
	BaseURL string
}

// NewStubObjectStorage creates a StubObjectStorage; a blank baseURL defaults to /media
func NewStubObjectStorage(baseURL string) *StubObjectStorage {
	baseURL = strings.TrimSuffix(baseURL, "/")
	if baseURL == "" {
		baseURL = "/media"
	}
	return &StubObjectStorage{BaseURL: baseURL}
}

var _ catalogapp.ImageStorage = (*StubObjectStorage)(nil)

// GenerateUploadURL returns an upload URL under BaseURL
func (s *StubObjectStorage) GenerateUploadURL(
	_ context.Context,
	storageKey, _ string,
	expiresIn time.Duration,
) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, errors.New("storage key is required")
	}
	expiresAt := time.Now().Add(expiresIn)
	return s.BaseURL + "/upload/" + storageKey + "?expires=" + expiresAt.UTC().Format(time.RFC3339), expiresAt, nil
}

// PublicURL returns BaseURL/storageKey
func (s *StubObjectStorage) PublicURL(storageKey string) string {
	return s.BaseURL + "/" + strings.TrimPrefix(storageKey, "/")
}

// DeleteObject always succeeds
func (s *StubObjectStorage) DeleteObject(_ context.Context, storageKey string) error {
	if storageKey == "" {
		return errors.New("storage key is required")
	}
	return nil
}

// ObjectExists always reports true so products can reference any key
func (s *StubObjectStorage) ObjectExists(_ context.Context, storageKey string) (bool, error) {
	if storageKey == "" {
		return false, errors.New("storage key is required")
	}
	return true, nil
}
