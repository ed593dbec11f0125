package storage

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/sadsod/storefront/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func testStorageConfig() *config.StorageConfig {
	return &config.StorageConfig{
		Bucket:            "sadsod-products",
		AccessKey:         "test-key",
		SecretKey:         "test-secret",
		Region:            "us-east-1",
		Endpoint:          "http://localhost:9000",
		UsePathStyle:      true,
		PresignExpiration: 15 * time.Minute,
	}
}

func TestNewS3ObjectStorage_Validation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.StorageConfig
		wantErr string
	}{
		{"nil config", nil, "configuration is required"},
		{"missing bucket", &config.StorageConfig{AccessKey: "k", SecretKey: "s"}, "bucket is required"},
		{"missing access key", &config.StorageConfig{Bucket: "b", SecretKey: "s"}, "access key is required"},
		{"missing secret key", &config.StorageConfig{Bucket: "b", AccessKey: "k"}, "secret key is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewS3ObjectStorage(tt.cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewS3ObjectStorage_Defaults(t *testing.T) {
	cfg := testStorageConfig()
	cfg.PresignExpiration = 0
	cfg.Region = ""

	s, err := NewS3ObjectStorage(cfg, WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	assert.Equal(t, "sadsod-products", s.GetBucket())
	assert.Equal(t, 15*time.Minute, s.presignExpiration)
	assert.Equal(t, "http://localhost:9000/sadsod-products", s.publicBaseURL)
}

func TestNewS3ObjectStorage_Options(t *testing.T) {
	s, err := NewS3ObjectStorage(testStorageConfig(), WithPresignExpiration(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, time.Hour, s.presignExpiration)
}

func TestNormalizeEndpoint(t *testing.T) {
	tests := []struct {
		endpoint string
		useSSL   bool
		expected string
	}{
		{"", false, "http://localhost:9000"},
		{"minio:9000", false, "http://minio:9000"},
		{"s3.example.com", true, "https://s3.example.com"},
		{"https://cdn.example.com/", false, "https://cdn.example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.endpoint, func(t *testing.T) {
			got, err := normalizeEndpoint(tt.endpoint, tt.useSSL)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestS3ObjectStorage_PublicURL(t *testing.T) {
	cfg := testStorageConfig()
	cfg.PublicBaseURL = "https://img.sadsod.dz/"

	s, err := NewS3ObjectStorage(cfg)
	require.NoError(t, err)
	assert.Equal(t, "https://img.sadsod.dz/products/a.jpg", s.PublicURL("products/a.jpg"))
	assert.Equal(t, "https://img.sadsod.dz/products/a.jpg", s.PublicURL("/products/a.jpg"))
}

func TestS3ObjectStorage_GenerateUploadURL(t *testing.T) {
	s, err := NewS3ObjectStorage(testStorageConfig())
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("empty storage key", func(t *testing.T) {
		u, _, err := s.GenerateUploadURL(ctx, "", "image/jpeg", time.Minute)
		require.Error(t, err)
		assert.Empty(t, u)
	})

	t.Run("presigned put", func(t *testing.T) {
		u, expiresAt, err := s.GenerateUploadURL(ctx, "products/key.jpg", "image/jpeg", 10*time.Minute)
		require.NoError(t, err)

		parsed, err := url.Parse(u)
		require.NoError(t, err)
		assert.Equal(t, "localhost:9000", parsed.Host)
		assert.True(t, strings.HasPrefix(parsed.Path, "/sadsod-products/products/key.jpg"))
		assert.Equal(t, "600", parsed.Query().Get("X-Amz-Expires"))
		assert.WithinDuration(t, time.Now().Add(10*time.Minute), expiresAt, 5*time.Second)
	})

	t.Run("default expiration", func(t *testing.T) {
		u, _, err := s.GenerateUploadURL(ctx, "products/key.jpg", "image/png", 0)
		require.NoError(t, err)
		parsed, err := url.Parse(u)
		require.NoError(t, err)
		assert.Equal(t, "900", parsed.Query().Get("X-Amz-Expires"))
	})
}

func TestS3ObjectStorage_EmptyKeys(t *testing.T) {
	s, err := NewS3ObjectStorage(testStorageConfig())
	require.NoError(t, err)
	ctx := context.Background()

	assert.Error(t, s.DeleteObject(ctx, ""))
	_, err = s.ObjectExists(ctx, "")
	assert.Error(t, err)
}

func TestStubObjectStorage(t *testing.T) {
	s := NewStubObjectStorage("")
	ctx := context.Background()
	assert.Equal(t, "/media", s.BaseURL)

	u, expiresAt, err := s.GenerateUploadURL(ctx, "products/x.webp", "image/webp", time.Minute)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(u, "/media/upload/products/x.webp?expires="))
	assert.True(t, expiresAt.After(time.Now()))

	_, _, err = s.GenerateUploadURL(ctx, "", "image/webp", time.Minute)
	assert.Error(t, err)

	assert.Equal(t, "/media/products/x.webp", s.PublicURL("products/x.webp"))
	assert.NoError(t, s.DeleteObject(ctx, "products/x.webp"))
	assert.Error(t, s.DeleteObject(ctx, ""))

	exists, err := s.ObjectExists(ctx, "products/x.webp")
	require.NoError(t, err)
	assert.True(t, exists)

	custom := NewStubObjectStorage("https://cdn.example.com/")
	assert.Equal(t, "https://cdn.example.com/a.jpg", custom.PublicURL("a.jpg"))
}
