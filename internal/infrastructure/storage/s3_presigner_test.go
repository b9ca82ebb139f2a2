package storage

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPresigner(t *testing.T, cfg config.StorageConfig) *S3ImagePresigner {
	t.Helper()
	p, err := NewS3ImagePresigner(context.Background(), &cfg)
	require.NoError(t, err)
	return p
}

func TestNewS3ImagePresigner_Validation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.StorageConfig
		wantErr string
	}{
		{name: "nil config", cfg: nil, wantErr: "configuration is required"},
		{name: "missing bucket", cfg: &config.StorageConfig{}, wantErr: "bucket is required"},
		{
			name:    "access key without secret",
			cfg:     &config.StorageConfig{Bucket: "images", AccessKeyID: "AKID"},
			wantErr: "must be set together",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewS3ImagePresigner(context.Background(), tt.cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestS3ImagePresigner_PresignGet(t *testing.T) {
	p := newTestPresigner(t, config.StorageConfig{
		Bucket:          "product-images",
		Region:          "eu-west-3",
		Endpoint:        "http://localhost:9000",
		AccessKeyID:     "AKIDEXAMPLE",
		SecretAccessKey: "secret",
		UsePathStyle:    true,
		PresignExpiry:   10 * time.Minute,
	})

	raw, err := p.PresignGet(context.Background(), "/products/lamp-1.jpg")
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "localhost:9000", u.Host)
	assert.Equal(t, "/product-images/products/lamp-1.jpg", u.Path)

	q := u.Query()
	assert.Equal(t, "600", q.Get("X-Amz-Expires"))
	assert.Contains(t, q.Get("X-Amz-Credential"), "AKIDEXAMPLE")
	assert.Contains(t, q.Get("X-Amz-Credential"), "eu-west-3")
	assert.NotEmpty(t, q.Get("X-Amz-Signature"))
}

func TestS3ImagePresigner_Defaults(t *testing.T) {
	p := newTestPresigner(t, config.StorageConfig{
		Bucket:          "product-images",
		Endpoint:        "minio:9000",
		AccessKeyID:     "AKIDEXAMPLE",
		SecretAccessKey: "secret",
		UsePathStyle:    true,
	})
	assert.Equal(t, defaultPresignExpiry, p.expiry)
	assert.Equal(t, "product-images", p.Bucket())

	raw, err := p.PresignGet(context.Background(), "a.jpg")
	require.NoError(t, err)
	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "https", u.Scheme)
	assert.Equal(t, "900", u.Query().Get("X-Amz-Expires"))
	assert.Contains(t, u.Query().Get("X-Amz-Credential"), defaultRegion)
}

func TestS3ImagePresigner_EmptyKey(t *testing.T) {
	p := newTestPresigner(t, config.StorageConfig{
		Bucket:          "product-images",
		AccessKeyID:     "AKIDEXAMPLE",
		SecretAccessKey: "secret",
	})
	_, err := p.PresignGet(context.Background(), "/")
	assert.Error(t, err)
}

func TestNormalizeEndpoint(t *testing.T) {
	assert.Equal(t, "", normalizeEndpoint("  "))
	assert.Equal(t, "https://s3.local", normalizeEndpoint("s3.local"))
	assert.Equal(t, "http://minio:9000", normalizeEndpoint("http://minio:9000"))
}
