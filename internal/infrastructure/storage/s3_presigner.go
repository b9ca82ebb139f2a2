// Package storage presigns product image URLs against S3-compatible storage.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	catalogapp "github.com/storefront/backend/internal/application/catalog"
	infraconfig "github.com/storefront/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

const (
	defaultRegion        = "us-east-1"
	defaultPresignExpiry = 15 * time.Minute
)

var _ catalogapp.ImagePresigner = (*S3ImagePresigner)(nil)

// S3ImagePresigner turns stored image keys into time-limited GET URLs.
// Works with AWS S3 and compatible stores such as MinIO.
type S3ImagePresigner struct {
	presignClient *s3.PresignClient
	bucket        string
	expiry        time.Duration
	logger        *zap.Logger
}

// S3ImagePresignerOption is a functional option for configuring S3ImagePresigner
type S3ImagePresignerOption func(*S3ImagePresigner)

// WithLogger sets a custom logger
func WithLogger(logger *zap.Logger) S3ImagePresignerOption {
	return func(p *S3ImagePresigner) {
		p.logger = logger
	}
}

// NewS3ImagePresigner creates a presigner from configuration.
// Static keys are used when configured, otherwise the default AWS credential chain.
func NewS3ImagePresigner(ctx context.Context, cfg *infraconfig.StorageConfig, opts ...S3ImagePresignerOption) (*S3ImagePresigner, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}
	if (cfg.AccessKeyID == "") != (cfg.SecretAccessKey == "") {
		return nil, errors.New("storage access key and secret key must be set together")
	}

	region := cfg.Region
	if region == "" {
		region = defaultRegion
	}

	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	endpoint := normalizeEndpoint(cfg.Endpoint)
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	p := &S3ImagePresigner{
		presignClient: s3.NewPresignClient(client),
		bucket:        cfg.Bucket,
		expiry:        cfg.PresignExpiry,
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.expiry <= 0 {
		p.expiry = defaultPresignExpiry
	}

	p.logger.Info("S3 image presigner configured",
		zap.String("bucket", p.bucket),
		zap.String("region", region),
		zap.Duration("expiry", p.expiry),
	)
	return p, nil
}

// PresignGet returns a GET URL for key valid for the configured expiry
func (p *S3ImagePresigner) PresignGet(ctx context.Context, key string) (string, error) {
	key = strings.TrimPrefix(key, "/")
	if key == "" {
		return "", errors.New("storage key is required")
	}

	req, err := p.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(p.expiry))
	if err != nil {
		return "", fmt.Errorf("failed to presign image %q: %w", key, err)
	}
	return req.URL, nil
}

// Bucket returns the configured bucket
func (p *S3ImagePresigner) Bucket() string {
	return p.bucket
}

// normalizeEndpoint adds a scheme to bare host:port endpoints
func normalizeEndpoint(endpoint string) string {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return ""
	}
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		return "https://" + endpoint
	}
	return endpoint
}
