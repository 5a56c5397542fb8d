package infra

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectStore uploads contest media to an S3-compatible bucket.
type ObjectStore struct {
	uploader   *manager.Uploader
	bucket     string
	publicBase string
}

// NewObjectStore builds an S3 client from cfg. A custom endpoint switches to path-style addressing.
func NewObjectStore(ctx context.Context, cfg *Config) (*ObjectStore, error) {
	if cfg.S3Bucket == "" {
		return nil, fmt.Errorf("s3: bucket name is required")
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.S3Region)}
	if cfg.S3AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, "")))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("s3: load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	publicBase := cfg.S3PublicBaseURL
	if publicBase == "" {
		if cfg.S3Endpoint != "" {
			publicBase = strings.TrimRight(cfg.S3Endpoint, "/") + "/" + cfg.S3Bucket
		} else {
			publicBase = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.S3Bucket, cfg.S3Region)
		}
	}

	return &ObjectStore{
		uploader:   manager.NewUploader(client),
		bucket:     cfg.S3Bucket,
		publicBase: strings.TrimRight(publicBase, "/"),
	}, nil
}

// Upload stores body under key and returns its public URL.
func (o *ObjectStore) Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	_, err := o.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(o.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("s3: upload %s: %w", key, err)
	}
	return o.URL(key), nil
}

// URL returns the public URL for key.
func (o *ObjectStore) URL(key string) string {
	return o.publicBase + "/" + strings.TrimLeft(key, "/")
}
