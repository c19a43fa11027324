// Package gcs implements object storage on Google Cloud Storage.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	cloudstorage "cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"formdesk/internal/config"
	"formdesk/internal/port"
	"formdesk/internal/storage"
)

const defaultBaseURL = "https://storage.googleapis.com"

type gcsClient struct {
	client        *cloudstorage.Client
	publicBaseURL string
}

// NewGCSClient creates a Cloud Storage backed ObjectStorage implementation.
func NewGCSClient(ctx context.Context, cfg *config.StorageConfig) (port.ObjectStorage, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, fmt.Errorf("gcs: bucket: %w", config.ErrMissing)
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint), option.WithoutAuthentication())
	}

	client, err := cloudstorage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gcs: new client: %w", err)
	}

	base := cfg.PublicBaseURL
	if base == "" {
		base = defaultBaseURL + "/" + cfg.Bucket
	}
	return &gcsClient{client: client, publicBaseURL: base}, nil
}

func (c *gcsClient) Upload(ctx context.Context, input port.UploadInput) (*port.UploadOutput, error) {
	w := c.client.Bucket(input.Bucket).Object(input.Key).NewWriter(ctx)
	w.ContentType = input.ContentType

	if _, err := io.Copy(w, input.Body); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("gcs upload: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("gcs upload close: %w", err)
	}

	etag := ""
	if attrs := w.Attrs(); attrs != nil {
		etag = attrs.Etag
	}
	return &port.UploadOutput{
		Location: storage.PublicURL(c.publicBaseURL, input.Key),
		ETag:     etag,
	}, nil
}

func (c *gcsClient) Delete(ctx context.Context, bucket, key string) error {
	err := c.client.Bucket(bucket).Object(key).Delete(ctx)
	if err != nil && !errors.Is(err, cloudstorage.ErrObjectNotExist) {
		return fmt.Errorf("gcs delete: %w", err)
	}
	return nil
}

func (c *gcsClient) GetPresignedURL(_ context.Context, bucket, key string, expirySeconds int64) (string, error) {
	u, err := c.client.Bucket(bucket).SignedURL(key, &cloudstorage.SignedURLOptions{
		Method:  "GET",
		Expires: time.Now().Add(time.Duration(expirySeconds) * time.Second),
		Scheme:  cloudstorage.SigningSchemeV4,
	})
	if err != nil {
		return "", fmt.Errorf("gcs presign: %w", err)
	}
	return u, nil
}
