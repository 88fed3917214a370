// Package storage wraps the S3-compatible object store behind the small
// surface the attachment flow needs: pre-signed upload and download URLs
// plus deletion. File bytes never pass through the application server.
package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/frahmantamala/permission-management/internal"
)

var ErrNotConfigured = errors.New("object storage is not configured")

type ObjectStorage interface {
	IssueUploadURL(ctx context.Context, key, contentType string) (string, error)
	IssueDownloadURL(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
	// BuildKey produces a namespaced, timestamped object key for a new
	// upload so concurrent uploads of the same filename never collide.
	BuildKey(fileName string) string
}

type R2Storage struct {
	client         *minio.Client
	bucket         string
	keyPrefix      string
	uploadExpiry   time.Duration
	downloadExpiry time.Duration
}

func NewR2Storage(cfg internal.StorageConfig) (*R2Storage, error) {
	if cfg.Endpoint == "" {
		return nil, ErrNotConfigured
	}

	endpoint := strings.TrimPrefix(strings.TrimPrefix(cfg.Endpoint, "https://"), "http://")
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: "auto",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage client: %w", err)
	}

	return &R2Storage{
		client:         client,
		bucket:         cfg.Bucket,
		keyPrefix:      cfg.KeyPrefix,
		uploadExpiry:   cfg.UploadExpiry,
		downloadExpiry: cfg.DownloadExpiry,
	}, nil
}

func (s *R2Storage) BuildKey(fileName string) string {
	clean := strings.ReplaceAll(fileName, "/", "_")
	return fmt.Sprintf("%s/%d-%s-%s", s.keyPrefix, time.Now().Unix(), uuid.New().String()[:8], clean)
}

func (s *R2Storage) IssueUploadURL(ctx context.Context, key, contentType string) (string, error) {
	u, err := s.client.PresignHeader(ctx, "PUT", s.bucket, key, s.uploadExpiry, url.Values{}, map[string][]string{
		"Content-Type": {contentType},
	})
	if err != nil {
		return "", fmt.Errorf("failed to presign upload for %s: %w", key, err)
	}
	return u.String(), nil
}

func (s *R2Storage) IssueDownloadURL(ctx context.Context, key string) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, s.downloadExpiry, url.Values{})
	if err != nil {
		return "", fmt.Errorf("failed to presign download for %s: %w", key, err)
	}
	return u.String(), nil
}

func (s *R2Storage) Delete(ctx context.Context, key string) error {
	return s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
}

// Unconfigured satisfies ObjectStorage when no endpoint is set so the
// process still starts in development; attachment endpoints surface the
// missing configuration instead.
type Unconfigured struct{}

func (Unconfigured) IssueUploadURL(context.Context, string, string) (string, error) {
	return "", ErrNotConfigured
}

func (Unconfigured) IssueDownloadURL(context.Context, string) (string, error) {
	return "", ErrNotConfigured
}

func (Unconfigured) Delete(context.Context, string) error {
	return ErrNotConfigured
}

func (Unconfigured) BuildKey(fileName string) string {
	return fileName
}
