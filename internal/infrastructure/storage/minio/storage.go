package minio

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/UmerKhan7479/SemesterSurvival/internal/core/domain"
)

// DefaultBucket holds every uploaded note blob.
const DefaultBucket = "notes_images"

// Store keeps note blobs in a MinIO bucket and hands back the public URL
// the frontend serves them from.
type Store struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// PublicURL is the externally reachable base, without trailing slash.
	// Empty means derive from endpoint and SSL flag.
	PublicURL string
}

func New(ctx context.Context, cfg Config) (*Store, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	bucket := cfg.Bucket
	if bucket == "" {
		bucket = DefaultBucket
	}
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("minio bucket check: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("minio make bucket: %w", err)
		}
	}

	publicURL := strings.TrimSuffix(cfg.PublicURL, "/")
	if publicURL == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		publicURL = fmt.Sprintf("%s://%s", scheme, cfg.Endpoint)
	}
	return &Store{client: client, bucket: bucket, publicURL: publicURL}, nil
}

// Put stores the blob under path and returns its public URL. The object is
// written before any database row that references it.
func (s *Store) Put(ctx context.Context, path string, data []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, path, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", domain.WrapError(domain.ErrTemporary, "store object", err)
	}
	return fmt.Sprintf("%s/%s/%s", s.publicURL, s.bucket, path), nil
}

// Remove deletes stored objects, best effort per path. The first failure
// is returned but does not stop the remaining deletes.
func (s *Store) Remove(ctx context.Context, paths []string) error {
	var firstErr error
	for _, path := range paths {
		if err := s.client.RemoveObject(ctx, s.bucket, path, minio.RemoveObjectOptions{}); err != nil && firstErr == nil {
			firstErr = domain.WrapError(domain.ErrTemporary, "remove object", err)
		}
	}
	return firstErr
}
