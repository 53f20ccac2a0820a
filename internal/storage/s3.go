// Package storage wraps the S3-compatible object store holding project
// images.  Uploads land under a folder prefix with a generated unique key
// and come back as public URLs; deletion works backwards from such a URL.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Store is a thin adapter over the object store client.
type Store struct {
	client   *minio.Client
	bucket   string
	endpoint string
	useSSL   bool
}

// New connects to the object store.  It returns an error when the endpoint
// or credentials are unusable; callers may run without a Store, in which
// case the upload endpoints report the integration as unavailable.
func New(endpoint, accessKey, secretKey, bucket, region string, useSSL bool) (*Store, error) {
	if endpoint == "" || bucket == "" {
		return nil, fmt.Errorf("object storage not configured")
	}
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("storage client: %w", err)
	}
	return &Store{client: client, bucket: bucket, endpoint: endpoint, useSSL: useSSL}, nil
}

// Upload streams one object into the bucket under folder with a fresh
// uuid-based name, keeping the original extension.  The returned URL is
// public and is what gets persisted on the project row.
func (s *Store) Upload(ctx context.Context, folder, originalName, contentType string, r io.Reader, size int64) (string, error) {
	ext := strings.ToLower(path.Ext(originalName))
	key := fmt.Sprintf("%s/%s%s", folder, uuid.NewString(), ext)
	_, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	return s.publicURL(key), nil
}

// Delete removes the object a previously returned URL points at.  URLs not
// produced by this store are rejected.
func (s *Store) Delete(ctx context.Context, fileURL string) error {
	key, ok := s.keyFromURL(fileURL)
	if !ok {
		return fmt.Errorf("not a managed storage url: %s", fileURL)
	}
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (s *Store) publicURL(key string) string {
	scheme := "https"
	if !s.useSSL {
		scheme = "http"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, s.endpoint, s.bucket, key)
}

// keyFromURL extracts the object key from a URL built by publicURL.
func (s *Store) keyFromURL(fileURL string) (string, bool) {
	marker := "/" + s.bucket + "/"
	i := strings.Index(fileURL, marker)
	if i < 0 {
		return "", false
	}
	key := fileURL[i+len(marker):]
	if key == "" {
		return "", false
	}
	return key, true
}
