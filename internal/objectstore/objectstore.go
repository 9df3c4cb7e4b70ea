// Package objectstore wraps an R2-compatible (S3 API) bucket for raw HTML,
// cleaned text, and index-payload blobs. It is the object-store half of
// crawl:doc:{id}'s raw_key/clean_key fields; the filesystem half lives in
// internal/storage.
package objectstore

import (
	"bytes"
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Store is a thin façade over a minio-go client scoped to one bucket.
type Store struct {
	client *minio.Client
	bucket string
}

// New dials an R2/S3-compatible endpoint. Bucket creation is the operator's
// responsibility; New does not attempt to create it.
func New(endpoint, bucket, accessKey, secretKey string, useSSL bool) (*Store, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("objectstore: dial %s: %w", endpoint, err)
	}
	return &Store{client: client, bucket: bucket}, nil
}

// Put uploads data under key, returning the key unchanged so callers can
// chain it straight into a crawl:doc:{id} hash field.
func (s *Store) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("objectstore: put %s: %w", key, err)
	}
	return key, nil
}

// Get downloads the object stored at key in full.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("objectstore: get %s: %w", key, err)
	}
	defer obj.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(obj); err != nil {
		return nil, fmt.Errorf("objectstore: read %s: %w", key, err)
	}
	return buf.Bytes(), nil
}

// RawKey, CleanKey, and PayloadKey build the id-based keys used
// for a given crawl:doc id, so every writer and reader agrees on layout
// without needing a shared constant elsewhere.
func RawKey(id string) string     { return fmt.Sprintf("raw/%s.html", id) }
func CleanKey(id string) string   { return fmt.Sprintf("clean/%s.txt", id) }
func PayloadKey(id string) string { return fmt.Sprintf("payload/%s.json", id) }
