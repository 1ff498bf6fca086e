package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioStore keeps files in an object storage bucket.
type MinioStore struct {
	client  *minio.Client
	bucket  string
	linkTTL time.Duration
}

// MinioConfig holds bucket connection settings.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	LinkTTL   time.Duration
}

// NewMinioStore connects to the endpoint and ensures the bucket exists.
func NewMinioStore(ctx context.Context, cfg MinioConfig) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to minio %s: %w", cfg.Endpoint, err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.Bucket, err)
		}
	}

	linkTTL := cfg.LinkTTL
	if linkTTL <= 0 {
		linkTTL = time.Hour
	}

	return &MinioStore{client: client, bucket: cfg.Bucket, linkTTL: linkTTL}, nil
}

// Save uploads the object. The ref is the object name.
func (s *MinioStore) Save(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, name, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", name, err)
	}
	return name, nil
}

// Remove deletes the object.
func (s *MinioStore) Remove(ctx context.Context, ref string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, ref, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object %s: %w", ref, err)
	}
	return nil
}

// URL returns a presigned download link.
func (s *MinioStore) URL(ctx context.Context, ref string) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, ref, s.linkTTL, url.Values{})
	if err != nil {
		return "", fmt.Errorf("presign object %s: %w", ref, err)
	}
	return u.String(), nil
}
