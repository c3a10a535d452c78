package storage

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/orris-inc/ticketdesk/internal/shared/config"
	"github.com/orris-inc/ticketdesk/internal/shared/logger"
)

// MinIOStore keeps objects in one S3-compatible bucket.
type MinIOStore struct {
	client *minio.Client
	bucket string
	logger logger.Interface
}

// NewMinIOClient builds a client with static credentials and a tuned transport.
func NewMinIOClient(cfg config.MinIOConfig) (*minio.Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	opts := &minio.Options{
		Creds:     credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:    cfg.UseSSL,
		Region:    cfg.Region,
		Transport: newTransport(),
	}
	return minio.New(cfg.Endpoint, opts)
}

// NewMinIOStore connects and makes sure the bucket exists.
func NewMinIOStore(ctx context.Context, cfg config.MinIOConfig, log logger.Interface) (*MinIOStore, error) {
	client, err := NewMinIOClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}
	if err := ensureBucket(ctx, client, cfg.Bucket, cfg.Region); err != nil {
		return nil, fmt.Errorf("ensure bucket %s: %w", cfg.Bucket, err)
	}

	return NewMinIOStoreWithClient(client, cfg.Bucket, log)
}

func NewMinIOStoreWithClient(client *minio.Client, bucket string, log logger.Interface) (*MinIOStore, error) {
	if client == nil {
		return nil, fmt.Errorf("minio client is required")
	}
	return &MinIOStore{
		client: client,
		bucket: bucket,
		logger: log,
	}, nil
}

func (s *MinIOStore) Backend() string { return "minio" }

func (s *MinIOStore) Save(ctx context.Context, originalName string, r io.Reader, contentType string) (StoredFile, error) {
	storageName := NewStorageName(originalName)

	cr := newChecksumReader(r)
	opts := minio.PutObjectOptions{ContentType: contentType}
	if _, err := s.client.PutObject(ctx, s.bucket, storageName, cr, -1, opts); err != nil {
		// A failed multipart upload may still have created the key.
		if rmErr := s.client.RemoveObject(context.WithoutCancel(ctx), s.bucket, storageName, minio.RemoveObjectOptions{}); rmErr != nil {
			s.logger.Warnw("failed to clean up partial object",
				"storage_name", storageName,
				"error", rmErr)
		}
		return StoredFile{}, fmt.Errorf("failed to put object: %w", err)
	}

	stored := cr.result(storageName)
	s.logger.Debugw("object stored",
		"bucket", s.bucket,
		"storage_name", storageName,
		"size_bytes", stored.SizeBytes)
	return stored, nil
}

func (s *MinIOStore) stat(ctx context.Context, storageName string) (Object, error) {
	info, err := s.client.StatObject(ctx, s.bucket, storageName, minio.StatObjectOptions{})
	if err != nil {
		if isNoSuchKey(err) {
			return Object{}, ErrNotExist
		}
		return Object{}, fmt.Errorf("failed to stat object: %w", err)
	}
	return Object{
		Name:        info.Key,
		SizeBytes:   info.Size,
		ContentType: info.ContentType,
		ModTime:     info.LastModified.UTC(),
	}, nil
}

func (s *MinIOStore) Open(ctx context.Context, storageName string) (io.ReadCloser, Object, error) {
	if !ValidName(storageName) {
		return nil, Object{}, fmt.Errorf("%w: %q", ErrInvalidName, storageName)
	}

	info, err := s.stat(ctx, storageName)
	if err != nil {
		return nil, Object{}, err
	}
	obj, err := s.client.GetObject(ctx, s.bucket, storageName, minio.GetObjectOptions{})
	if err != nil {
		return nil, Object{}, fmt.Errorf("failed to get object: %w", err)
	}
	return obj, info, nil
}

// Delete stats first because S3 treats removing a missing key as success.
func (s *MinIOStore) Delete(ctx context.Context, storageName string) error {
	if !ValidName(storageName) {
		return fmt.Errorf("%w: %q", ErrInvalidName, storageName)
	}

	if _, err := s.stat(ctx, storageName); err != nil {
		return err
	}
	if err := s.client.RemoveObject(ctx, s.bucket, storageName, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove object: %w", err)
	}

	s.logger.Debugw("object deleted", "bucket", s.bucket, "storage_name", storageName)
	return nil
}

func (s *MinIOStore) List(ctx context.Context) ([]Object, error) {
	var objects []Object
	for info := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Recursive: true}) {
		if info.Err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", info.Err)
		}
		objects = append(objects, Object{
			Name:        info.Key,
			SizeBytes:   info.Size,
			ContentType: info.ContentType,
			ModTime:     info.LastModified.UTC(),
		})
	}
	return objects, nil
}

func (s *MinIOStore) Check(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("bucket exists: %w", err)
	}
	if !exists {
		return fmt.Errorf("bucket missing: %s", s.bucket)
	}
	return nil
}

func ensureBucket(ctx context.Context, client *minio.Client, bucket string, region string) error {
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: region})
}

func isNoSuchKey(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound
}

func newTransport() *http.Transport {
	dialer := &net.Dialer{
		Timeout:   5 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
}
