package repository

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/Erkin33/Platform-sub000/internal/models"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"
)

type bucketAPI interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
}

type MinIOBlobStore struct {
	client  *minio.Client
	buckets bucketAPI
	bucket  string
	region  string
	logger  zerolog.Logger

	retryBackoff  time.Duration
	bucketEnsured atomic.Bool
}

func NewMinIOBlobStore(endpoint, accessKey, secretKey, bucket, region string, useSSL bool, connectTimeout time.Duration, logger zerolog.Logger) (*MinIOBlobStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	store := &MinIOBlobStore{
		client:       client,
		buckets:      client,
		bucket:       bucket,
		region:       region,
		logger:       logger,
		retryBackoff: 500 * time.Millisecond,
	}

	// MinIO may still be starting; the bucket is ensured again on first use.
	if connectTimeout <= 0 {
		connectTimeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := store.waitForBucket(ctx); err != nil {
		logger.Error().Err(err).
			Str("endpoint", endpoint).
			Str("bucket", bucket).
			Msg("MinIO not ready during startup; will retry on demand")
	} else {
		logger.Info().
			Str("endpoint", endpoint).
			Str("bucket", bucket).
			Bool("ssl", useSSL).
			Msg("Connected to MinIO")
	}

	return store, nil
}

// ensureBucket makes a single attempt so requests fail fast while MinIO is down.
func (s *MinIOBlobStore) ensureBucket(ctx context.Context) error {
	if s.bucketEnsured.Load() {
		return nil
	}

	exists, err := s.buckets.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", s.bucket, err)
	}

	if !exists {
		if err := s.buckets.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
			// Another instance may have created it in the meantime.
			if ok, existsErr := s.buckets.BucketExists(ctx, s.bucket); existsErr != nil || !ok {
				return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
			}
		} else {
			s.logger.Info().Str("bucket", s.bucket).Msg("Created new bucket")
		}
	}

	s.bucketEnsured.Store(true)
	return nil
}

// waitForBucket retries ensureBucket with backoff until ctx is done.
func (s *MinIOBlobStore) waitForBucket(ctx context.Context) error {
	backoff := s.retryBackoff
	for {
		err := s.ensureBucket(ctx)
		if err == nil {
			return nil
		}
		if !sleepCtx(ctx, backoff) {
			return fmt.Errorf("minio not ready: %w", err)
		}
	}
}

func (s *MinIOBlobStore) Put(ctx context.Context, key, contentType string, data io.Reader, size int64) error {
	if err := s.ensureBucket(ctx); err != nil {
		return err
	}

	info, err := s.client.PutObject(ctx, s.bucket, key, data, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload blob: %w", err)
	}

	s.logger.Debug().
		Str("bucket", s.bucket).
		Str("key", key).
		Str("etag", info.ETag).
		Int64("size", size).
		Msg("Blob uploaded to MinIO")

	return nil
}

func (s *MinIOBlobStore) Get(ctx context.Context, key string) (io.ReadCloser, *BlobInfo, error) {
	if err := s.ensureBucket(ctx); err != nil {
		return nil, nil, err
	}

	stat, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, nil, models.ErrFileNotFound
		}
		return nil, nil, fmt.Errorf("failed to stat blob: %w", err)
	}

	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get blob: %w", err)
	}

	return obj, &BlobInfo{
		Key:         key,
		Size:        stat.Size,
		ContentType: stat.ContentType,
		StoredAt:    stat.LastModified,
	}, nil
}

func (s *MinIOBlobStore) Exists(ctx context.Context, key string) (bool, error) {
	if err := s.ensureBucket(ctx); err != nil {
		return false, err
	}

	_, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// sleepCtx reports false when ctx ended before d elapsed.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
