package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBuckets struct {
	mu        sync.Mutex
	failures  int
	err       error
	exists    bool
	existsN   int
	makeCalls int
}

func (f *fakeBuckets) BucketExists(_ context.Context, _ string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.existsN++
	if f.failures > 0 {
		f.failures--
		return false, f.err
	}
	return f.exists, nil
}

func (f *fakeBuckets) MakeBucket(_ context.Context, _ string, _ minio.MakeBucketOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.makeCalls++
	f.exists = true
	return nil
}

func newFakeStore(buckets *fakeBuckets) *MinIOBlobStore {
	return &MinIOBlobStore{
		buckets:      buckets,
		bucket:       "evidence",
		logger:       zerolog.Nop(),
		retryBackoff: time.Millisecond,
	}
}

func TestMinIOBlobStore_EnsureBucketReturnsCause(t *testing.T) {
	cause := errors.New("connection refused")
	store := newFakeStore(&fakeBuckets{failures: 1, err: cause})

	err := store.ensureBucket(context.Background())
	assert.ErrorIs(t, err, cause)
	assert.False(t, store.bucketEnsured.Load())
}

func TestMinIOBlobStore_WaitForBucketKeepsLastError(t *testing.T) {
	cause := errors.New("connection refused")
	store := newFakeStore(&fakeBuckets{failures: 1 << 30, err: cause})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := store.waitForBucket(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
}

func TestMinIOBlobStore_WaitForBucketCreatesOnce(t *testing.T) {
	buckets := &fakeBuckets{failures: 2, err: errors.New("starting")}
	store := newFakeStore(buckets)

	require.NoError(t, store.waitForBucket(context.Background()))
	assert.Equal(t, 1, buckets.makeCalls)
	assert.True(t, store.bucketEnsured.Load())

	calls := buckets.existsN
	require.NoError(t, store.ensureBucket(context.Background()))
	assert.Equal(t, calls, buckets.existsN, "ensured bucket is not checked again")
}
