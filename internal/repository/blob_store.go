package repository

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"

	"github.com/Erkin33/Platform-sub000/internal/models"
)

type BlobInfo struct {
	Key         string
	Size        int64
	ContentType string
	StoredAt    time.Time
}

// BlobStore keeps file payloads keyed by their content hash.
type BlobStore interface {
	Put(ctx context.Context, key, contentType string, data io.Reader, size int64) error
	Get(ctx context.Context, key string) (io.ReadCloser, *BlobInfo, error)
	Exists(ctx context.Context, key string) (bool, error)
}

type memoryBlob struct {
	data []byte
	info BlobInfo
}

type memoryBlobStore struct {
	mu    sync.RWMutex
	blobs map[string]memoryBlob
}

func NewMemoryBlobStore() BlobStore {
	return &memoryBlobStore{blobs: make(map[string]memoryBlob)}
}

func (s *memoryBlobStore) Put(_ context.Context, key, contentType string, data io.Reader, _ int64) error {
	content, err := io.ReadAll(data)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.blobs[key] = memoryBlob{
		data: content,
		info: BlobInfo{
			Key:         key,
			Size:        int64(len(content)),
			ContentType: contentType,
			StoredAt:    time.Now(),
		},
	}
	return nil
}

func (s *memoryBlobStore) Get(_ context.Context, key string) (io.ReadCloser, *BlobInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	blob, ok := s.blobs[key]
	if !ok {
		return nil, nil, models.ErrFileNotFound
	}
	info := blob.info
	return io.NopCloser(bytes.NewReader(blob.data)), &info, nil
}

func (s *memoryBlobStore) Exists(_ context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.blobs[key]
	return ok, nil
}
