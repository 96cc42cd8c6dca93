package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/Erkin33/Platform-sub000/internal/models"
	"github.com/Erkin33/Platform-sub000/internal/repository"
	"github.com/Erkin33/Platform-sub000/pkg/hash"
	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
)

type FileService interface {
	// Store writes every payload to the content store and returns their references in order.
	Store(ctx context.Context, uploads []models.FileUpload) ([]models.FileRef, error)
	// Open accepts a bare hex digest or an "<algorithm>:<hex>" reference and
	// checks the payload against its digest before returning it.
	Open(ctx context.Context, ref string) (io.ReadCloser, *repository.BlobInfo, error)
}

type fileService struct {
	blobs  repository.BlobStore
	hasher hash.Hasher
	logger zerolog.Logger
}

func NewFileService(blobs repository.BlobStore, hasher hash.Hasher, logger zerolog.Logger) FileService {
	return &fileService{
		blobs:  blobs,
		hasher: hasher,
		logger: logger,
	}
}

func (s *fileService) Store(ctx context.Context, uploads []models.FileUpload) ([]models.FileRef, error) {
	refs := make([]models.FileRef, 0, len(uploads))

	for _, upload := range uploads {
		body, size := upload.Payload()

		sum, err := s.hasher.CalculateReader(body)
		if err != nil {
			return nil, fmt.Errorf("failed to hash %s: %w", upload.Name, err)
		}
		if err := rewind(body); err != nil {
			return nil, err
		}

		detected, err := mimetype.DetectReader(body)
		if err != nil {
			return nil, fmt.Errorf("failed to detect type of %s: %w", upload.Name, err)
		}
		if err := rewind(body); err != nil {
			return nil, err
		}

		declared := strings.TrimSpace(upload.MimeType)
		if declared == "" {
			declared = detected.String()
		}

		exists, err := s.blobs.Exists(ctx, sum)
		if err != nil {
			return nil, fmt.Errorf("failed to check stored file: %w", err)
		}
		if !exists {
			if err := s.blobs.Put(ctx, sum, detected.String(), body, size); err != nil {
				return nil, fmt.Errorf("failed to store %s: %w", upload.Name, err)
			}
			s.logger.Debug().
				Str("hash", sum).
				Str("mime_type", detected.String()).
				Int64("size", size).
				Msg("File stored")
		}

		refs = append(refs, models.FileRef{
			Name:     upload.Name,
			Size:     size,
			MimeType: declared,
			Ref:      s.hasher.Ref(sum),
		})
	}

	return refs, nil
}

func (s *fileService) Open(ctx context.Context, ref string) (io.ReadCloser, *repository.BlobInfo, error) {
	if !strings.Contains(ref, ":") {
		ref = s.hasher.Ref(ref)
	}

	algo, sum, err := hash.ParseRef(ref)
	if err != nil || algo != s.hasher.Algorithm() {
		return nil, nil, fmt.Errorf("%w: bad file reference %q", models.ErrInvalidInput, ref)
	}

	body, info, err := s.blobs.Get(ctx, sum)
	if err != nil {
		return nil, nil, err
	}
	defer body.Close()

	// Payloads are bounded by the upload limit.
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read stored file: %w", err)
	}

	ok, err := s.hasher.Verify(data, sum)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		s.logger.Error().Str("hash", sum).Msg("Stored file failed integrity check")
		return nil, nil, fmt.Errorf("%w: %s", models.ErrFileCorrupted, ref)
	}

	return io.NopCloser(bytes.NewReader(data)), info, nil
}

func rewind(body io.Seeker) error {
	if _, err := body.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to rewind upload: %w", err)
	}
	return nil
}
