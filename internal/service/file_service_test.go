package service

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/Erkin33/Platform-sub000/internal/models"
	"github.com/Erkin33/Platform-sub000/internal/repository"
	"github.com/Erkin33/Platform-sub000/internal/service/review"
	"github.com/Erkin33/Platform-sub000/pkg/hash"
	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileService_SamePayloadSameRef(t *testing.T) {
	f := newFixture(t, review.DefaultPolicy())
	ctx := context.Background()

	refs, err := f.files.Store(ctx, []models.FileUpload{
		{Name: "a.txt", Content: []byte("same bytes")},
		{Name: "b.txt", Content: []byte("same bytes")},
	})
	require.NoError(t, err)
	require.Len(t, refs, 2)
	assert.Equal(t, refs[0].Ref, refs[1].Ref)
	assert.Equal(t, "a.txt", refs[0].Name)
	assert.Equal(t, "b.txt", refs[1].Name)
	assert.True(t, strings.HasPrefix(refs[0].MimeType, "text/plain"))

	digest := strings.TrimPrefix(refs[0].Ref, "sha256:")
	rc, info, err := f.files.Open(ctx, digest)
	require.NoError(t, err)
	defer rc.Close()

	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "same bytes", string(body))
	assert.Equal(t, int64(10), info.Size)
}

func TestFileService_OpenErrors(t *testing.T) {
	f := newFixture(t, review.DefaultPolicy())
	ctx := context.Background()

	_, _, err := f.files.Open(ctx, "not-a-digest")
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	_, _, err = f.files.Open(ctx, "sha256:"+strings.Repeat("ab", 32))
	assert.ErrorIs(t, err, models.ErrFileNotFound)
}

func TestFileService_StoredTypeIsSniffedNotDeclared(t *testing.T) {
	f := newFixture(t, review.DefaultPolicy())
	ctx := context.Background()
	content := []byte("<b>x</b>")

	first, err := f.files.Store(ctx, []models.FileUpload{{Name: "a.html", MimeType: "text/html", Content: content}})
	require.NoError(t, err)
	second, err := f.files.Store(ctx, []models.FileUpload{{Name: "a.txt", MimeType: "text/plain", Content: content}})
	require.NoError(t, err)

	assert.Equal(t, first[0].Ref, second[0].Ref)
	assert.Equal(t, "text/html", first[0].MimeType)
	assert.Equal(t, "text/plain", second[0].MimeType)

	for _, ref := range []string{first[0].Ref, second[0].Ref} {
		rc, info, err := f.files.Open(ctx, ref)
		require.NoError(t, err)
		rc.Close()
		assert.Equal(t, mimetype.Detect(content).String(), info.ContentType)
	}
}

func TestFileService_StoreFromReader(t *testing.T) {
	f := newFixture(t, review.DefaultPolicy())
	ctx := context.Background()
	payload := []byte("%PDF-1.4 streamed")

	refs, err := f.files.Store(ctx, []models.FileUpload{{
		Name:   "cert.pdf",
		Reader: bytes.NewReader(payload),
		Size:   int64(len(payload)),
	}})
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, "application/pdf", refs[0].MimeType)

	sum, err := hash.NewFileHasher(hash.SHA256).Calculate(payload)
	require.NoError(t, err)
	assert.Equal(t, "sha256:"+sum, refs[0].Ref)

	rc, info, err := f.files.Open(ctx, refs[0].Ref)
	require.NoError(t, err)
	defer rc.Close()
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, payload, body, "stored from the start despite hashing and sniffing")
	assert.Equal(t, int64(len(payload)), info.Size)
}

func TestFileService_OpenRejectsCorruptedBlob(t *testing.T) {
	f := newFixture(t, review.DefaultPolicy())
	ctx := context.Background()

	sum, err := hash.NewFileHasher(hash.SHA256).Calculate([]byte("original"))
	require.NoError(t, err)
	require.NoError(t, f.blobs.Put(ctx, sum, "text/plain", strings.NewReader("tampered"), 8))

	_, _, err = f.files.Open(ctx, sum)
	assert.ErrorIs(t, err, models.ErrFileCorrupted)
}

func TestFileService_OtherAlgorithm(t *testing.T) {
	ctx := context.Background()
	files := NewFileService(repository.NewMemoryBlobStore(), hash.NewFileHasher(hash.SHA512), zerolog.Nop())

	refs, err := files.Store(ctx, []models.FileUpload{{Name: "a.txt", Content: []byte("hello")}})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(refs[0].Ref, "sha512:"))

	rc, _, err := files.Open(ctx, refs[0].Ref)
	require.NoError(t, err)
	rc.Close()

	_, _, err = files.Open(ctx, "sha256:"+strings.Repeat("ab", 32))
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}
