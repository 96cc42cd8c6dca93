package httpd

import (
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) GetFile(w http.ResponseWriter, r *http.Request) {
	body, info, err := h.fileService.Open(r.Context(), chi.URLParam(r, "hash"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	defer body.Close()

	contentType := info.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	// Evidence is user supplied; never render it in this origin.
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": info.Key}))
	if info.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(info.Size, 10))
	}
	// Content addressed, so the payload never changes.
	w.Header().Set("Cache-Control", "private, max-age=31536000, immutable")
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, body); err != nil {
		logger := LoggerFromContext(r.Context())
		logger.Error().Err(err).Str("hash", info.Key).Msg("Failed to stream file")
	}
}
