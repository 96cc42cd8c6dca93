package httpd

import (
	"net/http"

	"github.com/Erkin33/Platform-sub000/internal/models"
	"github.com/Erkin33/Platform-sub000/pkg/utils"
	"github.com/go-chi/chi/v5"
)

func (h *Handler) ReviewSubmission(w http.ResponseWriter, r *http.Request) {
	var req models.ReviewRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodySize)
	if err := utils.ReadJSON(r, &req); err != nil {
		utils.ErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validate.Struct(&req); err != nil {
		utils.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	sub, err := h.reviewService.Review(r.Context(), chi.URLParam(r, "id"), currentActor(r), &req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	if sub == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	utils.SuccessResponse(w, sub)
}

func (h *Handler) GetSubmissionHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	sub, err := h.submissionService.GetByID(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	if !canViewStudent(currentActor(r), sub.StudentID) {
		h.handleServiceError(w, r, models.ErrSubmissionNotFound)
		return
	}

	records, err := h.reviewService.History(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	if records == nil {
		records = []models.ReviewRecord{}
	}

	utils.SuccessResponse(w, records)
}
