package httpd

import (
	"net/http"
	"strconv"

	"github.com/Erkin33/Platform-sub000/pkg/utils"
	"github.com/go-chi/chi/v5"
)

// GetStudentScore returns {base, extra, total}, or the credited score of a
// single criterion when ?criterion_id= is given.
func (h *Handler) GetStudentScore(w http.ResponseWriter, r *http.Request) {
	studentID := chi.URLParam(r, "id")
	if !canViewStudent(currentActor(r), studentID) {
		utils.ErrorResponse(w, http.StatusForbidden, "Insufficient permissions")
		return
	}

	if v := r.URL.Query().Get("criterion_id"); v != "" {
		criterionID, err := strconv.Atoi(v)
		if err != nil {
			utils.ErrorResponse(w, http.StatusBadRequest, "Invalid criterion_id")
			return
		}

		score, err := h.scoreService.CriterionScore(r.Context(), studentID, criterionID)
		if err != nil {
			h.handleServiceError(w, r, err)
			return
		}

		utils.SuccessResponse(w, map[string]interface{}{
			"student_id":   studentID,
			"criterion_id": criterionID,
			"score":        score,
		})
		return
	}

	summary, err := h.scoreService.TotalWithAdjustments(r.Context(), studentID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	utils.SuccessResponse(w, summary)
}

func (h *Handler) GetScoreBreakdown(w http.ResponseWriter, r *http.Request) {
	studentID := chi.URLParam(r, "id")
	if !canViewStudent(currentActor(r), studentID) {
		utils.ErrorResponse(w, http.StatusForbidden, "Insufficient permissions")
		return
	}

	breakdown, err := h.scoreService.Breakdown(r.Context(), studentID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	utils.SuccessResponse(w, breakdown)
}
