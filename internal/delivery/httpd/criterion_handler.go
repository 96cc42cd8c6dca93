package httpd

import (
	"net/http"

	"github.com/Erkin33/Platform-sub000/pkg/utils"
)

func (h *Handler) ListCriteria(w http.ResponseWriter, r *http.Request) {
	criteria, err := h.criterionService.List(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	utils.SuccessResponse(w, criteria)
}

func (h *Handler) GetCriterion(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(r, "id")
	if !ok {
		utils.ErrorResponse(w, http.StatusBadRequest, "Invalid criterion ID")
		return
	}

	criterion, err := h.criterionService.Get(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	utils.SuccessResponse(w, criterion)
}
