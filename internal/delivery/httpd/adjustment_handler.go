package httpd

import (
	"net/http"

	"github.com/Erkin33/Platform-sub000/internal/models"
	"github.com/Erkin33/Platform-sub000/pkg/utils"
	"github.com/go-chi/chi/v5"
)

func (h *Handler) CreateAdjustment(w http.ResponseWriter, r *http.Request) {
	var req models.CreateAdjustmentRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodySize)
	if err := utils.ReadJSON(r, &req); err != nil {
		utils.ErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validate.Struct(&req); err != nil {
		utils.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	req.ActorID = currentActor(r).ID

	adj, err := h.adjustmentService.Add(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	utils.SuccessResponseWithStatus(w, http.StatusCreated, adj)
}

func (h *Handler) DeleteAdjustment(w http.ResponseWriter, r *http.Request) {
	if err := h.adjustmentService.Remove(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	utils.SuccessResponse(w, map[string]string{"message": "Adjustment removed"})
}

func (h *Handler) GetStudentAdjustments(w http.ResponseWriter, r *http.Request) {
	studentID := chi.URLParam(r, "id")
	if !canViewStudent(currentActor(r), studentID) {
		utils.ErrorResponse(w, http.StatusForbidden, "Insufficient permissions")
		return
	}

	adjs, err := h.adjustmentService.ForStudent(r.Context(), studentID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	if adjs == nil {
		adjs = []models.Adjustment{}
	}

	utils.SuccessResponse(w, adjs)
}
