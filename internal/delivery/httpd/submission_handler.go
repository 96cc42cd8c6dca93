package httpd

import (
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/Erkin33/Platform-sub000/internal/models"
	"github.com/Erkin33/Platform-sub000/pkg/utils"
	"github.com/go-chi/chi/v5"
)

// CreateSubmission accepts JSON (files as base64) or multipart/form-data
// with student_id, criterion_id, note and any number of "files" parts.
func (h *Handler) CreateSubmission(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSubmissionRequest

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		parsed, closeFiles, ok := h.parseMultipartSubmission(w, r)
		if !ok {
			return
		}
		defer closeFiles()
		req = *parsed
	} else {
		r.Body = http.MaxBytesReader(w, r.Body, h.options.MaxUploadSize)
		if err := utils.ReadJSON(r, &req); err != nil {
			utils.ErrorResponse(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	actor := currentActor(r)
	if actor.Role == models.RoleStudent {
		if req.StudentID == "" {
			req.StudentID = actor.ID
		}
		if req.StudentID != actor.ID {
			utils.ErrorResponse(w, http.StatusForbidden, "Students may only submit for themselves")
			return
		}
	}

	if err := h.validate.Struct(&req); err != nil {
		utils.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	sub, err := h.submissionService.CreateOrUpdate(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	utils.SuccessResponseWithStatus(w, http.StatusCreated, sub)
}

// parseMultipartSubmission leaves the file parts open so they can be hashed
// and stored without buffering; the caller runs the returned close func.
func (h *Handler) parseMultipartSubmission(w http.ResponseWriter, r *http.Request) (*models.CreateSubmissionRequest, func(), bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.options.MaxUploadSize)
	if err := r.ParseMultipartForm(h.options.MaxUploadSize); err != nil {
		utils.ErrorResponse(w, http.StatusBadRequest, "Failed to parse form data")
		return nil, nil, false
	}

	var opened []multipart.File
	closeFiles := func() {
		for _, file := range opened {
			file.Close()
		}
		_ = r.MultipartForm.RemoveAll()
	}

	req := &models.CreateSubmissionRequest{
		StudentID: r.FormValue("student_id"),
	}

	if v := r.FormValue("criterion_id"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			closeFiles()
			utils.ErrorResponse(w, http.StatusBadRequest, "Invalid criterion_id")
			return nil, nil, false
		}
		req.CriterionID = id
	}

	if note := r.FormValue("note"); note != "" {
		req.Note = &note
	}

	for _, header := range r.MultipartForm.File["files"] {
		file, err := header.Open()
		if err != nil {
			closeFiles()
			utils.ErrorResponse(w, http.StatusBadRequest, "Failed to read file")
			return nil, nil, false
		}
		opened = append(opened, file)

		req.Files = append(req.Files, models.FileUpload{
			Name:     header.Filename,
			MimeType: header.Header.Get("Content-Type"),
			Reader:   file,
			Size:     header.Size,
		})
	}

	return req, closeFiles, true
}

func (h *Handler) ListSubmissions(w http.ResponseWriter, r *http.Request) {
	subs, err := h.submissionService.List(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	utils.SuccessResponse(w, models.SubmissionsResponse{
		Submissions: orEmpty(subs),
		Total:       len(subs),
	})
}

func (h *Handler) GetSubmission(w http.ResponseWriter, r *http.Request) {
	sub, err := h.submissionService.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	if !canViewStudent(currentActor(r), sub.StudentID) {
		// Hide other students' submissions entirely.
		h.handleServiceError(w, r, models.ErrSubmissionNotFound)
		return
	}

	utils.SuccessResponse(w, sub)
}

func (h *Handler) ModerationQueue(w http.ResponseWriter, r *http.Request) {
	subs, err := h.submissionService.ModerationQueue(r.Context(), currentActor(r).Role)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	utils.SuccessResponse(w, models.SubmissionsResponse{
		Submissions: orEmpty(subs),
		Total:       len(subs),
	})
}

func (h *Handler) GetStudentSubmissions(w http.ResponseWriter, r *http.Request) {
	studentID := chi.URLParam(r, "id")
	if !canViewStudent(currentActor(r), studentID) {
		utils.ErrorResponse(w, http.StatusForbidden, "Insufficient permissions")
		return
	}

	subs, err := h.submissionService.ForStudent(r.Context(), studentID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	utils.SuccessResponse(w, models.SubmissionsResponse{
		Submissions: orEmpty(subs),
		Total:       len(subs),
	})
}

func (h *Handler) GetCurrentSubmission(w http.ResponseWriter, r *http.Request) {
	studentID := chi.URLParam(r, "id")
	if !canViewStudent(currentActor(r), studentID) {
		utils.ErrorResponse(w, http.StatusForbidden, "Insufficient permissions")
		return
	}

	criterionID, ok := pathInt(r, "criterionId")
	if !ok {
		utils.ErrorResponse(w, http.StatusBadRequest, "Invalid criterion ID")
		return
	}

	sub, err := h.submissionService.Current(r.Context(), studentID, criterionID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	if sub == nil {
		h.handleServiceError(w, r, models.ErrSubmissionNotFound)
		return
	}

	utils.SuccessResponse(w, sub)
}

func orEmpty(subs []models.Submission) []models.Submission {
	if subs == nil {
		return []models.Submission{}
	}
	return subs
}
