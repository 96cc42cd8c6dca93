package models

import (
	"bytes"
	"io"
)

// Data Transfer Objects

// FileUpload carries either inline Content or, for multipart parts, a seekable
// Reader of Size bytes.
type FileUpload struct {
	Name     string        `json:"name" validate:"required,max=255"`
	MimeType string        `json:"mime_type" validate:"max=255"`
	Content  []byte        `json:"content"` // base64 in JSON
	Reader   io.ReadSeeker `json:"-" validate:"-"`
	Size     int64         `json:"-" validate:"-"`
}

// Payload returns the upload body and its size.
func (u FileUpload) Payload() (io.ReadSeeker, int64) {
	if u.Reader != nil {
		return u.Reader, u.Size
	}
	return bytes.NewReader(u.Content), int64(len(u.Content))
}

type CreateSubmissionRequest struct {
	StudentID   string       `json:"student_id" validate:"required,max=255"`
	CriterionID int          `json:"criterion_id" validate:"required,gt=0"`
	Note        *string      `json:"note,omitempty" validate:"omitempty,max=4000"`
	Files       []FileUpload `json:"files" validate:"dive"`
}

type ReviewRequest struct {
	Decision Decision `json:"decision" validate:"required,oneof=approve reject"`
	Score    LooseInt `json:"score"`
	Comment  *string  `json:"comment,omitempty" validate:"omitempty,max=4000"`
}

type CreateAdjustmentRequest struct {
	StudentID string   `json:"student_id" validate:"required,max=255"`
	Delta     LooseInt `json:"delta"`
	Comment   *string  `json:"comment,omitempty" validate:"omitempty,max=4000"`
	ActorID   string   `json:"-"`
}

type SubmissionsResponse struct {
	Submissions []Submission `json:"submissions"`
	Total       int          `json:"total"`
}

type ScoreSummary struct {
	StudentID string `json:"student_id"`
	Base      int64  `json:"base"`
	Extra     int64  `json:"extra"`
	Total     int64  `json:"total"`
}

type CriterionScore struct {
	CriterionID int               `json:"criterion_id"`
	Title       string            `json:"title"`
	MaxScore    int               `json:"max_score"`
	Status      *SubmissionStatus `json:"status,omitempty"`
	Credited    int               `json:"credited"`
}

type ScoreBreakdown struct {
	StudentID string           `json:"student_id"`
	Criteria  []CriterionScore `json:"criteria"`
	Summary   ScoreSummary     `json:"summary"`
}
