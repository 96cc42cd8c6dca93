package models

import (
	"time"
)

type SubmissionStatus string

const (
	StatusSubmitted      SubmissionStatus = "submitted"
	StatusTutorApproved  SubmissionStatus = "tutor_approved"
	StatusDeputyApproved SubmissionStatus = "deputy_approved"
	StatusDeanApproved   SubmissionStatus = "dean_approved"
	StatusRejected       SubmissionStatus = "rejected"
)

func (s SubmissionStatus) String() string {
	return string(s)
}

// IsTerminal reports whether no reviewer can move the submission further.
// A rejected submission can still be rejected again (comment overwrite).
func (s SubmissionStatus) IsTerminal() bool {
	return s == StatusDeanApproved || s == StatusRejected
}

func IsValidSubmissionStatus(status string) bool {
	switch SubmissionStatus(status) {
	case StatusSubmitted, StatusTutorApproved, StatusDeputyApproved, StatusDeanApproved, StatusRejected:
		return true
	default:
		return false
	}
}

// FileRef points at a payload in the content store. Ref is "<algorithm>:<hex>";
// MimeType is what the uploader declared, the store keeps its own sniffed type.
type FileRef struct {
	Name     string `json:"name"`
	Size     int64  `json:"size"`
	MimeType string `json:"mime_type"`
	Ref      string `json:"ref"`
}

type Submission struct {
	ID            string           `json:"id" db:"id"`
	StudentID     string           `json:"student_id" db:"student_id"`
	CriterionID   int              `json:"criterion_id" db:"criterion_id"`
	Note          *string          `json:"note,omitempty" db:"note"`
	Files         []FileRef        `json:"files" db:"files"`
	Status        SubmissionStatus `json:"status" db:"status"`
	TutorScore    *int             `json:"tutor_score,omitempty" db:"tutor_score"`
	TutorComment  *string          `json:"tutor_comment,omitempty" db:"tutor_comment"`
	TutorAt       *time.Time       `json:"tutor_at,omitempty" db:"tutor_at"`
	DeputyComment *string          `json:"deputy_comment,omitempty" db:"deputy_comment"`
	DeputyAt      *time.Time       `json:"deputy_at,omitempty" db:"deputy_at"`
	DeanComment   *string          `json:"dean_comment,omitempty" db:"dean_comment"`
	DeanAt        *time.Time       `json:"dean_at,omitempty" db:"dean_at"`
	Version       int64            `json:"version" db:"version"`
	CreatedAt     time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at" db:"updated_at"`
}

// ResetStages puts the submission back at the start of the approval chain.
func (s *Submission) ResetStages() {
	s.Status = StatusSubmitted
	s.TutorScore = nil
	s.TutorComment = nil
	s.TutorAt = nil
	s.DeputyComment = nil
	s.DeputyAt = nil
	s.DeanComment = nil
	s.DeanAt = nil
}

// Clone returns a deep copy so callers can mutate it freely.
func (s *Submission) Clone() *Submission {
	if s == nil {
		return nil
	}
	c := *s
	c.Note = cloneString(s.Note)
	c.TutorScore = cloneInt(s.TutorScore)
	c.TutorComment = cloneString(s.TutorComment)
	c.TutorAt = cloneTime(s.TutorAt)
	c.DeputyComment = cloneString(s.DeputyComment)
	c.DeputyAt = cloneTime(s.DeputyAt)
	c.DeanComment = cloneString(s.DeanComment)
	c.DeanAt = cloneTime(s.DeanAt)
	if s.Files != nil {
		c.Files = make([]FileRef, len(s.Files))
		copy(c.Files, s.Files)
	}
	return &c
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneTime(v *time.Time) *time.Time {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
