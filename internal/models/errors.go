package models

import "errors"

var (
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrCriterionNotFound  = errors.New("criterion not found")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrRoleNotAllowed     = errors.New("role is not allowed to review")
	ErrVersionConflict    = errors.New("submission was modified concurrently")
	ErrInvalidInput       = errors.New("invalid input")
	ErrFileNotFound       = errors.New("file not found")
	ErrFileCorrupted      = errors.New("stored file does not match its digest")
)
