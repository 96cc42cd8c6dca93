package models

import (
	"time"
)

// ReviewRecord is an audit row written for every applied review decision.
type ReviewRecord struct {
	ID           string           `json:"id" db:"id"`
	SubmissionID string           `json:"submission_id" db:"submission_id"`
	ActorID      string           `json:"actor_id" db:"actor_id"`
	ActorRole    Role             `json:"actor_role" db:"actor_role"`
	Decision     Decision         `json:"decision" db:"decision"`
	FromStatus   SubmissionStatus `json:"from_status" db:"from_status"`
	ToStatus     SubmissionStatus `json:"to_status" db:"to_status"`
	Score        *int             `json:"score,omitempty" db:"score"`
	Comment      *string          `json:"comment,omitempty" db:"comment"`
	CreatedAt    time.Time        `json:"created_at" db:"created_at"`
}
