package models

import (
	"time"
)

// Adjustment is a manual point delta issued by an administrator. Never updated.
type Adjustment struct {
	ID        string    `json:"id" db:"id"`
	StudentID string    `json:"student_id" db:"student_id"`
	Delta     int64     `json:"delta" db:"delta"`
	Comment   *string   `json:"comment,omitempty" db:"comment"`
	ActorID   string    `json:"actor_id" db:"actor_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
