package models

import "time"

type EntityKind string

const (
	EntitySubmission EntityKind = "submission"
	EntityAdjustment EntityKind = "adjustment"
)

type ChangeAction string

const (
	ActionCreated  ChangeAction = "created"
	ActionUpdated  ChangeAction = "updated"
	ActionReviewed ChangeAction = "reviewed"
	ActionRemoved  ChangeAction = "removed"
)

// ChangeEvent tells subscribers that an entity changed; re-read it to get the new state.
type ChangeEvent struct {
	Entity     EntityKind   `json:"entity"`
	Action     ChangeAction `json:"action"`
	ID         string       `json:"id"`
	StudentID  string       `json:"student_id"`
	Source     string       `json:"source,omitempty"`
	OccurredAt time.Time    `json:"occurred_at"`
}

// RoutingKey is the AMQP routing key for the event, e.g. "social.submission.reviewed".
func (e ChangeEvent) RoutingKey() string {
	return "social." + string(e.Entity) + "." + string(e.Action)
}
