package service

import (
	"context"
	"time"

	"github.com/Erkin33/Platform-sub000/internal/events"
	"github.com/Erkin33/Platform-sub000/internal/metrics"
	"github.com/Erkin33/Platform-sub000/internal/models"
	"github.com/rs/zerolog"
)

// Notifier stamps change events with this instance's source and hands them to
// the publisher. Failures are logged and never reach the caller.
type Notifier struct {
	publisher events.Publisher
	metrics   *metrics.Metrics
	source    string
	logger    zerolog.Logger
}

func NewNotifier(publisher events.Publisher, m *metrics.Metrics, source string, logger zerolog.Logger) *Notifier {
	return &Notifier{
		publisher: publisher,
		metrics:   m,
		source:    source,
		logger:    logger,
	}
}

func (n *Notifier) Notify(ctx context.Context, entity models.EntityKind, action models.ChangeAction, id, studentID string) {
	if n == nil || n.publisher == nil {
		return
	}

	event := models.ChangeEvent{
		Entity:     entity,
		Action:     action,
		ID:         id,
		StudentID:  studentID,
		Source:     n.source,
		OccurredAt: time.Now().UTC(),
	}

	err := n.publisher.Publish(ctx, event)
	n.metrics.EventPublished(err)
	if err != nil {
		n.logger.Error().
			Err(err).
			Str("entity", string(entity)).
			Str("action", string(action)).
			Str("id", id).
			Msg("Failed to publish change event")
	}
}
