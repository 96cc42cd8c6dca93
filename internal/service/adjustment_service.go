package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Erkin33/Platform-sub000/internal/metrics"
	"github.com/Erkin33/Platform-sub000/internal/models"
	"github.com/Erkin33/Platform-sub000/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// AdjustmentService manages the ledger. Callers gate it to administrators.
type AdjustmentService interface {
	Add(ctx context.Context, req *models.CreateAdjustmentRequest) (*models.Adjustment, error)
	Remove(ctx context.Context, id string) error
	ForStudent(ctx context.Context, studentID string) ([]models.Adjustment, error)
}

type adjustmentService struct {
	adjustmentRepo repository.AdjustmentRepository
	notifier       *Notifier
	metrics        *metrics.Metrics
	logger         zerolog.Logger
}

func NewAdjustmentService(
	adjustmentRepo repository.AdjustmentRepository,
	notifier *Notifier,
	m *metrics.Metrics,
	logger zerolog.Logger,
) AdjustmentService {
	return &adjustmentService{
		adjustmentRepo: adjustmentRepo,
		notifier:       notifier,
		metrics:        m,
		logger:         logger,
	}
}

func (s *adjustmentService) Add(ctx context.Context, req *models.CreateAdjustmentRequest) (*models.Adjustment, error) {
	adj := &models.Adjustment{
		ID:        uuid.New().String(),
		StudentID: req.StudentID,
		Delta:     req.Delta.OrZero(),
		Comment:   req.Comment,
		ActorID:   req.ActorID,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.adjustmentRepo.Append(ctx, adj); err != nil {
		return nil, fmt.Errorf("failed to add adjustment: %w", err)
	}

	s.logger.Info().
		Str("adjustment_id", adj.ID).
		Str("student_id", adj.StudentID).
		Str("actor_id", adj.ActorID).
		Int64("delta", adj.Delta).
		Msg("Adjustment added")

	s.metrics.Adjustment("added")
	s.notifier.Notify(ctx, models.EntityAdjustment, models.ActionCreated, adj.ID, adj.StudentID)
	return adj, nil
}

// Remove deletes the adjustment; an unknown id is not an error.
func (s *adjustmentService) Remove(ctx context.Context, id string) error {
	removed, err := s.adjustmentRepo.Remove(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to remove adjustment: %w", err)
	}
	if removed == nil {
		s.logger.Debug().Str("adjustment_id", id).Msg("Adjustment already absent")
		return nil
	}

	s.logger.Info().
		Str("adjustment_id", removed.ID).
		Str("student_id", removed.StudentID).
		Int64("delta", removed.Delta).
		Msg("Adjustment removed")

	s.metrics.Adjustment("removed")
	s.notifier.Notify(ctx, models.EntityAdjustment, models.ActionRemoved, removed.ID, removed.StudentID)
	return nil
}

func (s *adjustmentService) ForStudent(ctx context.Context, studentID string) ([]models.Adjustment, error) {
	adjs, err := s.adjustmentRepo.GetByStudentID(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get adjustments: %w", err)
	}
	return adjs, nil
}
