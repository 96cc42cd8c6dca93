package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Erkin33/Platform-sub000/internal/metrics"
	"github.com/Erkin33/Platform-sub000/internal/models"
	"github.com/Erkin33/Platform-sub000/internal/repository"
	"github.com/Erkin33/Platform-sub000/internal/service/review"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type ReviewService interface {
	// Review returns nil, nil for a missing id when the policy ignores unknown submissions.
	Review(ctx context.Context, submissionID string, actor models.Actor, req *models.ReviewRequest) (*models.Submission, error)
	History(ctx context.Context, submissionID string) ([]models.ReviewRecord, error)
}

type reviewService struct {
	submissionRepo repository.SubmissionRepository
	historyRepo    repository.ReviewHistoryRepository
	policy         review.Policy
	notifier       *Notifier
	metrics        *metrics.Metrics
	logger         zerolog.Logger
}

func NewReviewService(
	submissionRepo repository.SubmissionRepository,
	historyRepo repository.ReviewHistoryRepository,
	policy review.Policy,
	notifier *Notifier,
	m *metrics.Metrics,
	logger zerolog.Logger,
) ReviewService {
	return &reviewService{
		submissionRepo: submissionRepo,
		historyRepo:    historyRepo,
		policy:         policy,
		notifier:       notifier,
		metrics:        m,
		logger:         logger,
	}
}

func (s *reviewService) Review(ctx context.Context, submissionID string, actor models.Actor, req *models.ReviewRequest) (*models.Submission, error) {
	sub, err := s.submissionRepo.GetByID(ctx, submissionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	if sub == nil {
		s.metrics.Review(actor.Role.String(), req.Decision.String(), "not_found")
		if s.policy.IgnoreUnknownSubmission {
			return nil, nil
		}
		return nil, models.ErrSubmissionNotFound
	}

	from := sub.Status
	loaded := sub.Version
	now := time.Now().UTC()

	in := review.Input{
		Role:     actor.Role,
		Decision: req.Decision,
		Score:    req.Score.Ptr(),
		Comment:  req.Comment,
		At:       now,
	}
	if err := review.Apply(sub, in, s.policy); err != nil {
		s.metrics.Review(actor.Role.String(), req.Decision.String(), "invalid")
		s.logger.Warn().
			Err(err).
			Str("submission_id", submissionID).
			Str("actor_id", actor.ID).
			Str("role", actor.Role.String()).
			Msg("Review decision refused")
		return nil, err
	}

	if err := s.submissionRepo.Update(ctx, sub, loaded); err != nil {
		if errors.Is(err, models.ErrVersionConflict) {
			s.metrics.Review(actor.Role.String(), req.Decision.String(), "conflict")
			return nil, err
		}
		s.metrics.Review(actor.Role.String(), req.Decision.String(), "error")
		return nil, fmt.Errorf("failed to save review: %w", err)
	}

	record := &models.ReviewRecord{
		ID:           uuid.New().String(),
		SubmissionID: sub.ID,
		ActorID:      actor.ID,
		ActorRole:    actor.Role,
		Decision:     req.Decision,
		FromStatus:   from,
		ToStatus:     sub.Status,
		Score:        in.Score,
		Comment:      req.Comment,
		CreatedAt:    now,
	}
	if err := s.historyRepo.Append(ctx, record); err != nil {
		// The decision is already stored; a missing audit row must not undo it.
		s.logger.Error().
			Err(err).
			Str("submission_id", sub.ID).
			Msg("Failed to append review history")
	}

	s.logger.Info().
		Str("submission_id", sub.ID).
		Str("student_id", sub.StudentID).
		Str("actor_id", actor.ID).
		Str("role", actor.Role.String()).
		Str("decision", req.Decision.String()).
		Str("from", from.String()).
		Str("to", sub.Status.String()).
		Msg("Submission reviewed")

	s.metrics.Review(actor.Role.String(), req.Decision.String(), "ok")
	s.notifier.Notify(ctx, models.EntitySubmission, models.ActionReviewed, sub.ID, sub.StudentID)
	return sub, nil
}

func (s *reviewService) History(ctx context.Context, submissionID string) ([]models.ReviewRecord, error) {
	sub, err := s.submissionRepo.GetByID(ctx, submissionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	if sub == nil {
		return nil, models.ErrSubmissionNotFound
	}

	records, err := s.historyRepo.GetBySubmissionID(ctx, submissionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get review history: %w", err)
	}
	return records, nil
}
