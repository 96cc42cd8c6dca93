package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Erkin33/Platform-sub000/internal/metrics"
	"github.com/Erkin33/Platform-sub000/internal/models"
	"github.com/Erkin33/Platform-sub000/internal/repository"
	"github.com/Erkin33/Platform-sub000/internal/service/review"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type SubmissionService interface {
	CreateOrUpdate(ctx context.Context, req *models.CreateSubmissionRequest) (*models.Submission, error)
	GetByID(ctx context.Context, id string) (*models.Submission, error)
	List(ctx context.Context) ([]models.Submission, error)
	ForStudent(ctx context.Context, studentID string) ([]models.Submission, error)
	Current(ctx context.Context, studentID string, criterionID int) (*models.Submission, error)
	ModerationQueue(ctx context.Context, role models.Role) ([]models.Submission, error)
}

type submissionService struct {
	submissionRepo repository.SubmissionRepository
	fileService    FileService
	notifier       *Notifier
	metrics        *metrics.Metrics
	logger         zerolog.Logger
}

func NewSubmissionService(
	submissionRepo repository.SubmissionRepository,
	fileService FileService,
	notifier *Notifier,
	m *metrics.Metrics,
	logger zerolog.Logger,
) SubmissionService {
	return &submissionService{
		submissionRepo: submissionRepo,
		fileService:    fileService,
		notifier:       notifier,
		metrics:        m,
		logger:         logger,
	}
}

func (s *submissionService) CreateOrUpdate(ctx context.Context, req *models.CreateSubmissionRequest) (*models.Submission, error) {
	// Payloads go to the content store before the record can reference them.
	files, err := s.fileService.Store(ctx, req.Files)
	if err != nil {
		return nil, fmt.Errorf("failed to store files: %w", err)
	}

	existing, err := s.submissionRepo.GetByStudentAndCriterion(ctx, req.StudentID, req.CriterionID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing submission: %w", err)
	}

	now := time.Now().UTC()

	if existing != nil {
		sub := existing
		sub.Note = req.Note
		sub.Files = files
		sub.ResetStages()
		sub.UpdatedAt = now

		if err := s.submissionRepo.Update(ctx, sub, existing.Version); err != nil {
			return nil, fmt.Errorf("failed to update submission: %w", err)
		}

		s.logger.Info().
			Str("submission_id", sub.ID).
			Str("student_id", sub.StudentID).
			Int("criterion_id", sub.CriterionID).
			Int("files", len(files)).
			Msg("Submission resubmitted")

		s.metrics.Submission(string(models.ActionUpdated))
		s.notifier.Notify(ctx, models.EntitySubmission, models.ActionUpdated, sub.ID, sub.StudentID)
		return sub, nil
	}

	sub := &models.Submission{
		ID:          uuid.New().String(),
		StudentID:   req.StudentID,
		CriterionID: req.CriterionID,
		Note:        req.Note,
		Files:       files,
		Status:      models.StatusSubmitted,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.submissionRepo.Create(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to create submission: %w", err)
	}

	s.logger.Info().
		Str("submission_id", sub.ID).
		Str("student_id", sub.StudentID).
		Int("criterion_id", sub.CriterionID).
		Int("files", len(files)).
		Msg("Submission created")

	s.metrics.Submission(string(models.ActionCreated))
	s.notifier.Notify(ctx, models.EntitySubmission, models.ActionCreated, sub.ID, sub.StudentID)
	return sub, nil
}

func (s *submissionService) GetByID(ctx context.Context, id string) (*models.Submission, error) {
	sub, err := s.submissionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	if sub == nil {
		return nil, models.ErrSubmissionNotFound
	}
	return sub, nil
}

func (s *submissionService) List(ctx context.Context) ([]models.Submission, error) {
	subs, err := s.submissionRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	return subs, nil
}

func (s *submissionService) ForStudent(ctx context.Context, studentID string) ([]models.Submission, error) {
	subs, err := s.submissionRepo.GetByStudentID(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get student submissions: %w", err)
	}
	return subs, nil
}

// Current returns the live submission for the pair, or nil when there is none.
func (s *submissionService) Current(ctx context.Context, studentID string, criterionID int) (*models.Submission, error) {
	sub, err := s.submissionRepo.GetByStudentAndCriterion(ctx, studentID, criterionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get current submission: %w", err)
	}
	return sub, nil
}

func (s *submissionService) ModerationQueue(ctx context.Context, role models.Role) ([]models.Submission, error) {
	if !role.IsReviewer() {
		return nil, models.ErrRoleNotAllowed
	}

	var statuses []models.SubmissionStatus
	for _, status := range allStatuses {
		if review.Visible(role, status) {
			statuses = append(statuses, status)
		}
	}

	subs, err := s.submissionRepo.GetByStatuses(ctx, statuses)
	if err != nil {
		return nil, fmt.Errorf("failed to get moderation queue: %w", err)
	}
	return subs, nil
}

var allStatuses = []models.SubmissionStatus{
	models.StatusSubmitted,
	models.StatusTutorApproved,
	models.StatusDeputyApproved,
	models.StatusDeanApproved,
	models.StatusRejected,
}
