package service

import (
	"context"
	"fmt"

	"github.com/Erkin33/Platform-sub000/internal/models"
	"github.com/Erkin33/Platform-sub000/internal/repository"
	"github.com/rs/zerolog"
)

// ScoreService computes credited scores on every call; nothing is cached.
type ScoreService interface {
	CriterionScore(ctx context.Context, studentID string, criterionID int) (int, error)
	TotalSocialScore(ctx context.Context, studentID string) (int, error)
	TotalWithAdjustments(ctx context.Context, studentID string) (*models.ScoreSummary, error)
	Breakdown(ctx context.Context, studentID string) (*models.ScoreBreakdown, error)
}

type scoreService struct {
	criterionRepo  repository.CriterionRepository
	submissionRepo repository.SubmissionRepository
	adjustmentRepo repository.AdjustmentRepository
	logger         zerolog.Logger
}

func NewScoreService(
	criterionRepo repository.CriterionRepository,
	submissionRepo repository.SubmissionRepository,
	adjustmentRepo repository.AdjustmentRepository,
	logger zerolog.Logger,
) ScoreService {
	return &scoreService{
		criterionRepo:  criterionRepo,
		submissionRepo: submissionRepo,
		adjustmentRepo: adjustmentRepo,
		logger:         logger,
	}
}

// credited is the tutor score clamped to the criterion maximum, and only once
// the dean has approved.
func credited(sub *models.Submission, criterion models.Criterion) int {
	if sub == nil || sub.Status != models.StatusDeanApproved {
		return 0
	}
	score := 0
	if sub.TutorScore != nil {
		score = *sub.TutorScore
	}
	return criterion.Clamp(score)
}

func (s *scoreService) CriterionScore(ctx context.Context, studentID string, criterionID int) (int, error) {
	criterion, err := s.criterionRepo.GetByID(ctx, criterionID)
	if err != nil {
		return 0, fmt.Errorf("failed to get criterion: %w", err)
	}
	if criterion == nil {
		return 0, nil
	}

	sub, err := s.submissionRepo.GetByStudentAndCriterion(ctx, studentID, criterionID)
	if err != nil {
		return 0, fmt.Errorf("failed to get submission: %w", err)
	}

	return credited(sub, *criterion), nil
}

func (s *scoreService) TotalSocialScore(ctx context.Context, studentID string) (int, error) {
	breakdown, err := s.criterionRows(ctx, studentID)
	if err != nil {
		return 0, err
	}

	total := 0
	for _, row := range breakdown {
		total += row.Credited
	}
	return total, nil
}

func (s *scoreService) TotalWithAdjustments(ctx context.Context, studentID string) (*models.ScoreSummary, error) {
	base, err := s.TotalSocialScore(ctx, studentID)
	if err != nil {
		return nil, err
	}

	extra, err := s.adjustmentRepo.SumByStudentID(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum adjustments: %w", err)
	}

	return &models.ScoreSummary{
		StudentID: studentID,
		Base:      int64(base),
		Extra:     extra,
		Total:     int64(base) + extra,
	}, nil
}

func (s *scoreService) Breakdown(ctx context.Context, studentID string) (*models.ScoreBreakdown, error) {
	rows, err := s.criterionRows(ctx, studentID)
	if err != nil {
		return nil, err
	}

	summary, err := s.TotalWithAdjustments(ctx, studentID)
	if err != nil {
		return nil, err
	}

	return &models.ScoreBreakdown{
		StudentID: studentID,
		Criteria:  rows,
		Summary:   *summary,
	}, nil
}

// criterionRows walks the whole catalog; submissions for criteria missing from
// the catalog are ignored.
func (s *scoreService) criterionRows(ctx context.Context, studentID string) ([]models.CriterionScore, error) {
	criteria, err := s.criterionRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list criteria: %w", err)
	}

	subs, err := s.submissionRepo.GetByStudentID(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get student submissions: %w", err)
	}

	byCriterion := make(map[int]*models.Submission, len(subs))
	for i := range subs {
		byCriterion[subs[i].CriterionID] = &subs[i]
	}

	rows := make([]models.CriterionScore, 0, len(criteria))
	for _, c := range criteria {
		row := models.CriterionScore{
			CriterionID: c.ID,
			Title:       c.Title,
			MaxScore:    c.MaxScore,
		}
		if sub, ok := byCriterion[c.ID]; ok {
			status := sub.Status
			row.Status = &status
			row.Credited = credited(sub, c)
		}
		rows = append(rows, row)
	}
	return rows, nil
}
