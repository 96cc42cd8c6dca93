package repository

import (
	"context"

	"github.com/Erkin33/Platform-sub000/internal/models"
)

type CriterionRepository interface {
	List(ctx context.Context) ([]models.Criterion, error)
	GetByID(ctx context.Context, id int) (*models.Criterion, error)
	// Seed inserts missing criteria and never touches existing ones.
	Seed(ctx context.Context, criteria []models.Criterion) error
}

// SubmissionRepository stores one row per (student, criterion). Writes are
// compare-and-set on Version.
type SubmissionRepository interface {
	Create(ctx context.Context, sub *models.Submission) error
	Update(ctx context.Context, sub *models.Submission, expectedVersion int64) error
	GetByID(ctx context.Context, id string) (*models.Submission, error)
	GetByStudentAndCriterion(ctx context.Context, studentID string, criterionID int) (*models.Submission, error)
	GetByStudentID(ctx context.Context, studentID string) ([]models.Submission, error)
	GetByStatuses(ctx context.Context, statuses []models.SubmissionStatus) ([]models.Submission, error)
	GetAll(ctx context.Context) ([]models.Submission, error)
}

type AdjustmentRepository interface {
	Append(ctx context.Context, adj *models.Adjustment) error
	Remove(ctx context.Context, id string) (*models.Adjustment, error)
	GetByStudentID(ctx context.Context, studentID string) ([]models.Adjustment, error)
	SumByStudentID(ctx context.Context, studentID string) (int64, error)
}

type ReviewHistoryRepository interface {
	Append(ctx context.Context, rec *models.ReviewRecord) error
	GetBySubmissionID(ctx context.Context, submissionID string) ([]models.ReviewRecord, error)
}
