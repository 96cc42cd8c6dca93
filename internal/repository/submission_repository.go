package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/Erkin33/Platform-sub000/internal/models"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

const submissionColumns = `
	id, student_id, criterion_id, note, files, status,
	tutor_score, tutor_comment, tutor_at,
	deputy_comment, deputy_at,
	dean_comment, dean_at,
	version, created_at, updated_at
`

type submissionRepository struct {
	*PostgresRepository
}

func NewSubmissionRepository(db *sql.DB, logger zerolog.Logger) SubmissionRepository {
	return &submissionRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

func (r *submissionRepository) Create(ctx context.Context, sub *models.Submission) error {
	files, err := json.Marshal(filesOrEmpty(sub.Files))
	if err != nil {
		return fmt.Errorf("failed to marshal files: %w", err)
	}

	query := `
		INSERT INTO social_submissions (` + submissionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err = r.db.ExecContext(ctx, query,
		sub.ID,
		sub.StudentID,
		sub.CriterionID,
		nullString(sub.Note),
		string(files),
		sub.Status,
		nullInt(sub.TutorScore),
		nullString(sub.TutorComment),
		nullTime(sub.TutorAt),
		nullString(sub.DeputyComment),
		nullTime(sub.DeputyAt),
		nullString(sub.DeanComment),
		nullTime(sub.DeanAt),
		1,
		sub.CreatedAt,
		sub.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return models.ErrVersionConflict
		}
		return err
	}

	sub.Version = 1
	return nil
}

func (r *submissionRepository) Update(ctx context.Context, sub *models.Submission, expectedVersion int64) error {
	files, err := json.Marshal(filesOrEmpty(sub.Files))
	if err != nil {
		return fmt.Errorf("failed to marshal files: %w", err)
	}

	query := `
		UPDATE social_submissions
		SET note = $1, files = $2, status = $3,
			tutor_score = $4, tutor_comment = $5, tutor_at = $6,
			deputy_comment = $7, deputy_at = $8,
			dean_comment = $9, dean_at = $10,
			version = version + 1, updated_at = $11
		WHERE id = $12 AND version = $13
	`

	res, err := r.db.ExecContext(ctx, query,
		nullString(sub.Note),
		string(files),
		sub.Status,
		nullInt(sub.TutorScore),
		nullString(sub.TutorComment),
		nullTime(sub.TutorAt),
		nullString(sub.DeputyComment),
		nullTime(sub.DeputyAt),
		nullString(sub.DeanComment),
		nullTime(sub.DeanAt),
		sub.UpdatedAt,
		sub.ID,
		expectedVersion,
	)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.ErrVersionConflict
	}

	sub.Version = expectedVersion + 1
	return nil
}

func (r *submissionRepository) GetByID(ctx context.Context, id string) (*models.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM social_submissions WHERE id = $1`

	sub, err := scanSubmission(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return sub, err
}

func (r *submissionRepository) GetByStudentAndCriterion(ctx context.Context, studentID string, criterionID int) (*models.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM social_submissions WHERE student_id = $1 AND criterion_id = $2`

	sub, err := scanSubmission(r.db.QueryRowContext(ctx, query, studentID, criterionID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return sub, err
}

func (r *submissionRepository) GetByStudentID(ctx context.Context, studentID string) ([]models.Submission, error) {
	query := `
		SELECT ` + submissionColumns + `
		FROM social_submissions
		WHERE student_id = $1
		ORDER BY updated_at DESC
	`
	return r.query(ctx, query, studentID)
}

func (r *submissionRepository) GetByStatuses(ctx context.Context, statuses []models.SubmissionStatus) ([]models.Submission, error) {
	values := make([]string, 0, len(statuses))
	for _, s := range statuses {
		values = append(values, s.String())
	}

	query := `
		SELECT ` + submissionColumns + `
		FROM social_submissions
		WHERE status = ANY($1)
		ORDER BY updated_at DESC
	`
	return r.query(ctx, query, pq.Array(values))
}

func (r *submissionRepository) GetAll(ctx context.Context) ([]models.Submission, error) {
	query := `
		SELECT ` + submissionColumns + `
		FROM social_submissions
		ORDER BY updated_at DESC
	`
	return r.query(ctx, query)
}

func (r *submissionRepository) query(ctx context.Context, query string, args ...interface{}) ([]models.Submission, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []models.Submission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, *sub)
	}

	return subs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSubmission(row rowScanner) (*models.Submission, error) {
	var (
		sub           models.Submission
		note          sql.NullString
		files         []byte
		tutorScore    sql.NullInt64
		tutorComment  sql.NullString
		tutorAt       sql.NullTime
		deputyComment sql.NullString
		deputyAt      sql.NullTime
		deanComment   sql.NullString
		deanAt        sql.NullTime
	)

	err := row.Scan(
		&sub.ID,
		&sub.StudentID,
		&sub.CriterionID,
		&note,
		&files,
		&sub.Status,
		&tutorScore,
		&tutorComment,
		&tutorAt,
		&deputyComment,
		&deputyAt,
		&deanComment,
		&deanAt,
		&sub.Version,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(files) > 0 {
		if err := json.Unmarshal(files, &sub.Files); err != nil {
			return nil, fmt.Errorf("failed to unmarshal files of submission %s: %w", sub.ID, err)
		}
	}

	sub.Note = stringPtr(note)
	sub.TutorScore = intPtr(tutorScore)
	sub.TutorComment = stringPtr(tutorComment)
	sub.TutorAt = timePtr(tutorAt)
	sub.DeputyComment = stringPtr(deputyComment)
	sub.DeputyAt = timePtr(deputyAt)
	sub.DeanComment = stringPtr(deanComment)
	sub.DeanAt = timePtr(deanAt)

	return &sub, nil
}

func filesOrEmpty(files []models.FileRef) []models.FileRef {
	if files == nil {
		return []models.FileRef{}
	}
	return files
}
