package repository

import (
	"context"
	"database/sql"

	"github.com/Erkin33/Platform-sub000/internal/models"
	"github.com/rs/zerolog"
)

type reviewHistoryRepository struct {
	*PostgresRepository
}

func NewReviewHistoryRepository(db *sql.DB, logger zerolog.Logger) ReviewHistoryRepository {
	return &reviewHistoryRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

func (r *reviewHistoryRepository) Append(ctx context.Context, rec *models.ReviewRecord) error {
	query := `
		INSERT INTO social_review_history
			(id, submission_id, actor_id, actor_role, decision, from_status, to_status, score, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.ExecContext(ctx, query,
		rec.ID,
		rec.SubmissionID,
		rec.ActorID,
		rec.ActorRole,
		rec.Decision,
		rec.FromStatus,
		rec.ToStatus,
		nullInt(rec.Score),
		nullString(rec.Comment),
		rec.CreatedAt,
	)

	return err
}

func (r *reviewHistoryRepository) GetBySubmissionID(ctx context.Context, submissionID string) ([]models.ReviewRecord, error) {
	query := `
		SELECT id, submission_id, actor_id, actor_role, decision, from_status, to_status, score, comment, created_at
		FROM social_review_history
		WHERE submission_id = $1
		ORDER BY created_at, id
	`

	rows, err := r.db.QueryContext(ctx, query, submissionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.ReviewRecord
	for rows.Next() {
		var (
			rec     models.ReviewRecord
			score   sql.NullInt64
			comment sql.NullString
		)
		err := rows.Scan(
			&rec.ID,
			&rec.SubmissionID,
			&rec.ActorID,
			&rec.ActorRole,
			&rec.Decision,
			&rec.FromStatus,
			&rec.ToStatus,
			&score,
			&comment,
			&rec.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		rec.Score = intPtr(score)
		rec.Comment = stringPtr(comment)
		records = append(records, rec)
	}

	return records, rows.Err()
}
