package repository

import (
	"context"
	"database/sql"

	"github.com/Erkin33/Platform-sub000/internal/models"
	"github.com/rs/zerolog"
)

type adjustmentRepository struct {
	*PostgresRepository
}

func NewAdjustmentRepository(db *sql.DB, logger zerolog.Logger) AdjustmentRepository {
	return &adjustmentRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

func (r *adjustmentRepository) Append(ctx context.Context, adj *models.Adjustment) error {
	query := `
		INSERT INTO social_adjustments (id, student_id, delta, comment, actor_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		adj.ID,
		adj.StudentID,
		adj.Delta,
		nullString(adj.Comment),
		adj.ActorID,
		adj.CreatedAt,
	)

	return err
}

func (r *adjustmentRepository) Remove(ctx context.Context, id string) (*models.Adjustment, error) {
	query := `
		DELETE FROM social_adjustments
		WHERE id = $1
		RETURNING id, student_id, delta, comment, actor_id, created_at
	`

	adj, err := scanAdjustment(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return adj, err
}

func (r *adjustmentRepository) GetByStudentID(ctx context.Context, studentID string) ([]models.Adjustment, error) {
	query := `
		SELECT id, student_id, delta, comment, actor_id, created_at
		FROM social_adjustments
		WHERE student_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var adjustments []models.Adjustment
	for rows.Next() {
		adj, err := scanAdjustment(rows)
		if err != nil {
			return nil, err
		}
		adjustments = append(adjustments, *adj)
	}

	return adjustments, rows.Err()
}

func (r *adjustmentRepository) SumByStudentID(ctx context.Context, studentID string) (int64, error) {
	query := `SELECT COALESCE(SUM(delta), 0) FROM social_adjustments WHERE student_id = $1`

	var sum int64
	err := r.db.QueryRowContext(ctx, query, studentID).Scan(&sum)
	return sum, err
}

func scanAdjustment(row rowScanner) (*models.Adjustment, error) {
	var (
		adj     models.Adjustment
		comment sql.NullString
	)

	err := row.Scan(
		&adj.ID,
		&adj.StudentID,
		&adj.Delta,
		&comment,
		&adj.ActorID,
		&adj.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	adj.Comment = stringPtr(comment)
	return &adj, nil
}
