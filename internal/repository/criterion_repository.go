package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Erkin33/Platform-sub000/internal/models"
	"github.com/rs/zerolog"
)

type criterionRepository struct {
	*PostgresRepository
}

func NewCriterionRepository(db *sql.DB, logger zerolog.Logger) CriterionRepository {
	return &criterionRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

func (r *criterionRepository) List(ctx context.Context) ([]models.Criterion, error) {
	query := `SELECT id, title, max_score FROM social_criteria ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var criteria []models.Criterion
	for rows.Next() {
		var c models.Criterion
		if err := rows.Scan(&c.ID, &c.Title, &c.MaxScore); err != nil {
			return nil, err
		}
		criteria = append(criteria, c)
	}

	return criteria, rows.Err()
}

func (r *criterionRepository) GetByID(ctx context.Context, id int) (*models.Criterion, error) {
	query := `SELECT id, title, max_score FROM social_criteria WHERE id = $1`

	c := &models.Criterion{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Title, &c.MaxScore)
	if err == sql.ErrNoRows {
		return nil, nil
	}

	return c, err
}

func (r *criterionRepository) Seed(ctx context.Context, criteria []models.Criterion) error {
	tx, err := r.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO social_criteria (id, title, max_score)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO NOTHING
	`

	inserted := 0
	for _, c := range criteria {
		res, err := tx.ExecContext(ctx, query, c.ID, c.Title, c.MaxScore)
		if err != nil {
			return fmt.Errorf("failed to seed criterion %d: %w", c.ID, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit seed: %w", err)
	}

	r.logger.Info().Int("inserted", inserted).Int("total", len(criteria)).Msg("Criteria catalog seeded")
	return nil
}
