package service

import (
	"context"
	"fmt"

	"github.com/Erkin33/Platform-sub000/internal/models"
	"github.com/Erkin33/Platform-sub000/internal/repository"
	"github.com/rs/zerolog"
)

type CriterionService interface {
	List(ctx context.Context) ([]models.Criterion, error)
	Get(ctx context.Context, id int) (*models.Criterion, error)
	Seed(ctx context.Context, criteria []models.Criterion) error
}

type criterionService struct {
	criterionRepo repository.CriterionRepository
	logger        zerolog.Logger
}

func NewCriterionService(criterionRepo repository.CriterionRepository, logger zerolog.Logger) CriterionService {
	return &criterionService{
		criterionRepo: criterionRepo,
		logger:        logger,
	}
}

func (s *criterionService) List(ctx context.Context) ([]models.Criterion, error) {
	criteria, err := s.criterionRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list criteria: %w", err)
	}
	return criteria, nil
}

func (s *criterionService) Get(ctx context.Context, id int) (*models.Criterion, error) {
	criterion, err := s.criterionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get criterion: %w", err)
	}
	if criterion == nil {
		return nil, models.ErrCriterionNotFound
	}
	return criterion, nil
}

func (s *criterionService) Seed(ctx context.Context, criteria []models.Criterion) error {
	for _, c := range criteria {
		if c.ID <= 0 || c.MaxScore < 0 {
			return fmt.Errorf("%w: criterion %d has max score %d", models.ErrInvalidInput, c.ID, c.MaxScore)
		}
	}

	if err := s.criterionRepo.Seed(ctx, criteria); err != nil {
		return fmt.Errorf("failed to seed criteria: %w", err)
	}

	s.logger.Info().Int("count", len(criteria)).Msg("Criterion catalog seeded")
	return nil
}
