package service

import (
	"context"
	"testing"

	"github.com/Erkin33/Platform-sub000/internal/events"
	"github.com/Erkin33/Platform-sub000/internal/metrics"
	"github.com/Erkin33/Platform-sub000/internal/models"
	"github.com/Erkin33/Platform-sub000/internal/repository"
	"github.com/Erkin33/Platform-sub000/internal/service/review"
	"github.com/Erkin33/Platform-sub000/pkg/hash"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	criteria    CriterionService
	files       FileService
	submissions SubmissionService
	reviews     ReviewService
	scores      ScoreService
	adjustments AdjustmentService

	submissionRepo repository.SubmissionRepository
	blobs          repository.BlobStore
	broker         *events.Broker
	received       []models.ChangeEvent
}

func newFixture(t *testing.T, policy review.Policy) *fixture {
	t.Helper()

	logger := zerolog.Nop()
	db := repository.NewMemoryDB()
	m := metrics.New(prometheus.NewRegistry())

	f := &fixture{
		broker:         events.NewBroker(),
		blobs:          repository.NewMemoryBlobStore(),
		submissionRepo: repository.NewMemorySubmissionRepository(db),
	}
	f.broker.Subscribe(func(e models.ChangeEvent) { f.received = append(f.received, e) })

	criterionRepo := repository.NewMemoryCriterionRepository(db)
	adjustmentRepo := repository.NewMemoryAdjustmentRepository(db)
	historyRepo := repository.NewMemoryReviewHistoryRepository(db)
	notifier := NewNotifier(f.broker, m, "test", logger)

	f.criteria = NewCriterionService(criterionRepo, logger)
	f.files = NewFileService(f.blobs, hash.NewFileHasher(hash.SHA256), logger)
	f.submissions = NewSubmissionService(f.submissionRepo, f.files, notifier, m, logger)
	f.reviews = NewReviewService(f.submissionRepo, historyRepo, policy, notifier, m, logger)
	f.scores = NewScoreService(criterionRepo, f.submissionRepo, adjustmentRepo, logger)
	f.adjustments = NewAdjustmentService(adjustmentRepo, notifier, m, logger)

	require.NoError(t, f.criteria.Seed(context.Background(), []models.Criterion{
		{ID: 1, Title: "Volunteering", MaxScore: 10},
		{ID: 2, Title: "Sports", MaxScore: 5},
	}))

	return f
}

func (f *fixture) submit(t *testing.T, student string, criterion int) *models.Submission {
	t.Helper()
	sub, err := f.submissions.CreateOrUpdate(context.Background(), &models.CreateSubmissionRequest{
		StudentID:   student,
		CriterionID: criterion,
	})
	require.NoError(t, err)
	return sub
}

func (f *fixture) review(t *testing.T, id string, role models.Role, decision models.Decision, score *int, comment *string) *models.Submission {
	t.Helper()
	req := &models.ReviewRequest{Decision: decision, Comment: comment}
	if score != nil {
		req.Score = models.NewLooseInt(int64(*score))
	}
	sub, err := f.reviews.Review(context.Background(), id, models.Actor{ID: string(role) + "-1", Role: role}, req)
	require.NoError(t, err)
	return sub
}

func (f *fixture) approveChain(t *testing.T, id string, score int) {
	t.Helper()
	f.review(t, id, models.RoleTutor, models.DecisionApprove, &score, nil)
	f.review(t, id, models.RoleDeputy, models.DecisionApprove, nil, nil)
	f.review(t, id, models.RoleDean, models.DecisionApprove, nil, nil)
}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }
