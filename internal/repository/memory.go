package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/Erkin33/Platform-sub000/internal/models"
)

type (
	// MemoryDB keeps every table in process memory. Each table has its own lock.
	MemoryDB struct {
		criteria    *criterionTable
		submissions *submissionTable
		adjustments *adjustmentTable
		history     *historyTable
	}

	criterionTable struct {
		t     map[int]models.Criterion
		mutex sync.RWMutex
	}

	submissionTable struct {
		t     map[string]*models.Submission
		mutex sync.RWMutex
	}

	adjustmentTable struct {
		// newest first
		t     []models.Adjustment
		mutex sync.RWMutex
	}

	historyTable struct {
		t     map[string][]models.ReviewRecord
		mutex sync.RWMutex
	}
)

func NewMemoryDB() *MemoryDB {
	return &MemoryDB{
		criteria:    &criterionTable{t: make(map[int]models.Criterion)},
		submissions: &submissionTable{t: make(map[string]*models.Submission)},
		adjustments: &adjustmentTable{},
		history:     &historyTable{t: make(map[string][]models.ReviewRecord)},
	}
}

// Criteria

type memoryCriterionRepository struct {
	db *criterionTable
}

func NewMemoryCriterionRepository(db *MemoryDB) CriterionRepository {
	return &memoryCriterionRepository{db: db.criteria}
}

func (r *memoryCriterionRepository) List(_ context.Context) ([]models.Criterion, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	res := make([]models.Criterion, 0, len(r.db.t))
	for _, c := range r.db.t {
		res = append(res, c)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}

func (r *memoryCriterionRepository) GetByID(_ context.Context, id int) (*models.Criterion, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	if c, ok := r.db.t[id]; ok {
		return &c, nil
	}
	return nil, nil
}

func (r *memoryCriterionRepository) Seed(_ context.Context, criteria []models.Criterion) error {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	for _, c := range criteria {
		if _, ok := r.db.t[c.ID]; !ok {
			r.db.t[c.ID] = c
		}
	}
	return nil
}

// Submissions

type memorySubmissionRepository struct {
	db *submissionTable
}

func NewMemorySubmissionRepository(db *MemoryDB) SubmissionRepository {
	return &memorySubmissionRepository{db: db.submissions}
}

func (r *memorySubmissionRepository) Create(_ context.Context, sub *models.Submission) error {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	if _, ok := r.db.t[sub.ID]; ok {
		return models.ErrVersionConflict
	}
	for _, existing := range r.db.t {
		if existing.StudentID == sub.StudentID && existing.CriterionID == sub.CriterionID {
			return models.ErrVersionConflict
		}
	}

	sub.Version = 1
	r.db.t[sub.ID] = sub.Clone()
	return nil
}

func (r *memorySubmissionRepository) Update(_ context.Context, sub *models.Submission, expectedVersion int64) error {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	existing, ok := r.db.t[sub.ID]
	if !ok || existing.Version != expectedVersion {
		return models.ErrVersionConflict
	}

	sub.Version = expectedVersion + 1
	stored := sub.Clone()
	stored.StudentID = existing.StudentID
	stored.CriterionID = existing.CriterionID
	stored.CreatedAt = existing.CreatedAt
	r.db.t[sub.ID] = stored
	return nil
}

func (r *memorySubmissionRepository) GetByID(_ context.Context, id string) (*models.Submission, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	if sub, ok := r.db.t[id]; ok {
		return sub.Clone(), nil
	}
	return nil, nil
}

func (r *memorySubmissionRepository) GetByStudentAndCriterion(_ context.Context, studentID string, criterionID int) (*models.Submission, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	for _, sub := range r.db.t {
		if sub.StudentID == studentID && sub.CriterionID == criterionID {
			return sub.Clone(), nil
		}
	}
	return nil, nil
}

func (r *memorySubmissionRepository) GetByStudentID(_ context.Context, studentID string) ([]models.Submission, error) {
	return r.filter(func(s *models.Submission) bool { return s.StudentID == studentID }), nil
}

func (r *memorySubmissionRepository) GetByStatuses(_ context.Context, statuses []models.SubmissionStatus) ([]models.Submission, error) {
	wanted := make(map[models.SubmissionStatus]bool, len(statuses))
	for _, s := range statuses {
		wanted[s] = true
	}
	return r.filter(func(s *models.Submission) bool { return wanted[s.Status] }), nil
}

func (r *memorySubmissionRepository) GetAll(_ context.Context) ([]models.Submission, error) {
	return r.filter(func(*models.Submission) bool { return true }), nil
}

func (r *memorySubmissionRepository) filter(keep func(*models.Submission) bool) []models.Submission {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	var res []models.Submission
	for _, sub := range r.db.t {
		if keep(sub) {
			res = append(res, *sub.Clone())
		}
	}
	sortByUpdatedDesc(res)
	return res
}

func sortByUpdatedDesc(subs []models.Submission) {
	sort.SliceStable(subs, func(i, j int) bool {
		if subs[i].UpdatedAt.Equal(subs[j].UpdatedAt) {
			return subs[i].ID < subs[j].ID
		}
		return subs[i].UpdatedAt.After(subs[j].UpdatedAt)
	})
}

// Adjustments

type memoryAdjustmentRepository struct {
	db *adjustmentTable
}

func NewMemoryAdjustmentRepository(db *MemoryDB) AdjustmentRepository {
	return &memoryAdjustmentRepository{db: db.adjustments}
}

func (r *memoryAdjustmentRepository) Append(_ context.Context, adj *models.Adjustment) error {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	r.db.t = append([]models.Adjustment{*adj}, r.db.t...)
	return nil
}

func (r *memoryAdjustmentRepository) Remove(_ context.Context, id string) (*models.Adjustment, error) {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	for i, adj := range r.db.t {
		if adj.ID == id {
			r.db.t = append(r.db.t[:i:i], r.db.t[i+1:]...)
			removed := adj
			return &removed, nil
		}
	}
	return nil, nil
}

func (r *memoryAdjustmentRepository) GetByStudentID(_ context.Context, studentID string) ([]models.Adjustment, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	var res []models.Adjustment
	for _, adj := range r.db.t {
		if adj.StudentID == studentID {
			res = append(res, adj)
		}
	}
	return res, nil
}

func (r *memoryAdjustmentRepository) SumByStudentID(_ context.Context, studentID string) (int64, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	var sum int64
	for _, adj := range r.db.t {
		if adj.StudentID == studentID {
			sum += adj.Delta
		}
	}
	return sum, nil
}

// Review history

type memoryReviewHistoryRepository struct {
	db *historyTable
}

func NewMemoryReviewHistoryRepository(db *MemoryDB) ReviewHistoryRepository {
	return &memoryReviewHistoryRepository{db: db.history}
}

func (r *memoryReviewHistoryRepository) Append(_ context.Context, rec *models.ReviewRecord) error {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	r.db.t[rec.SubmissionID] = append(r.db.t[rec.SubmissionID], *rec)
	return nil
}

func (r *memoryReviewHistoryRepository) GetBySubmissionID(_ context.Context, submissionID string) ([]models.ReviewRecord, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	records := r.db.t[submissionID]
	res := make([]models.ReviewRecord, len(records))
	copy(res, records)
	return res, nil
}
