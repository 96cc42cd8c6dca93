package review

import (
	"testing"
	"time"

	"github.com/Erkin33/Platform-sub000/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func newSubmission() *models.Submission {
	now := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	return &models.Submission{
		ID:          "sub-1",
		StudentID:   "S",
		CriterionID: 1,
		Status:      models.StatusSubmitted,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestAdvance_ApprovalChain(t *testing.T) {
	policy := DefaultPolicy()

	tests := []struct {
		name    string
		current models.SubmissionStatus
		role    models.Role
		want    models.SubmissionStatus
		wantErr error
	}{
		{"tutor approves submitted", models.StatusSubmitted, models.RoleTutor, models.StatusTutorApproved, nil},
		{"deputy approves tutor_approved", models.StatusTutorApproved, models.RoleDeputy, models.StatusDeputyApproved, nil},
		{"dean approves deputy_approved", models.StatusDeputyApproved, models.RoleDean, models.StatusDeanApproved, nil},
		{"admin finalizes submitted", models.StatusSubmitted, models.RoleAdmin, models.StatusDeanApproved, nil},
		{"admin finalizes tutor_approved", models.StatusTutorApproved, models.RoleAdmin, models.StatusDeanApproved, nil},
		{"tutor cannot regress deputy_approved", models.StatusDeputyApproved, models.RoleTutor, models.StatusDeputyApproved, models.ErrInvalidTransition},
		{"deputy cannot skip tutor", models.StatusSubmitted, models.RoleDeputy, models.StatusSubmitted, models.ErrInvalidTransition},
		{"dean cannot skip deputy", models.StatusTutorApproved, models.RoleDean, models.StatusTutorApproved, models.ErrInvalidTransition},
		{"dean_approved is terminal", models.StatusDeanApproved, models.RoleAdmin, models.StatusDeanApproved, models.ErrInvalidTransition},
		{"rejected cannot be approved", models.StatusRejected, models.RoleAdmin, models.StatusRejected, models.ErrInvalidTransition},
		{"student cannot review", models.StatusSubmitted, models.RoleStudent, models.StatusSubmitted, models.ErrRoleNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Advance(tt.current, tt.role, models.DecisionApprove, policy)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				var te *TransitionError
				assert.ErrorAs(t, err, &te)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAdvance_Reject(t *testing.T) {
	permissive := DefaultPolicy()
	strict := Policy{AllowSkipStageReject: false}

	got, err := Advance(models.StatusSubmitted, models.RoleDean, models.DecisionReject, permissive)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, got)

	_, err = Advance(models.StatusSubmitted, models.RoleDean, models.DecisionReject, strict)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)

	got, err = Advance(models.StatusSubmitted, models.RoleTutor, models.DecisionReject, strict)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, got)

	got, err = Advance(models.StatusDeputyApproved, models.RoleAdmin, models.DecisionReject, strict)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, got)

	got, err = Advance(models.StatusRejected, models.RoleDeputy, models.DecisionReject, strict)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, got)

	_, err = Advance(models.StatusDeanApproved, models.RoleAdmin, models.DecisionReject, permissive)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
}

func TestAdvance_UnknownDecision(t *testing.T) {
	_, err := Advance(models.StatusSubmitted, models.RoleTutor, models.Decision("escalate"), DefaultPolicy())
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestApply_TutorRecordsScoreAndComment(t *testing.T) {
	sub := newSubmission()
	at := sub.CreatedAt.Add(time.Hour)

	err := Apply(sub, Input{Role: models.RoleTutor, Decision: models.DecisionApprove, Score: intPtr(-3), Comment: strPtr("ok"), At: at}, DefaultPolicy())
	require.NoError(t, err)

	assert.Equal(t, models.StatusTutorApproved, sub.Status)
	require.NotNil(t, sub.TutorScore)
	assert.Equal(t, 0, *sub.TutorScore)
	assert.Equal(t, "ok", *sub.TutorComment)
	assert.Equal(t, at, *sub.TutorAt)
	assert.Equal(t, at, sub.UpdatedAt)
	assert.Nil(t, sub.DeputyAt)
}

func TestApply_DeputyDoesNotScore(t *testing.T) {
	sub := newSubmission()
	sub.Status = models.StatusTutorApproved
	sub.TutorScore = intPtr(7)

	err := Apply(sub, Input{Role: models.RoleDeputy, Decision: models.DecisionApprove, Score: intPtr(2), At: time.Now()}, DefaultPolicy())
	require.NoError(t, err)

	assert.Equal(t, models.StatusDeputyApproved, sub.Status)
	assert.Equal(t, 7, *sub.TutorScore)
	assert.NotNil(t, sub.DeputyAt)
}

func TestApply_AdminFastPath(t *testing.T) {
	sub := newSubmission()
	tutorAt := sub.CreatedAt.Add(time.Minute)
	sub.Status = models.StatusTutorApproved
	sub.TutorAt = &tutorAt
	sub.TutorComment = strPtr("tutor note")
	sub.TutorScore = intPtr(4)

	at := sub.CreatedAt.Add(time.Hour)
	err := Apply(sub, Input{Role: models.RoleAdmin, Decision: models.DecisionApprove, Score: intPtr(9), Comment: strPtr("admin"), At: at}, DefaultPolicy())
	require.NoError(t, err)

	assert.Equal(t, models.StatusDeanApproved, sub.Status)
	assert.Equal(t, tutorAt, *sub.TutorAt, "existing stage timestamp is kept")
	assert.Equal(t, "tutor note", *sub.TutorComment, "existing comment is not overwritten")
	assert.Equal(t, "admin", *sub.DeputyComment, "missing comment is back-filled")
	assert.Equal(t, "admin", *sub.DeanComment)
	assert.Equal(t, at, *sub.DeputyAt)
	assert.Equal(t, at, *sub.DeanAt)
	assert.Equal(t, 9, *sub.TutorScore)
}

func TestApply_AdminAlwaysOverwritesDeanComment(t *testing.T) {
	sub := newSubmission()
	sub.Status = models.StatusDeputyApproved
	sub.DeanComment = strPtr("stale")

	err := Apply(sub, Input{Role: models.RoleAdmin, Decision: models.DecisionApprove, At: time.Now()}, DefaultPolicy())
	require.NoError(t, err)
	assert.Nil(t, sub.DeanComment)
	assert.Nil(t, sub.TutorScore, "no score given, none recorded")
}

func TestApply_RejectWritesActorComment(t *testing.T) {
	sub := newSubmission()
	err := Apply(sub, Input{Role: models.RoleDeputy, Decision: models.DecisionReject, Comment: strPtr("missing proof"), At: time.Now()}, DefaultPolicy())
	require.NoError(t, err)

	assert.Equal(t, models.StatusRejected, sub.Status)
	assert.Equal(t, "missing proof", *sub.DeputyComment)
	assert.Nil(t, sub.TutorComment)
	assert.Nil(t, sub.DeanComment)
	assert.Nil(t, sub.DeputyAt)
}

func TestApply_AdminRejectWritesAllComments(t *testing.T) {
	sub := newSubmission()
	err := Apply(sub, Input{Role: models.RoleAdmin, Decision: models.DecisionReject, Comment: strPtr("no"), At: time.Now()}, DefaultPolicy())
	require.NoError(t, err)

	assert.Equal(t, "no", *sub.TutorComment)
	assert.Equal(t, "no", *sub.DeputyComment)
	assert.Equal(t, "no", *sub.DeanComment)
}

func TestApply_RejectTwiceIsStable(t *testing.T) {
	sub := newSubmission()
	at := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	in := Input{Role: models.RoleTutor, Decision: models.DecisionReject, Comment: strPtr("dup"), At: at}

	require.NoError(t, Apply(sub, in, DefaultPolicy()))
	first := sub.Clone()
	require.NoError(t, Apply(sub, in, DefaultPolicy()))

	assert.Equal(t, first, sub)
}

func TestApply_ErrorLeavesSubmissionUntouched(t *testing.T) {
	sub := newSubmission()
	before := sub.Clone()

	err := Apply(sub, Input{Role: models.RoleDean, Decision: models.DecisionApprove, Comment: strPtr("x"), At: time.Now()}, DefaultPolicy())
	require.Error(t, err)
	assert.Equal(t, before, sub)
}

func TestVisible(t *testing.T) {
	assert.True(t, Visible(models.RoleTutor, models.StatusSubmitted))
	assert.False(t, Visible(models.RoleTutor, models.StatusTutorApproved))
	assert.True(t, Visible(models.RoleDeputy, models.StatusTutorApproved))
	assert.True(t, Visible(models.RoleDean, models.StatusDeputyApproved))
	assert.True(t, Visible(models.RoleAdmin, models.StatusDeputyApproved))
	assert.False(t, Visible(models.RoleAdmin, models.StatusDeanApproved))
	assert.False(t, Visible(models.RoleAdmin, models.StatusRejected))
	assert.False(t, Visible(models.RoleStudent, models.StatusSubmitted))
}
