package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/Erkin33/Platform-sub000/internal/models"
	"github.com/Erkin33/Platform-sub000/internal/service/review"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdjustmentService_AddAndRemoveRestoresTotal(t *testing.T) {
	f := newFixture(t, review.DefaultPolicy())
	ctx := context.Background()

	sub := f.submit(t, "S", 1)
	f.approveChain(t, sub.ID, 7)

	before, err := f.scores.TotalWithAdjustments(ctx, "S")
	require.NoError(t, err)

	adj, err := f.adjustments.Add(ctx, &models.CreateAdjustmentRequest{
		StudentID: "S",
		Delta:     models.NewLooseInt(-5),
		ActorID:   "admin1",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(-5), adj.Delta)
	assert.Equal(t, "admin1", adj.ActorID)

	after, err := f.scores.TotalWithAdjustments(ctx, "S")
	require.NoError(t, err)
	assert.Equal(t, before.Extra-5, after.Extra)
	assert.Equal(t, before.Total-5, after.Total)

	require.NoError(t, f.adjustments.Remove(ctx, adj.ID))

	restored, err := f.scores.TotalWithAdjustments(ctx, "S")
	require.NoError(t, err)
	assert.Equal(t, before, restored)

	last := f.received[len(f.received)-1]
	assert.Equal(t, models.EntityAdjustment, last.Entity)
	assert.Equal(t, models.ActionRemoved, last.Action)
	assert.Equal(t, adj.ID, last.ID)
}

func TestAdjustmentService_NonNumericDeltaIsZero(t *testing.T) {
	f := newFixture(t, review.DefaultPolicy())
	ctx := context.Background()

	var req models.CreateAdjustmentRequest
	require.NoError(t, json.Unmarshal([]byte(`{"student_id":"S","delta":"lots"}`), &req))
	req.ActorID = "admin1"

	adj, err := f.adjustments.Add(ctx, &req)
	require.NoError(t, err)
	assert.Equal(t, int64(0), adj.Delta)

	require.NoError(t, json.Unmarshal([]byte(`{"student_id":"S","delta":"12"}`), &req))
	adj, err = f.adjustments.Add(ctx, &req)
	require.NoError(t, err)
	assert.Equal(t, int64(12), adj.Delta)

	list, err := f.adjustments.ForStudent(ctx, "S")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, adj.ID, list[0].ID)
}

func TestAdjustmentService_DeltaBeyondInt32(t *testing.T) {
	f := newFixture(t, review.DefaultPolicy())
	ctx := context.Background()

	var req models.CreateAdjustmentRequest
	require.NoError(t, json.Unmarshal([]byte(`{"student_id":"S","delta":3000000000}`), &req))
	req.ActorID = "admin1"

	adj, err := f.adjustments.Add(ctx, &req)
	require.NoError(t, err)
	assert.Equal(t, int64(3000000000), adj.Delta)

	summary, err := f.scores.TotalWithAdjustments(ctx, "S")
	require.NoError(t, err)
	assert.Equal(t, int64(3000000000), summary.Extra)
	assert.Equal(t, summary.Base+summary.Extra, summary.Total)
}

func TestAdjustmentService_RemoveUnknownIsNoop(t *testing.T) {
	f := newFixture(t, review.DefaultPolicy())
	events := len(f.received)

	require.NoError(t, f.adjustments.Remove(context.Background(), "missing"))
	assert.Len(t, f.received, events)
}
