package workflow_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linesmerrill/police-case-api/models"
	"github.com/linesmerrill/police-case-api/workflow"
)

func TestStatsService_Stats(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	empty, err := h.Stats.Stats(ctx, citizen)
	require.NoError(t, err)
	assert.Zero(t, empty.CasesTotal)
	assert.Empty(t, empty.CasesByStatus)
	assert.Empty(t, empty.TipsByStatus)

	id := h.openCase(t, 2).ID.Hex()
	h.openCase(t, 3)
	h.complaintCase(t)

	_, err = h.Evidence.Create(ctx, detective, workflow.EvidenceInput{CaseID: id, Title: "Glove"})
	require.NoError(t, err)

	_, err = h.Suspects.AddSuspect(ctx, detective, id, workflow.SuspectInput{FullName: "Old"})
	require.NoError(t, err)
	h.clock.Advance(31 * 24 * time.Hour)
	_, err = h.Suspects.AddSuspect(ctx, detective, id, workflow.SuspectInput{FullName: "New"})
	require.NoError(t, err)

	_, err = h.Rewards.Submit(ctx, citizen, tipInput)
	require.NoError(t, err)
	rejected, err := h.Rewards.Submit(ctx, neighbour, tipInput)
	require.NoError(t, err)
	_, err = h.Rewards.OfficerReview(ctx, officer, rejected.ID.Hex(), workflow.TipReviewInput{Decision: "reject"})
	require.NoError(t, err)

	stats, err := h.Stats.Stats(ctx, citizen)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.CasesTotal)
	assert.Equal(t, map[models.CaseStatus]int64{models.CaseOpen: 2, models.CaseUnderReview: 1}, stats.CasesByStatus)
	assert.Equal(t, int64(2), stats.CasesOpen)
	assert.Zero(t, stats.CasesClosed)
	assert.Equal(t, int64(1), stats.EvidenceTotal)
	assert.Equal(t, int64(2), stats.SuspectsTotal)
	assert.Equal(t, int64(1), stats.MostWantedTotal)
	assert.Equal(t, int64(2), stats.TipsTotal)
	assert.Equal(t, map[models.RewardTipStatus]int64{models.TipSubmitted: 1, models.TipOfficerRejected: 1}, stats.TipsByStatus)
	assert.Equal(t, int64(1), stats.TipsPending)

	_, err = h.Stats.Stats(ctx, nil)
	requireKind(t, err, workflow.KindForbidden)
}
