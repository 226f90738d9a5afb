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

func intp(v int) *int    { return &v }
func boolp(v bool) *bool { return &v }

func TestSuspectService_AddSuspect(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	id := h.openCase(t, 2).ID.Hex()

	_, err := h.Suspects.AddSuspect(ctx, officer, id, workflow.SuspectInput{FullName: "Vic"})
	requireKind(t, err, workflow.KindForbidden)
	_, err = h.Suspects.AddSuspect(ctx, detective, id, workflow.SuspectInput{})
	requireKind(t, err, workflow.KindValidation)
	_, err = h.Suspects.AddSuspect(ctx, detective, id, workflow.SuspectInput{FullName: "Vic", MaxL: intp(-1)})
	requireKind(t, err, workflow.KindValidation)
	_, err = h.Suspects.AddSuspect(ctx, detective, "ffffffffffffffffffffffff", workflow.SuspectInput{FullName: "Vic"})
	requireKind(t, err, workflow.KindNotFound)

	su, err := h.Suspects.AddSuspect(ctx, detective, id, workflow.SuspectInput{FullName: "Vic"})
	require.NoError(t, err)
	assert.Equal(t, 1, su.Details.MaxL)
	assert.Equal(t, 1, su.Details.MaxD)
	assert.True(t, su.Details.UnderChase)
	assert.Equal(t, int64(1), su.RankScore)
	assert.Equal(t, int64(models.RewardPerRankPoint), su.RewardAmount)

	list, err := h.Suspects.CaseSuspects(ctx, cadet, id)
	require.NoError(t, err)
	require.Len(t, list, 1)
	_, err = h.Suspects.CaseSuspects(ctx, citizen, id)
	requireKind(t, err, workflow.KindForbidden)
}

func TestSuspectService_UpdateSuspectRank(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	id := h.openCase(t, 2).ID.Hex()
	su, err := h.Suspects.AddSuspect(ctx, detective, id, workflow.SuspectInput{FullName: "Vic", UnderChase: boolp(false)})
	require.NoError(t, err)

	_, err = h.Suspects.UpdateSuspectRank(ctx, detective, su.ID.Hex(), workflow.RankInput{})
	requireKind(t, err, workflow.KindValidation)
	_, err = h.Suspects.UpdateSuspectRank(ctx, citizen, su.ID.Hex(), workflow.RankInput{MaxD: intp(2)})
	requireKind(t, err, workflow.KindForbidden)

	h.clock.Advance(time.Hour)
	updated, err := h.Suspects.UpdateSuspectRank(ctx, detective, su.ID.Hex(), workflow.RankInput{MaxD: intp(4), UnderChase: boolp(true)})
	require.NoError(t, err)
	assert.Equal(t, int64(4), updated.RankScore)
	assert.True(t, updated.Details.UnderChase)
	assert.Greater(t, int64(updated.Details.ChaseStartedAt), int64(su.Details.ChaseStartedAt))
}

func TestSuspectService_MostWanted(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	id := h.openCase(t, 3).ID.Hex()

	low, err := h.Suspects.AddSuspect(ctx, detective, id, workflow.SuspectInput{FullName: "Low", MaxL: intp(1), MaxD: intp(2)})
	require.NoError(t, err)
	high, err := h.Suspects.AddSuspect(ctx, detective, id, workflow.SuspectInput{FullName: "High", MaxL: intp(5), MaxD: intp(3)})
	require.NoError(t, err)
	_, err = h.Suspects.AddSuspect(ctx, detective, id, workflow.SuspectInput{FullName: "Caught", MaxL: intp(9), MaxD: intp(9), UnderChase: boolp(false)})
	require.NoError(t, err)

	h.clock.Advance(29 * 24 * time.Hour)
	_, err = h.Suspects.AddSuspect(ctx, detective, id, workflow.SuspectInput{FullName: "Recent", MaxL: intp(9), MaxD: intp(9)})
	require.NoError(t, err)

	wanted, err := h.Suspects.MostWanted(ctx, officer)
	require.NoError(t, err)
	assert.Empty(t, wanted)

	h.clock.Advance(24 * time.Hour)
	wanted, err = h.Suspects.MostWanted(ctx, officer)
	require.NoError(t, err)
	require.Len(t, wanted, 2)
	assert.Equal(t, high.ID, wanted[0].ID)
	assert.Equal(t, low.ID, wanted[1].ID)
	assert.Equal(t, int64(15*models.RewardPerRankPoint), wanted[0].RewardAmount)

	_, err = h.Suspects.MostWanted(ctx, citizen)
	requireKind(t, err, workflow.KindForbidden)
}
