package workflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linesmerrill/police-case-api/databases/memory"
	"github.com/linesmerrill/police-case-api/models"
)

func TestRewardService_CodeCollisions(t *testing.T) {
	stores := memory.New().Stores()
	svc := New(stores, Options{}).Rewards
	ctx := context.Background()
	officer := &models.Actor{ID: "o", Roles: []models.Role{models.RoleOfficer}}
	detective := &models.Actor{ID: "d", Roles: []models.Role{models.RoleDetective}}

	approve := func() (*models.RewardTip, error) {
		tip, err := svc.Submit(ctx, officer, TipInput{
			CitizenName: "a", CitizenNationalID: "1", CitizenPhone: "2", SuspectName: "s", Message: "m",
		})
		require.NoError(t, err)
		_, err = svc.OfficerReview(ctx, officer, tip.ID.Hex(), TipReviewInput{Decision: "approve"})
		require.NoError(t, err)
		return svc.DetectiveApprove(ctx, detective, tip.ID.Hex(), TipApprovalInput{})
	}

	svc.newCode = func() string { return "aaaaaaaaaaaa" }
	first, err := approve()
	require.NoError(t, err)
	assert.Equal(t, "aaaaaaaaaaaa", first.Details.UniqueCode)

	codes := []string{"aaaaaaaaaaaa", "aaaaaaaaaaaa", "bbbbbbbbbbbb"}
	svc.newCode = func() string {
		c := codes[0]
		codes = codes[1:]
		return c
	}
	second, err := approve()
	require.NoError(t, err)
	assert.Equal(t, "bbbbbbbbbbbb", second.Details.UniqueCode)

	calls := 0
	svc.newCode = func() string {
		calls++
		return "aaaaaaaaaaaa"
	}
	_, err = approve()
	require.Error(t, err)
	assert.Equal(t, KindServer, KindOf(err))
	assert.Equal(t, codeAttempts, calls)

	stuck, err := stores.RewardTips.FindApproved(ctx, "1", "aaaaaaaaaaaa")
	require.NoError(t, err)
	assert.Equal(t, first.ID, stuck.ID)
}

func TestMintCode(t *testing.T) {
	code := mintCode()
	assert.Len(t, code, 12)
	assert.Regexp(t, "^[0-9a-f]{12}$", code)
	assert.NotEqual(t, code, mintCode())
}
