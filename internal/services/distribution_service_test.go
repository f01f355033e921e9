package services

import (
	"testing"

	"mygrownet-engine/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuarterlyDistributionIsProportional(t *testing.T) {
	db := setupTestDB(t)
	helper := NewHelperService(db)
	service := NewDistributionService(db, helper)
	tier := standardTier(t, db)
	openedAt := testTime(t, "2025-01-15")

	big := createMember(t, db, "big", models.MemberStatusActive)
	small := createMember(t, db, "small", models.MemberStatusActive)
	closed := createMember(t, db, "closed", models.MemberStatusActive)

	openPosition(t, db, big.ID, tier.ID, 300_000, openedAt)
	openPosition(t, db, small.ID, tier.ID, 100_000, openedAt)
	withdrawn := openPosition(t, db, closed.ID, tier.ID, 900_000, openedAt)
	require.NoError(t, db.Model(withdrawn).Update("status", models.PositionStatusWithdrawn).Error)

	cycle, err := service.RunQuarterlyDistribution("2025-04", 100_000, openedAt.AddDate(0, 3, 0))
	require.NoError(t, err)
	assert.Equal(t, models.CycleStatusCompleted, cycle.Status)

	var shares []models.ProfitShareRecord
	require.NoError(t, db.Where("cycle_id = ?", cycle.ID).Order("id ASC").Find(&shares).Error)
	require.Len(t, shares, 2)

	// 300k:100k of a 100,000 pool splits 75,000 / 25,000 and sums back to
	// the whole pool.
	assert.EqualValues(t, 75_000, shares[0].Amount)
	assert.EqualValues(t, 25_000, shares[1].Amount)
	assert.EqualValues(t, 100_000, shares[0].Amount+shares[1].Amount)
	assert.EqualValues(t, 7500, shares[0].BasisBps)

	var wallet models.Wallet
	require.NoError(t, db.Where("member_id = ?", big.ID).First(&wallet).Error)
	assert.EqualValues(t, 75_000, wallet.AvailableBalance)
}

func TestAnnualDistributionRequiresLockInAge(t *testing.T) {
	db := setupTestDB(t)
	helper := NewHelperService(db)
	service := NewDistributionService(db, helper)
	tier := standardTier(t, db)

	veteran := createMember(t, db, "veteran", models.MemberStatusActive)
	rookie := createMember(t, db, "rookie", models.MemberStatusActive)

	at := testTime(t, "2026-01-15")
	openPosition(t, db, veteran.ID, tier.ID, 200_000, at.AddDate(0, -13, 0))
	openPosition(t, db, rookie.ID, tier.ID, 200_000, at.AddDate(0, -2, 0))

	cycle, err := service.RunAnnualDistribution("2025", 100_000, at)
	require.NoError(t, err)

	var shares []models.ProfitShareRecord
	require.NoError(t, db.Where("cycle_id = ?", cycle.ID).Find(&shares).Error)
	require.Len(t, shares, 1)

	// Only the aged position participates; its whole-pool slice is then
	// scaled by the tier's 12% fixed profit rate.
	assert.Equal(t, veteran.ID, shares[0].MemberID)
	assert.EqualValues(t, 12_000, shares[0].Amount)
}

func TestDistributionRejectsInvalidPoolWithoutWriting(t *testing.T) {
	db := setupTestDB(t)
	helper := NewHelperService(db)
	service := NewDistributionService(db, helper)
	tier := standardTier(t, db)

	m := createMember(t, db, "m", models.MemberStatusActive)
	openPosition(t, db, m.ID, tier.ID, 200_000, testTime(t, "2025-01-15"))

	_, err := service.RunQuarterlyDistribution("2025-04", -5, testTime(t, "2025-04-15"))
	assert.ErrorIs(t, err, ErrInvalidPool)
	_, err = service.RunQuarterlyDistribution("2025-04", 0, testTime(t, "2025-04-15"))
	assert.ErrorIs(t, err, ErrInvalidPool)

	// Rejection is verifiable by absence: no cycle, share or ledger rows.
	var cycles, shares, entries int64
	require.NoError(t, db.Model(&models.ProfitDistributionCycle{}).Count(&cycles).Error)
	require.NoError(t, db.Model(&models.ProfitShareRecord{}).Count(&shares).Error)
	require.NoError(t, db.Model(&models.LedgerEntry{}).Count(&entries).Error)
	assert.EqualValues(t, 0, cycles)
	assert.EqualValues(t, 0, shares)
	assert.EqualValues(t, 0, entries)
}

func TestDistributionRejectsDuplicatePeriod(t *testing.T) {
	db := setupTestDB(t)
	helper := NewHelperService(db)
	service := NewDistributionService(db, helper)
	tier := standardTier(t, db)

	m := createMember(t, db, "m", models.MemberStatusActive)
	openPosition(t, db, m.ID, tier.ID, 200_000, testTime(t, "2025-01-15"))
	at := testTime(t, "2025-04-15")

	_, err := service.RunQuarterlyDistribution("2025-04", 50_000, at)
	require.NoError(t, err)

	_, err = service.RunQuarterlyDistribution("2025-04", 50_000, at)
	assert.ErrorIs(t, err, ErrCycleAlreadyRun)

	// The annual cycle for the same period key is independent.
	_, err = service.RunAnnualDistribution("2025-04", 50_000, at)
	require.NoError(t, err)
}

func TestCalculateInvestorShare(t *testing.T) {
	db := setupTestDB(t)
	helper := NewHelperService(db)
	service := NewDistributionService(db, helper)
	tier := standardTier(t, db)
	openedAt := testTime(t, "2025-01-15")

	holder := createMember(t, db, "holder", models.MemberStatusActive)
	other := createMember(t, db, "other", models.MemberStatusActive)
	empty := createMember(t, db, "empty", models.MemberStatusActive)

	openPosition(t, db, holder.ID, tier.ID, 100_000, openedAt)
	openPosition(t, db, other.ID, tier.ID, 300_000, openedAt)

	share, err := service.CalculateInvestorShare(holder.ID, 40_000)
	require.NoError(t, err)
	assert.EqualValues(t, 10_000, share)

	// No capital means a zero share, not an error.
	share, err = service.CalculateInvestorShare(empty.ID, 40_000)
	require.NoError(t, err)
	assert.EqualValues(t, 0, share)

	_, err = service.CalculateInvestorShare(holder.ID, 0)
	assert.ErrorIs(t, err, ErrInvalidPool)
}
