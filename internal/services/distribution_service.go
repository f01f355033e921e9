package services

import (
	"errors"
	"fmt"
	"time"

	"mygrownet-engine/internal/models"
	"mygrownet-engine/pkg/common"

	"github.com/google/uuid"

	"gorm.io/gorm"
)

var (
	ErrInvalidPool     = errors.New("distribution pool must be positive")
	ErrCycleAlreadyRun = errors.New("distribution already completed for this period")
)

// DistributionService allocates a fixed profit pool proportionally across
// capital positions. Two independent cycles share the mechanism: the annual
// cycle over positions aged past lock-in with the tier rate applied, and the
// quarterly bonus as a flat split over all active capital.
type DistributionService struct {
	DB     *gorm.DB
	Helper *HelperService
}

func NewDistributionService(db *gorm.DB, helper *HelperService) *DistributionService {
	return &DistributionService{DB: db, Helper: helper}
}

// RunAnnualDistribution distributes pool across positions open at least twelve
// months at `at`. Each participant's share is their pro-rata slice of the pool
// scaled by their tier's fixed profit rate. The cycle row, every share row and
// every ledger credit commit atomically; a rejected pool writes nothing.
func (s *DistributionService) RunAnnualDistribution(period string, pool int64, at time.Time) (*models.ProfitDistributionCycle, error) {
	eligible := func(tx *gorm.DB) *gorm.DB {
		return tx.Preload("Tier").
			Where("status = ? AND opened_at <= ?", models.PositionStatusActive, at.AddDate(0, -LockInMonths, 0))
	}
	applyTierRate := true
	return s.run(models.CyclePeriodAnnual, period, pool, at, eligible, applyTierRate)
}

// RunQuarterlyDistribution splits pool flat across all active positions
// regardless of age; no tier multiplier.
func (s *DistributionService) RunQuarterlyDistribution(period string, pool int64, at time.Time) (*models.ProfitDistributionCycle, error) {
	eligible := func(tx *gorm.DB) *gorm.DB {
		return tx.Where("status = ?", models.PositionStatusActive)
	}
	return s.run(models.CyclePeriodQuarterly, period, pool, at, eligible, false)
}

func (s *DistributionService) run(periodType, period string, pool int64, at time.Time,
	eligible func(*gorm.DB) *gorm.DB, applyTierRate bool) (*models.ProfitDistributionCycle, error) {

	// Structural validation happens before any row exists; a rejected cycle
	// must be verifiable by absence, not by a failed status row.
	if pool <= 0 {
		return nil, ErrInvalidPool
	}

	var existing int64
	if err := s.DB.Model(&models.ProfitDistributionCycle{}).
		Where("period_type = ? AND period = ?", periodType, period).
		Count(&existing).Error; err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, ErrCycleAlreadyRun
	}

	var cycle models.ProfitDistributionCycle
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var positions []models.CapitalPosition
		if err := eligible(tx).Order("id ASC").Find(&positions).Error; err != nil {
			return err
		}

		var total int64
		for _, p := range positions {
			total += p.Principal
		}

		cycle = models.ProfitDistributionCycle{
			PeriodType: periodType,
			Period:     period,
			PoolAmount: pool,
			Status:     models.CycleStatusCompleted,
			Reference:  uuid.NewString(),
			RunAt:      at,
		}
		if err := tx.Create(&cycle).Error; err != nil {
			return err
		}

		for _, position := range positions {
			gross := common.ProRata(pool, position.Principal, total)
			amount := gross
			if applyTierRate {
				if position.Tier == nil {
					return fmt.Errorf("position %d has no tier loaded", position.ID)
				}
				amount = common.PercentOf(gross, position.Tier.FixedProfitBps)
			}
			if amount <= 0 {
				continue
			}

			share := models.ProfitShareRecord{
				CycleID:           cycle.ID,
				MemberID:          position.MemberID,
				CapitalPositionID: position.ID,
				Amount:            amount,
				BasisBps:          basisBps(position.Principal, total),
			}
			if err := tx.Create(&share).Error; err != nil {
				return err
			}

			if err := s.Helper.PostCredit(tx, LedgerPost{
				MemberID:    position.MemberID,
				Amount:      amount,
				Subject:     "Profit Distribution",
				Description: fmt.Sprintf("%s cycle %s share for position %d", periodType, period, position.ID),
				Channel:     "distribution",
				Reference:   cycle.Reference,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &cycle, nil
}

func basisBps(part, total int64) int64 {
	if total <= 0 {
		return 0
	}
	return common.ProRata(10000, part, total)
}

// CalculateInvestorShare previews a member's flat pro-rata share of a pool
// against all active capital. A member with no active capital gets zero, not
// an error.
func (s *DistributionService) CalculateInvestorShare(memberID uint, pool int64) (int64, error) {
	if pool <= 0 {
		return 0, ErrInvalidPool
	}

	var memberPrincipal int64
	if err := s.DB.Model(&models.CapitalPosition{}).
		Where("member_id = ? AND status = ?", memberID, models.PositionStatusActive).
		Select("COALESCE(SUM(principal), 0)").Scan(&memberPrincipal).Error; err != nil {
		return 0, err
	}
	if memberPrincipal == 0 {
		return 0, nil
	}

	var total int64
	if err := s.DB.Model(&models.CapitalPosition{}).
		Where("status = ?", models.PositionStatusActive).
		Select("COALESCE(SUM(principal), 0)").Scan(&total).Error; err != nil {
		return 0, err
	}
	return common.ProRata(pool, memberPrincipal, total), nil
}
