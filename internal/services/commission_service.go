package services

import (
	"fmt"
	"time"

	"mygrownet-engine/internal/models"
	"mygrownet-engine/pkg/common"

	"gorm.io/gorm"
)

// DefaultReferralRateBps are the referral scheme rates per upline level,
// overridable per tier program via CommissionService.ReferralRates.
var DefaultReferralRateBps = map[int]int64{
	1: 1200,
	2: 600,
	3: 400,
	4: 200,
	5: 100,
}

// CommissionService converts one capital event into commission records under
// the referral and matrix schemes, and pays pending records in batches.
type CommissionService struct {
	DB            *gorm.DB
	Helper        *HelperService
	Network       *NetworkService
	ReferralRates map[int]int64
}

func NewCommissionService(db *gorm.DB, helper *HelperService, network *NetworkService) *CommissionService {
	return &CommissionService{
		DB:            db,
		Helper:        helper,
		Network:       network,
		ReferralRates: DefaultReferralRateBps,
	}
}

// CalculateMultilevelCommissions walks the purchaser's upline rows up to
// UplineDepth and creates one pending referral record per ancestor holding an
// active position. Ancestors without one are skipped outright; their share is
// forfeited, not deferred. Amounts are always computed against the triggering
// position's principal.
func (s *CommissionService) CalculateMultilevelCommissions(tx *gorm.DB, position *models.CapitalPosition) ([]models.CommissionRecord, error) {
	var links []models.UplineLink
	if err := tx.Where("member_id = ? AND level <= ?", position.MemberID, UplineDepth).
		Order("level ASC").Find(&links).Error; err != nil {
		return nil, err
	}

	var created []models.CommissionRecord
	for _, link := range links {
		rate, ok := s.ReferralRates[link.Level]
		if !ok || rate == 0 {
			continue
		}

		active, err := s.Helper.HasActivePosition(tx, link.AncestorID)
		if err != nil {
			return nil, err
		}
		if !active {
			continue
		}

		positionID := position.ID
		record := models.CommissionRecord{
			BeneficiaryID:     link.AncestorID,
			SourceMemberID:    position.MemberID,
			CapitalPositionID: &positionID,
			Level:             link.Level,
			Amount:            common.PercentOf(position.Principal, rate),
			RateBps:           rate,
			Type:              models.CommissionTypeReferral,
			Status:            models.CommissionStatusPending,
		}
		if err := tx.Create(&record).Error; err != nil {
			return nil, err
		}
		created = append(created, record)
	}
	return created, nil
}

// CalculateMatrixCommissions pays the matrix line above the purchaser's
// position: the occupant one level up at the tier's direct rate, the next at
// the level-2 rate (the matrix root lands here on a level-2 spillover), then
// the level-3 rate. Distinct from the referral walk: this follows slots, not
// sponsors.
func (s *CommissionService) CalculateMatrixCommissions(tx *gorm.DB, position *models.CapitalPosition, tier *models.Tier) ([]models.CommissionRecord, error) {
	var placement models.MatrixPosition
	err := tx.Where("member_id = ?", position.MemberID).First(&placement).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil // not in any matrix, nothing to pay
	}
	if err != nil {
		return nil, err
	}

	beneficiaries, err := s.matrixLine(tx, placement)
	if err != nil {
		return nil, err
	}

	rates := []int64{tier.MatrixDirectBps, tier.MatrixLevel2Bps, tier.MatrixLevel3Bps}
	var created []models.CommissionRecord
	for i, beneficiaryID := range beneficiaries {
		if i >= len(rates) || rates[i] == 0 {
			break
		}

		active, err := s.Helper.HasActivePosition(tx, beneficiaryID)
		if err != nil {
			return nil, err
		}
		if !active {
			continue
		}

		positionID := position.ID
		record := models.CommissionRecord{
			BeneficiaryID:     beneficiaryID,
			SourceMemberID:    position.MemberID,
			CapitalPositionID: &positionID,
			Level:             i + 1,
			Amount:            common.PercentOf(position.Principal, rates[i]),
			RateBps:           rates[i],
			Type:              models.CommissionTypeMatrix,
			Status:            models.CommissionStatusPending,
		}
		if err := tx.Create(&record).Error; err != nil {
			return nil, err
		}
		created = append(created, record)
	}
	return created, nil
}

// matrixLine returns the occupants above a placement, nearest first, ending
// with the matrix root.
func (s *CommissionService) matrixLine(tx *gorm.DB, placement models.MatrixPosition) ([]uint, error) {
	var line []uint
	level, slot := placement.Level, placement.Slot
	for level > 1 {
		level, slot = level-1, models.ParentSlot(slot)
		var occupant models.MatrixPosition
		err := tx.Where("matrix_root_id = ? AND level = ? AND slot = ?",
			placement.MatrixRootID, level, slot).First(&occupant).Error
		if err == gorm.ErrRecordNotFound {
			continue // vacated slot, skip
		}
		if err != nil {
			return nil, err
		}
		line = append(line, occupant.MemberID)
	}
	return append(line, placement.MatrixRootID), nil
}

// ProcessCommissionPayments pays pending records whose beneficiary still holds
// an active position and whose amount is positive. Each record commits in its
// own transaction; ineligible records stay pending and are reported, never
// silently dropped.
func (s *CommissionService) ProcessCommissionPayments(limit int) (*common.BatchResult, error) {
	if limit <= 0 {
		limit = 500
	}

	var pending []models.CommissionRecord
	if err := s.DB.Where("status = ?", models.CommissionStatusPending).
		Order("id ASC").Limit(limit).Find(&pending).Error; err != nil {
		return nil, err
	}

	result := &common.BatchResult{}
	for _, record := range pending {
		if record.Amount <= 0 {
			result.Skipped++
			continue
		}

		err := s.DB.Transaction(func(tx *gorm.DB) error {
			var current models.CommissionRecord
			if err := tx.First(&current, record.ID).Error; err != nil {
				return err
			}
			if current.Status != models.CommissionStatusPending {
				return fmt.Errorf("record %d is %s, expected pending", current.ID, current.Status)
			}

			active, err := s.Helper.HasActivePosition(tx, current.BeneficiaryID)
			if err != nil {
				return err
			}
			if !active {
				return errBeneficiaryInactive
			}

			if err := s.Helper.PostCredit(tx, LedgerPost{
				MemberID:    current.BeneficiaryID,
				Amount:      current.Amount,
				Subject:     "Commission",
				Description: fmt.Sprintf("%s commission, level %d", current.Type, current.Level),
				Channel:     "commission",
				Wallet:      models.WalletCommission,
			}); err != nil {
				return err
			}

			now := time.Now()
			return tx.Model(&current).Updates(map[string]interface{}{
				"status":  models.CommissionStatusPaid,
				"paid_at": &now,
			}).Error
		})

		switch err {
		case nil:
			result.Processed++
		case errBeneficiaryInactive:
			result.Skipped++ // left pending for a later run
		default:
			result.AddFailuref(record.ID, "payment failed: %v", err)
		}
	}
	return result, nil
}

var errBeneficiaryInactive = fmt.Errorf("beneficiary has no active position")
