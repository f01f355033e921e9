package services

import (
	"errors"
	"fmt"
	"time"

	"mygrownet-engine/internal/models"
	"mygrownet-engine/pkg/common"

	"gorm.io/gorm"
)

// LockInMonths is the holding period after which withdrawals carry no penalty.
const LockInMonths = 12

var (
	ErrNoActivePosition    = errors.New("member holds no active capital position")
	ErrExceedsPartialLimit = errors.New("partial withdrawal exceeds 50% of accrued profit")
	ErrInvalidAmount       = errors.New("withdrawal amount must be positive")
)

// penaltyBucket is one row of the elapsed-time penalty table. Bucket edges are
// inclusive on the upper side: a position aged exactly three months falls in
// the 1-3 bucket, not 3-6.
type penaltyBucket struct {
	MaxMonths        int
	Label            string
	ProfitForfeitBps int64
	CapitalPenalty   int64
}

var withdrawerPenalties = []penaltyBucket{
	{MaxMonths: 1, Label: "0-1 months", ProfitForfeitBps: 10000, CapitalPenalty: 1200},
	{MaxMonths: 3, Label: "1-3 months", ProfitForfeitBps: 10000, CapitalPenalty: 1200},
	{MaxMonths: 6, Label: "3-6 months", ProfitForfeitBps: 5000, CapitalPenalty: 600},
	{MaxMonths: 12, Label: "6-12 months", ProfitForfeitBps: 3000, CapitalPenalty: 300},
}

type clawbackBucket struct {
	MaxMonths int
	Label     string
	RateBps   int64
}

var sponsorClawbacks = []clawbackBucket{
	{MaxMonths: 1, Label: "0-1 months", RateBps: 5000},
	{MaxMonths: 3, Label: "1-3 months", RateBps: 2500},
}

// WithdrawalDecision is the structured outcome of validating a withdrawal.
// Ordinary ineligibility is expressed here, never as an error.
type WithdrawalDecision struct {
	Allowed          bool   `json:"allowed"`
	RequiresApproval bool   `json:"requires_approval"`
	PositionID       uint   `json:"position_id"`
	FullWithdrawal   bool   `json:"full_withdrawal"`
	AccruedProfit    int64  `json:"accrued_profit"`
	ProfitForfeited  int64  `json:"profit_forfeited"`
	CapitalPenalty   int64  `json:"capital_penalty"`
	PenaltyAmount    int64  `json:"penalty_amount"`
	NetAmount        int64  `json:"net_amount"`
	Bucket           string `json:"bucket,omitempty"`
	Reason           string `json:"reason"`
}

// WithdrawalService applies the elapsed-time penalty state machine to the
// withdrawer and reverses time-decayed fractions of commissions already paid
// to the sponsor line.
type WithdrawalService struct {
	DB     *gorm.DB
	Helper *HelperService
}

func NewWithdrawalService(db *gorm.DB, helper *HelperService) *WithdrawalService {
	return &WithdrawalService{DB: db, Helper: helper}
}

// earliestActivePosition is the position withdrawals run against, matching the
// lock-in calculation.
func (s *WithdrawalService) earliestActivePosition(tx *gorm.DB, memberID uint) (*models.CapitalPosition, error) {
	var position models.CapitalPosition
	err := tx.Preload("Tier").
		Where("member_id = ? AND status = ?", memberID, models.PositionStatusActive).
		Order("opened_at ASC").First(&position).Error
	if err == gorm.ErrRecordNotFound {
		return nil, ErrNoActivePosition
	}
	if err != nil {
		return nil, err
	}
	return &position, nil
}

// accruedProfit is the fixed-rate profit earned so far, prorated by whole
// months held.
func accruedProfit(position *models.CapitalPosition, at time.Time) int64 {
	if position.Tier == nil {
		return 0
	}
	annual := common.PercentOf(position.Principal, position.Tier.FixedProfitBps)
	months := common.MonthsElapsed(position.OpenedAt, at)
	if months > 12 {
		months = 12
	}
	return annual * int64(months) / 12
}

func (s *WithdrawalService) completedDraws(tx *gorm.DB, positionID uint) (int64, error) {
	var drawn int64
	err := tx.Model(&models.WithdrawalEvent{}).
		Where("capital_position_id = ? AND status = ?", positionID, models.WithdrawalStatusCompleted).
		Select("COALESCE(SUM(requested_amount), 0)").Scan(&drawn).Error
	return drawn, err
}

func withdrawerBucket(openedAt, at time.Time) *penaltyBucket {
	for i := range withdrawerPenalties {
		if common.WithinMonths(openedAt, at, withdrawerPenalties[i].MaxMonths) {
			return &withdrawerPenalties[i]
		}
	}
	return nil
}

func clawbackBucketFor(openedAt, at time.Time) *clawbackBucket {
	for i := range sponsorClawbacks {
		if common.WithinMonths(openedAt, at, sponsorClawbacks[i].MaxMonths) {
			return &sponsorClawbacks[i]
		}
	}
	return nil
}

// ValidateWithdrawal computes the decision for withdrawing `amount` from the
// member's earliest active position at time `at`. Returns an error only for
// structurally invalid input; ineligibility comes back in the decision.
func (s *WithdrawalService) ValidateWithdrawal(memberID uint, amount int64, at time.Time) (*WithdrawalDecision, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	position, err := s.earliestActivePosition(s.DB, memberID)
	if err != nil {
		return nil, err
	}
	return s.decide(s.DB, position, amount, at)
}

func (s *WithdrawalService) decide(tx *gorm.DB, position *models.CapitalPosition, amount int64, at time.Time) (*WithdrawalDecision, error) {
	accrued := accruedProfit(position, at)
	full := amount >= position.Principal

	decision := &WithdrawalDecision{
		Allowed:        true,
		PositionID:     position.ID,
		FullWithdrawal: full,
		AccruedProfit:  accrued,
	}

	if !full {
		// The 50%-of-accrued cap is cumulative across the position's life.
		// Every completed event on a still-active position was a partial
		// draw, so their sum is the amount already taken.
		drawn, err := s.completedDraws(tx, position.ID)
		if err != nil {
			return nil, err
		}
		if drawn+amount > accrued/2 {
			return nil, ErrExceedsPartialLimit
		}
	}

	bucket := withdrawerBucket(position.OpenedAt, at)
	if bucket == nil {
		// Past lock-in: no penalty, no approval gate.
		decision.NetAmount = amount
		if full {
			decision.NetAmount = position.Principal + accrued
		}
		decision.Reason = "lock-in period complete, no penalty applies"
		return decision, nil
	}

	decision.Bucket = bucket.Label
	decision.RequiresApproval = true

	if full {
		decision.ProfitForfeited = common.PercentOf(accrued, bucket.ProfitForfeitBps)
		decision.CapitalPenalty = common.PercentOf(position.Principal, bucket.CapitalPenalty)
		decision.NetAmount = position.Principal + accrued - decision.ProfitForfeited - decision.CapitalPenalty
	} else {
		// Partial withdrawals draw on profit only; the forfeit rate applies
		// to the amount drawn.
		decision.ProfitForfeited = common.PercentOf(amount, bucket.ProfitForfeitBps)
		decision.NetAmount = amount - decision.ProfitForfeited
	}
	decision.PenaltyAmount = decision.ProfitForfeited + decision.CapitalPenalty
	decision.Reason = fmt.Sprintf("early withdrawal in the %s bucket forfeits %d%% of profit with a %.1f%% capital penalty",
		bucket.Label, bucket.ProfitForfeitBps/100, float64(bucket.CapitalPenalty)/100)
	return decision, nil
}

// ProcessWithdrawal executes an approved withdrawal: records the event,
// credits the net payout, and on a full withdrawal closes the position and
// claws back the sponsor commissions tied to it. A partial draw takes accrued
// profit only and leaves the principal the commissions were earned on intact,
// so it triggers no clawback. The whole fan-out commits or rolls back
// together.
func (s *WithdrawalService) ProcessWithdrawal(memberID uint, amount int64, at time.Time) (*models.WithdrawalEvent, *common.BatchResult, error) {
	var event *models.WithdrawalEvent
	var clawbacks *common.BatchResult

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		position, err := s.earliestActivePosition(tx, memberID)
		if err != nil {
			return err
		}

		decision, err := s.decide(tx, position, amount, at)
		if err != nil {
			return err
		}

		event = &models.WithdrawalEvent{
			CapitalPositionID: position.ID,
			MemberID:          memberID,
			RequestedAmount:   amount,
			ProfitForfeited:   decision.ProfitForfeited,
			CapitalPenalty:    decision.CapitalPenalty,
			NetAmount:         decision.NetAmount,
			RequiresApproval:  decision.RequiresApproval,
			Status:            models.WithdrawalStatusCompleted,
			Reason:            decision.Reason,
		}
		if err := tx.Create(event).Error; err != nil {
			return err
		}

		if decision.FullWithdrawal {
			withdrawnAt := at
			if err := tx.Model(position).Updates(map[string]interface{}{
				"status":       models.PositionStatusWithdrawn,
				"withdrawn_at": &withdrawnAt,
			}).Error; err != nil {
				return err
			}
		}

		if decision.NetAmount > 0 {
			if err := s.Helper.PostCredit(tx, LedgerPost{
				MemberID:    memberID,
				Amount:      decision.NetAmount,
				Subject:     "Withdrawal",
				Description: fmt.Sprintf("net payout for position %d", position.ID),
				Channel:     "withdrawal",
			}); err != nil {
				return err
			}
		}

		if decision.FullWithdrawal {
			clawbacks, err = s.processClawback(tx, position, at)
			return err
		}
		clawbacks = &common.BatchResult{}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return event, clawbacks, nil
}

// ProcessClawback reverses the time-decayed fraction of every paid commission
// originating from the position. The bucket is taken from the position's age
// at withdrawal time, not at commission-creation time. Past three months no
// clawback record is created at all.
func (s *WithdrawalService) ProcessClawback(position *models.CapitalPosition, at time.Time) (*common.BatchResult, error) {
	var result *common.BatchResult
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		result, err = s.processClawback(tx, position, at)
		return err
	})
	return result, err
}

func (s *WithdrawalService) processClawback(tx *gorm.DB, position *models.CapitalPosition, at time.Time) (*common.BatchResult, error) {
	result := &common.BatchResult{}

	bucket := clawbackBucketFor(position.OpenedAt, at)
	if bucket == nil {
		return result, nil
	}

	var paid []models.CommissionRecord
	if err := tx.Where("capital_position_id = ? AND status = ?", position.ID, models.CommissionStatusPaid).
		Find(&paid).Error; err != nil {
		return nil, err
	}

	for _, record := range paid {
		var existing int64
		if err := tx.Model(&models.ClawbackRecord{}).
			Where("commission_record_id = ?", record.ID).Count(&existing).Error; err != nil {
			return nil, err
		}
		if existing > 0 {
			// Already reversed once; flag it rather than re-applying.
			result.AddFailuref(record.ID, "commission already clawed back")
			continue
		}

		amount := common.PercentOf(record.Amount, bucket.RateBps)
		if amount <= 0 {
			result.Skipped++
			continue
		}

		reference := common.GenerateTrxNo()
		clawback := models.ClawbackRecord{
			CommissionRecordID: record.ID,
			BeneficiaryID:      record.BeneficiaryID,
			Amount:             amount,
			RateBps:            bucket.RateBps,
			Reason:             "withdrawal in " + bucket.Label + " bucket",
			Reference:          reference,
		}
		if err := tx.Create(&clawback).Error; err != nil {
			return nil, err
		}

		if err := s.Helper.PostDebit(tx, LedgerPost{
			MemberID:    record.BeneficiaryID,
			Amount:      amount,
			Subject:     "Commission Clawback",
			Description: fmt.Sprintf("reversal of commission %d after early withdrawal", record.ID),
			Channel:     "clawback",
			Wallet:      models.WalletCommission,
			Reference:   reference,
		}); err != nil {
			return nil, err
		}

		if err := tx.Model(&models.CommissionRecord{}).
			Where("id = ?", record.ID).
			Update("status", models.CommissionStatusClawedBack).Error; err != nil {
			return nil, err
		}
		result.Processed++
	}
	return result, nil
}

// LockInRemaining returns how many whole months remain before the member's
// earliest active position clears the lock-in period.
func (s *WithdrawalService) LockInRemaining(memberID uint, at time.Time) (int, error) {
	position, err := s.earliestActivePosition(s.DB, memberID)
	if err != nil {
		return 0, err
	}
	remaining := LockInMonths - common.MonthsElapsed(position.OpenedAt, at)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

// SweepMaturedPositions stamps positions that cleared the lock-in window since
// the last sweep; the surrounding application notifies members off the stamp.
// One bad record never blocks the cohort, and re-running is a no-op.
func (s *WithdrawalService) SweepMaturedPositions(at time.Time) (*common.BatchResult, error) {
	cutoff := at.AddDate(0, -LockInMonths, 0)

	var positions []models.CapitalPosition
	if err := s.DB.Where("status = ? AND matured_at IS NULL AND opened_at <= ?",
		models.PositionStatusActive, cutoff).
		Order("id ASC").Find(&positions).Error; err != nil {
		return nil, err
	}

	result := &common.BatchResult{}
	for _, position := range positions {
		maturedAt := at
		err := s.DB.Model(&models.CapitalPosition{}).
			Where("id = ? AND matured_at IS NULL", position.ID).
			Update("matured_at", &maturedAt).Error
		if err != nil {
			result.AddFailuref(position.ID, "sweep failed: %v", err)
			continue
		}
		result.Processed++
	}
	return result, nil
}
