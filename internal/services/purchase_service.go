package services

import (
	"errors"
	"fmt"
	"time"

	"mygrownet-engine/internal/models"

	"gorm.io/gorm"
)

var ErrBelowTierMinimum = errors.New("principal is below the tier minimum")

// PurchaseResult reports everything one capital event produced.
type PurchaseResult struct {
	Position    models.CapitalPosition    `json:"position"`
	Placement   *models.MatrixPosition    `json:"placement,omitempty"`
	MatrixFull  bool                      `json:"matrix_full"`
	Commissions []models.CommissionRecord `json:"commissions"`
}

// PurchaseService is the capital event entry point: one purchase opens the
// position, places the buyer in their sponsor's matrix and fans out both
// commission schemes inside a single transaction. A partial fan-out is never
// observable.
type PurchaseService struct {
	DB         *gorm.DB
	Helper     *HelperService
	Network    *NetworkService
	Commission *CommissionService
}

func NewPurchaseService(db *gorm.DB, helper *HelperService, network *NetworkService, commission *CommissionService) *PurchaseService {
	return &PurchaseService{DB: db, Helper: helper, Network: network, Commission: commission}
}

func (s *PurchaseService) ProcessPurchase(memberID, tierID uint, principal int64, at time.Time) (*PurchaseResult, error) {
	var result PurchaseResult

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var member models.Member
		if err := tx.First(&member, memberID).Error; err != nil {
			return fmt.Errorf("member %d: %w", memberID, err)
		}

		var tier models.Tier
		if err := tx.First(&tier, tierID).Error; err != nil {
			return fmt.Errorf("tier %d: %w", tierID, err)
		}
		if principal < tier.MinimumPrincipal {
			return ErrBelowTierMinimum
		}

		position := models.CapitalPosition{
			MemberID:  memberID,
			TierID:    tier.ID,
			Principal: principal,
			Status:    models.PositionStatusActive,
			OpenedAt:  at,
		}
		if err := tx.Create(&position).Error; err != nil {
			return err
		}
		result.Position = position

		if member.Status != models.MemberStatusActive {
			if err := tx.Model(&member).Update("status", models.MemberStatusActive).Error; err != nil {
				return err
			}
		}

		// Matrix placement roots at the sponsor; the root member has no
		// matrix to join.
		if member.SponsorID != nil {
			placement, err := s.Network.placeInMatrix(tx, memberID, *member.SponsorID)
			if err != nil {
				return err
			}
			result.Placement = placement
			result.MatrixFull = placement == nil
		}

		referral, err := s.Commission.CalculateMultilevelCommissions(tx, &position)
		if err != nil {
			return err
		}
		result.Commissions = append(result.Commissions, referral...)

		matrix, err := s.Commission.CalculateMatrixCommissions(tx, &position, &tier)
		if err != nil {
			return err
		}
		result.Commissions = append(result.Commissions, matrix...)

		return s.recordPurchase(tx, &member, &position)
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// recordPurchase journals the capital inflow. The principal is settled
// outside the wallet, so the entry moves no balance.
func (s *PurchaseService) recordPurchase(tx *gorm.DB, member *models.Member, position *models.CapitalPosition) error {
	return s.Helper.PostJournal(tx, LedgerPost{
		MemberID:    member.ID,
		Amount:      position.Principal,
		Subject:     "Capital Purchase",
		Description: fmt.Sprintf("tier %d position opened", position.TierID),
		Channel:     "purchase",
		Reference:   fmt.Sprintf("POS-%d", position.ID),
	}, models.EntryTypeDebit)
}
