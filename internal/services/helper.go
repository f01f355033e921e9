package services

import (
	"fmt"

	"mygrownet-engine/internal/models"
	"mygrownet-engine/pkg/common"

	"gorm.io/gorm"
)

// HelperService owns wallet lookup and ledger posting. Every balance movement
// goes through PostCredit/PostDebit so payment, clawback and distribution all
// share the same read-modify-write discipline.
type HelperService struct {
	DB *gorm.DB
}

func NewHelperService(db *gorm.DB) *HelperService {
	return &HelperService{DB: db}
}

func (s *HelperService) EnsureWallet(tx *gorm.DB, memberID uint, username string) (*models.Wallet, error) {
	var wallet models.Wallet
	err := tx.Where("member_id = ?", memberID).First(&wallet).Error
	if err == nil {
		return &wallet, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	wallet = models.Wallet{MemberID: memberID, Username: username}
	if err := tx.Create(&wallet).Error; err != nil {
		return nil, err
	}
	return &wallet, nil
}

type LedgerPost struct {
	MemberID    uint
	Amount      int64
	Subject     string
	Description string
	Channel     string
	Wallet      string // models.WalletMain or models.WalletCommission
	Reference   string // generated when empty
}

// PostCredit increments the target wallet balance and writes the credit leg.
// Must be called inside the transaction that owns the record state change.
func (s *HelperService) PostCredit(tx *gorm.DB, post LedgerPost) error {
	return s.post(tx, post, models.EntryTypeCredit, true)
}

// PostDebit decrements the target wallet balance and writes the debit leg.
func (s *HelperService) PostDebit(tx *gorm.DB, post LedgerPost) error {
	return s.post(tx, post, models.EntryTypeDebit, true)
}

// PostJournal writes a ledger entry for value settled outside the wallet, such
// as a capital purchase paid externally. No balance moves; the entry carries
// the wallet's current balance.
func (s *HelperService) PostJournal(tx *gorm.DB, post LedgerPost, entryType string) error {
	return s.post(tx, post, entryType, false)
}

func (s *HelperService) post(tx *gorm.DB, post LedgerPost, entryType string, moveFunds bool) error {
	if post.Amount <= 0 {
		return fmt.Errorf("ledger post amount must be positive, got %d", post.Amount)
	}

	var member models.Member
	if err := tx.First(&member, post.MemberID).Error; err != nil {
		return fmt.Errorf("member %d not found: %w", post.MemberID, err)
	}

	wallet, err := s.EnsureWallet(tx, post.MemberID, member.Username)
	if err != nil {
		return err
	}

	column := "available_balance"
	balance := wallet.AvailableBalance
	if post.Wallet == models.WalletCommission {
		column = "commission_balance"
		balance = wallet.CommissionBalance
	}

	delta := post.Amount
	if entryType == models.EntryTypeDebit {
		delta = -post.Amount
	}

	if moveFunds {
		if err := tx.Model(wallet).UpdateColumn(column, gorm.Expr(column+" + ?", delta)).Error; err != nil {
			return err
		}
	} else {
		delta = 0
	}

	reference := post.Reference
	if reference == "" {
		reference = common.GenerateTrxNo()
	}

	entry := models.LedgerEntry{
		MemberID:      post.MemberID,
		Username:      member.Username,
		TransactionNo: reference,
		Amount:        post.Amount,
		EntryType:     entryType,
		Subject:       post.Subject,
		Description:   post.Description,
		Channel:       post.Channel,
		Wallet:        walletOrMain(post.Wallet),
		Balance:       balance + delta,
	}
	return tx.Create(&entry).Error
}

func walletOrMain(w string) string {
	if w == "" {
		return models.WalletMain
	}
	return w
}

// HasActivePosition reports whether the member holds at least one active
// capital position. Used as the eligibility gate for commissions and bonuses.
func (s *HelperService) HasActivePosition(tx *gorm.DB, memberID uint) (bool, error) {
	var count int64
	err := tx.Model(&models.CapitalPosition{}).
		Where("member_id = ? AND status = ?", memberID, models.PositionStatusActive).
		Count(&count).Error
	return count > 0, err
}
