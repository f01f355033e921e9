package models

import (
	"time"
)

const (
	EntryTypeCredit = "credit"
	EntryTypeDebit  = "debit"

	WalletMain       = "main"
	WalletCommission = "commission"
)

// LedgerEntry is one balance movement. Balance is the wallet balance after the
// movement, so every entry is independently auditable.
type LedgerEntry struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	MemberID      uint      `gorm:"column:member_id;not null;index" json:"member_id"`
	Username      string    `gorm:"column:username;size:255;not null" json:"username"`
	TransactionNo string    `gorm:"column:transaction_no;size:40;not null;index" json:"transaction_no"`
	Amount        int64     `gorm:"column:amount;not null" json:"amount"`
	EntryType     string    `gorm:"column:entry_type;size:10;not null" json:"entry_type"`
	Subject       string    `gorm:"column:subject;size:255;not null" json:"subject"`
	Description   string    `gorm:"column:description;type:text" json:"description"`
	Channel       string    `gorm:"column:channel;size:50" json:"channel"`
	Wallet        string    `gorm:"column:wallet;size:20;default:main" json:"wallet"`
	Balance       int64     `gorm:"column:balance;not null;default:0" json:"balance"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (LedgerEntry) TableName() string {
	return "ledger_entries"
}
