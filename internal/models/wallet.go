package models

import (
	"time"
)

// Wallet is the balance sink the engine posts to. Commission payments,
// clawbacks and profit distributions all mutate it through the same
// read-modify-write discipline inside the owning transaction.
type Wallet struct {
	ID                uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	MemberID          uint      `gorm:"column:member_id;not null;uniqueIndex" json:"member_id"`
	Username          string    `gorm:"column:username;size:255;not null" json:"username"`
	AvailableBalance  int64     `gorm:"column:available_balance;not null;default:0" json:"available_balance"`
	CommissionBalance int64     `gorm:"column:commission_balance;not null;default:0" json:"commission_balance"`
	Currency          string    `gorm:"column:currency;size:10;not null;default:ZMW" json:"currency"`
	CreatedAt         time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Wallet) TableName() string {
	return "wallets"
}
