package models

import (
	"time"
)

const (
	WithdrawalStatusPending   = "pending"
	WithdrawalStatusCompleted = "completed"
	WithdrawalStatusRejected  = "rejected"
)

// WithdrawalEvent captures the computed outcome of one withdrawal against a
// capital position, including the elapsed-time penalty applied.
type WithdrawalEvent struct {
	ID                uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CapitalPositionID uint      `gorm:"column:capital_position_id;not null;index" json:"capital_position_id"`
	MemberID          uint      `gorm:"column:member_id;not null;index" json:"member_id"`
	RequestedAmount   int64     `gorm:"column:requested_amount;not null" json:"requested_amount"`
	ProfitForfeited   int64     `gorm:"column:profit_forfeited;not null;default:0" json:"profit_forfeited"`
	CapitalPenalty    int64     `gorm:"column:capital_penalty;not null;default:0" json:"capital_penalty"`
	NetAmount         int64     `gorm:"column:net_amount;not null" json:"net_amount"`
	RequiresApproval  bool      `gorm:"column:requires_approval;default:false" json:"requires_approval"`
	Status            string    `gorm:"column:status;size:20;not null;default:pending" json:"status"`
	Reason            string    `gorm:"column:reason;size:255" json:"reason"`
	CreatedAt         time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (WithdrawalEvent) TableName() string {
	return "withdrawal_events"
}

// ClawbackRecord reverses a fraction of a paid commission after an early
// withdrawal of the position that earned it.
type ClawbackRecord struct {
	ID                 uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CommissionRecordID uint      `gorm:"column:commission_record_id;not null;uniqueIndex" json:"commission_record_id"`
	BeneficiaryID      uint      `gorm:"column:beneficiary_id;not null;index" json:"beneficiary_id"`
	Amount             int64     `gorm:"column:amount;not null" json:"amount"`
	RateBps            int64     `gorm:"column:rate_bps;not null" json:"rate_bps"`
	Reason             string    `gorm:"column:reason;size:100;not null" json:"reason"`
	Reference          string    `gorm:"column:reference;size:40;not null" json:"reference"`
	CreatedAt          time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (ClawbackRecord) TableName() string {
	return "clawback_records"
}
