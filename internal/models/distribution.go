package models

import (
	"time"
)

const (
	CyclePeriodAnnual    = "annual"
	CyclePeriodQuarterly = "quarterly"

	CycleStatusCompleted = "completed"
	CycleStatusFailed    = "failed"
)

// ProfitDistributionCycle is one run of the pool allocation. The
// (period_type, period) pair is unique so a closed period can never be
// distributed twice.
type ProfitDistributionCycle struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	PeriodType string    `gorm:"column:period_type;size:20;not null;uniqueIndex:idx_cycle_period" json:"period_type"`
	Period     string    `gorm:"column:period;size:10;not null;uniqueIndex:idx_cycle_period" json:"period"`
	PoolAmount int64     `gorm:"column:pool_amount;not null" json:"pool_amount"`
	Status     string    `gorm:"column:status;size:20;not null" json:"status"`
	Reference  string    `gorm:"column:reference;size:40;not null" json:"reference"`
	RunAt      time.Time `gorm:"column:run_at;not null" json:"run_at"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (ProfitDistributionCycle) TableName() string {
	return "profit_distribution_cycles"
}

type ProfitShareRecord struct {
	ID                uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CycleID           uint      `gorm:"column:cycle_id;not null;index" json:"cycle_id"`
	MemberID          uint      `gorm:"column:member_id;not null;index" json:"member_id"`
	CapitalPositionID uint      `gorm:"column:capital_position_id;not null" json:"capital_position_id"`
	Amount            int64     `gorm:"column:amount;not null" json:"amount"`
	BasisBps          int64     `gorm:"column:basis_bps;not null" json:"basis_bps"`
	CreatedAt         time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (ProfitShareRecord) TableName() string {
	return "profit_share_records"
}
