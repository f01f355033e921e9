package models

import (
	"time"
)

const (
	PositionStatusActive    = "active"
	PositionStatusWithdrawn = "withdrawn"
)

// CapitalPosition is a single investment. Principal is in minor units.
// Immutable once created except for status and the withdrawal timestamp.
type CapitalPosition struct {
	ID          uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	MemberID    uint       `gorm:"column:member_id;not null;index" json:"member_id"`
	TierID      uint       `gorm:"column:tier_id;not null" json:"tier_id"`
	Principal   int64      `gorm:"column:principal;not null" json:"principal"`
	Status      string     `gorm:"column:status;size:20;not null;default:active;index" json:"status"`
	OpenedAt    time.Time  `gorm:"column:opened_at;not null" json:"opened_at"`
	WithdrawnAt *time.Time `gorm:"column:withdrawn_at" json:"withdrawn_at,omitempty"`
	MaturedAt   *time.Time `gorm:"column:matured_at" json:"matured_at,omitempty"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	Tier *Tier `gorm:"foreignKey:TierID" json:"tier,omitempty"`
}

func (CapitalPosition) TableName() string {
	return "capital_positions"
}

// Tier is a rate class loaded once at startup and passed explicitly.
// All rates are basis points.
type Tier struct {
	ID                 uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name               string    `gorm:"column:name;size:50;not null;uniqueIndex" json:"name"`
	Rank               int       `gorm:"column:rank;not null" json:"rank"`
	MinimumPrincipal   int64     `gorm:"column:minimum_principal;not null" json:"minimum_principal"`
	FixedProfitBps     int64     `gorm:"column:fixed_profit_bps;not null" json:"fixed_profit_bps"`
	MatrixDirectBps    int64     `gorm:"column:matrix_direct_bps;default:0" json:"matrix_direct_bps"`
	MatrixLevel2Bps    int64     `gorm:"column:matrix_level2_bps;default:0" json:"matrix_level2_bps"`
	MatrixLevel3Bps    int64     `gorm:"column:matrix_level3_bps;default:0" json:"matrix_level3_bps"`
	LeadershipEligible bool      `gorm:"column:leadership_eligible;default:false" json:"leadership_eligible"`
	CreatedAt          time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Tier) TableName() string {
	return "tiers"
}
