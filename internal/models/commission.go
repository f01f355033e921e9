package models

import (
	"time"
)

const (
	CommissionTypeReferral   = "referral"
	CommissionTypeMatrix     = "matrix"
	CommissionTypeTeamVolume = "team_volume"
	CommissionTypeLeadership = "leadership"

	CommissionStatusPending    = "pending"
	CommissionStatusPaid       = "paid"
	CommissionStatusClawedBack = "clawed_back"
)

// CommissionRecord is never deleted: payment and clawback only transition its
// status, preserving the audit trail.
type CommissionRecord struct {
	ID                uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	BeneficiaryID     uint       `gorm:"column:beneficiary_id;not null;index" json:"beneficiary_id"`
	SourceMemberID    uint       `gorm:"column:source_member_id;not null;index" json:"source_member_id"`
	CapitalPositionID *uint      `gorm:"column:capital_position_id;index" json:"capital_position_id,omitempty"`
	Level             int        `gorm:"column:level;not null" json:"level"`
	Amount            int64      `gorm:"column:amount;not null" json:"amount"`
	RateBps           int64      `gorm:"column:rate_bps;not null" json:"rate_bps"`
	Type              string     `gorm:"column:type;size:20;not null;index" json:"type"`
	Status            string     `gorm:"column:status;size:20;not null;default:pending;index" json:"status"`
	Period            string     `gorm:"column:period;size:10" json:"period,omitempty"`
	PaidAt            *time.Time `gorm:"column:paid_at" json:"paid_at,omitempty"`
	CreatedAt         time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (CommissionRecord) TableName() string {
	return "commission_records"
}

// TeamVolumeSnapshot is recomputed per period; the period key is always an
// explicit parameter, never read from the ambient clock.
type TeamVolumeSnapshot struct {
	ID              uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	MemberID        uint      `gorm:"column:member_id;not null;uniqueIndex:idx_volume_member_period" json:"member_id"`
	Period          string    `gorm:"column:period;size:10;not null;uniqueIndex:idx_volume_member_period" json:"period"`
	PersonalVolume  int64     `gorm:"column:personal_volume;not null;default:0" json:"personal_volume"`
	NetworkVolume   int64     `gorm:"column:network_volume;not null;default:0" json:"network_volume"`
	ActiveReferrals int       `gorm:"column:active_referrals;not null;default:0" json:"active_referrals"`
	DownlineDepth   int       `gorm:"column:downline_depth;not null;default:0" json:"downline_depth"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (TeamVolumeSnapshot) TableName() string {
	return "team_volume_snapshots"
}

// TotalVolume is the figure the bonus step function and leadership bands run on.
func (s TeamVolumeSnapshot) TotalVolume() int64 {
	return s.PersonalVolume + s.NetworkVolume
}
