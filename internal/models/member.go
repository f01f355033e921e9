package models

import (
	"time"
)

const (
	MemberStatusActive   = "active"
	MemberStatusInactive = "inactive"
)

type Member struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Username  string    `gorm:"column:username;size:255;not null;uniqueIndex" json:"username"`
	Status    string    `gorm:"column:status;size:20;not null;default:active" json:"status"`
	SponsorID *uint     `gorm:"column:sponsor_id;index" json:"sponsor_id"` // nil only for the root member
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Member) TableName() string {
	return "members"
}

// UplineLink is a materialized sponsor-chain row: one per ancestor of a member
// within the configured depth. Path is the ordered ancestor id list from the
// root-most known ancestor down to the member, e.g. "/3/7/19/".
type UplineLink struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	MemberID   uint      `gorm:"column:member_id;not null;uniqueIndex:idx_upline_member_level" json:"member_id"`
	AncestorID uint      `gorm:"column:ancestor_id;not null;index" json:"ancestor_id"`
	Level      int       `gorm:"column:level;not null;uniqueIndex:idx_upline_member_level" json:"level"`
	Path       string    `gorm:"column:path;size:512;not null" json:"path"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (UplineLink) TableName() string {
	return "upline_links"
}
