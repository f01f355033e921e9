package models

import (
	"time"
)

const (
	MatrixWidth    = 3
	MatrixDepth    = 3
	MatrixCapacity = 39 // 3 + 9 + 27
)

// MatrixPosition places a member into the bounded placement tree rooted at a
// sponsor. The (root, level, slot) uniqueness is enforced at the storage layer
// so concurrent placements can never share a slot.
type MatrixPosition struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	MatrixRootID uint      `gorm:"column:matrix_root_id;not null;uniqueIndex:idx_matrix_slot;uniqueIndex:idx_matrix_member" json:"matrix_root_id"`
	MemberID     uint      `gorm:"column:member_id;not null;uniqueIndex:idx_matrix_member" json:"member_id"`
	Level        int       `gorm:"column:level;not null;uniqueIndex:idx_matrix_slot" json:"level"`
	Slot         int       `gorm:"column:slot;not null;uniqueIndex:idx_matrix_slot" json:"slot"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (MatrixPosition) TableName() string {
	return "matrix_positions"
}

// SlotsAtLevel returns the slot capacity of a matrix level.
func SlotsAtLevel(level int) int {
	n := 1
	for i := 0; i < level; i++ {
		n *= MatrixWidth
	}
	return n
}

// ParentSlot returns the slot one level up that a slot hangs under.
func ParentSlot(slot int) int {
	return (slot + MatrixWidth - 1) / MatrixWidth
}
