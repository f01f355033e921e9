package services

import (
	"errors"
	"fmt"
	"strings"

	"mygrownet-engine/internal/models"

	"gorm.io/gorm"
)

// UplineDepth is how far up the sponsor chain referral commissions reach.
const UplineDepth = 5

var (
	ErrSponsorCycle    = errors.New("sponsor is already a descendant of the member")
	ErrInactiveSponsor = errors.New("sponsor has no active capital position")
	ErrSelfSponsor     = errors.New("member cannot sponsor themselves")
)

// NetworkService maintains the two placement structures: the unbounded sponsor
// chain (materialized as UplineLink rows) and the bounded 3x3 matrix tree.
type NetworkService struct {
	DB     *gorm.DB
	Helper *HelperService

	// RequireActiveSponsor gates AttachSponsor on the sponsor holding an
	// active capital position.
	RequireActiveSponsor bool
}

func NewNetworkService(db *gorm.DB, helper *HelperService) *NetworkService {
	return &NetworkService{DB: db, Helper: helper}
}

// AttachSponsor links member under sponsor and rebuilds the member's upline
// rows up to UplineDepth. Rejects cycles before any write.
func (s *NetworkService) AttachSponsor(memberID, sponsorID uint) error {
	if memberID == sponsorID {
		return ErrSelfSponsor
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		var member, sponsor models.Member
		if err := tx.First(&member, memberID).Error; err != nil {
			return fmt.Errorf("member %d: %w", memberID, err)
		}
		if err := tx.First(&sponsor, sponsorID).Error; err != nil {
			return fmt.Errorf("sponsor %d: %w", sponsorID, err)
		}

		isDescendant, err := s.isAncestor(tx, memberID, sponsorID)
		if err != nil {
			return err
		}
		if isDescendant {
			return ErrSponsorCycle
		}

		if s.RequireActiveSponsor {
			active, err := s.Helper.HasActivePosition(tx, sponsorID)
			if err != nil {
				return err
			}
			if !active {
				return ErrInactiveSponsor
			}
		}

		if err := tx.Model(&member).Update("sponsor_id", sponsorID).Error; err != nil {
			return err
		}
		if err := s.rebuildUplineLinks(tx, memberID, sponsorID); err != nil {
			return err
		}
		return s.cascadeUplineRebuild(tx, memberID)
	})
}

// cascadeUplineRebuild rebuilds the materialized rows of every descendant
// after a member changes sponsor. Levels are walked top-down so each member
// derives its rows from an already-rebuilt parent.
func (s *NetworkService) cascadeUplineRebuild(tx *gorm.DB, memberID uint) error {
	levels, err := s.downline(tx, memberID, 0)
	if err != nil {
		return err
	}
	for _, ids := range levels {
		for _, id := range ids {
			var member models.Member
			if err := tx.First(&member, id).Error; err != nil {
				return err
			}
			if member.SponsorID == nil {
				continue
			}
			if err := s.rebuildUplineLinks(tx, id, *member.SponsorID); err != nil {
				return err
			}
		}
	}
	return nil
}

// isAncestor reports whether candidate appears in the sponsor chain above of.
func (s *NetworkService) isAncestor(tx *gorm.DB, candidate, of uint) (bool, error) {
	seen := map[uint]bool{}
	current := of
	for {
		var member models.Member
		if err := tx.First(&member, current).Error; err != nil {
			return false, err
		}
		if member.SponsorID == nil {
			return false, nil
		}
		parent := *member.SponsorID
		if parent == candidate {
			return true, nil
		}
		if seen[parent] {
			// Existing data already contains a loop; treat as a cycle.
			return true, nil
		}
		seen[parent] = true
		current = parent
	}
}

// rebuildUplineLinks replaces the member's materialized ancestor rows by
// prepending the member to the sponsor's own path.
func (s *NetworkService) rebuildUplineLinks(tx *gorm.DB, memberID, sponsorID uint) error {
	if err := tx.Where("member_id = ?", memberID).Delete(&models.UplineLink{}).Error; err != nil {
		return err
	}

	var sponsorLinks []models.UplineLink
	if err := tx.Where("member_id = ?", sponsorID).Order("level ASC").Find(&sponsorLinks).Error; err != nil {
		return err
	}

	// Ancestor ids ordered nearest-first: sponsor, then the sponsor's upline.
	ancestors := []uint{sponsorID}
	for _, link := range sponsorLinks {
		ancestors = append(ancestors, link.AncestorID)
	}
	if len(ancestors) > UplineDepth {
		ancestors = ancestors[:UplineDepth]
	}

	path := memberPath(ancestors, memberID)
	for i, ancestorID := range ancestors {
		link := models.UplineLink{
			MemberID:   memberID,
			AncestorID: ancestorID,
			Level:      i + 1,
			Path:       path,
		}
		if err := tx.Create(&link).Error; err != nil {
			return err
		}
	}
	return nil
}

// memberPath renders the ordered ancestor id list, furthest ancestor first,
// ending with the member itself: "/3/7/19/".
func memberPath(ancestorsNearestFirst []uint, memberID uint) string {
	var b strings.Builder
	b.WriteString("/")
	for i := len(ancestorsNearestFirst) - 1; i >= 0; i-- {
		fmt.Fprintf(&b, "%d/", ancestorsNearestFirst[i])
	}
	fmt.Fprintf(&b, "%d/", memberID)
	return b.String()
}

// FindOpenMatrixSlot scans levels 1..3 breadth-first, ascending slot order, and
// returns the first unoccupied slot. ok is false when all 39 positions are
// taken; a full matrix is an expected outcome, not an error.
func (s *NetworkService) FindOpenMatrixSlot(rootID uint) (level, slot int, ok bool, err error) {
	return s.findOpenMatrixSlot(s.DB, rootID)
}

func (s *NetworkService) findOpenMatrixSlot(tx *gorm.DB, rootID uint) (int, int, bool, error) {
	var positions []models.MatrixPosition
	if err := tx.Where("matrix_root_id = ?", rootID).Find(&positions).Error; err != nil {
		return 0, 0, false, err
	}

	occupied := make(map[[2]int]bool, len(positions))
	for _, p := range positions {
		occupied[[2]int{p.Level, p.Slot}] = true
	}

	for level := 1; level <= models.MatrixDepth; level++ {
		for slot := 1; slot <= models.SlotsAtLevel(level); slot++ {
			if !occupied[[2]int{level, slot}] {
				return level, slot, true, nil
			}
		}
	}
	return 0, 0, false, nil
}

// PlaceInMatrix assigns the member the first open slot under root. When level 1
// is full the member spills to level 2 under the same root, preserving strict
// breadth-first fill order. Idempotent: an already-placed member keeps their
// position.
func (s *NetworkService) PlaceInMatrix(memberID, rootID uint) (*models.MatrixPosition, error) {
	var position *models.MatrixPosition
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		position, err = s.placeInMatrix(tx, memberID, rootID)
		return err
	})
	return position, err
}

func (s *NetworkService) placeInMatrix(tx *gorm.DB, memberID, rootID uint) (*models.MatrixPosition, error) {
	var existing models.MatrixPosition
	err := tx.Where("matrix_root_id = ? AND member_id = ?", rootID, memberID).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	level, slot, ok, err := s.findOpenMatrixSlot(tx, rootID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil // matrix full
	}

	position := models.MatrixPosition{
		MatrixRootID: rootID,
		MemberID:     memberID,
		Level:        level,
		Slot:         slot,
	}
	if err := tx.Create(&position).Error; err != nil {
		// The unique (root, level, slot) index serializes concurrent
		// placements; retry once on the next open slot.
		level, slot, ok, retryErr := s.findOpenMatrixSlot(tx, rootID)
		if retryErr != nil || !ok {
			return nil, err
		}
		position = models.MatrixPosition{
			MatrixRootID: rootID,
			MemberID:     memberID,
			Level:        level,
			Slot:         slot,
		}
		if err := tx.Create(&position).Error; err != nil {
			return nil, err
		}
	}
	return &position, nil
}

type LevelStats struct {
	Level    int `json:"level"`
	Occupied int `json:"occupied"`
	Capacity int `json:"capacity"`
}

type MatrixStats struct {
	RootID            uint         `json:"root_id"`
	Occupied          int          `json:"occupied"`
	RemainingCapacity int          `json:"remaining_capacity"`
	Depth             int          `json:"depth"`
	ActiveMembers     int          `json:"active_members"`
	InactiveMembers   int          `json:"inactive_members"`
	Levels            []LevelStats `json:"levels"`
}

// MatrixStatistics aggregates occupancy under a root.
func (s *NetworkService) MatrixStatistics(rootID uint) (*MatrixStats, error) {
	var positions []models.MatrixPosition
	if err := s.DB.Where("matrix_root_id = ?", rootID).Find(&positions).Error; err != nil {
		return nil, err
	}

	stats := &MatrixStats{RootID: rootID}
	perLevel := map[int]int{}
	memberIDs := make([]uint, 0, len(positions))
	for _, p := range positions {
		perLevel[p.Level]++
		memberIDs = append(memberIDs, p.MemberID)
		if p.Level > stats.Depth {
			stats.Depth = p.Level
		}
	}

	stats.Occupied = len(positions)
	stats.RemainingCapacity = models.MatrixCapacity - stats.Occupied
	for level := 1; level <= models.MatrixDepth; level++ {
		stats.Levels = append(stats.Levels, LevelStats{
			Level:    level,
			Occupied: perLevel[level],
			Capacity: models.SlotsAtLevel(level),
		})
	}

	if len(memberIDs) > 0 {
		var active int64
		if err := s.DB.Model(&models.Member{}).
			Where("id IN ? AND status = ?", memberIDs, models.MemberStatusActive).
			Count(&active).Error; err != nil {
			return nil, err
		}
		stats.ActiveMembers = int(active)
		stats.InactiveMembers = len(positions) - int(active)
	}
	return stats, nil
}

// MatrixDepth returns the deepest occupied level under a root.
func (s *NetworkService) MatrixDepth(rootID uint) (int, error) {
	stats, err := s.MatrixStatistics(rootID)
	if err != nil {
		return 0, err
	}
	return stats.Depth, nil
}

// Downline walks the sponsor chain below a member, breadth-first, up to
// maxDepth levels (0 means unlimited). Returns member ids grouped by depth.
func (s *NetworkService) Downline(memberID uint, maxDepth int) ([][]uint, error) {
	return s.downline(s.DB, memberID, maxDepth)
}

func (s *NetworkService) downline(tx *gorm.DB, memberID uint, maxDepth int) ([][]uint, error) {
	var levels [][]uint
	frontier := []uint{memberID}
	for depth := 1; maxDepth == 0 || depth <= maxDepth; depth++ {
		var children []models.Member
		if err := tx.Where("sponsor_id IN ?", frontier).Find(&children).Error; err != nil {
			return nil, err
		}
		if len(children) == 0 {
			break
		}
		ids := make([]uint, 0, len(children))
		for _, c := range children {
			ids = append(ids, c.ID)
		}
		levels = append(levels, ids)
		frontier = ids
	}
	return levels, nil
}
