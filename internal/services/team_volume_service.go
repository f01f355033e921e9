package services

import (
	"fmt"
	"time"

	"mygrownet-engine/internal/models"
	"mygrownet-engine/pkg/common"

	"gorm.io/gorm"
)

// VolumeBonusStep maps a minimum total team volume (minor units) to the bonus
// rate applied to it. Steps are evaluated highest first.
type VolumeBonusStep struct {
	MinVolume int64
	RateBps   int64
}

var DefaultVolumeBonusSteps = []VolumeBonusStep{
	{MinVolume: 10_000_000, RateBps: 1000}, // >= 100,000.00 -> 10%
	{MinVolume: 5_000_000, RateBps: 700},   // >= 50,000.00 -> 7%
	{MinVolume: 2_500_000, RateBps: 500},   // >= 25,000.00 -> 5%
	{MinVolume: 1_000_000, RateBps: 200},   // >= 10,000.00 -> 2%
}

// LeadershipBand is one of the four leadership tiers. A member qualifies for
// at most one band: the highest whose thresholds are all met.
type LeadershipBand struct {
	Name               string
	MinActiveReferrals int
	MinDownlineDepth   int
	MinTeamVolume      int64
	RateBps            int64
}

var DefaultLeadershipBands = []LeadershipBand{
	{Name: "Executive", MinActiveReferrals: 10, MinDownlineDepth: 5, MinTeamVolume: 25_000_000, RateBps: 300},
	{Name: "Director", MinActiveReferrals: 7, MinDownlineDepth: 4, MinTeamVolume: 10_000_000, RateBps: 200},
	{Name: "Manager", MinActiveReferrals: 5, MinDownlineDepth: 3, MinTeamVolume: 5_000_000, RateBps: 150},
	{Name: "Supervisor", MinActiveReferrals: 3, MinDownlineDepth: 2, MinTeamVolume: 1_000_000, RateBps: 100},
}

// TeamVolumeService recomputes per-period volume snapshots and derives the
// team-volume and leadership bonuses from them. The period key is always an
// explicit parameter so a recompute for a fixed window is reproducible.
type TeamVolumeService struct {
	DB         *gorm.DB
	Network    *NetworkService
	BonusSteps []VolumeBonusStep
	Bands      []LeadershipBand
}

func NewTeamVolumeService(db *gorm.DB, network *NetworkService) *TeamVolumeService {
	return &TeamVolumeService{
		DB:         db,
		Network:    network,
		BonusSteps: DefaultVolumeBonusSteps,
		Bands:      DefaultLeadershipBands,
	}
}

// RecomputeTeamVolumes rebuilds the snapshot of every member for the given
// period. One failing member never aborts the sweep.
func (s *TeamVolumeService) RecomputeTeamVolumes(period string) (*common.BatchResult, error) {
	start, end, err := common.PeriodWindow(period)
	if err != nil {
		return nil, fmt.Errorf("invalid period %q: %w", period, err)
	}

	var members []models.Member
	if err := s.DB.Order("id ASC").Find(&members).Error; err != nil {
		return nil, err
	}

	result := &common.BatchResult{}
	for _, member := range members {
		if err := s.recomputeMember(member.ID, period, start, end); err != nil {
			result.AddFailuref(member.ID, "snapshot failed: %v", err)
			continue
		}
		result.Processed++
	}
	return result, nil
}

func (s *TeamVolumeService) recomputeMember(memberID uint, period string, start, end time.Time) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		personal, err := s.volumeOf(tx, []uint{memberID}, start, end)
		if err != nil {
			return err
		}

		levels, err := s.Network.downline(tx, memberID, 0)
		if err != nil {
			return err
		}

		var network int64
		for _, ids := range levels {
			v, err := s.volumeOf(tx, ids, start, end)
			if err != nil {
				return err
			}
			network += v
		}

		activeReferrals := 0
		if len(levels) > 0 {
			var count int64
			if err := tx.Model(&models.CapitalPosition{}).
				Where("member_id IN ? AND status = ?", levels[0], models.PositionStatusActive).
				Distinct("member_id").Count(&count).Error; err != nil {
				return err
			}
			activeReferrals = int(count)
		}

		snapshot := models.TeamVolumeSnapshot{
			MemberID:        memberID,
			Period:          period,
			PersonalVolume:  personal,
			NetworkVolume:   network,
			ActiveReferrals: activeReferrals,
			DownlineDepth:   len(levels),
		}

		var existing models.TeamVolumeSnapshot
		err = tx.Where("member_id = ? AND period = ?", memberID, period).First(&existing).Error
		if err == gorm.ErrRecordNotFound {
			return tx.Create(&snapshot).Error
		}
		if err != nil {
			return err
		}
		return tx.Model(&existing).Updates(map[string]interface{}{
			"personal_volume":  snapshot.PersonalVolume,
			"network_volume":   snapshot.NetworkVolume,
			"active_referrals": snapshot.ActiveReferrals,
			"downline_depth":   snapshot.DownlineDepth,
		}).Error
	})
}

func (s *TeamVolumeService) volumeOf(tx *gorm.DB, memberIDs []uint, start, end time.Time) (int64, error) {
	if len(memberIDs) == 0 {
		return 0, nil
	}
	var total int64
	err := tx.Model(&models.CapitalPosition{}).
		Where("member_id IN ? AND opened_at >= ? AND opened_at < ?", memberIDs, start, end).
		Select("COALESCE(SUM(principal), 0)").Scan(&total).Error
	return total, err
}

// VolumeBonusRate returns the step-function rate for a total team volume.
func (s *TeamVolumeService) VolumeBonusRate(totalVolume int64) int64 {
	for _, step := range s.BonusSteps {
		if totalVolume >= step.MinVolume {
			return step.RateBps
		}
	}
	return 0
}

// QualifyLeadershipBand returns the highest band whose thresholds the snapshot
// meets, or nil. The member's tier must carry the leadership flag.
func (s *TeamVolumeService) QualifyLeadershipBand(snapshot models.TeamVolumeSnapshot, tier *models.Tier) *LeadershipBand {
	if tier == nil || !tier.LeadershipEligible {
		return nil
	}
	total := snapshot.TotalVolume()
	for i := range s.Bands {
		band := s.Bands[i]
		if snapshot.ActiveReferrals >= band.MinActiveReferrals &&
			snapshot.DownlineDepth >= band.MinDownlineDepth &&
			total >= band.MinTeamVolume {
			return &band
		}
	}
	return nil
}

// AwardPeriodBonuses creates pending team-volume and leadership commission
// records from the period's snapshots. Idempotent per (member, period, type).
func (s *TeamVolumeService) AwardPeriodBonuses(period string) (*common.BatchResult, error) {
	var snapshots []models.TeamVolumeSnapshot
	if err := s.DB.Where("period = ?", period).Order("member_id ASC").Find(&snapshots).Error; err != nil {
		return nil, err
	}

	result := &common.BatchResult{}
	for _, snapshot := range snapshots {
		err := s.DB.Transaction(func(tx *gorm.DB) error {
			if err := s.awardVolumeBonus(tx, snapshot); err != nil {
				return err
			}
			return s.awardLeadershipBonus(tx, snapshot)
		})
		if err != nil {
			result.AddFailuref(snapshot.MemberID, "bonus award failed: %v", err)
			continue
		}
		result.Processed++
	}
	return result, nil
}

func (s *TeamVolumeService) awardVolumeBonus(tx *gorm.DB, snapshot models.TeamVolumeSnapshot) error {
	rate := s.VolumeBonusRate(snapshot.TotalVolume())
	if rate == 0 {
		return nil
	}
	return s.createPeriodBonus(tx, snapshot, models.CommissionTypeTeamVolume, rate)
}

func (s *TeamVolumeService) awardLeadershipBonus(tx *gorm.DB, snapshot models.TeamVolumeSnapshot) error {
	var member models.Member
	if err := tx.First(&member, snapshot.MemberID).Error; err != nil {
		return err
	}

	// The leadership flag lives on the tier of the member's highest position.
	var position models.CapitalPosition
	err := tx.Preload("Tier").
		Where("member_id = ? AND status = ?", snapshot.MemberID, models.PositionStatusActive).
		Order("principal DESC").First(&position).Error
	if err == gorm.ErrRecordNotFound {
		return nil
	}
	if err != nil {
		return err
	}

	band := s.QualifyLeadershipBand(snapshot, position.Tier)
	if band == nil {
		return nil
	}
	return s.createPeriodBonus(tx, snapshot, models.CommissionTypeLeadership, band.RateBps)
}

func (s *TeamVolumeService) createPeriodBonus(tx *gorm.DB, snapshot models.TeamVolumeSnapshot, bonusType string, rate int64) error {
	var count int64
	if err := tx.Model(&models.CommissionRecord{}).
		Where("beneficiary_id = ? AND type = ? AND period = ?", snapshot.MemberID, bonusType, snapshot.Period).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil // already awarded for this period
	}

	record := models.CommissionRecord{
		BeneficiaryID:  snapshot.MemberID,
		SourceMemberID: snapshot.MemberID,
		Level:          0,
		Amount:         common.PercentOf(snapshot.TotalVolume(), rate),
		RateBps:        rate,
		Type:           bonusType,
		Status:         models.CommissionStatusPending,
		Period:         snapshot.Period,
	}
	return tx.Create(&record).Error
}
