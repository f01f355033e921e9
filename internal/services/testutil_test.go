package services

import (
	"fmt"
	"testing"
	"time"

	"mygrownet-engine/internal/database"
	"mygrownet-engine/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := database.MigrateAll(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func testTime(t *testing.T, day string) time.Time {
	t.Helper()

	at, err := time.Parse("2006-01-02", day)
	if err != nil {
		t.Fatalf("bad test date %q: %v", day, err)
	}
	return at
}

func uniqueName(prefix string, i int) string {
	return fmt.Sprintf("%s-%d", prefix, i)
}

func createMember(t *testing.T, db *gorm.DB, username, status string) *models.Member {
	t.Helper()

	member := models.Member{Username: username, Status: status}
	if err := db.Create(&member).Error; err != nil {
		t.Fatalf("failed to create member %s: %v", username, err)
	}
	return &member
}

func createTier(t *testing.T, db *gorm.DB, tier models.Tier) *models.Tier {
	t.Helper()

	if err := db.Create(&tier).Error; err != nil {
		t.Fatalf("failed to create tier %s: %v", tier.Name, err)
	}
	return &tier
}

func standardTier(t *testing.T, db *gorm.DB) *models.Tier {
	return createTier(t, db, models.Tier{
		Name:               "Growth",
		Rank:               3,
		MinimumPrincipal:   100_000,
		FixedProfitBps:     1200,
		MatrixDirectBps:    400,
		MatrixLevel2Bps:    200,
		MatrixLevel3Bps:    100,
		LeadershipEligible: true,
	})
}

func openPosition(t *testing.T, db *gorm.DB, memberID, tierID uint, principal int64, openedAt time.Time) *models.CapitalPosition {
	t.Helper()

	position := models.CapitalPosition{
		MemberID:  memberID,
		TierID:    tierID,
		Principal: principal,
		Status:    models.PositionStatusActive,
		OpenedAt:  openedAt,
	}
	if err := db.Create(&position).Error; err != nil {
		t.Fatalf("failed to open position for member %d: %v", memberID, err)
	}
	return &position
}

// sponsorChain creates `depth+1` members linked bottom-up, returning them
// ordered member-first: [member, sponsor, grand-sponsor, ...]. Every member in
// the chain gets an active position so commission eligibility holds.
func sponsorChain(t *testing.T, db *gorm.DB, network *NetworkService, tier *models.Tier, depth int, openedAt time.Time) []*models.Member {
	t.Helper()

	members := make([]*models.Member, depth+1)
	for i := depth; i >= 0; i-- {
		name := "chain-" + string(rune('a'+i))
		members[i] = createMember(t, db, name, models.MemberStatusActive)
		openPosition(t, db, members[i].ID, tier.ID, tier.MinimumPrincipal, openedAt)
	}
	for i := depth - 1; i >= 0; i-- {
		if err := network.AttachSponsor(members[i].ID, members[i+1].ID); err != nil {
			t.Fatalf("failed to attach sponsor: %v", err)
		}
	}
	return members
}
