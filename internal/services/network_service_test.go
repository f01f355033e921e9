package services

import (
	"testing"

	"mygrownet-engine/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttachSponsorBuildsUpline(t *testing.T) {
	db := setupTestDB(t)
	network := NewNetworkService(db, NewHelperService(db))

	// a <- b <- c <- d <- e <- f <- g: g's upline truncates at depth 5.
	var ids []uint
	for _, name := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		m := createMember(t, db, name, models.MemberStatusActive)
		ids = append(ids, m.ID)
	}
	for i := 1; i < len(ids); i++ {
		require.NoError(t, network.AttachSponsor(ids[i], ids[i-1]))
	}

	var links []models.UplineLink
	require.NoError(t, db.Where("member_id = ?", ids[6]).Order("level ASC").Find(&links).Error)
	require.Len(t, links, UplineDepth)

	// Nearest ancestor first.
	assert.Equal(t, ids[5], links[0].AncestorID)
	assert.Equal(t, 1, links[0].Level)
	assert.Equal(t, ids[1], links[4].AncestorID)
	assert.Equal(t, 5, links[4].Level)
}

func TestAttachSponsorRebuildsDescendantUplines(t *testing.T) {
	db := setupTestDB(t)
	network := NewNetworkService(db, NewHelperService(db))

	a := createMember(t, db, "a", models.MemberStatusActive)
	b := createMember(t, db, "b", models.MemberStatusActive)
	c := createMember(t, db, "c", models.MemberStatusActive)
	d := createMember(t, db, "d", models.MemberStatusActive)

	require.NoError(t, network.AttachSponsor(b.ID, a.ID))
	require.NoError(t, network.AttachSponsor(c.ID, b.ID))

	// Moving b under d must rewrite c's ancestor rows too: c's level-2
	// ancestor is now d, and a drops out of c's chain entirely.
	require.NoError(t, network.AttachSponsor(b.ID, d.ID))

	var links []models.UplineLink
	require.NoError(t, db.Where("member_id = ?", c.ID).Order("level ASC").Find(&links).Error)
	require.Len(t, links, 2)
	assert.Equal(t, b.ID, links[0].AncestorID)
	assert.Equal(t, 1, links[0].Level)
	assert.Equal(t, d.ID, links[1].AncestorID)
	assert.Equal(t, 2, links[1].Level)

	var stale int64
	require.NoError(t, db.Model(&models.UplineLink{}).
		Where("member_id = ? AND ancestor_id = ?", c.ID, a.ID).Count(&stale).Error)
	assert.EqualValues(t, 0, stale)
}

func TestAttachSponsorRejectsCycle(t *testing.T) {
	db := setupTestDB(t)
	network := NewNetworkService(db, NewHelperService(db))

	a := createMember(t, db, "a", models.MemberStatusActive)
	b := createMember(t, db, "b", models.MemberStatusActive)
	c := createMember(t, db, "c", models.MemberStatusActive)

	require.NoError(t, network.AttachSponsor(b.ID, a.ID))
	require.NoError(t, network.AttachSponsor(c.ID, b.ID))

	// a under c would close the loop a -> b -> c -> a.
	err := network.AttachSponsor(a.ID, c.ID)
	assert.ErrorIs(t, err, ErrSponsorCycle)

	// Nothing written for the rejected attach.
	var refreshed models.Member
	require.NoError(t, db.First(&refreshed, a.ID).Error)
	assert.Nil(t, refreshed.SponsorID)
}

func TestAttachSponsorRejectsSelf(t *testing.T) {
	db := setupTestDB(t)
	network := NewNetworkService(db, NewHelperService(db))

	a := createMember(t, db, "a", models.MemberStatusActive)
	assert.ErrorIs(t, network.AttachSponsor(a.ID, a.ID), ErrSelfSponsor)
}

func TestAttachSponsorRequiresActiveSponsorWhenGated(t *testing.T) {
	db := setupTestDB(t)
	network := NewNetworkService(db, NewHelperService(db))
	network.RequireActiveSponsor = true

	sponsor := createMember(t, db, "sponsor", models.MemberStatusActive)
	member := createMember(t, db, "member", models.MemberStatusInactive)

	assert.ErrorIs(t, network.AttachSponsor(member.ID, sponsor.ID), ErrInactiveSponsor)

	tier := standardTier(t, db)
	openPosition(t, db, sponsor.ID, tier.ID, tier.MinimumPrincipal, testTime(t, "2025-01-15"))
	assert.NoError(t, network.AttachSponsor(member.ID, sponsor.ID))
}

func TestMatrixPlacementFillsBreadthFirst(t *testing.T) {
	db := setupTestDB(t)
	network := NewNetworkService(db, NewHelperService(db))

	root := createMember(t, db, "root", models.MemberStatusActive)

	type want struct{ level, slot int }
	wants := []want{
		{1, 1}, {1, 2}, {1, 3},
		{2, 1}, {2, 2}, {2, 3}, {2, 4},
	}
	for i, w := range wants {
		m := createMember(t, db, "m"+string(rune('a'+i)), models.MemberStatusActive)
		pos, err := network.PlaceInMatrix(m.ID, root.ID)
		require.NoError(t, err)
		require.NotNil(t, pos)
		assert.Equal(t, w.level, pos.Level, "placement %d level", i)
		assert.Equal(t, w.slot, pos.Slot, "placement %d slot", i)
	}
}

func TestMatrixPlacementIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	network := NewNetworkService(db, NewHelperService(db))

	root := createMember(t, db, "root", models.MemberStatusActive)
	m := createMember(t, db, "m", models.MemberStatusActive)

	first, err := network.PlaceInMatrix(m.ID, root.ID)
	require.NoError(t, err)
	second, err := network.PlaceInMatrix(m.ID, root.ID)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.Level, second.Level)
	assert.Equal(t, first.Slot, second.Slot)

	var count int64
	require.NoError(t, db.Model(&models.MatrixPosition{}).
		Where("matrix_root_id = ?", root.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestMatrixFullIsNotAnError(t *testing.T) {
	db := setupTestDB(t)
	network := NewNetworkService(db, NewHelperService(db))

	root := createMember(t, db, "root", models.MemberStatusActive)
	for i := 0; i < models.MatrixCapacity; i++ {
		m := createMember(t, db, uniqueName("fill", i), models.MemberStatusActive)
		pos, err := network.PlaceInMatrix(m.ID, root.ID)
		require.NoError(t, err)
		require.NotNil(t, pos, "slot %d", i)
	}

	overflow := createMember(t, db, "overflow", models.MemberStatusActive)
	pos, err := network.PlaceInMatrix(overflow.ID, root.ID)
	require.NoError(t, err)
	assert.Nil(t, pos)

	_, _, ok, err := network.FindOpenMatrixSlot(root.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMatrixStatistics(t *testing.T) {
	db := setupTestDB(t)
	network := NewNetworkService(db, NewHelperService(db))

	root := createMember(t, db, "root", models.MemberStatusActive)
	for i := 0; i < 5; i++ {
		status := models.MemberStatusActive
		if i >= 3 {
			status = models.MemberStatusInactive
		}
		m := createMember(t, db, uniqueName("stat", i), status)
		_, err := network.PlaceInMatrix(m.ID, root.ID)
		require.NoError(t, err)
	}

	stats, err := network.MatrixStatistics(root.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, stats.Occupied)
	assert.Equal(t, models.MatrixCapacity-5, stats.RemainingCapacity)
	assert.Equal(t, 2, stats.Depth)
	assert.Equal(t, 3, stats.ActiveMembers)
	assert.Equal(t, 2, stats.InactiveMembers)
	require.Len(t, stats.Levels, models.MatrixDepth)
	assert.Equal(t, 3, stats.Levels[0].Occupied)
	assert.Equal(t, 2, stats.Levels[1].Occupied)
	assert.Equal(t, 0, stats.Levels[2].Occupied)

	depth, err := network.MatrixDepth(root.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, depth)
}

func TestDownlineGroupsByDepth(t *testing.T) {
	db := setupTestDB(t)
	network := NewNetworkService(db, NewHelperService(db))

	top := createMember(t, db, "top", models.MemberStatusActive)
	mid1 := createMember(t, db, "mid1", models.MemberStatusActive)
	mid2 := createMember(t, db, "mid2", models.MemberStatusActive)
	leaf := createMember(t, db, "leaf", models.MemberStatusActive)

	require.NoError(t, network.AttachSponsor(mid1.ID, top.ID))
	require.NoError(t, network.AttachSponsor(mid2.ID, top.ID))
	require.NoError(t, network.AttachSponsor(leaf.ID, mid1.ID))

	levels, err := network.Downline(top.ID, 0)
	require.NoError(t, err)
	require.Len(t, levels, 2)
	assert.ElementsMatch(t, []uint{mid1.ID, mid2.ID}, levels[0])
	assert.Equal(t, []uint{leaf.ID}, levels[1])

	capped, err := network.Downline(top.ID, 1)
	require.NoError(t, err)
	require.Len(t, capped, 1)
}
