package maplist

import (
	"testing"

	"github.com/splatseries/bracket-system/models"
	"github.com/stretchr/testify/assert"
)

func TestLegalBannedStagesExcluded(t *testing.T) {
	pool := []models.ModeStage{
		{Mode: models.ModeSplatZones, StageID: 1},
		{Mode: models.ModeSplatZones, StageID: 2},
		{Mode: models.ModeTowerCtrl, StageID: 3},
	}

	got := Legal(pool, map[int]bool{2: true}, nil)
	assert.Equal(t, []bool{true, false, true}, got)
}

func TestLegalModeRestriction(t *testing.T) {
	pool := []models.ModeStage{
		{Mode: models.ModeSplatZones, StageID: 1},
		{Mode: models.ModeTowerCtrl, StageID: 2},
	}

	got := Legal(pool, nil, map[models.Mode]bool{models.ModeSplatZones: true})
	assert.Equal(t, []bool{false, true}, got)
}

func TestLegalSingleModePoolIgnoresModeBlocks(t *testing.T) {
	pool := []models.ModeStage{
		{Mode: models.ModeSplatZones, StageID: 1},
		{Mode: models.ModeSplatZones, StageID: 2},
	}

	got := Legal(pool, nil, map[models.Mode]bool{models.ModeSplatZones: true})
	assert.Equal(t, []bool{true, true}, got, "a single-mode pool never illegalizes its only mode")
}

func TestLegalAllModesBlockedLifts(t *testing.T) {
	pool := []models.ModeStage{
		{Mode: models.ModeSplatZones, StageID: 1},
		{Mode: models.ModeTowerCtrl, StageID: 2},
	}
	blocked := map[models.Mode]bool{models.ModeSplatZones: true, models.ModeTowerCtrl: true}

	got := Legal(pool, nil, blocked)
	assert.Equal(t, []bool{true, true}, got)
}

func TestLegalNeverReturnsNoLegalMaps(t *testing.T) {
	pool := []models.ModeStage{
		{Mode: models.ModeSplatZones, StageID: 1},
		{Mode: models.ModeTowerCtrl, StageID: 2},
	}

	// Every stage banned: the fallback makes everything legal again.
	got := Legal(pool, map[int]bool{1: true, 2: true}, nil)
	assert.Equal(t, []bool{true, true}, got)

	// Stage bans plus a mode block covering the leftovers.
	got = Legal(pool, map[int]bool{1: true}, map[models.Mode]bool{models.ModeTowerCtrl: true})
	assert.Equal(t, []bool{true, true}, got)
}

func TestIsLegal(t *testing.T) {
	pool := []models.ModeStage{
		{Mode: models.ModeSplatZones, StageID: 1},
		{Mode: models.ModeTowerCtrl, StageID: 2},
	}

	assert.True(t, IsLegal(pool[0], pool, nil, nil))
	assert.False(t, IsLegal(pool[0], pool, map[int]bool{1: true}, nil))
	assert.False(t, IsLegal(models.ModeStage{Mode: models.ModeRainmaker, StageID: 9}, pool, nil, nil),
		"a map outside the pool is never legal")
}
