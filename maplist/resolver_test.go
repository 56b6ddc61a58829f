package maplist

import (
	"testing"

	"github.com/splatseries/bracket-system/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPools() [2][]models.ModeStage {
	return [2][]models.ModeStage{
		{
			{Mode: models.ModeSplatZones, StageID: 1},
			{Mode: models.ModeTowerCtrl, StageID: 2},
			{Mode: models.ModeRainmaker, StageID: 3},
			{Mode: models.ModeClamBlitz, StageID: 4},
			{Mode: models.ModeSplatZones, StageID: 5},
		},
		{
			{Mode: models.ModeSplatZones, StageID: 1},
			{Mode: models.ModeTowerCtrl, StageID: 6},
			{Mode: models.ModeRainmaker, StageID: 7},
			{Mode: models.ModeClamBlitz, StageID: 8},
			{Mode: models.ModeTowerCtrl, StageID: 9},
		},
	}
}

func TestResolveIsDeterministic(t *testing.T) {
	in := ResolveInput{
		Config:       ban2Config(3),
		PickingStyle: models.PickingStyleAuto,
		MatchID:      42,
		Teams:        [2]int{10, 20},
		TeamPools:    testPools(),
		Tiebreaker:   []models.ModeStage{{Mode: models.ModeTurfWar, StageID: 12}},
	}

	first, err := Resolve(in)
	require.NoError(t, err)
	second, err := Resolve(in)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestResolveBan2ListLength(t *testing.T) {
	in := ResolveInput{
		Config:       ban2Config(3),
		PickingStyle: models.PickingStyleAuto,
		MatchID:      7,
		Teams:        [2]int{10, 20},
		TeamPools:    testPools(),
		Tiebreaker:   []models.ModeStage{{Mode: models.ModeTurfWar, StageID: 12}},
	}

	list, err := Resolve(in)
	require.NoError(t, err)
	// Two bans leave exactly count playable maps.
	assert.Len(t, list, in.Config.Count+2)

	stages := make(map[int]bool)
	for _, m := range list {
		assert.False(t, stages[m.StageID], "stage %d repeated", m.StageID)
		stages[m.StageID] = true
	}

	assert.Equal(t, models.SourceTiebreaker, list[len(list)-1].Source)
}

func TestResolveBan2AnnotatesBans(t *testing.T) {
	in := ResolveInput{
		Config:       ban2Config(3),
		PickingStyle: models.PickingStyleAuto,
		MatchID:      7,
		Teams:        [2]int{10, 20},
		TeamPools:    testPools(),
	}

	list, err := Resolve(in)
	require.NoError(t, err)
	require.NotEmpty(t, list)

	in.PickBans = []models.PickBanEvent{
		{Number: 1, Type: models.PickBanEventBan, Mode: list[0].Mode, StageID: list[0].StageID},
		{Number: 2, Type: models.PickBanEventBan, Mode: list[1].Mode, StageID: list[1].StageID},
	}

	annotated, err := Resolve(in)
	require.NoError(t, err)
	require.NotNil(t, annotated[0].BannedByTeamID)
	require.NotNil(t, annotated[1].BannedByTeamID)
	assert.Equal(t, 20, *annotated[0].BannedByTeamID, "second picker owns the first ban")
	assert.Equal(t, 10, *annotated[1].BannedByTeamID)
}

func TestResolveCounterpickGrowsWithPicks(t *testing.T) {
	in := ResolveInput{
		Config:       counterpickConfig(3),
		PickingStyle: models.PickingStyleAuto,
		MatchID:      7,
		Teams:        [2]int{10, 20},
		TeamPools:    testPools(),
	}

	list, err := Resolve(in)
	require.NoError(t, err)
	require.Len(t, list, 1, "counterpick starts with a single starter map")

	in.PickBans = []models.PickBanEvent{
		{Number: 1, Type: models.PickBanEventPick, Mode: models.ModeRainmaker, StageID: 3},
	}
	list, err = Resolve(in)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, models.SourceCounterpick, list[1].Source)
	assert.Equal(t, 3, list[1].StageID)
}

func TestResolveOrganizerList(t *testing.T) {
	cfg := &models.RoundMapConfig{
		Count:     3,
		CountType: models.CountBestOf,
		PickBan:   models.PickBanNone,
		List: []models.ModeStage{
			{Mode: models.ModeSplatZones, StageID: 1},
			{Mode: models.ModeTowerCtrl, StageID: 2},
			{Mode: models.ModeRainmaker, StageID: 3},
		},
	}

	list, err := Resolve(ResolveInput{
		Config:       cfg,
		PickingStyle: models.PickingStyleTO,
		MatchID:      1,
		Teams:        [2]int{10, 20},
	})
	require.NoError(t, err)
	require.Len(t, list, 3)
	for _, m := range list {
		assert.Equal(t, models.SourceOrganizer, m.Source)
	}
}

func TestResolveDefaultPoolFallback(t *testing.T) {
	list, err := Resolve(ResolveInput{
		Config:       &models.RoundMapConfig{Count: 3, CountType: models.CountBestOf, PickBan: models.PickBanNone},
		PickingStyle: models.PickingStyleAuto,
		MatchID:      99,
		Teams:        [2]int{10, 20},
	})
	require.NoError(t, err)
	require.Len(t, list, 3)
	for _, m := range list {
		assert.Equal(t, models.SourceDefault, m.Source)
	}
}
