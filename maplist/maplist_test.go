package maplist

import (
	"testing"

	"github.com/splatseries/bracket-system/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ban2Config(count int) *models.RoundMapConfig {
	return &models.RoundMapConfig{Count: count, CountType: models.CountBestOf, PickBan: models.PickBanBan2}
}

func counterpickConfig(count int) *models.RoundMapConfig {
	return &models.RoundMapConfig{Count: count, CountType: models.CountBestOf, PickBan: models.PickBanCounterpick}
}

func result(winner int, mode models.Mode, stage int) models.GameResult {
	return models.GameResult{WinnerTeamID: winner, Mode: mode, StageID: stage}
}

func TestTurnOfBan2Alternates(t *testing.T) {
	teams := [2]int{101, 202} // [A, B]; B is the second picker
	list := []ListedMap{
		{ModeStage: models.ModeStage{Mode: models.ModeSplatZones, StageID: 1}, Source: "101"},
		{ModeStage: models.ModeStage{Mode: models.ModeTowerCtrl, StageID: 2}, Source: "202"},
		{ModeStage: models.ModeStage{Mode: models.ModeRainmaker, StageID: 3}, Source: models.SourceBoth},
	}

	turn, err := TurnOf(nil, ban2Config(3), teams, list)
	require.NoError(t, err)
	require.NotNil(t, turn)
	assert.Equal(t, 202, *turn, "second picker bans first")

	// B bans stage 2.
	b := 202
	list[1].BannedByTeamID = &b

	turn, err = TurnOf(nil, ban2Config(3), teams, list)
	require.NoError(t, err)
	require.NotNil(t, turn)
	assert.Equal(t, 101, *turn, "first picker bans second")

	// A bans stage 1, ban phase complete.
	a := 101
	list[0].BannedByTeamID = &a

	turn, err = TurnOf(nil, ban2Config(3), teams, list)
	require.NoError(t, err)
	assert.Nil(t, turn)
}

func TestTurnOfNilWithoutConfigOrList(t *testing.T) {
	teams := [2]int{1, 2}

	turn, err := TurnOf(nil, nil, teams, []ListedMap{{}})
	require.NoError(t, err)
	assert.Nil(t, turn)

	turn, err = TurnOf(nil, &models.RoundMapConfig{PickBan: models.PickBanNone}, teams, []ListedMap{{}})
	require.NoError(t, err)
	assert.Nil(t, turn)

	turn, err = TurnOf(nil, ban2Config(3), teams, nil)
	require.NoError(t, err)
	assert.Nil(t, turn)
}

func TestTurnOfCounterpick(t *testing.T) {
	teams := [2]int{1, 2}
	starter := []ListedMap{
		{ModeStage: models.ModeStage{Mode: models.ModeSplatZones, StageID: 5}, Source: models.SourceBoth},
	}

	// No result yet: the starter map is unplayed, nobody picks.
	turn, err := TurnOf(nil, counterpickConfig(3), teams, starter)
	require.NoError(t, err)
	assert.Nil(t, turn)

	// Team 1 won the starter, so team 2 picks next.
	results := []models.GameResult{result(1, models.ModeSplatZones, 5)}
	turn, err = TurnOf(results, counterpickConfig(3), teams, starter)
	require.NoError(t, err)
	require.NotNil(t, turn)
	assert.Equal(t, 2, *turn)

	// A pick was appended but not played yet: back to nobody.
	withPick := append(starter, ListedMap{
		ModeStage: models.ModeStage{Mode: models.ModeTowerCtrl, StageID: 7},
		Source:    models.SourceCounterpick,
	})
	turn, err = TurnOf(results, counterpickConfig(3), teams, withPick)
	require.NoError(t, err)
	assert.Nil(t, turn)

	// Set over: 2-0 in a best of three.
	over := []models.GameResult{
		result(1, models.ModeSplatZones, 5),
		result(1, models.ModeTowerCtrl, 7),
	}
	turn, err = TurnOf(over, counterpickConfig(3), teams, withPick)
	require.NoError(t, err)
	assert.Nil(t, turn)
}

func TestTurnOfCounterpickUnknownWinner(t *testing.T) {
	list := []ListedMap{
		{ModeStage: models.ModeStage{Mode: models.ModeSplatZones, StageID: 5}},
	}
	// A recorded winner that matches neither opponent slot cannot be
	// resolved to a loser; this is a broken precondition upstream.
	results := []models.GameResult{result(9, models.ModeSplatZones, 5)}
	turn, err := TurnOf(results, counterpickConfig(3), [2]int{9, 9}, list)
	require.Error(t, err)
	assert.Nil(t, turn)
	assert.ErrorIs(t, err, ErrNoWinner)
}

func TestUnavailableStages(t *testing.T) {
	b := 2
	list := []ListedMap{
		{ModeStage: models.ModeStage{Mode: models.ModeSplatZones, StageID: 1}},
		{ModeStage: models.ModeStage{Mode: models.ModeTowerCtrl, StageID: 4}, BannedByTeamID: &b},
	}

	got := UnavailableStages(ban2Config(3), nil, list)
	assert.Equal(t, map[int]bool{4: true}, got)

	results := []models.GameResult{result(1, models.ModeSplatZones, 1), result(2, models.ModeRainmaker, 9)}
	got = UnavailableStages(counterpickConfig(3), results, nil)
	assert.Equal(t, map[int]bool{1: true, 9: true}, got)
}

func TestUnavailableModesLiftsWhenAllBlocked(t *testing.T) {
	results := []models.GameResult{
		result(1, models.ModeSplatZones, 1),
		result(1, models.ModeTowerCtrl, 2),
	}

	// Two modes in play, picker won on both: restriction lifts.
	got := UnavailableModes(counterpickConfig(5), results, 1, []models.Mode{models.ModeSplatZones, models.ModeTowerCtrl})
	assert.Empty(t, got)

	// Three modes in play: both won modes stay blocked.
	got = UnavailableModes(counterpickConfig(5), results, 1, []models.Mode{models.ModeSplatZones, models.ModeTowerCtrl, models.ModeRainmaker})
	assert.Equal(t, map[models.Mode]bool{models.ModeSplatZones: true, models.ModeTowerCtrl: true}, got)

	// The opponent picked nothing yet, no restriction for them.
	got = UnavailableModes(counterpickConfig(5), results, 2, []models.Mode{models.ModeSplatZones, models.ModeTowerCtrl, models.ModeRainmaker})
	assert.Empty(t, got)
}
