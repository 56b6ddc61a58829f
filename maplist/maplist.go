// Package maplist implements the pure map-selection protocols: pool
// legality, the ban-then-pick and counterpick turn rules, and the
// resolver that turns round configuration plus recorded events into
// the positional map list of a match. Nothing here touches storage.
package maplist

import (
	"errors"

	"github.com/splatseries/bracket-system/models"
)

var (
	ErrNoWinner      = errors.New("maplist: latest result has a winner outside the match")
	ErrEmptyPool     = errors.New("maplist: no maps available to build a list from")
	ErrListExhausted = errors.New("maplist: not enough distinct stages for the requested count")
)

// ListedMap is one positional entry of a match's map list.
type ListedMap struct {
	models.ModeStage
	// Source records which selection mechanism produced the map: a
	// team id as string, or one of the models.Source* constants.
	Source string `json:"source"`
	// BannedByTeamID is set under BAN_2 once a team banned the stage.
	BannedByTeamID *int `json:"banned_by_team_id,omitempty"`
}

// TurnOf returns the id of the team whose turn it is to ban or pick,
// or nil when nobody has a pending selection. teams[1] is the second
// picker (typically the lower seed) and bans first under BAN_2.
func TurnOf(results []models.GameResult, cfg *models.RoundMapConfig, teams [2]int, list []ListedMap) (*int, error) {
	if cfg == nil || cfg.PickBan == models.PickBanNone || cfg.PickBan == "" {
		return nil, nil
	}
	if list == nil {
		return nil, nil
	}

	switch cfg.PickBan {
	case models.PickBanBan2:
		secondPicker, firstPicker := teams[0], teams[1]

		if !someBannedBy(list, firstPicker) {
			return &firstPicker, nil
		}
		if !someBannedBy(list, secondPicker) {
			return &secondPicker, nil
		}
		return nil, nil

	case models.PickBanCounterpick:
		// An unplayed map still exists, play it before picking more.
		if len(list) > len(results) {
			return nil, nil
		}
		if cfg.SetOverByResults(results) {
			return nil, nil
		}
		if len(results) == 0 {
			return nil, nil
		}

		latestWinner := results[len(results)-1].WinnerTeamID
		for _, id := range teams {
			if id != latestWinner {
				loser := id
				return &loser, nil
			}
		}
		return nil, ErrNoWinner

	default:
		return nil, nil
	}
}

func someBannedBy(list []ListedMap, teamID int) bool {
	for _, m := range list {
		if m.BannedByTeamID != nil && *m.BannedByTeamID == teamID {
			return true
		}
	}
	return false
}

// UnavailableStages returns the stage ids that may not be selected
// right now: banned stages under BAN_2, already played stages under
// counterpick.
func UnavailableStages(cfg *models.RoundMapConfig, results []models.GameResult, list []ListedMap) map[int]bool {
	out := make(map[int]bool)
	if cfg == nil {
		return out
	}

	switch cfg.PickBan {
	case models.PickBanBan2:
		for _, m := range list {
			if m.BannedByTeamID != nil {
				out[m.StageID] = true
			}
		}
	case models.PickBanCounterpick:
		for _, r := range results {
			out[r.StageID] = true
		}
	}
	return out
}

// UnavailableModes returns the modes the picking team may not select:
// under counterpick a team cannot pick a mode it has won on this set.
// The restriction lifts entirely when it would cover every mode in
// play, bans must never leave a team with nothing to pick.
func UnavailableModes(cfg *models.RoundMapConfig, results []models.GameResult, pickerTeamID int, modesInPlay []models.Mode) map[models.Mode]bool {
	out := make(map[models.Mode]bool)
	if cfg == nil || cfg.PickBan != models.PickBanCounterpick {
		return out
	}

	for _, r := range results {
		if r.WinnerTeamID == pickerTeamID {
			out[r.Mode] = true
		}
	}

	if len(out) >= len(modesInPlay) && len(modesInPlay) > 0 {
		return make(map[models.Mode]bool)
	}
	return out
}

// ModesOf lists the distinct modes present in a pool, in pool order.
func ModesOf(pool []models.ModeStage) []models.Mode {
	seen := make(map[models.Mode]bool)
	var out []models.Mode
	for _, m := range pool {
		if !seen[m.Mode] {
			seen[m.Mode] = true
			out = append(out, m.Mode)
		}
	}
	return out
}
