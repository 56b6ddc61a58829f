package models

// CountType decides when a set is finished.
type CountType string

const (
	// CountBestOf ends the set once one side reaches the majority of Count.
	CountBestOf CountType = "BEST_OF"
	// CountPlayAll plays every game regardless of the running score.
	CountPlayAll CountType = "PLAY_ALL"
)

// PickBanStyle selects the map-selection protocol for a round.
type PickBanStyle string

const (
	PickBanNone        PickBanStyle = "NONE"
	PickBanBan2        PickBanStyle = "BAN_2"
	PickBanCounterpick PickBanStyle = "COUNTERPICK"
)

// RoundMapConfig is the per-round map configuration attached to every
// match of the round when the bracket materializes it.
type RoundMapConfig struct {
	RoundID   int          `json:"round_id" db:"round_id"`
	Count     int          `json:"count" db:"count"`
	CountType CountType    `json:"count_type" db:"count_type"`
	PickBan   PickBanStyle `json:"pick_ban" db:"pick_ban"`

	// List is the organizer-prescribed map list, when the tournament
	// uses fixed maps instead of team-submitted pools.
	List []ModeStage `json:"list,omitempty" db:"-"`
}

// WinsRequired is the majority threshold for a BEST_OF round.
func (c RoundMapConfig) WinsRequired() int {
	return c.Count/2 + 1
}

// SetOverByScore reports whether the given score pair finishes a set
// under this configuration.
func (c RoundMapConfig) SetOverByScore(scores [2]int) bool {
	if c.CountType == CountPlayAll {
		return scores[0]+scores[1] == c.Count
	}
	need := c.WinsRequired()
	return scores[0] == need || scores[1] == need
}

// SetOverByResults derives the same answer from recorded results.
func (c RoundMapConfig) SetOverByResults(results []GameResult) bool {
	wins := make(map[int]int)
	for _, r := range results {
		wins[r.WinnerTeamID]++
	}
	if c.CountType == CountPlayAll {
		total := 0
		for _, n := range wins {
			total += n
		}
		return total == c.Count
	}
	need := c.WinsRequired()
	for _, n := range wins {
		if n >= need {
			return true
		}
	}
	return false
}
