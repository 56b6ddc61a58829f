package models

import "time"

const ResultWin = "win"

// Opponent is one slot of a match. TeamID is nil while the slot waits
// for an earlier match to finish; Score is nil until the first report
// (and again after an undo empties the result list, so "0 because
// reset" stays distinct from "never started").
type Opponent struct {
	TeamID *int    `json:"team_id,omitempty" db:"team_id"`
	Score  *int    `json:"score,omitempty" db:"score"`
	Result *string `json:"result,omitempty" db:"result"`
}

type Match struct {
	ID           int       `json:"id" db:"id"`
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	RoundID      int       `json:"round_id" db:"round_id"`
	Opponent1    Opponent  `json:"opponent_one" db:"-"`
	Opponent2    Opponent  `json:"opponent_two" db:"-"`
	ChatCode     string    `json:"chat_code" db:"chat_code"`
	NextMatchID  *int      `json:"next_match_id,omitempty" db:"next_match_id"`
	WinnerToSlot *int      `json:"winner_to_slot,omitempty" db:"winner_to_slot"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Scores returns the score pair with unset slots read as zero.
func (m *Match) Scores() [2]int {
	var s [2]int
	if m.Opponent1.Score != nil {
		s[0] = *m.Opponent1.Score
	}
	if m.Opponent2.Score != nil {
		s[1] = *m.Opponent2.Score
	}
	return s
}

// TeamIDs returns both opponents when both slots are filled.
func (m *Match) TeamIDs() ([2]int, bool) {
	if m.Opponent1.TeamID == nil || m.Opponent2.TeamID == nil {
		return [2]int{}, false
	}
	return [2]int{*m.Opponent1.TeamID, *m.Opponent2.TeamID}, true
}

// IsOver reports whether either side already holds the set.
func (m *Match) IsOver() bool {
	won := func(o Opponent) bool { return o.Result != nil && *o.Result == ResultWin }
	return won(m.Opponent1) || won(m.Opponent2)
}

// SideOf maps a team id to its opponent index, or -1.
func (m *Match) SideOf(teamID int) int {
	if m.Opponent1.TeamID != nil && *m.Opponent1.TeamID == teamID {
		return 0
	}
	if m.Opponent2.TeamID != nil && *m.Opponent2.TeamID == teamID {
		return 1
	}
	return -1
}
