package models

import "time"

// Mode is one of the game's competitive modes.
type Mode string

const (
	ModeTurfWar    Mode = "TW"
	ModeSplatZones Mode = "SZ"
	ModeTowerCtrl  Mode = "TC"
	ModeRainmaker  Mode = "RM"
	ModeClamBlitz  Mode = "CB"
)

// RankedModes is the closed set of modes playable in ranked rotation order.
var RankedModes = []Mode{ModeSplatZones, ModeTowerCtrl, ModeRainmaker, ModeClamBlitz}

// ModeStage is a mode/stage pair, the unit a map pool is made of.
type ModeStage struct {
	Mode    Mode `json:"mode" db:"mode"`
	StageID int  `json:"stage_id" db:"stage_id"`
}

// Map list provenance values. A numeric team id in the source column
// means that team brought the map; these strings cover the rest.
const (
	SourceDefault     = "DEFAULT"
	SourceTiebreaker  = "TIEBREAKER"
	SourceBoth        = "BOTH"
	SourceOrganizer   = "TO"
	SourceCounterpick = "COUNTERPICK"
)

// KOPoints is the maximum representable point value for one game.
// A KO on one side requires the other side to have exactly zero.
const KOPoints = 100

type GameResult struct {
	ID              int       `json:"id" db:"id"`
	MatchID         int       `json:"match_id" db:"match_id"`
	Number          int       `json:"number" db:"number"`
	WinnerTeamID    int       `json:"winner_team_id" db:"winner_team_id"`
	Mode            Mode      `json:"mode" db:"mode"`
	StageID         int       `json:"stage_id" db:"stage_id"`
	Source          string    `json:"source" db:"source"`
	Opponent1Points *int      `json:"opponent_one_points,omitempty" db:"opponent_one_points"`
	Opponent2Points *int      `json:"opponent_two_points,omitempty" db:"opponent_two_points"`
	ReporterID      int       `json:"reporter_id" db:"reporter_id"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`

	// Loaded from the participant join table, not a column.
	ParticipantIDs []int `json:"participant_ids,omitempty" db:"-"`
}

type PickBanType string

const (
	PickBanEventBan  PickBanType = "BAN"
	PickBanEventPick PickBanType = "PICK"
)

type PickBanEvent struct {
	ID        int         `json:"id" db:"id"`
	MatchID   int         `json:"match_id" db:"match_id"`
	Number    int         `json:"number" db:"number"`
	Type      PickBanType `json:"type" db:"type"`
	AuthorID  int         `json:"author_id" db:"author_id"`
	Mode      Mode        `json:"mode" db:"mode"`
	StageID   int         `json:"stage_id" db:"stage_id"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"`
}
