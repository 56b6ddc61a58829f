package services

import "github.com/splatseries/bracket-system/models"

// ActionType tags the inbound match action envelope.
type ActionType string

const (
	ActionReportScore     ActionType = "REPORT_SCORE"
	ActionUndoReport      ActionType = "UNDO_REPORT_SCORE"
	ActionUpdateReported  ActionType = "UPDATE_REPORTED_SCORE"
	ActionReopenMatch     ActionType = "REOPEN_MATCH"
	ActionBanPick         ActionType = "BAN_PICK"
	ActionSetActiveRoster ActionType = "SET_ACTIVE_ROSTER"
	ActionLock            ActionType = "LOCK"
	ActionUnlock          ActionType = "UNLOCK"
	ActionSetAsCasted     ActionType = "SET_AS_CASTED"
)

// MatchAction is the request body of every match mutation. Which
// fields are required depends on Type.
type MatchAction struct {
	Type ActionType `json:"type"`

	// REPORT_SCORE / UNDO_REPORT_SCORE. Position is the number of
	// games the client believed were played; a mismatch means the
	// request is stale and becomes a no-op.
	Position     *int `json:"position,omitempty"`
	WinnerTeamID *int `json:"winner_team_id,omitempty"`

	// Optional point pair, both or neither.
	Opponent1Points *int `json:"opponent_one_points,omitempty"`
	Opponent2Points *int `json:"opponent_two_points,omitempty"`

	// UPDATE_REPORTED_SCORE
	ResultID      *int  `json:"result_id,omitempty"`
	RosterUserIDs []int `json:"roster_user_ids,omitempty"`

	// BAN_PICK
	Mode    models.Mode `json:"mode,omitempty"`
	StageID *int        `json:"stage_id,omitempty"`

	// SET_ACTIVE_ROSTER
	TeamID *int  `json:"team_id,omitempty"`
	Roster []int `json:"roster,omitempty"`

	// SET_AS_CASTED. Nil clears the assignment.
	TwitchAccount *string `json:"twitch_account,omitempty"`
}

// ActionResult reports what an action did. NoOp is true for stale
// submissions, which are not errors.
type ActionResult struct {
	NoOp   bool          `json:"no_op"`
	Match  *models.Match `json:"match,omitempty"`
	IsOver bool          `json:"is_over"`
}

// matchEventPayload goes out on the match topic so subscribers can
// refetch; EventID lets a client ignore the echo of its own action.
type matchEventPayload struct {
	EventID string `json:"eventId"`
	UserID  int    `json:"userId"`
}

// bracketEventPayload goes out on the bracket topic.
type bracketEventPayload struct {
	MatchID int    `json:"matchId"`
	Scores  [2]int `json:"scores"`
	IsOver  bool   `json:"isOver"`
}
