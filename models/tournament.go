package models

import "time"

// TournamentStatus mirrors the ENUM in the database.
type TournamentStatus string

const (
	StatusSoon         TournamentStatus = "soon"
	StatusRegistration TournamentStatus = "registration"
	StatusActive       TournamentStatus = "active"
	StatusFinalized    TournamentStatus = "finalized"
	StatusCanceled     TournamentStatus = "canceled"
)

// MapPickingStyle is how the tournament sources its map lists.
type MapPickingStyle string

const (
	// PickingStyleAuto builds lists from team-submitted map pools.
	PickingStyleAuto MapPickingStyle = "AUTO"
	// PickingStyleTO plays organizer-prescribed lists only.
	PickingStyleTO MapPickingStyle = "TO"
)

// CastedMatch records that a match is currently on a broadcast channel.
type CastedMatch struct {
	TwitchAccount string `json:"twitch_account"`
	MatchID       int    `json:"match_id"`
}

// CastLockInfo is the tournament's broadcast coordination state,
// stored as a single JSON column and mutated inside the same
// transactions as score actions.
type CastLockInfo struct {
	// LockedMatches are match ids held back from score reporting
	// because a caster reserved them before opponents were known.
	LockedMatches []int `json:"locked_matches"`
	// CastedMatches maps broadcast channels to the match they show.
	CastedMatches []CastedMatch `json:"casted_matches"`
}

// IsLocked reports whether the match id is in the locked set. Note the
// lock only binds score reporting while the match is still 0-0; the
// caller checks the scores (see services.matchIsLocked).
func (c *CastLockInfo) IsLocked(matchID int) bool {
	if c == nil {
		return false
	}
	for _, id := range c.LockedMatches {
		if id == matchID {
			return true
		}
	}
	return false
}

// CastOf returns the channel currently assigned to the match, or "".
func (c *CastLockInfo) CastOf(matchID int) string {
	if c == nil {
		return ""
	}
	for _, cm := range c.CastedMatches {
		if cm.MatchID == matchID {
			return cm.TwitchAccount
		}
	}
	return ""
}

type Tournament struct {
	ID                 int              `json:"id" db:"id"`
	Name               string           `json:"name" db:"name"`
	OrganizerID        int              `json:"organizer_id" db:"organizer_id"`
	Status             TournamentStatus `json:"status" db:"status"`
	MapPickingStyle    MapPickingStyle  `json:"map_picking_style" db:"map_picking_style"`
	CastTwitchAccounts []string         `json:"cast_twitch_accounts,omitempty" db:"cast_twitch_accounts"`
	CastInfo           *CastLockInfo    `json:"casted_matches_info,omitempty" db:"casted_matches_info"`
	CreatedAt          time.Time        `json:"created_at" db:"created_at"`
}

// Finalized tournaments accept no further score corrections.
func (t *Tournament) Finalized() bool {
	return t.Status == StatusFinalized
}
