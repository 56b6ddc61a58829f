package models

import "time"

// ActiveRosterSize is the roster size required before a team may have
// scores reported for it.
const ActiveRosterSize = 4

type Team struct {
	ID           int       `json:"id" db:"id"`
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	Name         string    `json:"name" db:"name"`
	Seed         *int      `json:"seed,omitempty" db:"seed"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`

	Members             []TeamMember `json:"members,omitempty" db:"-"`
	MapPool             []ModeStage  `json:"map_pool,omitempty" db:"-"`
	ActiveRosterUserIDs []int        `json:"active_roster_user_ids,omitempty" db:"-"`
}

type TeamMember struct {
	TeamID    int       `json:"team_id" db:"team_id"`
	UserID    int       `json:"user_id" db:"user_id"`
	IsOwner   bool      `json:"is_owner" db:"is_owner"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// ActiveRoster resolves the user ids eligible to play right now.
// A team with no subs never selects a roster explicitly, its full
// member list is the roster. Returns nil when the team still has to
// pick one.
func (t *Team) ActiveRoster() []int {
	if len(t.ActiveRosterUserIDs) == ActiveRosterSize {
		return t.ActiveRosterUserIDs
	}
	if len(t.Members) == ActiveRosterSize {
		ids := make([]int, 0, len(t.Members))
		for _, m := range t.Members {
			ids = append(ids, m.UserID)
		}
		return ids
	}
	return nil
}

// HasMember reports whether the user belongs to the team.
func (t *Team) HasMember(userID int) bool {
	for _, m := range t.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

// OwnerID returns the owning member's user id, or 0.
func (t *Team) OwnerID() int {
	for _, m := range t.Members {
		if m.IsOwner {
			return m.UserID
		}
	}
	return 0
}
