package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/splatseries/bracket-system/models"
	"github.com/splatseries/bracket-system/repositories"
)

// EventPublisher is the broadcast side of the websocket hub. Publish
// is fire-and-forget and must only be called after the triggering
// transaction committed.
type EventPublisher interface {
	Publish(topic string, messageType string, payload interface{})
}

// ProgressionGate hides the bracket topology from the score engine:
// it advances winners, retracts them, and answers whether downstream
// play already depends on a match.
type ProgressionGate interface {
	AdvanceWinner(ctx context.Context, exec repositories.SQLExecutor, match *models.Match, winnerTeamID int) error
	RetractWinner(ctx context.Context, exec repositories.SQLExecutor, match *models.Match) error
	HasProgressedPast(ctx context.Context, exec repositories.SQLExecutor, match *models.Match) (bool, error)
	DownstreamMatchIDs(ctx context.Context, exec repositories.SQLExecutor, match *models.Match) ([]int, error)
}

const (
	messageMatchUpdated   = "MATCH_UPDATED"
	messageBracketUpdated = "BRACKET_UPDATED"
)

func newEventID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return hex.EncodeToString([]byte(time.Now().String()))[:16]
	}
	return hex.EncodeToString(b)
}

// matchIsLocked is the reporting-side view of a cast lock: the lock
// binds only while the match is still 0-0.
func matchIsLocked(match *models.Match, info *models.CastLockInfo) bool {
	scores := match.Scores()
	if scores[0] != 0 || scores[1] != 0 {
		return false
	}
	return info.IsLocked(match.ID)
}

// canActFor reports whether the user may submit team-scoped actions:
// tournament organizer, admin, or a member of one of the teams.
func canActFor(user *models.User, tournament *models.Tournament, matchTeams []*models.Team) bool {
	if user == nil {
		return false
	}
	if user.Role == models.RoleAdmin || tournament.OrganizerID == user.ID {
		return true
	}
	for _, team := range matchTeams {
		if team != nil && team.HasMember(user.ID) {
			return true
		}
	}
	return false
}

func isOrganizer(user *models.User, tournament *models.Tournament) bool {
	if user == nil {
		return false
	}
	return user.Role == models.RoleAdmin || tournament.OrganizerID == user.ID
}
