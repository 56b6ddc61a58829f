// Winner progression over a materialized bracket. Brackets here are
// already generated; this file only moves winners forward and checks
// whether a correction upstream would invalidate downstream play.
package brackets

import (
	"context"
	"errors"

	"github.com/splatseries/bracket-system/models"
	"github.com/splatseries/bracket-system/repositories"
)

var ErrNoDestinationSlot = errors.New("match has a next match but no destination slot")

type Progression struct {
	matches repositories.MatchRepository
	results repositories.GameResultRepository
}

func NewProgression(matches repositories.MatchRepository, results repositories.GameResultRepository) *Progression {
	return &Progression{matches: matches, results: results}
}

// AdvanceWinner places the winner into the destination slot of the
// next match. No-op for finals.
func (p *Progression) AdvanceWinner(ctx context.Context, exec repositories.SQLExecutor, match *models.Match, winnerTeamID int) error {
	if match.NextMatchID == nil {
		return nil
	}
	if match.WinnerToSlot == nil {
		return ErrNoDestinationSlot
	}
	return p.matches.SetOpponentTeam(ctx, exec, *match.NextMatchID, *match.WinnerToSlot, &winnerTeamID)
}

// RetractWinner empties the destination slot again, used when the
// source match is reopened.
func (p *Progression) RetractWinner(ctx context.Context, exec repositories.SQLExecutor, match *models.Match) error {
	if match.NextMatchID == nil {
		return nil
	}
	if match.WinnerToSlot == nil {
		return ErrNoDestinationSlot
	}
	return p.matches.SetOpponentTeam(ctx, exec, *match.NextMatchID, *match.WinnerToSlot, nil)
}

// HasProgressedPast reports whether play already continued beyond the
// match: the next match exists and has at least one recorded result.
// Reopening is refused once that happened.
func (p *Progression) HasProgressedPast(ctx context.Context, exec repositories.SQLExecutor, match *models.Match) (bool, error) {
	if match.NextMatchID == nil {
		return false, nil
	}
	count, err := p.results.CountByMatch(ctx, exec, *match.NextMatchID)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// DownstreamMatchIDs walks the next-match chain from (and excluding)
// the given match. Map selections recorded for these matches become
// meaningless once an upstream result changes.
func (p *Progression) DownstreamMatchIDs(ctx context.Context, exec repositories.SQLExecutor, match *models.Match) ([]int, error) {
	ids := make([]int, 0, 4)
	seen := map[int]bool{match.ID: true}

	current := match
	for current.NextMatchID != nil {
		nextID := *current.NextMatchID
		if seen[nextID] {
			break
		}
		seen[nextID] = true
		ids = append(ids, nextID)

		next, err := p.matches.GetByID(ctx, exec, nextID)
		if err != nil {
			return nil, err
		}
		current = next
	}
	return ids, nil
}
