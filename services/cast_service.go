package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/splatseries/bracket-system/brackets"
	"github.com/splatseries/bracket-system/models"
	"github.com/splatseries/bracket-system/repositories"
)

// CastService coordinates broadcast scheduling: holding matches back
// before their opponents are known and assigning them to cast
// channels. State lives in the tournament's cast info column and is
// mutated under the same transactional discipline as score actions.
type CastService interface {
	HandleAction(ctx context.Context, user *models.User, tournamentID, matchID int, action MatchAction) (*ActionResult, error)
}

type castService struct {
	tx          Transactor
	tournaments repositories.TournamentRepository
	matches     repositories.MatchRepository
	publisher   EventPublisher
	logger      *slog.Logger
}

func NewCastService(
	tx Transactor,
	tournamentRepo repositories.TournamentRepository,
	matchRepo repositories.MatchRepository,
	publisher EventPublisher,
	logger *slog.Logger,
) CastService {
	return &castService{
		tx:          tx,
		tournaments: tournamentRepo,
		matches:     matchRepo,
		publisher:   publisher,
		logger:      logger,
	}
}

func (s *castService) HandleAction(ctx context.Context, user *models.User, tournamentID, matchID int, action MatchAction) (*ActionResult, error) {
	res := &ActionResult{}

	err := s.tx.InTx(ctx, func(exec repositories.SQLExecutor) error {
		tournament, err := s.tournaments.GetByID(ctx, exec, tournamentID)
		if err != nil {
			if errors.Is(err, repositories.ErrTournamentNotFound) {
				return ErrTournamentNotFound
			}
			return err
		}
		if !isOrganizer(user, tournament) {
			return ErrUnauthorized
		}

		match, err := s.matches.GetByID(ctx, exec, matchID)
		if err != nil {
			if errors.Is(err, repositories.ErrMatchNotFound) {
				return ErrMatchNotFound
			}
			return err
		}
		if match.TournamentID != tournament.ID {
			return ErrMatchNotFound
		}

		// Row lock on the tournament serializes cast mutations.
		info, err := s.tournaments.GetCastInfoForUpdate(ctx, exec, tournamentID)
		if err != nil {
			return err
		}

		switch action.Type {
		case ActionLock:
			if match.Opponent1.TeamID != nil || match.Opponent2.TeamID != nil {
				return ErrMatchNotLockable
			}
			if !info.IsLocked(matchID) {
				info.LockedMatches = append(info.LockedMatches, matchID)
			}
		case ActionUnlock:
			kept := info.LockedMatches[:0]
			for _, id := range info.LockedMatches {
				if id != matchID {
					kept = append(kept, id)
				}
			}
			info.LockedMatches = kept
		case ActionSetAsCasted:
			if err := s.setAsCasted(tournament, info, matchID, action.TwitchAccount); err != nil {
				return err
			}
		default:
			return ErrUnknownAction
		}

		if err := s.tournaments.UpdateCastInfo(ctx, exec, tournamentID, info); err != nil {
			return err
		}

		res.Match = match
		res.IsOver = match.IsOver()
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.publisher != nil {
		s.publisher.Publish(brackets.MatchTopic(matchID), messageMatchUpdated, matchEventPayload{
			EventID: newEventID(),
			UserID:  user.ID,
		})
	}
	return res, nil
}

// setAsCasted assigns the match to a broadcast channel, replacing any
// previous assignment of the channel and any previous channel of the
// match. A nil account clears the assignment.
func (s *castService) setAsCasted(tournament *models.Tournament, info *models.CastLockInfo, matchID int, account *string) error {
	kept := info.CastedMatches[:0]
	for _, cm := range info.CastedMatches {
		if cm.MatchID == matchID {
			continue
		}
		if account != nil && cm.TwitchAccount == *account {
			continue
		}
		kept = append(kept, cm)
	}
	info.CastedMatches = kept

	if account == nil {
		return nil
	}

	known := false
	for _, acc := range tournament.CastTwitchAccounts {
		if acc == *account {
			known = true
			break
		}
	}
	if !known {
		return ErrUnknownCastAccount
	}

	info.CastedMatches = append(info.CastedMatches, models.CastedMatch{
		TwitchAccount: *account,
		MatchID:       matchID,
	})
	return nil
}
