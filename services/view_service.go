package services

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/splatseries/bracket-system/maplist"
	"github.com/splatseries/bracket-system/models"
	"github.com/splatseries/bracket-system/repositories"
)

// MatchDetailView is everything the match page needs in one response.
type MatchDetailView struct {
	Match      *models.Match         `json:"match"`
	Results    []models.GameResult   `json:"results"`
	MapList    []maplist.ListedMap   `json:"map_list,omitempty"`
	CurrentMap *maplist.ListedMap    `json:"current_map,omitempty"`
	TurnOf     *int                  `json:"turn_of,omitempty"`
	Seeds      [2]*int               `json:"seeds"`
	CastedBy   string                `json:"casted_by,omitempty"`
	Config     *models.RoundMapConfig `json:"round_config,omitempty"`
}

type MatchViewService interface {
	GetMatchDetail(ctx context.Context, tournamentID, matchID int) (*MatchDetailView, error)
}

type matchViewService struct {
	tournaments repositories.TournamentRepository
	matches     repositories.MatchRepository
	results     repositories.GameResultRepository
	pickBans    repositories.PickBanRepository
	rounds      repositories.RoundRepository
	pools       repositories.MapPoolRepository
	teams       repositories.TeamRepository
}

func NewMatchViewService(
	tournamentRepo repositories.TournamentRepository,
	matchRepo repositories.MatchRepository,
	resultRepo repositories.GameResultRepository,
	pickBanRepo repositories.PickBanRepository,
	roundRepo repositories.RoundRepository,
	mapPoolRepo repositories.MapPoolRepository,
	teamRepo repositories.TeamRepository,
) MatchViewService {
	return &matchViewService{
		tournaments: tournamentRepo,
		matches:     matchRepo,
		results:     resultRepo,
		pickBans:    pickBanRepo,
		rounds:      roundRepo,
		pools:       mapPoolRepo,
		teams:       teamRepo,
	}
}

func (s *matchViewService) GetMatchDetail(ctx context.Context, tournamentID, matchID int) (*MatchDetailView, error) {
	tournament, err := s.tournaments.GetByID(ctx, nil, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}

	match, err := s.matches.GetByID(ctx, nil, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	if match.TournamentID != tournament.ID {
		return nil, ErrMatchNotFound
	}

	view := &MatchDetailView{Match: match}
	view.CastedBy = tournament.CastInfo.CastOf(matchID)

	var (
		cfg        *models.RoundMapConfig
		events     []models.PickBanEvent
		teamPools  [2][]models.ModeStage
		tiebreaker []models.ModeStage
		allTeams   []*models.Team
	)
	teams, haveTeams := match.TeamIDs()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var gErr error
		view.Results, gErr = s.results.ListByMatch(gctx, nil, matchID)
		return gErr
	})
	g.Go(func() error {
		var gErr error
		cfg, gErr = s.rounds.GetMapConfig(gctx, nil, match.RoundID)
		if errors.Is(gErr, repositories.ErrRoundNotFound) {
			return nil
		}
		return gErr
	})
	g.Go(func() error {
		var gErr error
		events, gErr = s.pickBans.ListByMatch(gctx, nil, matchID)
		return gErr
	})
	g.Go(func() error {
		var gErr error
		allTeams, gErr = s.teams.ListByTournament(gctx, tournamentID)
		return gErr
	})
	if haveTeams && tournament.MapPickingStyle != models.PickingStyleTO {
		for side := range teams {
			side := side
			g.Go(func() error {
				var gErr error
				teamPools[side], gErr = s.pools.GetTeamPool(gctx, nil, teams[side])
				return gErr
			})
		}
		g.Go(func() error {
			var gErr error
			tiebreaker, gErr = s.pools.GetTiebreaker(gctx, nil, tournamentID)
			return gErr
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	view.Config = cfg
	view.Seeds = resolveSeeds(match, allTeams)

	if !haveTeams || cfg == nil {
		return view, nil
	}

	list, err := maplist.Resolve(maplist.ResolveInput{
		Config:       cfg,
		PickingStyle: tournament.MapPickingStyle,
		MatchID:      matchID,
		Teams:        teams,
		TeamPools:    teamPools,
		Tiebreaker:   tiebreaker,
		PickBans:     events,
	})
	if err != nil {
		return nil, err
	}
	view.MapList = list

	if current, ok := currentMap(cfg, list, len(view.Results)); ok {
		view.CurrentMap = &current
	}
	if turn, turnErr := maplist.TurnOf(view.Results, cfg, teams, list); turnErr == nil {
		view.TurnOf = turn
	}
	return view, nil
}

// resolveSeeds maps each opponent to its 1-based position in the
// tournament's seeded team order.
func resolveSeeds(match *models.Match, teams []*models.Team) [2]*int {
	var seeds [2]*int
	find := func(teamID *int) *int {
		if teamID == nil {
			return nil
		}
		for i, team := range teams {
			if team.ID == *teamID {
				seed := i + 1
				return &seed
			}
		}
		return nil
	}
	seeds[0] = find(match.Opponent1.TeamID)
	seeds[1] = find(match.Opponent2.TeamID)
	return seeds
}
