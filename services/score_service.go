package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/splatseries/bracket-system/brackets"
	"github.com/splatseries/bracket-system/maplist"
	"github.com/splatseries/bracket-system/models"
	"github.com/splatseries/bracket-system/repositories"
)

// ScoreService is the per-match state machine: reporting, undoing,
// correcting and reopening game results, plus the map selection
// actions that feed it. Every action runs inside one transaction and
// broadcasts after commit.
type ScoreService interface {
	HandleAction(ctx context.Context, user *models.User, tournamentID, matchID int, action MatchAction) (*ActionResult, error)
}

type scoreService struct {
	tx          Transactor
	tournaments repositories.TournamentRepository
	matches     repositories.MatchRepository
	results     repositories.GameResultRepository
	pickBans    repositories.PickBanRepository
	rounds      repositories.RoundRepository
	pools       repositories.MapPoolRepository
	rosters     repositories.RosterRepository
	teams       repositories.TeamRepository
	progression ProgressionGate
	publisher   EventPublisher
	logger      *slog.Logger
}

func NewScoreService(
	tx Transactor,
	tournamentRepo repositories.TournamentRepository,
	matchRepo repositories.MatchRepository,
	resultRepo repositories.GameResultRepository,
	pickBanRepo repositories.PickBanRepository,
	roundRepo repositories.RoundRepository,
	mapPoolRepo repositories.MapPoolRepository,
	rosterRepo repositories.RosterRepository,
	teamRepo repositories.TeamRepository,
	progression ProgressionGate,
	publisher EventPublisher,
	logger *slog.Logger,
) ScoreService {
	return &scoreService{
		tx:          tx,
		tournaments: tournamentRepo,
		matches:     matchRepo,
		results:     resultRepo,
		pickBans:    pickBanRepo,
		rounds:      roundRepo,
		pools:       mapPoolRepo,
		rosters:     rosterRepo,
		teams:       teamRepo,
		progression: progression,
		publisher:   publisher,
		logger:      logger,
	}
}

// actionContext is the state every handler starts from, loaded under
// the match row lock.
type actionContext struct {
	user       *models.User
	tournament *models.Tournament
	match      *models.Match
	cfg        *models.RoundMapConfig
	results    []models.GameResult
}

func (s *scoreService) HandleAction(ctx context.Context, user *models.User, tournamentID, matchID int, action MatchAction) (*ActionResult, error) {
	res := &ActionResult{}

	err := s.tx.InTx(ctx, func(exec repositories.SQLExecutor) error {
		tournament, err := s.tournaments.GetByID(ctx, exec, tournamentID)
		if err != nil {
			if errors.Is(err, repositories.ErrTournamentNotFound) {
				return ErrTournamentNotFound
			}
			return err
		}

		match, err := s.matches.GetByIDForUpdate(ctx, exec, matchID)
		if err != nil {
			if errors.Is(err, repositories.ErrMatchNotFound) {
				return ErrMatchNotFound
			}
			return err
		}
		if match.TournamentID != tournament.ID {
			return ErrMatchNotFound
		}

		cfg, err := s.rounds.GetMapConfig(ctx, exec, match.RoundID)
		if err != nil && !errors.Is(err, repositories.ErrRoundNotFound) {
			return err
		}

		results, err := s.results.ListByMatch(ctx, exec, matchID)
		if err != nil {
			return err
		}

		a := &actionContext{
			user:       user,
			tournament: tournament,
			match:      match,
			cfg:        cfg,
			results:    results,
		}

		switch action.Type {
		case ActionReportScore:
			return s.reportScore(ctx, exec, a, action, res)
		case ActionUndoReport:
			return s.undoReport(ctx, exec, a, action, res)
		case ActionUpdateReported:
			return s.updateReported(ctx, exec, a, action, res)
		case ActionReopenMatch:
			return s.reopenMatch(ctx, exec, a, res)
		case ActionBanPick:
			return s.banPick(ctx, exec, a, action, res)
		case ActionSetActiveRoster:
			return s.setActiveRoster(ctx, exec, a, action, res)
		default:
			return ErrUnknownAction
		}
	})
	if err != nil {
		return nil, err
	}

	if !res.NoOp {
		s.publishAfterCommit(user, tournamentID, matchID, res)
	}
	return res, nil
}

func (s *scoreService) publishAfterCommit(user *models.User, tournamentID, matchID int, res *ActionResult) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(brackets.MatchTopic(matchID), messageMatchUpdated, matchEventPayload{
		EventID: newEventID(),
		UserID:  user.ID,
	})
	if res.Match != nil {
		s.publisher.Publish(brackets.BracketTopic(tournamentID), messageBracketUpdated, bracketEventPayload{
			MatchID: matchID,
			Scores:  res.Match.Scores(),
			IsOver:  res.IsOver,
		})
	}
}

func (s *scoreService) reportScore(ctx context.Context, exec repositories.SQLExecutor, a *actionContext, action MatchAction, res *ActionResult) error {
	// Stale or duplicate submission: the client refetches and retries.
	if action.Position == nil || *action.Position != len(a.results) {
		res.NoOp = true
		return nil
	}
	if a.tournament.Finalized() {
		return ErrTournamentFinalized
	}

	teams, ok := a.match.TeamIDs()
	if !ok {
		return ErrOpponentsMissing
	}

	scores := a.match.Scores()
	if a.cfg == nil {
		return fmt.Errorf("%w: match %d has no round map config", ErrInvariant, a.match.ID)
	}
	if a.match.IsOver() || a.cfg.SetOverByScore(scores) {
		return ErrMatchOver
	}
	if matchIsLocked(a.match, a.tournament.CastInfo) {
		return ErrMatchLocked
	}

	team1, team2, err := s.loadTeams(ctx, exec, teams)
	if err != nil {
		return err
	}
	if !canActFor(a.user, a.tournament, []*models.Team{team1, team2}) {
		return ErrUnauthorized
	}

	if action.WinnerTeamID == nil {
		return ErrInvalidWinner
	}
	winnerSide := a.match.SideOf(*action.WinnerTeamID)
	if winnerSide == -1 {
		return ErrInvalidWinner
	}

	roster1 := team1.ActiveRoster()
	roster2 := team2.ActiveRoster()
	if roster1 == nil || roster2 == nil {
		return ErrInvalidRoster
	}

	if err := validatePoints(action.Opponent1Points, action.Opponent2Points, winnerSide); err != nil {
		return err
	}

	list, _, err := s.resolveList(ctx, exec, a.tournament, a.cfg, a.match.ID, teams)
	if err != nil {
		return err
	}
	current, ok := currentMap(a.cfg, list, len(a.results))
	if !ok {
		return ErrIllegalMap
	}

	scores[winnerSide]++
	over := a.cfg.SetOverByScore(scores)
	opp1, opp2 := opponentsForScores(a.match, scores, over, a.cfg)

	if err := s.matches.UpdateScores(ctx, exec, a.match.ID, opp1, opp2); err != nil {
		return err
	}

	result := &models.GameResult{
		MatchID:         a.match.ID,
		Number:          len(a.results) + 1,
		WinnerTeamID:    *action.WinnerTeamID,
		Mode:            current.Mode,
		StageID:         current.StageID,
		Source:          current.Source,
		Opponent1Points: action.Opponent1Points,
		Opponent2Points: action.Opponent2Points,
		ReporterID:      a.user.ID,
		ParticipantIDs:  append(append([]int{}, roster1...), roster2...),
	}
	if err := s.results.Create(ctx, exec, result); err != nil {
		return err
	}

	if over {
		if side, decided := winnerSideForScores(scores, a.cfg); decided {
			if err := s.progression.AdvanceWinner(ctx, exec, a.match, teams[side]); err != nil {
				return err
			}
		}
	}

	a.match.Opponent1 = opp1
	a.match.Opponent2 = opp2
	res.Match = a.match
	res.IsOver = over
	return nil
}

func (s *scoreService) undoReport(ctx context.Context, exec repositories.SQLExecutor, a *actionContext, action MatchAction, res *ActionResult) error {
	if action.Position == nil || len(a.results) == 0 || *action.Position != len(a.results)-1 {
		res.NoOp = true
		return nil
	}
	if a.tournament.Finalized() {
		return ErrTournamentFinalized
	}

	teams, ok := a.match.TeamIDs()
	if !ok {
		return ErrOpponentsMissing
	}
	team1, team2, err := s.loadTeams(ctx, exec, teams)
	if err != nil {
		return err
	}
	if !canActFor(a.user, a.tournament, []*models.Team{team1, team2}) {
		return ErrUnauthorized
	}

	last := a.results[len(a.results)-1]
	side := a.match.SideOf(last.WinnerTeamID)
	if side == -1 {
		return fmt.Errorf("%w: undo cannot attribute result %d to an opponent", ErrInvariant, last.ID)
	}

	wasOver := a.match.IsOver()

	scores := a.match.Scores()
	scores[side]--
	shouldReset := len(a.results) == 1

	if err := s.results.DeleteByID(ctx, exec, last.ID); err != nil {
		return err
	}

	if a.cfg != nil && a.cfg.PickBan != models.PickBanNone {
		if err := s.removeDanglingPick(ctx, exec, a.match.ID, a.results); err != nil {
			return err
		}
	}

	var opp1, opp2 models.Opponent
	opp1.TeamID = a.match.Opponent1.TeamID
	opp2.TeamID = a.match.Opponent2.TeamID
	if !shouldReset {
		s1, s2 := scores[0], scores[1]
		opp1.Score = &s1
		opp2.Score = &s2
	}
	if err := s.matches.UpdateScores(ctx, exec, a.match.ID, opp1, opp2); err != nil {
		return err
	}

	if wasOver {
		if err := s.progression.RetractWinner(ctx, exec, a.match); err != nil {
			return err
		}
	}

	a.match.Opponent1 = opp1
	a.match.Opponent2 = opp2
	res.Match = a.match
	res.IsOver = false
	return nil
}

// removeDanglingPick deletes the one pick event left without a played
// game after the latest result is removed. results are the list as it
// stood before the deletion; a played pick always has a matching
// result in it.
func (s *scoreService) removeDanglingPick(ctx context.Context, exec repositories.SQLExecutor, matchID int, results []models.GameResult) error {
	events, err := s.pickBans.ListByMatch(ctx, exec, matchID)
	if err != nil {
		return err
	}

	dangling := make([]models.PickBanEvent, 0, 1)
	for _, ev := range events {
		if ev.Type != models.PickBanEventPick {
			continue
		}
		played := false
		for _, r := range results {
			if r.Mode == ev.Mode && r.StageID == ev.StageID {
				played = true
				break
			}
		}
		if !played {
			dangling = append(dangling, ev)
		}
	}

	if len(dangling) > 1 {
		return fmt.Errorf("%w: match %d has %d unplayed pick events", ErrInvariant, matchID, len(dangling))
	}
	if len(dangling) == 1 {
		return s.pickBans.DeleteByID(ctx, exec, dangling[0].ID)
	}
	return nil
}

func (s *scoreService) updateReported(ctx context.Context, exec repositories.SQLExecutor, a *actionContext, action MatchAction, res *ActionResult) error {
	if !isOrganizer(a.user, a.tournament) {
		return ErrUnauthorized
	}
	if a.tournament.Finalized() {
		return ErrTournamentFinalized
	}
	if action.ResultID == nil {
		return ErrResultNotFound
	}

	var target *models.GameResult
	for i := range a.results {
		if a.results[i].ID == *action.ResultID {
			target = &a.results[i]
			break
		}
	}
	if target == nil {
		return ErrResultNotFound
	}

	hadPoints := target.Opponent1Points != nil && target.Opponent2Points != nil
	hasPoints := action.Opponent1Points != nil && action.Opponent2Points != nil
	halfSet := (action.Opponent1Points != nil) != (action.Opponent2Points != nil)
	if halfSet || hadPoints != hasPoints {
		return ErrPointsRule
	}

	if hasPoints {
		winnerSide := a.match.SideOf(target.WinnerTeamID)
		if winnerSide == -1 {
			return fmt.Errorf("%w: result %d winner is not an opponent of match %d", ErrInvariant, target.ID, a.match.ID)
		}
		if err := validatePoints(action.Opponent1Points, action.Opponent2Points, winnerSide); err != nil {
			return err
		}

		changed := *action.Opponent1Points != *target.Opponent1Points ||
			*action.Opponent2Points != *target.Opponent2Points
		if changed {
			progressed, err := s.progression.HasProgressedPast(ctx, exec, a.match)
			if err != nil {
				return err
			}
			if progressed {
				return ErrBracketProgressed
			}
		}

		if err := s.results.UpdatePoints(ctx, exec, target.ID, action.Opponent1Points, action.Opponent2Points); err != nil {
			return err
		}
	}

	if len(action.RosterUserIDs) != 2*models.ActiveRosterSize {
		return ErrInvalidRoster
	}
	if err := s.results.ReplaceParticipants(ctx, exec, target.ID, action.RosterUserIDs); err != nil {
		return err
	}

	res.Match = a.match
	res.IsOver = a.match.IsOver()
	return nil
}

func (s *scoreService) reopenMatch(ctx context.Context, exec repositories.SQLExecutor, a *actionContext, res *ActionResult) error {
	if !isOrganizer(a.user, a.tournament) {
		return ErrUnauthorized
	}
	if a.tournament.Finalized() {
		return ErrTournamentFinalized
	}

	scores := a.match.Scores()
	if scores[0] == scores[1] {
		return ErrScoresTied
	}
	if len(a.results) == 0 {
		return fmt.Errorf("%w: reopen with no recorded results on match %d", ErrInvariant, a.match.ID)
	}

	progressed, err := s.progression.HasProgressedPast(ctx, exec, a.match)
	if err != nil {
		return err
	}
	if progressed {
		return ErrBracketProgressed
	}

	last := a.results[len(a.results)-1]
	if scores[0] > scores[1] {
		scores[0]--
	} else {
		scores[1]--
	}

	if err := s.results.DeleteByID(ctx, exec, last.ID); err != nil {
		return err
	}

	s1, s2 := scores[0], scores[1]
	opp1 := models.Opponent{TeamID: a.match.Opponent1.TeamID, Score: &s1}
	opp2 := models.Opponent{TeamID: a.match.Opponent2.TeamID, Score: &s2}
	if err := s.matches.UpdateScores(ctx, exec, a.match.ID, opp1, opp2); err != nil {
		return err
	}

	if err := s.progression.RetractWinner(ctx, exec, a.match); err != nil {
		return err
	}

	// Downstream map selections may have depended on this outcome.
	downstream, err := s.progression.DownstreamMatchIDs(ctx, exec, a.match)
	if err != nil {
		return err
	}
	if err := s.pickBans.DeleteByMatchIDs(ctx, exec, downstream); err != nil {
		return err
	}

	a.match.Opponent1 = opp1
	a.match.Opponent2 = opp2
	res.Match = a.match
	res.IsOver = false
	return nil
}

func (s *scoreService) banPick(ctx context.Context, exec repositories.SQLExecutor, a *actionContext, action MatchAction, res *ActionResult) error {
	if a.tournament.Finalized() {
		return ErrTournamentFinalized
	}
	if a.cfg == nil || a.cfg.PickBan == models.PickBanNone {
		return ErrNotYourTurn
	}
	if action.StageID == nil || action.Mode == "" {
		return ErrIllegalMap
	}

	teams, ok := a.match.TeamIDs()
	if !ok {
		return ErrOpponentsMissing
	}

	list, events, err := s.resolveList(ctx, exec, a.tournament, a.cfg, a.match.ID, teams)
	if err != nil {
		return err
	}

	turn, err := maplist.TurnOf(a.results, a.cfg, teams, list)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvariant, err)
	}
	if turn == nil {
		return ErrNotYourTurn
	}

	pickingTeam, err := s.teams.GetByID(ctx, exec, *turn)
	if err != nil {
		return err
	}
	if !isOrganizer(a.user, a.tournament) && !pickingTeam.HasMember(a.user.ID) {
		return ErrUnauthorized
	}

	candidate := models.ModeStage{Mode: action.Mode, StageID: *action.StageID}
	eventType := models.PickBanEventPick
	if a.cfg.PickBan == models.PickBanBan2 {
		eventType = models.PickBanEventBan
	}

	if !s.selectionIsLegal(ctx, exec, a, candidate, list, teams, *turn) {
		return ErrIllegalMap
	}

	event := &models.PickBanEvent{
		MatchID:  a.match.ID,
		Number:   len(events) + 1,
		Type:     eventType,
		AuthorID: a.user.ID,
		Mode:     action.Mode,
		StageID:  *action.StageID,
	}
	if err := s.pickBans.Create(ctx, exec, event); err != nil {
		return err
	}

	res.IsOver = a.match.IsOver()
	return nil
}

// selectionIsLegal applies the stage/mode availability rules over the
// pool the current style selects from.
func (s *scoreService) selectionIsLegal(ctx context.Context, exec repositories.SQLExecutor, a *actionContext, candidate models.ModeStage, list []maplist.ListedMap, teams [2]int, pickerTeamID int) bool {
	unavailableStages := maplist.UnavailableStages(a.cfg, a.results, list)

	var pool []models.ModeStage
	var blockedModes map[models.Mode]bool
	switch a.cfg.PickBan {
	case models.PickBanBan2:
		pool = make([]models.ModeStage, 0, len(list))
		for _, m := range list {
			pool = append(pool, m.ModeStage)
		}
	case models.PickBanCounterpick:
		pool = s.counterpickPool(ctx, exec, a, teams)
		blockedModes = maplist.UnavailableModes(a.cfg, a.results, pickerTeamID, maplist.ModesOf(pool))
	}

	return maplist.IsLegal(candidate, pool, unavailableStages, blockedModes)
}

// counterpickPool is every map a counterpick may come from: the
// organizer's fixed list when one exists, otherwise the union of both
// team pools plus the tiebreaker maps.
func (s *scoreService) counterpickPool(ctx context.Context, exec repositories.SQLExecutor, a *actionContext, teams [2]int) []models.ModeStage {
	if len(a.cfg.List) > 0 {
		return a.cfg.List
	}

	combined := make([]models.ModeStage, 0, 16)
	seen := make(map[models.ModeStage]bool)
	add := func(maps []models.ModeStage) {
		for _, m := range maps {
			if !seen[m] {
				seen[m] = true
				combined = append(combined, m)
			}
		}
	}

	for _, teamID := range teams {
		pool, err := s.pools.GetTeamPool(ctx, exec, teamID)
		if err != nil {
			s.logger.Warn("failed to load team map pool", slog.Int("team_id", teamID), slog.Any("error", err))
			continue
		}
		add(pool)
	}
	tiebreaker, err := s.pools.GetTiebreaker(ctx, exec, a.tournament.ID)
	if err != nil {
		s.logger.Warn("failed to load tiebreaker pool", slog.Int("tournament_id", a.tournament.ID), slog.Any("error", err))
	} else {
		add(tiebreaker)
	}
	return combined
}

func (s *scoreService) setActiveRoster(ctx context.Context, exec repositories.SQLExecutor, a *actionContext, action MatchAction, res *ActionResult) error {
	if a.tournament.Finalized() {
		return ErrTournamentFinalized
	}
	if action.TeamID == nil {
		return ErrTeamNotFound
	}

	team, err := s.teams.GetByID(ctx, exec, *action.TeamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return ErrTeamNotFound
		}
		return err
	}
	if team.TournamentID != a.tournament.ID {
		return ErrTeamNotFound
	}

	if !isOrganizer(a.user, a.tournament) && !team.HasMember(a.user.ID) {
		return ErrUnauthorized
	}

	if len(action.Roster) != models.ActiveRosterSize {
		return ErrInvalidRoster
	}
	for _, userID := range action.Roster {
		if !team.HasMember(userID) {
			return ErrInvalidRoster
		}
	}

	if err := s.rosters.SetActiveRoster(ctx, exec, team.ID, action.Roster); err != nil {
		return err
	}

	res.IsOver = a.match.IsOver()
	return nil
}

func (s *scoreService) loadTeams(ctx context.Context, exec repositories.SQLExecutor, teams [2]int) (*models.Team, *models.Team, error) {
	team1, err := s.teams.GetByID(ctx, exec, teams[0])
	if err != nil {
		return nil, nil, err
	}
	team2, err := s.teams.GetByID(ctx, exec, teams[1])
	if err != nil {
		return nil, nil, err
	}
	return team1, team2, nil
}

func (s *scoreService) resolveList(ctx context.Context, exec repositories.SQLExecutor, tournament *models.Tournament, cfg *models.RoundMapConfig, matchID int, teams [2]int) ([]maplist.ListedMap, []models.PickBanEvent, error) {
	events, err := s.pickBans.ListByMatch(ctx, exec, matchID)
	if err != nil {
		return nil, nil, err
	}

	in := maplist.ResolveInput{
		Config:       cfg,
		PickingStyle: tournament.MapPickingStyle,
		MatchID:      matchID,
		Teams:        teams,
		PickBans:     events,
	}
	if tournament.MapPickingStyle != models.PickingStyleTO {
		for side, teamID := range teams {
			pool, poolErr := s.pools.GetTeamPool(ctx, exec, teamID)
			if poolErr != nil {
				return nil, nil, poolErr
			}
			in.TeamPools[side] = pool
		}
		tiebreaker, tbErr := s.pools.GetTiebreaker(ctx, exec, tournament.ID)
		if tbErr != nil {
			return nil, nil, tbErr
		}
		in.Tiebreaker = tiebreaker
	}

	list, err := maplist.Resolve(in)
	if err != nil {
		return nil, nil, err
	}
	return list, events, nil
}

// currentMap resolves the map of the game at the given position.
// Under BAN_2 the playable order is the list with banned entries
// removed, available only once both bans are in.
func currentMap(cfg *models.RoundMapConfig, list []maplist.ListedMap, position int) (maplist.ListedMap, bool) {
	if cfg.PickBan == models.PickBanBan2 {
		playable := make([]maplist.ListedMap, 0, len(list))
		banned := 0
		for _, m := range list {
			if m.BannedByTeamID != nil {
				banned++
				continue
			}
			playable = append(playable, m)
		}
		if banned != 2 || position >= len(playable) {
			return maplist.ListedMap{}, false
		}
		return playable[position], true
	}

	if position >= len(list) {
		return maplist.ListedMap{}, false
	}
	return list[position], true
}

// validatePoints enforces the optional point pair rules: both sides or
// neither, the recorded winner strictly ahead, and a KO value on one
// side forcing zero on the other.
func validatePoints(p1, p2 *int, winnerSide int) error {
	if p1 == nil && p2 == nil {
		return nil
	}
	if p1 == nil || p2 == nil {
		return ErrPointsRule
	}

	points := [2]int{*p1, *p2}
	if points[winnerSide] <= points[1-winnerSide] {
		return ErrPointsRule
	}
	if (points[0] == models.KOPoints && points[1] != 0) ||
		(points[1] == models.KOPoints && points[0] != 0) {
		return ErrPointsRule
	}
	return nil
}

// winnerSideForScores names the side that holds the finished set, if
// one does. A PLAY_ALL set can end tied.
func winnerSideForScores(scores [2]int, cfg *models.RoundMapConfig) (int, bool) {
	if cfg.CountType == models.CountBestOf {
		need := cfg.WinsRequired()
		for side, score := range scores {
			if score == need {
				return side, true
			}
		}
		return 0, false
	}
	if scores[0] > scores[1] {
		return 0, true
	}
	if scores[1] > scores[0] {
		return 1, true
	}
	return 0, false
}

func opponentsForScores(match *models.Match, scores [2]int, over bool, cfg *models.RoundMapConfig) (models.Opponent, models.Opponent) {
	s1, s2 := scores[0], scores[1]
	opp1 := models.Opponent{TeamID: match.Opponent1.TeamID, Score: &s1}
	opp2 := models.Opponent{TeamID: match.Opponent2.TeamID, Score: &s2}
	if over {
		if side, decided := winnerSideForScores(scores, cfg); decided {
			win := models.ResultWin
			if side == 0 {
				opp1.Result = &win
			} else {
				opp2.Result = &win
			}
		}
	}
	return opp1, opp2
}
