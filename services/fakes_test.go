package services

import (
	"context"
	"time"

	"github.com/splatseries/bracket-system/models"
	"github.com/splatseries/bracket-system/repositories"
)

// In-memory store backing the repository fakes. Tests exercise the
// engine against it without a database; the Transactor fake runs the
// action function directly.

type fakeStore struct {
	tournaments map[int]*models.Tournament
	matches     map[int]*models.Match
	results     map[int][]models.GameResult
	events      map[int][]models.PickBanEvent
	configs     map[int]*models.RoundMapConfig
	teamPools   map[int][]models.ModeStage
	tiebreakers map[int][]models.ModeStage
	rosters     map[int][]int
	teams       map[int]*models.Team
	nextID      int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		tournaments: make(map[int]*models.Tournament),
		matches:     make(map[int]*models.Match),
		results:     make(map[int][]models.GameResult),
		events:      make(map[int][]models.PickBanEvent),
		configs:     make(map[int]*models.RoundMapConfig),
		teamPools:   make(map[int][]models.ModeStage),
		tiebreakers: make(map[int][]models.ModeStage),
		rosters:     make(map[int][]int),
		teams:       make(map[int]*models.Team),
		nextID:      1000,
	}
}

func (s *fakeStore) id() int {
	s.nextID++
	return s.nextID
}

type fakeTx struct{}

func (fakeTx) InTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	return fn(nil)
}

type fakeTournamentRepo struct{ s *fakeStore }

func (r fakeTournamentRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Tournament, error) {
	t, ok := r.s.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	copied := *t
	return &copied, nil
}

func (r fakeTournamentRepo) GetCastInfoForUpdate(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.CastLockInfo, error) {
	t, ok := r.s.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	info := &models.CastLockInfo{}
	if t.CastInfo != nil {
		info.LockedMatches = append(info.LockedMatches, t.CastInfo.LockedMatches...)
		info.CastedMatches = append(info.CastedMatches, t.CastInfo.CastedMatches...)
	}
	return info, nil
}

func (r fakeTournamentRepo) UpdateCastInfo(ctx context.Context, exec repositories.SQLExecutor, id int, info *models.CastLockInfo) error {
	t, ok := r.s.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.CastInfo = info
	return nil
}


type fakeMatchRepo struct{ s *fakeStore }

func (r fakeMatchRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Match, error) {
	m, ok := r.s.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	copied := *m
	return &copied, nil
}

func (r fakeMatchRepo) GetByIDForUpdate(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Match, error) {
	return r.GetByID(ctx, exec, id)
}

func (r fakeMatchRepo) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Match, error) {
	out := make([]*models.Match, 0)
	for _, m := range r.s.matches {
		if m.TournamentID == tournamentID {
			copied := *m
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r fakeMatchRepo) UpdateScores(ctx context.Context, exec repositories.SQLExecutor, id int, opponent1, opponent2 models.Opponent) error {
	m, ok := r.s.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	m.Opponent1.Score = opponent1.Score
	m.Opponent1.Result = opponent1.Result
	m.Opponent2.Score = opponent2.Score
	m.Opponent2.Result = opponent2.Result
	return nil
}

func (r fakeMatchRepo) SetOpponentTeam(ctx context.Context, exec repositories.SQLExecutor, id int, slot int, teamID *int) error {
	m, ok := r.s.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	if slot == 1 {
		m.Opponent1.TeamID = teamID
	} else {
		m.Opponent2.TeamID = teamID
	}
	return nil
}

type fakeResultRepo struct{ s *fakeStore }

func (r fakeResultRepo) Create(ctx context.Context, exec repositories.SQLExecutor, result *models.GameResult) error {
	result.ID = r.s.id()
	result.CreatedAt = time.Now()
	r.s.results[result.MatchID] = append(r.s.results[result.MatchID], *result)
	return nil
}

func (r fakeResultRepo) ListByMatch(ctx context.Context, exec repositories.SQLExecutor, matchID int) ([]models.GameResult, error) {
	return append([]models.GameResult{}, r.s.results[matchID]...), nil
}

func (r fakeResultRepo) DeleteByID(ctx context.Context, exec repositories.SQLExecutor, id int) error {
	for matchID, results := range r.s.results {
		for i, res := range results {
			if res.ID == id {
				r.s.results[matchID] = append(results[:i], results[i+1:]...)
				return nil
			}
		}
	}
	return repositories.ErrGameResultNotFound
}

func (r fakeResultRepo) UpdatePoints(ctx context.Context, exec repositories.SQLExecutor, id int, p1, p2 *int) error {
	for matchID, results := range r.s.results {
		for i, res := range results {
			if res.ID == id {
				r.s.results[matchID][i].Opponent1Points = p1
				r.s.results[matchID][i].Opponent2Points = p2
				return nil
			}
		}
	}
	return repositories.ErrGameResultNotFound
}

func (r fakeResultRepo) ReplaceParticipants(ctx context.Context, exec repositories.SQLExecutor, resultID int, userIDs []int) error {
	for matchID, results := range r.s.results {
		for i, res := range results {
			if res.ID == resultID {
				r.s.results[matchID][i].ParticipantIDs = append([]int{}, userIDs...)
				return nil
			}
		}
	}
	return repositories.ErrGameResultNotFound
}

func (r fakeResultRepo) CountByMatch(ctx context.Context, exec repositories.SQLExecutor, matchID int) (int, error) {
	return len(r.s.results[matchID]), nil
}

type fakePickBanRepo struct{ s *fakeStore }

func (r fakePickBanRepo) Create(ctx context.Context, exec repositories.SQLExecutor, event *models.PickBanEvent) error {
	event.ID = r.s.id()
	event.CreatedAt = time.Now()
	r.s.events[event.MatchID] = append(r.s.events[event.MatchID], *event)
	return nil
}

func (r fakePickBanRepo) ListByMatch(ctx context.Context, exec repositories.SQLExecutor, matchID int) ([]models.PickBanEvent, error) {
	return append([]models.PickBanEvent{}, r.s.events[matchID]...), nil
}

func (r fakePickBanRepo) DeleteByID(ctx context.Context, exec repositories.SQLExecutor, id int) error {
	for matchID, events := range r.s.events {
		for i, ev := range events {
			if ev.ID == id {
				r.s.events[matchID] = append(events[:i], events[i+1:]...)
				return nil
			}
		}
	}
	return repositories.ErrPickBanEventNotFound
}

func (r fakePickBanRepo) DeleteByMatchIDs(ctx context.Context, exec repositories.SQLExecutor, matchIDs []int) error {
	for _, id := range matchIDs {
		delete(r.s.events, id)
	}
	return nil
}

type fakeRoundRepo struct{ s *fakeStore }

func (r fakeRoundRepo) GetMapConfig(ctx context.Context, exec repositories.SQLExecutor, roundID int) (*models.RoundMapConfig, error) {
	cfg, ok := r.s.configs[roundID]
	if !ok {
		return nil, repositories.ErrRoundNotFound
	}
	copied := *cfg
	return &copied, nil
}

type fakeMapPoolRepo struct{ s *fakeStore }

func (r fakeMapPoolRepo) GetTeamPool(ctx context.Context, exec repositories.SQLExecutor, teamID int) ([]models.ModeStage, error) {
	return append([]models.ModeStage{}, r.s.teamPools[teamID]...), nil
}

func (r fakeMapPoolRepo) GetTiebreaker(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) ([]models.ModeStage, error) {
	return append([]models.ModeStage{}, r.s.tiebreakers[tournamentID]...), nil
}

type fakeRosterRepo struct{ s *fakeStore }

func (r fakeRosterRepo) GetActiveRoster(ctx context.Context, exec repositories.SQLExecutor, teamID int) ([]int, error) {
	return append([]int{}, r.s.rosters[teamID]...), nil
}

func (r fakeRosterRepo) SetActiveRoster(ctx context.Context, exec repositories.SQLExecutor, teamID int, userIDs []int) error {
	r.s.rosters[teamID] = append([]int{}, userIDs...)
	return nil
}

type fakeTeamRepo struct{ s *fakeStore }

func (r fakeTeamRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Team, error) {
	t, ok := r.s.teams[id]
	if !ok {
		return nil, repositories.ErrTeamNotFound
	}
	copied := *t
	copied.MapPool = append([]models.ModeStage{}, r.s.teamPools[id]...)
	copied.ActiveRosterUserIDs = append([]int{}, r.s.rosters[id]...)
	return &copied, nil
}

func (r fakeTeamRepo) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Team, error) {
	out := make([]*models.Team, 0)
	for _, t := range r.s.teams {
		if t.TournamentID == tournamentID {
			copied := *t
			out = append(out, &copied)
		}
	}
	return out, nil
}

type fakeProgression struct {
	advancedWinners []int
	retracted       int
	progressed      bool
	downstream      []int
}

func (p *fakeProgression) AdvanceWinner(ctx context.Context, exec repositories.SQLExecutor, match *models.Match, winnerTeamID int) error {
	p.advancedWinners = append(p.advancedWinners, winnerTeamID)
	return nil
}

func (p *fakeProgression) RetractWinner(ctx context.Context, exec repositories.SQLExecutor, match *models.Match) error {
	p.retracted++
	return nil
}

func (p *fakeProgression) HasProgressedPast(ctx context.Context, exec repositories.SQLExecutor, match *models.Match) (bool, error) {
	return p.progressed, nil
}

func (p *fakeProgression) DownstreamMatchIDs(ctx context.Context, exec repositories.SQLExecutor, match *models.Match) ([]int, error) {
	return p.downstream, nil
}

type publishedEvent struct {
	Topic   string
	Type    string
	Payload interface{}
}

type fakePublisher struct {
	published []publishedEvent
}

func (p *fakePublisher) Publish(topic string, messageType string, payload interface{}) {
	p.published = append(p.published, publishedEvent{Topic: topic, Type: messageType, Payload: payload})
}
