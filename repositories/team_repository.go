package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/splatseries/bracket-system/models"
)

var ErrTeamNotFound = errors.New("team not found")

type TeamRepository interface {
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Team, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Team, error)
}

type postgresTeamRepository struct {
	db      *sql.DB
	pools   MapPoolRepository
	rosters RosterRepository
}

func NewPostgresTeamRepository(db *sql.DB, pools MapPoolRepository, rosters RosterRepository) TeamRepository {
	return &postgresTeamRepository{db: db, pools: pools, rosters: rosters}
}

func (r *postgresTeamRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

// GetByID loads the team with members, map pool and active roster
// attached.
func (r *postgresTeamRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Team, error) {
	executor := r.getExecutor(exec)

	team := &models.Team{}
	err := executor.QueryRowContext(ctx,
		`SELECT id, tournament_id, name, seed, created_at FROM teams WHERE id = $1`,
		id,
	).Scan(&team.ID, &team.TournamentID, &team.Name, &team.Seed, &team.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}

	if team.Members, err = r.listMembers(ctx, executor, id); err != nil {
		return nil, err
	}
	if team.MapPool, err = r.pools.GetTeamPool(ctx, exec, id); err != nil {
		return nil, err
	}
	if team.ActiveRosterUserIDs, err = r.rosters.GetActiveRoster(ctx, exec, id); err != nil {
		return nil, err
	}
	return team, nil
}

func (r *postgresTeamRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Team, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, tournament_id, name, seed, created_at FROM teams WHERE tournament_id = $1 ORDER BY seed ASC NULLS LAST, id ASC`,
		tournamentID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teams := make([]*models.Team, 0)
	for rows.Next() {
		team := &models.Team{}
		if scanErr := rows.Scan(&team.ID, &team.TournamentID, &team.Name, &team.Seed, &team.CreatedAt); scanErr != nil {
			return nil, scanErr
		}
		teams = append(teams, team)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	for _, team := range teams {
		if team.Members, err = r.listMembers(ctx, r.db, team.ID); err != nil {
			return nil, err
		}
	}
	return teams, nil
}

func (r *postgresTeamRepository) listMembers(ctx context.Context, executor SQLExecutor, teamID int) ([]models.TeamMember, error) {
	rows, err := executor.QueryContext(ctx,
		`SELECT team_id, user_id, is_owner, created_at FROM team_members WHERE team_id = $1 ORDER BY created_at ASC`,
		teamID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := make([]models.TeamMember, 0)
	for rows.Next() {
		var m models.TeamMember
		if scanErr := rows.Scan(&m.TeamID, &m.UserID, &m.IsOwner, &m.CreatedAt); scanErr != nil {
			return nil, scanErr
		}
		members = append(members, m)
	}
	return members, rows.Err()
}
