package repositories

import (
	"context"
	"database/sql"

	"github.com/splatseries/bracket-system/models"
)

type MapPoolRepository interface {
	GetTeamPool(ctx context.Context, exec SQLExecutor, teamID int) ([]models.ModeStage, error)
	GetTiebreaker(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.ModeStage, error)
}

type postgresMapPoolRepository struct {
	db *sql.DB
}

func NewPostgresMapPoolRepository(db *sql.DB) MapPoolRepository {
	return &postgresMapPoolRepository{db: db}
}

func (r *postgresMapPoolRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresMapPoolRepository) GetTeamPool(ctx context.Context, exec SQLExecutor, teamID int) ([]models.ModeStage, error) {
	return r.listModeStages(ctx, exec,
		`SELECT mode, stage_id FROM team_map_pools WHERE team_id = $1 ORDER BY mode ASC, stage_id ASC`,
		teamID,
	)
}

// GetTiebreaker returns the organizer's tiebreaker maps, one candidate
// set shared by every match of the tournament.
func (r *postgresMapPoolRepository) GetTiebreaker(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.ModeStage, error) {
	return r.listModeStages(ctx, exec,
		`SELECT mode, stage_id FROM tournament_tiebreakers WHERE tournament_id = $1 ORDER BY mode ASC, stage_id ASC`,
		tournamentID,
	)
}

func (r *postgresMapPoolRepository) listModeStages(ctx context.Context, exec SQLExecutor, query string, arg interface{}) ([]models.ModeStage, error) {
	executor := r.getExecutor(exec)
	rows, err := executor.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	pool := make([]models.ModeStage, 0)
	for rows.Next() {
		var m models.ModeStage
		if scanErr := rows.Scan(&m.Mode, &m.StageID); scanErr != nil {
			return nil, scanErr
		}
		pool = append(pool, m)
	}
	return pool, rows.Err()
}
