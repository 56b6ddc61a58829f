package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/splatseries/bracket-system/models"
)

var ErrRoundNotFound = errors.New("round not found")

type RoundRepository interface {
	GetMapConfig(ctx context.Context, exec SQLExecutor, roundID int) (*models.RoundMapConfig, error)
}

type postgresRoundRepository struct {
	db *sql.DB
}

func NewPostgresRoundRepository(db *sql.DB) RoundRepository {
	return &postgresRoundRepository{db: db}
}

func (r *postgresRoundRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

// GetMapConfig loads the round's map settings plus the prescribed list
// when the organizer configured one.
func (r *postgresRoundRepository) GetMapConfig(ctx context.Context, exec SQLExecutor, roundID int) (*models.RoundMapConfig, error) {
	executor := r.getExecutor(exec)

	cfg := &models.RoundMapConfig{}
	err := executor.QueryRowContext(ctx,
		`SELECT round_id, count, count_type, pick_ban FROM round_map_configs WHERE round_id = $1`,
		roundID,
	).Scan(&cfg.RoundID, &cfg.Count, &cfg.CountType, &cfg.PickBan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoundNotFound
		}
		return nil, err
	}

	rows, err := executor.QueryContext(ctx,
		`SELECT mode, stage_id FROM round_map_list WHERE round_id = $1 ORDER BY number ASC`,
		roundID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var m models.ModeStage
		if scanErr := rows.Scan(&m.Mode, &m.StageID); scanErr != nil {
			return nil, scanErr
		}
		cfg.List = append(cfg.List, m)
	}
	return cfg, rows.Err()
}
