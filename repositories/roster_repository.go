package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/splatseries/bracket-system/models"
)

var ErrRosterMemberInvalid = errors.New("roster member conflict or invalid")

type RosterRepository interface {
	GetActiveRoster(ctx context.Context, exec SQLExecutor, teamID int) ([]int, error)
	SetActiveRoster(ctx context.Context, exec SQLExecutor, teamID int, userIDs []int) error
}

type postgresRosterRepository struct {
	db *sql.DB
}

func NewPostgresRosterRepository(db *sql.DB) RosterRepository {
	return &postgresRosterRepository{db: db}
}

func (r *postgresRosterRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresRosterRepository) GetActiveRoster(ctx context.Context, exec SQLExecutor, teamID int) ([]int, error) {
	executor := r.getExecutor(exec)
	rows, err := executor.QueryContext(ctx,
		`SELECT user_id FROM active_rosters WHERE team_id = $1 ORDER BY user_id ASC`,
		teamID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]int, 0, models.ActiveRosterSize)
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// SetActiveRoster replaces the team's roster selection wholesale.
func (r *postgresRosterRepository) SetActiveRoster(ctx context.Context, exec SQLExecutor, teamID int, userIDs []int) error {
	executor := r.getExecutor(exec)

	if _, err := executor.ExecContext(ctx, `DELETE FROM active_rosters WHERE team_id = $1`, teamID); err != nil {
		return fmt.Errorf("failed to clear active roster for team %d: %w", teamID, err)
	}

	for _, userID := range userIDs {
		_, err := executor.ExecContext(ctx,
			`INSERT INTO active_rosters (team_id, user_id) VALUES ($1, $2)`,
			teamID, userID,
		)
		if err != nil {
			if isForeignKeyViolation(err, "active_rosters_user_id_fkey") {
				return ErrRosterMemberInvalid
			}
			return fmt.Errorf("failed to insert active roster user_id %d for team %d: %w", userID, teamID, err)
		}
	}
	return nil
}
