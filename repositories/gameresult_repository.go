package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/splatseries/bracket-system/models"
)

var (
	ErrGameResultNotFound      = errors.New("game result not found")
	ErrGameResultMatchInvalid  = errors.New("game result match conflict or invalid")
	ErrGameResultWinnerInvalid = errors.New("game result winner team conflict or invalid")
)

type GameResultRepository interface {
	Create(ctx context.Context, exec SQLExecutor, result *models.GameResult) error
	ListByMatch(ctx context.Context, exec SQLExecutor, matchID int) ([]models.GameResult, error)
	DeleteByID(ctx context.Context, exec SQLExecutor, id int) error
	UpdatePoints(ctx context.Context, exec SQLExecutor, id int, opponent1Points, opponent2Points *int) error
	ReplaceParticipants(ctx context.Context, exec SQLExecutor, resultID int, userIDs []int) error
	CountByMatch(ctx context.Context, exec SQLExecutor, matchID int) (int, error)
}

type postgresGameResultRepository struct {
	db *sql.DB
}

func NewPostgresGameResultRepository(db *sql.DB) GameResultRepository {
	return &postgresGameResultRepository{db: db}
}

func (r *postgresGameResultRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresGameResultRepository) Create(ctx context.Context, exec SQLExecutor, result *models.GameResult) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO game_results
			(match_id, number, winner_team_id, mode, stage_id, source, opponent_one_points, opponent_two_points, reporter_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		result.MatchID,
		result.Number,
		result.WinnerTeamID,
		result.Mode,
		result.StageID,
		result.Source,
		result.Opponent1Points,
		result.Opponent2Points,
		result.ReporterID,
	).Scan(&result.ID, &result.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err, "game_results_match_id_fkey") {
			return ErrGameResultMatchInvalid
		}
		if isForeignKeyViolation(err, "game_results_winner_team_id_fkey") {
			return ErrGameResultWinnerInvalid
		}
		return err
	}

	if len(result.ParticipantIDs) > 0 {
		return r.insertParticipants(ctx, executor, result.ID, result.ParticipantIDs)
	}
	return nil
}

// ListByMatch returns results ordered by game number, participants
// attached.
func (r *postgresGameResultRepository) ListByMatch(ctx context.Context, exec SQLExecutor, matchID int) ([]models.GameResult, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, match_id, number, winner_team_id, mode, stage_id, source, opponent_one_points, opponent_two_points, reporter_id, created_at
		FROM game_results
		WHERE match_id = $1
		ORDER BY number ASC`

	rows, err := executor.QueryContext(ctx, query, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]models.GameResult, 0)
	for rows.Next() {
		var res models.GameResult
		if scanErr := rows.Scan(
			&res.ID, &res.MatchID, &res.Number, &res.WinnerTeamID,
			&res.Mode, &res.StageID, &res.Source,
			&res.Opponent1Points, &res.Opponent2Points,
			&res.ReporterID, &res.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		results = append(results, res)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	for i := range results {
		participants, pErr := r.listParticipants(ctx, executor, results[i].ID)
		if pErr != nil {
			return nil, pErr
		}
		results[i].ParticipantIDs = participants
	}
	return results, nil
}

func (r *postgresGameResultRepository) DeleteByID(ctx context.Context, exec SQLExecutor, id int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `DELETE FROM game_results WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrGameResultNotFound)
}

func (r *postgresGameResultRepository) UpdatePoints(ctx context.Context, exec SQLExecutor, id int, opponent1Points, opponent2Points *int) error {
	executor := r.getExecutor(exec)
	query := `UPDATE game_results SET opponent_one_points = $1, opponent_two_points = $2 WHERE id = $3`

	result, err := executor.ExecContext(ctx, query, opponent1Points, opponent2Points, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrGameResultNotFound)
}

func (r *postgresGameResultRepository) ReplaceParticipants(ctx context.Context, exec SQLExecutor, resultID int, userIDs []int) error {
	executor := r.getExecutor(exec)
	if _, err := executor.ExecContext(ctx, `DELETE FROM game_result_participants WHERE game_result_id = $1`, resultID); err != nil {
		return fmt.Errorf("failed to clear participants for result %d: %w", resultID, err)
	}
	return r.insertParticipants(ctx, executor, resultID, userIDs)
}

func (r *postgresGameResultRepository) CountByMatch(ctx context.Context, exec SQLExecutor, matchID int) (int, error) {
	executor := r.getExecutor(exec)
	var count int
	err := executor.QueryRowContext(ctx, `SELECT COUNT(*) FROM game_results WHERE match_id = $1`, matchID).Scan(&count)
	return count, err
}

func (r *postgresGameResultRepository) insertParticipants(ctx context.Context, executor SQLExecutor, resultID int, userIDs []int) error {
	for _, userID := range userIDs {
		_, err := executor.ExecContext(ctx,
			`INSERT INTO game_result_participants (game_result_id, user_id) VALUES ($1, $2)`,
			resultID, userID,
		)
		if err != nil {
			return fmt.Errorf("failed to insert participant user_id %d for result %d: %w", userID, resultID, err)
		}
	}
	return nil
}

func (r *postgresGameResultRepository) listParticipants(ctx context.Context, executor SQLExecutor, resultID int) ([]int, error) {
	rows, err := executor.QueryContext(ctx,
		`SELECT user_id FROM game_result_participants WHERE game_result_id = $1 ORDER BY user_id ASC`,
		resultID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]int, 0, 8)
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
