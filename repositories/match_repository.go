package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/splatseries/bracket-system/models"
)

var (
	ErrMatchNotFound    = errors.New("match not found")
	ErrMatchTeamInvalid = errors.New("match team conflict or invalid")
)

type MatchRepository interface {
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error)
	GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Match, error)
	UpdateScores(ctx context.Context, exec SQLExecutor, id int, opponent1, opponent2 models.Opponent) error
	SetOpponentTeam(ctx context.Context, exec SQLExecutor, id int, slot int, teamID *int) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const matchColumns = `
	id, tournament_id, round_id,
	opponent1_team_id, opponent1_score, opponent1_result,
	opponent2_team_id, opponent2_score, opponent2_result,
	chat_code, next_match_id, winner_to_slot, created_at`

func scanMatch(row interface{ Scan(...interface{}) error }) (*models.Match, error) {
	m := &models.Match{}
	err := row.Scan(
		&m.ID, &m.TournamentID, &m.RoundID,
		&m.Opponent1.TeamID, &m.Opponent1.Score, &m.Opponent1.Result,
		&m.Opponent2.TeamID, &m.Opponent2.Score, &m.Opponent2.Result,
		&m.ChatCode, &m.NextMatchID, &m.WinnerToSlot, &m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return m, nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error) {
	executor := r.getExecutor(exec)
	query := `SELECT` + matchColumns + ` FROM matches WHERE id = $1`
	return scanMatch(executor.QueryRowContext(ctx, query, id))
}

// GetByIDForUpdate takes a row lock so concurrent score actions on the
// same match serialize inside the caller's transaction.
func (r *postgresMatchRepository) GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error) {
	executor := r.getExecutor(exec)
	query := `SELECT` + matchColumns + ` FROM matches WHERE id = $1 FOR UPDATE`
	return scanMatch(executor.QueryRowContext(ctx, query, id))
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Match, error) {
	query := `SELECT` + matchColumns + ` FROM matches WHERE tournament_id = $1 ORDER BY round_id ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		m, scanErr := scanMatch(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (r *postgresMatchRepository) UpdateScores(ctx context.Context, exec SQLExecutor, id int, opponent1, opponent2 models.Opponent) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE matches
		SET opponent1_score = $1, opponent1_result = $2,
		    opponent2_score = $3, opponent2_result = $4
		WHERE id = $5`

	result, err := executor.ExecContext(ctx, query,
		opponent1.Score, opponent1.Result,
		opponent2.Score, opponent2.Result,
		id,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

// SetOpponentTeam fills or clears one opponent slot. slot is 1 or 2.
func (r *postgresMatchRepository) SetOpponentTeam(ctx context.Context, exec SQLExecutor, id int, slot int, teamID *int) error {
	executor := r.getExecutor(exec)

	var query string
	switch slot {
	case 1:
		query = `UPDATE matches SET opponent1_team_id = $1 WHERE id = $2`
	case 2:
		query = `UPDATE matches SET opponent2_team_id = $1 WHERE id = $2`
	default:
		return ErrMatchTeamInvalid
	}

	result, err := executor.ExecContext(ctx, query, teamID, id)
	if err != nil {
		if isForeignKeyViolation(err, "matches_opponent1_team_id_fkey") ||
			isForeignKeyViolation(err, "matches_opponent2_team_id_fkey") {
			return ErrMatchTeamInvalid
		}
		return err
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}
