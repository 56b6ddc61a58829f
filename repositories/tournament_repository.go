package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/splatseries/bracket-system/models"
)

var ErrTournamentNotFound = errors.New("tournament not found")

type TournamentRepository interface {
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error)
	GetCastInfoForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.CastLockInfo, error)
	UpdateCastInfo(ctx context.Context, exec SQLExecutor, id int, info *models.CastLockInfo) error
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, name, organizer_id, status, map_picking_style, cast_twitch_accounts, casted_matches_info, created_at
		FROM tournaments
		WHERE id = $1`

	t := &models.Tournament{}
	var castInfo []byte
	err := executor.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.Name, &t.OrganizerID, &t.Status, &t.MapPickingStyle,
		pq.Array(&t.CastTwitchAccounts), &castInfo, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}

	if len(castInfo) > 0 {
		t.CastInfo = &models.CastLockInfo{}
		if err := json.Unmarshal(castInfo, t.CastInfo); err != nil {
			return nil, fmt.Errorf("failed to decode casted_matches_info for tournament %d: %w", id, err)
		}
	}
	return t, nil
}

// GetCastInfoForUpdate locks the tournament row so concurrent cast
// actions cannot interleave their read-modify-write cycles.
func (r *postgresTournamentRepository) GetCastInfoForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.CastLockInfo, error) {
	executor := r.getExecutor(exec)

	var raw []byte
	err := executor.QueryRowContext(ctx,
		`SELECT casted_matches_info FROM tournaments WHERE id = $1 FOR UPDATE`,
		id,
	).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}

	info := &models.CastLockInfo{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, info); err != nil {
			return nil, fmt.Errorf("failed to decode casted_matches_info for tournament %d: %w", id, err)
		}
	}
	return info, nil
}

func (r *postgresTournamentRepository) UpdateCastInfo(ctx context.Context, exec SQLExecutor, id int, info *models.CastLockInfo) error {
	executor := r.getExecutor(exec)

	raw, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to encode casted_matches_info for tournament %d: %w", id, err)
	}

	result, err := executor.ExecContext(ctx,
		`UPDATE tournaments SET casted_matches_info = $1 WHERE id = $2`,
		raw, id,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}
