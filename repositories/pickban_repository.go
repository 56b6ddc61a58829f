package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"github.com/splatseries/bracket-system/models"
)

var (
	ErrPickBanEventNotFound     = errors.New("pick ban event not found")
	ErrPickBanEventMatchInvalid = errors.New("pick ban event match conflict or invalid")
)

type PickBanRepository interface {
	Create(ctx context.Context, exec SQLExecutor, event *models.PickBanEvent) error
	ListByMatch(ctx context.Context, exec SQLExecutor, matchID int) ([]models.PickBanEvent, error)
	DeleteByID(ctx context.Context, exec SQLExecutor, id int) error
	DeleteByMatchIDs(ctx context.Context, exec SQLExecutor, matchIDs []int) error
}

type postgresPickBanRepository struct {
	db *sql.DB
}

func NewPostgresPickBanRepository(db *sql.DB) PickBanRepository {
	return &postgresPickBanRepository{db: db}
}

func (r *postgresPickBanRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresPickBanRepository) Create(ctx context.Context, exec SQLExecutor, event *models.PickBanEvent) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO pick_ban_events (match_id, number, type, author_id, mode, stage_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		event.MatchID,
		event.Number,
		event.Type,
		event.AuthorID,
		event.Mode,
		event.StageID,
	).Scan(&event.ID, &event.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err, "pick_ban_events_match_id_fkey") {
			return ErrPickBanEventMatchInvalid
		}
		return err
	}
	return nil
}

func (r *postgresPickBanRepository) ListByMatch(ctx context.Context, exec SQLExecutor, matchID int) ([]models.PickBanEvent, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, match_id, number, type, author_id, mode, stage_id, created_at
		FROM pick_ban_events
		WHERE match_id = $1
		ORDER BY number ASC`

	rows, err := executor.QueryContext(ctx, query, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]models.PickBanEvent, 0)
	for rows.Next() {
		var ev models.PickBanEvent
		if scanErr := rows.Scan(
			&ev.ID, &ev.MatchID, &ev.Number, &ev.Type,
			&ev.AuthorID, &ev.Mode, &ev.StageID, &ev.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

func (r *postgresPickBanRepository) DeleteByID(ctx context.Context, exec SQLExecutor, id int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `DELETE FROM pick_ban_events WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPickBanEventNotFound)
}

// DeleteByMatchIDs drops every event of the given matches. Used when a
// reopened match invalidates the selections of everything downstream.
func (r *postgresPickBanRepository) DeleteByMatchIDs(ctx context.Context, exec SQLExecutor, matchIDs []int) error {
	if len(matchIDs) == 0 {
		return nil
	}
	executor := r.getExecutor(exec)
	_, err := executor.ExecContext(ctx,
		`DELETE FROM pick_ban_events WHERE match_id = ANY($1)`,
		pq.Array(matchIDs),
	)
	return err
}
