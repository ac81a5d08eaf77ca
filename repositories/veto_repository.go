package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/esport-arena/models"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var ErrVetoMatchInvalid = errors.New("veto action match invalid")

type VetoRepository interface {
	Create(ctx context.Context, action *models.VetoAction) error
	ListByMatch(ctx context.Context, matchID uuid.UUID) ([]models.VetoAction, error)
	MaxStep(ctx context.Context, matchID uuid.UUID) (int, error)
	DeleteByMatch(ctx context.Context, matchID uuid.UUID) (int64, error)
}

type sqlVetoRepository struct {
	db *sqlx.DB
}

func NewVetoRepository(db *sqlx.DB) VetoRepository {
	return &sqlVetoRepository{db: db}
}

func (r *sqlVetoRepository) Create(ctx context.Context, action *models.VetoAction) error {
	query := `
		INSERT INTO veto_actions (id, match_id, team_id, map_name, action_type, step, created_at)
		VALUES (:id, :match_id, :team_id, :map_name, :action_type, :step, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, action); err != nil {
		if isForeignKeyViolation(err) {
			return ErrVetoMatchInvalid
		}
		return fmt.Errorf("failed to create veto action: %w", err)
	}
	return nil
}

func (r *sqlVetoRepository) ListByMatch(ctx context.Context, matchID uuid.UUID) ([]models.VetoAction, error) {
	actions := make([]models.VetoAction, 0)
	query := `SELECT * FROM veto_actions WHERE match_id = ? ORDER BY step ASC, created_at ASC`
	if err := r.db.SelectContext(ctx, &actions, r.db.Rebind(query), matchID); err != nil {
		return nil, fmt.Errorf("failed to list veto actions for match %s: %w", matchID, err)
	}
	return actions, nil
}

func (r *sqlVetoRepository) MaxStep(ctx context.Context, matchID uuid.UUID) (int, error) {
	var step sql.NullInt64
	if err := r.db.GetContext(ctx, &step, r.db.Rebind(`SELECT MAX(step) FROM veto_actions WHERE match_id = ?`), matchID); err != nil {
		return 0, fmt.Errorf("failed to get max veto step: %w", err)
	}
	return int(step.Int64), nil
}

func (r *sqlVetoRepository) DeleteByMatch(ctx context.Context, matchID uuid.UUID) (int64, error) {
	result, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM veto_actions WHERE match_id = ?`), matchID)
	if err != nil {
		return 0, fmt.Errorf("failed to reset veto for match %s: %w", matchID, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check affected rows: %w", err)
	}
	return n, nil
}
