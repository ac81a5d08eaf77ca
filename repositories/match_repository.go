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

var (
	ErrMatchNotFound          = errors.New("match not found")
	ErrMatchPositionConflict  = errors.New("match position already taken in this bracket")
	ErrMatchTournamentInvalid = errors.New("match tournament conflict or invalid")
)

type MatchRepository interface {
	CreateBatch(ctx context.Context, exec SQLExecutor, matches []*models.Match) error
	GetByID(ctx context.Context, exec SQLExecutor, id uuid.UUID) (*models.Match, error)
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID uuid.UUID) ([]*models.Match, error)
	Update(ctx context.Context, exec SQLExecutor, match *models.Match) error
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID uuid.UUID) error
}

type sqlMatchRepository struct {
	db *sqlx.DB
}

func NewMatchRepository(db *sqlx.DB) MatchRepository {
	return &sqlMatchRepository{db: db}
}

func (r *sqlMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *sqlMatchRepository) CreateBatch(ctx context.Context, exec SQLExecutor, matches []*models.Match) error {
	if len(matches) == 0 {
		return nil
	}
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO matches (
			id, tournament_id, phase_id, bracket_type, round_number, match_number,
			team1_id, team2_id, score1, score2, winner_id, status, scheduled_at,
			next_match_id, next_match_slot, loser_next_match_id, loser_next_slot, created_at, updated_at
		) VALUES (
			:id, :tournament_id, :phase_id, :bracket_type, :round_number, :match_number,
			:team1_id, :team2_id, :score1, :score2, :winner_id, :status, :scheduled_at,
			:next_match_id, :next_match_slot, :loser_next_match_id, :loser_next_slot, :created_at, :updated_at
		)`

	for _, m := range matches {
		if _, err := sqlx.NamedExecContext(ctx, executor, query, m); err != nil {
			return r.handleMatchError(err)
		}
	}
	return nil
}

func (r *sqlMatchRepository) GetByID(ctx context.Context, exec SQLExecutor, id uuid.UUID) (*models.Match, error) {
	executor := r.getExecutor(exec)
	var m models.Match
	if err := sqlx.GetContext(ctx, executor, &m, executor.Rebind(`SELECT * FROM matches WHERE id = ?`), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match %s: %w", id, err)
	}
	return &m, nil
}

func (r *sqlMatchRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID uuid.UUID) ([]*models.Match, error) {
	executor := r.getExecutor(exec)
	matches := make([]*models.Match, 0)
	query := executor.Rebind(`SELECT * FROM matches WHERE tournament_id = ? ORDER BY round_number ASC, match_number ASC`)
	if err := sqlx.SelectContext(ctx, executor, &matches, query, tournamentID); err != nil {
		return nil, fmt.Errorf("failed to list matches for tournament %s: %w", tournamentID, err)
	}
	return matches, nil
}

func (r *sqlMatchRepository) Update(ctx context.Context, exec SQLExecutor, m *models.Match) error {
	executor := r.getExecutor(exec)
	m.UpdatedAt = nowUTC()
	query := `
		UPDATE matches SET
			team1_id = :team1_id, team2_id = :team2_id, score1 = :score1, score2 = :score2,
			winner_id = :winner_id, status = :status, scheduled_at = :scheduled_at, updated_at = :updated_at
		WHERE id = :id`

	result, err := sqlx.NamedExecContext(ctx, executor, query, m)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *sqlMatchRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID uuid.UUID) error {
	executor := r.getExecutor(exec)
	if _, err := executor.ExecContext(ctx, executor.Rebind(`DELETE FROM matches WHERE tournament_id = ?`), tournamentID); err != nil {
		return fmt.Errorf("failed to delete matches for tournament %s: %w", tournamentID, err)
	}
	return nil
}

func (r *sqlMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	if isUniqueViolation(err, "") {
		return ErrMatchPositionConflict
	}
	if isForeignKeyViolation(err) {
		return ErrMatchTournamentInvalid
	}
	return fmt.Errorf("match query failed: %w", err)
}
