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
	ErrPhaseNotFound          = errors.New("tournament phase not found")
	ErrPhaseTournamentInvalid = errors.New("tournament phase tournament invalid")
)

type PhaseRepository interface {
	Create(ctx context.Context, phase *models.TournamentPhase) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.TournamentPhase, error)
	ListByTournament(ctx context.Context, tournamentID uuid.UUID) ([]models.TournamentPhase, error)
	NextOrder(ctx context.Context, tournamentID uuid.UUID) (int, error)
	Update(ctx context.Context, phase *models.TournamentPhase) error
	UpdateStatus(ctx context.Context, exec SQLExecutor, id uuid.UUID, status models.PhaseStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type sqlPhaseRepository struct {
	db *sqlx.DB
}

func NewPhaseRepository(db *sqlx.DB) PhaseRepository {
	return &sqlPhaseRepository{db: db}
}

func (r *sqlPhaseRepository) Create(ctx context.Context, phase *models.TournamentPhase) error {
	query := `
		INSERT INTO tournament_phases (id, tournament_id, name, phase_order, status, created_at)
		VALUES (:id, :tournament_id, :name, :phase_order, :status, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, phase); err != nil {
		if isForeignKeyViolation(err) {
			return ErrPhaseTournamentInvalid
		}
		return fmt.Errorf("failed to create tournament phase: %w", err)
	}
	return nil
}

func (r *sqlPhaseRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.TournamentPhase, error) {
	var phase models.TournamentPhase
	err := r.db.GetContext(ctx, &phase, r.db.Rebind(`SELECT * FROM tournament_phases WHERE id = ?`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPhaseNotFound
		}
		return nil, fmt.Errorf("failed to get tournament phase %s: %w", id, err)
	}
	return &phase, nil
}

func (r *sqlPhaseRepository) ListByTournament(ctx context.Context, tournamentID uuid.UUID) ([]models.TournamentPhase, error) {
	phases := make([]models.TournamentPhase, 0)
	query := `SELECT * FROM tournament_phases WHERE tournament_id = ? ORDER BY phase_order ASC, created_at ASC`
	if err := r.db.SelectContext(ctx, &phases, r.db.Rebind(query), tournamentID); err != nil {
		return nil, fmt.Errorf("failed to list phases for tournament %s: %w", tournamentID, err)
	}
	return phases, nil
}

func (r *sqlPhaseRepository) NextOrder(ctx context.Context, tournamentID uuid.UUID) (int, error) {
	var maxOrder sql.NullInt64
	query := `SELECT MAX(phase_order) FROM tournament_phases WHERE tournament_id = ?`
	if err := r.db.GetContext(ctx, &maxOrder, r.db.Rebind(query), tournamentID); err != nil {
		return 0, fmt.Errorf("failed to get next phase order: %w", err)
	}
	if !maxOrder.Valid {
		return 1, nil
	}
	return int(maxOrder.Int64) + 1, nil
}

func (r *sqlPhaseRepository) Update(ctx context.Context, phase *models.TournamentPhase) error {
	query := `UPDATE tournament_phases SET name = :name, phase_order = :phase_order, status = :status WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, phase)
	if err != nil {
		return fmt.Errorf("failed to update tournament phase %s: %w", phase.ID, err)
	}
	return checkAffectedRows(result, ErrPhaseNotFound)
}

func (r *sqlPhaseRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id uuid.UUID, status models.PhaseStatus) error {
	executor := exec
	if executor == nil {
		executor = r.db
	}
	result, err := executor.ExecContext(ctx, executor.Rebind(`UPDATE tournament_phases SET status = ? WHERE id = ?`), status, id)
	if err != nil {
		return fmt.Errorf("failed to update tournament phase status: %w", err)
	}
	return checkAffectedRows(result, ErrPhaseNotFound)
}

func (r *sqlPhaseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM tournament_phases WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete tournament phase %s: %w", id, err)
	}
	return checkAffectedRows(result, ErrPhaseNotFound)
}
