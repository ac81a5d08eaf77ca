package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/esport-arena/models"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var (
	ErrParticipantNotFound         = errors.New("participant not found")
	ErrParticipantConflict         = errors.New("participant conflict: team already registered for this tournament")
	ErrParticipantReferenceInvalid = errors.New("participant tournament, team or user reference invalid")
)

type ParticipantRepository interface {
	Create(ctx context.Context, p *models.Participant) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Participant, error)
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID uuid.UUID) ([]models.Participant, error)
	CountByTournament(ctx context.Context, tournamentID uuid.UUID) (int, error)
	UpdateCheckIn(ctx context.Context, id uuid.UUID, checkedIn bool, at *time.Time) error
	UpdateDisqualified(ctx context.Context, exec SQLExecutor, id uuid.UUID, disqualified bool) error
	UpdateSeedOrder(ctx context.Context, id uuid.UUID, seed *int) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type sqlParticipantRepository struct {
	db *sqlx.DB
}

func NewParticipantRepository(db *sqlx.DB) ParticipantRepository {
	return &sqlParticipantRepository{db: db}
}

func (r *sqlParticipantRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const selectParticipantWithTeamSQL = `
	SELECT p.*, t.name AS team_name, t.tag AS team_tag
	FROM participants p
	JOIN teams t ON t.id = p.team_id`

func (r *sqlParticipantRepository) Create(ctx context.Context, p *models.Participant) error {
	query := `
		INSERT INTO participants (id, tournament_id, team_id, user_id, checked_in, checked_in_at, disqualified, seed_order, created_at)
		VALUES (:id, :tournament_id, :team_id, :user_id, :checked_in, :checked_in_at, :disqualified, :seed_order, :created_at)`

	if _, err := r.db.NamedExecContext(ctx, query, p); err != nil {
		if isUniqueViolation(err, "team_id") || isUniqueViolation(err, "tournament_team") {
			return ErrParticipantConflict
		}
		if isForeignKeyViolation(err) {
			return ErrParticipantReferenceInvalid
		}
		return fmt.Errorf("failed to create participant: %w", err)
	}
	return nil
}

func (r *sqlParticipantRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Participant, error) {
	var p models.Participant
	err := r.db.GetContext(ctx, &p, r.db.Rebind(selectParticipantWithTeamSQL+` WHERE p.id = ?`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrParticipantNotFound
		}
		return nil, fmt.Errorf("failed to get participant %s: %w", id, err)
	}
	return &p, nil
}

// ListByTournament returns registrations in registration order; seeding order
// is applied by the caller.
func (r *sqlParticipantRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID uuid.UUID) ([]models.Participant, error) {
	executor := r.getExecutor(exec)
	participants := make([]models.Participant, 0)
	query := executor.Rebind(selectParticipantWithTeamSQL + ` WHERE p.tournament_id = ? ORDER BY p.created_at ASC, p.id ASC`)
	if err := sqlx.SelectContext(ctx, executor, &participants, query, tournamentID); err != nil {
		return nil, fmt.Errorf("failed to list participants by tournament: %w", err)
	}
	return participants, nil
}

func (r *sqlParticipantRepository) CountByTournament(ctx context.Context, tournamentID uuid.UUID) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, r.db.Rebind(`SELECT COUNT(*) FROM participants WHERE tournament_id = ?`), tournamentID); err != nil {
		return 0, fmt.Errorf("failed to count participants: %w", err)
	}
	return count, nil
}

func (r *sqlParticipantRepository) UpdateCheckIn(ctx context.Context, id uuid.UUID, checkedIn bool, at *time.Time) error {
	query := r.db.Rebind(`UPDATE participants SET checked_in = ?, checked_in_at = ? WHERE id = ?`)
	result, err := r.db.ExecContext(ctx, query, checkedIn, at, id)
	if err != nil {
		return fmt.Errorf("failed to update participant check-in: %w", err)
	}
	return checkAffectedRows(result, ErrParticipantNotFound)
}

// UpdateDisqualified also clears the check-in when disqualifying.
func (r *sqlParticipantRepository) UpdateDisqualified(ctx context.Context, exec SQLExecutor, id uuid.UUID, disqualified bool) error {
	executor := r.getExecutor(exec)
	query := `UPDATE participants SET disqualified = ? WHERE id = ?`
	args := []interface{}{disqualified, id}
	if disqualified {
		query = `UPDATE participants SET disqualified = ?, checked_in = ?, checked_in_at = NULL WHERE id = ?`
		args = []interface{}{true, false, id}
	}
	result, err := executor.ExecContext(ctx, executor.Rebind(query), args...)
	if err != nil {
		return fmt.Errorf("failed to update participant disqualification: %w", err)
	}
	return checkAffectedRows(result, ErrParticipantNotFound)
}

func (r *sqlParticipantRepository) UpdateSeedOrder(ctx context.Context, id uuid.UUID, seed *int) error {
	result, err := r.db.ExecContext(ctx, r.db.Rebind(`UPDATE participants SET seed_order = ? WHERE id = ?`), seed, id)
	if err != nil {
		return fmt.Errorf("failed to update participant seed order: %w", err)
	}
	return checkAffectedRows(result, ErrParticipantNotFound)
}

func (r *sqlParticipantRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM participants WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete participant: %w", err)
	}
	return checkAffectedRows(result, ErrParticipantNotFound)
}
