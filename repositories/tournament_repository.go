package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Dosada05/esport-arena/models"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var (
	ErrTournamentNotFound   = errors.New("tournament not found")
	ErrTournamentInvalidOrg = errors.New("invalid organizer reference")
)

type ListTournamentsFilter struct {
	Status      *models.TournamentStatus
	Game        *string
	OrganizerID *uuid.UUID
	Limit       int
	Offset      int
}

type TournamentRepository interface {
	Create(ctx context.Context, tournament *models.Tournament) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Tournament, error)
	List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error)
	Update(ctx context.Context, tournament *models.Tournament) error
	UpdateStatus(ctx context.Context, exec SQLExecutor, id uuid.UUID, status models.TournamentStatus) error
	UpdateWinner(ctx context.Context, exec SQLExecutor, id uuid.UUID, winnerParticipantID *uuid.UUID) error
	UpdateLogoKey(ctx context.Context, id uuid.UUID, logoKey *string) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListDueForCheckIn(ctx context.Context, now time.Time) ([]models.Tournament, error)
}

type sqlTournamentRepository struct {
	db *sqlx.DB
}

func NewTournamentRepository(db *sqlx.DB) TournamentRepository {
	return &sqlTournamentRepository{db: db}
}

func (r *sqlTournamentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *sqlTournamentRepository) Create(ctx context.Context, t *models.Tournament) error {
	query := `
		INSERT INTO tournaments (
			id, name, game, description, organizer_id, format, status, max_teams, best_of,
			map_pool, starts_at, check_in_opens_at, winner_participant_id, logo_key, created_at, updated_at
		) VALUES (
			:id, :name, :game, :description, :organizer_id, :format, :status, :max_teams, :best_of,
			:map_pool, :starts_at, :check_in_opens_at, :winner_participant_id, :logo_key, :created_at, :updated_at
		)`

	if _, err := r.db.NamedExecContext(ctx, query, t); err != nil {
		if isForeignKeyViolation(err) {
			return ErrTournamentInvalidOrg
		}
		return fmt.Errorf("failed to create tournament: %w", err)
	}
	return nil
}

func (r *sqlTournamentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Tournament, error) {
	var t models.Tournament
	err := r.db.GetContext(ctx, &t, r.db.Rebind(`SELECT * FROM tournaments WHERE id = ?`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %s: %w", id, err)
	}
	return &t, nil
}

func (r *sqlTournamentRepository) List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT * FROM tournaments WHERE 1=1`)
	args := []interface{}{}

	if filter.Status != nil {
		queryBuilder.WriteString(" AND status = ?")
		args = append(args, *filter.Status)
	}
	if filter.Game != nil {
		queryBuilder.WriteString(" AND game = ?")
		args = append(args, *filter.Game)
	}
	if filter.OrganizerID != nil {
		queryBuilder.WriteString(" AND organizer_id = ?")
		args = append(args, *filter.OrganizerID)
	}

	queryBuilder.WriteString(" ORDER BY created_at DESC, id ASC")

	if filter.Limit > 0 {
		queryBuilder.WriteString(" LIMIT ?")
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			queryBuilder.WriteString(" OFFSET ?")
			args = append(args, filter.Offset)
		}
	}

	tournaments := make([]models.Tournament, 0)
	if err := r.db.SelectContext(ctx, &tournaments, r.db.Rebind(queryBuilder.String()), args...); err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	return tournaments, nil
}

func (r *sqlTournamentRepository) Update(ctx context.Context, t *models.Tournament) error {
	t.UpdatedAt = nowUTC()
	query := `
		UPDATE tournaments SET
			name = :name, game = :game, description = :description, format = :format,
			max_teams = :max_teams, best_of = :best_of, map_pool = :map_pool,
			starts_at = :starts_at, check_in_opens_at = :check_in_opens_at, updated_at = :updated_at
		WHERE id = :id`

	result, err := r.db.NamedExecContext(ctx, query, t)
	if err != nil {
		return fmt.Errorf("failed to update tournament %s: %w", t.ID, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *sqlTournamentRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id uuid.UUID, status models.TournamentStatus) error {
	executor := r.getExecutor(exec)
	query := executor.Rebind(`UPDATE tournaments SET status = ?, updated_at = ? WHERE id = ?`)
	result, err := executor.ExecContext(ctx, query, status, nowUTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update tournament status: %w", err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *sqlTournamentRepository) UpdateWinner(ctx context.Context, exec SQLExecutor, id uuid.UUID, winnerParticipantID *uuid.UUID) error {
	executor := r.getExecutor(exec)
	query := executor.Rebind(`UPDATE tournaments SET winner_participant_id = ?, updated_at = ? WHERE id = ?`)
	result, err := executor.ExecContext(ctx, query, winnerParticipantID, nowUTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update tournament winner: %w", err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *sqlTournamentRepository) UpdateLogoKey(ctx context.Context, id uuid.UUID, logoKey *string) error {
	result, err := r.db.ExecContext(ctx, r.db.Rebind(`UPDATE tournaments SET logo_key = ?, updated_at = ? WHERE id = ?`), logoKey, nowUTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update tournament logo: %w", err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *sqlTournamentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM tournaments WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete tournament %s: %w", id, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *sqlTournamentRepository) ListDueForCheckIn(ctx context.Context, now time.Time) ([]models.Tournament, error) {
	query := `
		SELECT * FROM tournaments
		WHERE status = ? AND check_in_opens_at IS NOT NULL AND check_in_opens_at <= ?
		ORDER BY check_in_opens_at ASC`
	tournaments := make([]models.Tournament, 0)
	if err := r.db.SelectContext(ctx, &tournaments, r.db.Rebind(query), models.TournamentRegistration, now.UTC()); err != nil {
		return nil, fmt.Errorf("failed to list tournaments due for check-in: %w", err)
	}
	return tournaments, nil
}
