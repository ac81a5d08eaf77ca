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
	ErrTeamNotFound          = errors.New("team not found")
	ErrTeamNameConflict      = errors.New("team name conflict")
	ErrTeamMemberNotFound    = errors.New("team member not found")
	ErrTeamMemberConflict    = errors.New("user is already a team member")
	ErrTeamMemberUserInvalid = errors.New("team member user invalid")
)

type TeamRepository interface {
	Create(ctx context.Context, team *models.Team) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Team, error)
	ListByMember(ctx context.Context, userID uuid.UUID) ([]models.Team, error)
	ListMembers(ctx context.Context, teamID uuid.UUID) ([]models.TeamMember, error)
	IsMember(ctx context.Context, teamID, userID uuid.UUID) (bool, error)
	AddMember(ctx context.Context, teamID, userID uuid.UUID) error
	RemoveMember(ctx context.Context, teamID, userID uuid.UUID) error
	UpdateLogoKey(ctx context.Context, teamID uuid.UUID, logoKey *string) error
}

type sqlTeamRepository struct {
	db *sqlx.DB
}

func NewTeamRepository(db *sqlx.DB) TeamRepository {
	return &sqlTeamRepository{db: db}
}

// Create inserts the team and its captain as the first member in one transaction.
func (r *sqlTeamRepository) Create(ctx context.Context, team *models.Team) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin team transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = sqlx.NamedExecContext(ctx, tx, `
		INSERT INTO teams (id, name, tag, captain_id, logo_key, created_at)
		VALUES (:id, :name, :tag, :captain_id, :logo_key, :created_at)`, team)
	if err != nil {
		if isUniqueViolation(err, "name") {
			return ErrTeamNameConflict
		}
		if isForeignKeyViolation(err) {
			return ErrTeamMemberUserInvalid
		}
		return fmt.Errorf("failed to create team: %w", err)
	}

	_, err = tx.ExecContext(ctx, tx.Rebind(`INSERT INTO team_members (team_id, user_id, joined_at) VALUES (?, ?, ?)`),
		team.ID, team.CaptainID, team.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to add captain to team: %w", err)
	}

	return tx.Commit()
}

func (r *sqlTeamRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Team, error) {
	var team models.Team
	err := r.db.GetContext(ctx, &team, r.db.Rebind(`SELECT * FROM teams WHERE id = ?`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team %s: %w", id, err)
	}
	return &team, nil
}

func (r *sqlTeamRepository) ListByMember(ctx context.Context, userID uuid.UUID) ([]models.Team, error) {
	teams := make([]models.Team, 0)
	query := `
		SELECT t.* FROM teams t
		JOIN team_members tm ON tm.team_id = t.id
		WHERE tm.user_id = ?
		ORDER BY t.name ASC`
	if err := r.db.SelectContext(ctx, &teams, r.db.Rebind(query), userID); err != nil {
		return nil, fmt.Errorf("failed to list teams for user %s: %w", userID, err)
	}
	return teams, nil
}

func (r *sqlTeamRepository) ListMembers(ctx context.Context, teamID uuid.UUID) ([]models.TeamMember, error) {
	members := make([]models.TeamMember, 0)
	query := `
		SELECT tm.team_id, tm.user_id, u.username, tm.joined_at
		FROM team_members tm
		JOIN users u ON u.id = tm.user_id
		WHERE tm.team_id = ?
		ORDER BY tm.joined_at ASC`
	if err := r.db.SelectContext(ctx, &members, r.db.Rebind(query), teamID); err != nil {
		return nil, fmt.Errorf("failed to list members of team %s: %w", teamID, err)
	}
	return members, nil
}

func (r *sqlTeamRepository) IsMember(ctx context.Context, teamID, userID uuid.UUID) (bool, error) {
	var count int
	query := `SELECT COUNT(*) FROM team_members WHERE team_id = ? AND user_id = ?`
	if err := r.db.GetContext(ctx, &count, r.db.Rebind(query), teamID, userID); err != nil {
		return false, fmt.Errorf("failed to check team membership: %w", err)
	}
	return count > 0, nil
}

func (r *sqlTeamRepository) AddMember(ctx context.Context, teamID, userID uuid.UUID) error {
	query := `INSERT INTO team_members (team_id, user_id, joined_at) VALUES (?, ?, ?)`
	_, err := r.db.ExecContext(ctx, r.db.Rebind(query), teamID, userID, nowUTC())
	if err != nil {
		if isUniqueViolation(err, "") {
			return ErrTeamMemberConflict
		}
		if isForeignKeyViolation(err) {
			return ErrTeamMemberUserInvalid
		}
		return fmt.Errorf("failed to add team member: %w", err)
	}
	return nil
}

func (r *sqlTeamRepository) RemoveMember(ctx context.Context, teamID, userID uuid.UUID) error {
	query := `DELETE FROM team_members WHERE team_id = ? AND user_id = ?`
	result, err := r.db.ExecContext(ctx, r.db.Rebind(query), teamID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove team member: %w", err)
	}
	return checkAffectedRows(result, ErrTeamMemberNotFound)
}

func (r *sqlTeamRepository) UpdateLogoKey(ctx context.Context, teamID uuid.UUID, logoKey *string) error {
	result, err := r.db.ExecContext(ctx, r.db.Rebind(`UPDATE teams SET logo_key = ? WHERE id = ?`), logoKey, teamID)
	if err != nil {
		return fmt.Errorf("failed to update team logo: %w", err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}
