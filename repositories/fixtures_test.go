package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/Dosada05/esport-arena/db/dbtest"
	"github.com/Dosada05/esport-arena/models"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	db  *sqlx.DB
	ctx context.Context

	users        UserRepository
	teams        TeamRepository
	tournaments  TournamentRepository
	phases       PhaseRepository
	participants ParticipantRepository
	matches      MatchRepository
	chat         ChatRepository
	veto         VetoRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	conn := dbtest.New(t)
	return &fixture{
		db:           conn,
		ctx:          context.Background(),
		users:        NewUserRepository(conn),
		teams:        NewTeamRepository(conn),
		tournaments:  NewTournamentRepository(conn),
		phases:       NewPhaseRepository(conn),
		participants: NewParticipantRepository(conn),
		matches:      NewMatchRepository(conn),
		chat:         NewChatRepository(conn),
		veto:         NewVetoRepository(conn),
	}
}

func (f *fixture) user(t *testing.T, name string) *models.User {
	t.Helper()
	u := &models.User{
		ID:           uuid.New(),
		Username:     name,
		Email:        name + "@arena.test",
		PasswordHash: "hash",
		Role:         models.RolePlayer,
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, f.users.Create(f.ctx, u))
	return u
}

func (f *fixture) team(t *testing.T, name string, captain *models.User) *models.Team {
	t.Helper()
	team := &models.Team{
		ID:        uuid.New(),
		Name:      name,
		Tag:       name[:2],
		CaptainID: captain.ID,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, f.teams.Create(f.ctx, team))
	return team
}

func (f *fixture) tournament(t *testing.T, organizer *models.User) *models.Tournament {
	t.Helper()
	now := time.Now().UTC()
	tour := &models.Tournament{
		ID:          uuid.New(),
		Name:        "Arena Cup",
		Game:        "cs2",
		OrganizerID: organizer.ID,
		Format:      models.FormatSingleElimination,
		Status:      models.TournamentRegistration,
		MaxTeams:    8,
		BestOf:      1,
		MapPool:     models.MapPool{"mirage", "inferno", "nuke"},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, f.tournaments.Create(f.ctx, tour))
	return tour
}

func (f *fixture) participant(t *testing.T, tour *models.Tournament, team *models.Team) *models.Participant {
	t.Helper()
	p := &models.Participant{
		ID:           uuid.New(),
		TournamentID: tour.ID,
		TeamID:       team.ID,
		UserID:       team.CaptainID,
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, f.participants.Create(f.ctx, p))
	return p
}

func (f *fixture) match(t *testing.T, tour *models.Tournament, round, number int, team1, team2 *uuid.UUID) *models.Match {
	t.Helper()
	now := time.Now().UTC()
	m := &models.Match{
		ID:           uuid.New(),
		TournamentID: tour.ID,
		BracketType:  models.BracketWinners,
		RoundNumber:  round,
		MatchNumber:  number,
		Team1ID:      team1,
		Team2ID:      team2,
		Status:       models.MatchPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, f.matches.CreateBatch(f.ctx, nil, []*models.Match{m}))
	return m
}
