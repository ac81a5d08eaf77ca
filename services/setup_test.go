package services

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/Dosada05/esport-arena/db/dbtest"
	"github.com/Dosada05/esport-arena/models"
	"github.com/Dosada05/esport-arena/repositories"
	"github.com/Dosada05/esport-arena/storage"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

type broadcast struct {
	Room    string
	Type    string
	Payload interface{}
}

// recordingHub collects broadcasts instead of sending them.
type recordingHub struct {
	mu     sync.Mutex
	events []broadcast
}

func (h *recordingHub) BroadcastToRoom(roomID, eventType string, payload interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, broadcast{Room: roomID, Type: eventType, Payload: payload})
}

func (h *recordingHub) count(room, eventType string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, e := range h.events {
		if e.Room == room && e.Type == eventType {
			n++
		}
	}
	return n
}

// memoryUploader keeps uploaded objects in a map.
type memoryUploader struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemoryUploader() *memoryUploader {
	return &memoryUploader{objects: make(map[string][]byte)}
}

func (u *memoryUploader) Upload(_ context.Context, key, _ string, r io.Reader) (*storage.UploadResult, error) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		return nil, err
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	u.objects[key] = buf.Bytes()
	return &storage.UploadResult{Key: key, Location: u.GetPublicURL(key)}, nil
}

func (u *memoryUploader) Delete(_ context.Context, key string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	delete(u.objects, key)
	return nil
}

func (u *memoryUploader) GetPublicURL(key string) string {
	return "https://cdn.arena.test/" + key
}

func (u *memoryUploader) has(key string) bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	_, ok := u.objects[key]
	return ok
}

type testEnv struct {
	ctx      context.Context
	db       *sqlx.DB
	hub      *recordingHub
	uploader *memoryUploader

	userRepo        repositories.UserRepository
	teamRepo        repositories.TeamRepository
	tournamentRepo  repositories.TournamentRepository
	phaseRepo       repositories.PhaseRepository
	participantRepo repositories.ParticipantRepository
	matchRepo       repositories.MatchRepository

	auth         AuthService
	teams        TeamService
	tournaments  TournamentService
	phases       PhaseService
	participants ParticipantService
	matches      MatchService
	chat         ChatService
	veto         VetoService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	conn := dbtest.New(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	env := &testEnv{
		ctx:             context.Background(),
		db:              conn,
		hub:             &recordingHub{},
		uploader:        newMemoryUploader(),
		userRepo:        repositories.NewUserRepository(conn),
		teamRepo:        repositories.NewTeamRepository(conn),
		tournamentRepo:  repositories.NewTournamentRepository(conn),
		phaseRepo:       repositories.NewPhaseRepository(conn),
		participantRepo: repositories.NewParticipantRepository(conn),
		matchRepo:       repositories.NewMatchRepository(conn),
	}
	chatRepo := repositories.NewChatRepository(conn)
	vetoRepo := repositories.NewVetoRepository(conn)
	locks := NewKeyedMutex()

	env.auth = NewAuthService(env.userRepo, NewTokenIssuer("test-secret"))
	env.teams = NewTeamService(env.teamRepo, env.userRepo, env.uploader)
	env.tournaments = NewTournamentService(conn, env.tournamentRepo, env.phaseRepo, env.participantRepo, env.matchRepo, env.uploader, env.hub, locks, logger)
	env.phases = NewPhaseService(env.phaseRepo, env.tournamentRepo)
	env.participants = NewParticipantService(conn, env.participantRepo, env.tournamentRepo, env.teamRepo, env.matchRepo, env.phaseRepo, locks, env.hub, logger)
	env.matches = NewMatchService(conn, env.matchRepo, env.tournamentRepo, env.participantRepo, env.phaseRepo, locks, env.hub, logger)
	env.chat = NewChatService(chatRepo, env.matchRepo, env.userRepo, env.uploader, env.hub, 50)
	env.veto = NewVetoService(vetoRepo, env.matchRepo, env.tournamentRepo, env.participantRepo, env.teamRepo, env.hub)
	return env
}

func (e *testEnv) user(t *testing.T, name string, role models.UserRole) Actor {
	t.Helper()
	u := &models.User{
		ID:           uuid.New(),
		Username:     name,
		Email:        name + "@arena.test",
		PasswordHash: "hash",
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, e.userRepo.Create(e.ctx, u))
	return Actor{UserID: u.ID, Role: role}
}

func (e *testEnv) team(t *testing.T, name string) (*models.Team, Actor) {
	t.Helper()
	captain := e.user(t, name+"_captain", models.RolePlayer)
	team, err := e.teams.CreateTeam(e.ctx, captain, CreateTeamInput{Name: name, Tag: name[:3]})
	require.NoError(t, err)
	return team, captain
}

func (e *testEnv) tournament(t *testing.T, organizer Actor, format models.TournamentFormat) *models.Tournament {
	t.Helper()
	tour, err := e.tournaments.CreateTournament(e.ctx, organizer, CreateTournamentInput{
		Name:     "Arena Cup",
		Game:     "cs2",
		Format:   format,
		MaxTeams: 16,
		BestOf:   3,
		MapPool:  []string{"Mirage", "Inferno", "Nuke", "Ancient", "Anubis"},
	})
	require.NoError(t, err)
	return tour
}

func (e *testEnv) setStatus(t *testing.T, organizer Actor, id uuid.UUID, statuses ...models.TournamentStatus) {
	t.Helper()
	for _, st := range statuses {
		_, err := e.tournaments.ChangeStatus(e.ctx, id, organizer, st)
		require.NoError(t, err)
	}
}

type seededTeam struct {
	team        *models.Team
	captain     Actor
	participant *models.Participant
}

// startedTournament registers and checks in n teams, then starts the tournament.
func (e *testEnv) startedTournament(t *testing.T, format models.TournamentFormat, n int) (*models.TournamentDetails, Actor, []seededTeam) {
	t.Helper()
	organizer := e.user(t, "organizer_"+uuid.NewString()[:8], models.RoleOrganizer)
	tour := e.tournament(t, organizer, format)
	e.setStatus(t, organizer, tour.ID, models.TournamentRegistration)

	teams := make([]seededTeam, n)
	for i := 0; i < n; i++ {
		team, captain := e.team(t, "team_"+uuid.NewString()[:8])
		p, err := e.participants.RegisterTeam(e.ctx, tour.ID, team.ID, captain)
		require.NoError(t, err)
		seed := i + 1
		_, err = e.participants.SetSeedOrder(e.ctx, p.ID, organizer, &seed)
		require.NoError(t, err)
		teams[i] = seededTeam{team: team, captain: captain, participant: p}
	}

	e.setStatus(t, organizer, tour.ID, models.TournamentCheckIn)
	for _, st := range teams {
		_, err := e.participants.CheckIn(e.ctx, st.participant.ID, st.captain)
		require.NoError(t, err)
	}

	details, err := e.tournaments.StartTournament(e.ctx, tour.ID, organizer)
	require.NoError(t, err)
	return details, organizer, teams
}

func findMatch(matches []*models.Match, bracket models.BracketType, round, number int) *models.Match {
	for _, m := range matches {
		if m.BracketType == bracket && m.RoundNumber == round && m.MatchNumber == number {
			return m
		}
	}
	return nil
}
