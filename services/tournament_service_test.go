package services

import (
	"strings"
	"testing"
	"time"

	"github.com/Dosada05/esport-arena/models"
	"github.com/Dosada05/esport-arena/realtime"
	"github.com/Dosada05/esport-arena/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTournament(t *testing.T) {
	env := newTestEnv(t)
	organizer := env.user(t, "organizer", models.RoleOrganizer)
	player := env.user(t, "player", models.RolePlayer)

	t.Run("defaults", func(t *testing.T) {
		tour, err := env.tournaments.CreateTournament(env.ctx, organizer, CreateTournamentInput{
			Name:     "  Spring Open ",
			Game:     "valorant",
			Format:   models.FormatDoubleElimination,
			MaxTeams: 8,
			MapPool:  []string{" Ascent", "Bind"},
		})
		require.NoError(t, err)
		assert.Equal(t, "Spring Open", tour.Name)
		assert.Equal(t, models.TournamentDraft, tour.Status)
		assert.Equal(t, 1, tour.BestOf)
		assert.Equal(t, models.MapPool{"Ascent", "Bind"}, tour.MapPool)
		assert.Equal(t, organizer.UserID, tour.OrganizerID)
	})

	startsAt := time.Now().Add(24 * time.Hour)
	lateCheckIn := startsAt.Add(time.Hour)

	tests := []struct {
		name    string
		actor   Actor
		mutate  func(in *CreateTournamentInput)
		wantErr error
	}{
		{"player cannot organize", player, func(in *CreateTournamentInput) {}, ErrForbiddenOperation},
		{"name required", organizer, func(in *CreateTournamentInput) { in.Name = "  " }, ErrTournamentNameRequired},
		{"game required", organizer, func(in *CreateTournamentInput) { in.Game = "" }, ErrTournamentGameRequired},
		{"unknown format", organizer, func(in *CreateTournamentInput) { in.Format = "swiss" }, ErrTournamentInvalidFormat},
		{"capacity", organizer, func(in *CreateTournamentInput) { in.MaxTeams = 1 }, ErrTournamentInvalidCapacity},
		{"best of", organizer, func(in *CreateTournamentInput) { in.BestOf = 2 }, ErrTournamentInvalidBestOf},
		{"duplicate map", organizer, func(in *CreateTournamentInput) { in.MapPool = []string{"Mirage", "mirage"} }, ErrTournamentInvalidMapPool},
		{"empty map", organizer, func(in *CreateTournamentInput) { in.MapPool = []string{"Mirage", " "} }, ErrTournamentInvalidMapPool},
		{"check-in after start", organizer, func(in *CreateTournamentInput) {
			in.StartsAt = &startsAt
			in.CheckInOpensAt = &lateCheckIn
		}, ErrTournamentInvalidDates},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := CreateTournamentInput{Name: "Cup", Game: "cs2", Format: models.FormatSingleElimination, MaxTeams: 4}
			tt.mutate(&in)
			_, err := env.tournaments.CreateTournament(env.ctx, tt.actor, in)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestChangeStatus(t *testing.T) {
	env := newTestEnv(t)
	organizer := env.user(t, "organizer", models.RoleOrganizer)
	other := env.user(t, "other", models.RoleOrganizer)
	admin := env.user(t, "admin", models.RoleAdmin)
	tour := env.tournament(t, organizer, models.FormatSingleElimination)

	_, err := env.tournaments.ChangeStatus(env.ctx, tour.ID, organizer, models.TournamentCheckIn)
	assert.ErrorIs(t, err, ErrTournamentInvalidStatusTransition)

	_, err = env.tournaments.ChangeStatus(env.ctx, tour.ID, organizer, "finished")
	assert.ErrorIs(t, err, ErrTournamentInvalidStatus)

	_, err = env.tournaments.ChangeStatus(env.ctx, tour.ID, other, models.TournamentRegistration)
	assert.ErrorIs(t, err, ErrForbiddenOperation)

	updated, err := env.tournaments.ChangeStatus(env.ctx, tour.ID, organizer, models.TournamentRegistration)
	require.NoError(t, err)
	assert.Equal(t, models.TournamentRegistration, updated.Status)

	// ongoing только через старт из check_in
	_, err = env.tournaments.ChangeStatus(env.ctx, tour.ID, organizer, models.TournamentOngoing)
	assert.ErrorIs(t, err, ErrTournamentInvalidStatusTransition)

	updated, err = env.tournaments.ChangeStatus(env.ctx, tour.ID, admin, models.TournamentCanceled)
	require.NoError(t, err)
	assert.Equal(t, models.TournamentCanceled, updated.Status)

	_, err = env.tournaments.ChangeStatus(env.ctx, tour.ID, organizer, models.TournamentRegistration)
	assert.ErrorIs(t, err, ErrTournamentInvalidStatusTransition)

	assert.Equal(t, 2, env.hub.count(realtime.TournamentRoom(tour.ID), realtime.EventTournamentUpdated))
}

func TestStartTournamentSeedsEligibleParticipants(t *testing.T) {
	env := newTestEnv(t)
	organizer := env.user(t, "organizer", models.RoleOrganizer)
	tour := env.tournament(t, organizer, models.FormatSingleElimination)
	phase, err := env.phases.CreatePhase(env.ctx, tour.ID, organizer, CreatePhaseInput{Name: "Playoffs"})
	require.NoError(t, err)
	env.setStatus(t, organizer, tour.ID, models.TournamentRegistration)

	register := func(name string) (*models.Participant, Actor) {
		team, captain := env.team(t, name)
		p, err := env.participants.RegisterTeam(env.ctx, tour.ID, team.ID, captain)
		require.NoError(t, err)
		return p, captain
	}
	alpha, alphaCaptain := register("alpha")
	bravo, bravoCaptain := register("bravo")
	charlie, charlieCaptain := register("charlie")
	delta, _ := register("delta")

	one, two := 1, 2
	_, err = env.participants.SetSeedOrder(env.ctx, charlie.ID, organizer, &one)
	require.NoError(t, err)
	_, err = env.participants.SetSeedOrder(env.ctx, alpha.ID, organizer, &two)
	require.NoError(t, err)

	env.setStatus(t, organizer, tour.ID, models.TournamentCheckIn)
	for _, c := range []struct {
		p     *models.Participant
		actor Actor
	}{{alpha, alphaCaptain}, {bravo, bravoCaptain}, {charlie, charlieCaptain}} {
		_, err := env.participants.CheckIn(env.ctx, c.p.ID, c.actor)
		require.NoError(t, err)
	}
	// delta не отметилась и в сетку не попадает

	details, err := env.tournaments.StartTournament(env.ctx, tour.ID, organizer)
	require.NoError(t, err)

	assert.Equal(t, models.TournamentOngoing, details.Tournament.Status)
	require.Len(t, details.Matches, 3)

	first := findMatch(details.Matches, models.BracketWinners, 1, 1)
	require.NotNil(t, first)
	assert.Equal(t, charlie.ID, *first.Team1ID)
	assert.Nil(t, first.Team2ID)
	assert.Equal(t, models.MatchCompleted, first.Status, "bye resolves as walkover")
	assert.Equal(t, charlie.ID, *first.WinnerID)

	second := findMatch(details.Matches, models.BracketWinners, 1, 2)
	require.NotNil(t, second)
	assert.Equal(t, alpha.ID, *second.Team1ID)
	assert.Equal(t, bravo.ID, *second.Team2ID)

	final := findMatch(details.Matches, models.BracketWinners, 2, 1)
	require.NotNil(t, final)
	assert.Equal(t, charlie.ID, *final.Team1ID)

	for _, m := range details.Matches {
		require.NotNil(t, m.PhaseID)
		assert.Equal(t, phase.ID, *m.PhaseID)
		assert.False(t, m.HasTeam(delta.ID))
	}
	require.Len(t, details.Phases, 1)
	assert.Equal(t, models.PhaseOngoing, details.Phases[0].Status)

	assert.Equal(t, 1, env.hub.count(realtime.TournamentRoom(tour.ID), realtime.EventBracketGenerated))

	_, err = env.tournaments.StartTournament(env.ctx, tour.ID, organizer)
	assert.ErrorIs(t, err, ErrTournamentInvalidStatusTransition)
}

func TestStartTournamentNeedsTwoEligibleParticipants(t *testing.T) {
	env := newTestEnv(t)
	organizer := env.user(t, "organizer", models.RoleOrganizer)
	tour := env.tournament(t, organizer, models.FormatSingleElimination)
	env.setStatus(t, organizer, tour.ID, models.TournamentRegistration)

	team, captain := env.team(t, "solo")
	p, err := env.participants.RegisterTeam(env.ctx, tour.ID, team.ID, captain)
	require.NoError(t, err)
	other, otherCaptain := env.team(t, "absent")
	_, err = env.participants.RegisterTeam(env.ctx, tour.ID, other.ID, otherCaptain)
	require.NoError(t, err)

	env.setStatus(t, organizer, tour.ID, models.TournamentCheckIn)
	_, err = env.participants.CheckIn(env.ctx, p.ID, captain)
	require.NoError(t, err)

	_, err = env.tournaments.StartTournament(env.ctx, tour.ID, organizer)
	assert.ErrorIs(t, err, ErrNotEnoughParticipants)

	got, err := env.tournaments.GetTournament(env.ctx, tour.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TournamentCheckIn, got.Status)
}

func TestUpdateTournament(t *testing.T) {
	env := newTestEnv(t)
	organizer := env.user(t, "organizer", models.RoleOrganizer)
	tour := env.tournament(t, organizer, models.FormatSingleElimination)
	env.setStatus(t, organizer, tour.ID, models.TournamentRegistration)

	for _, name := range []string{"first", "second", "third"} {
		team, captain := env.team(t, name)
		_, err := env.participants.RegisterTeam(env.ctx, tour.ID, team.ID, captain)
		require.NoError(t, err)
	}

	two := 2
	_, err := env.tournaments.UpdateTournament(env.ctx, tour.ID, organizer, UpdateTournamentInput{MaxTeams: &two})
	assert.ErrorIs(t, err, ErrTournamentInvalidCapacity)

	name, four := "Renamed Cup", 4
	updated, err := env.tournaments.UpdateTournament(env.ctx, tour.ID, organizer, UpdateTournamentInput{
		Name:     &name,
		MaxTeams: &four,
		MapPool:  []string{"Dust2"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed Cup", updated.Name)
	assert.Equal(t, 4, updated.MaxTeams)
	assert.Equal(t, models.MapPool{"Dust2"}, updated.MapPool)

	got, err := env.tournaments.GetTournament(env.ctx, tour.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed Cup", got.Name)

	env.setStatus(t, organizer, tour.ID, models.TournamentCanceled)
	_, err = env.tournaments.UpdateTournament(env.ctx, tour.ID, organizer, UpdateTournamentInput{Name: &name})
	assert.ErrorIs(t, err, ErrTournamentLocked)
}

func TestDeleteTournament(t *testing.T) {
	env := newTestEnv(t)
	organizer := env.user(t, "organizer", models.RoleOrganizer)
	tour := env.tournament(t, organizer, models.FormatSingleElimination)
	env.setStatus(t, organizer, tour.ID, models.TournamentRegistration)

	assert.ErrorIs(t, env.tournaments.DeleteTournament(env.ctx, tour.ID, organizer), ErrTournamentNotDeletable)

	env.setStatus(t, organizer, tour.ID, models.TournamentCanceled)
	require.NoError(t, env.tournaments.DeleteTournament(env.ctx, tour.ID, organizer))

	_, err := env.tournaments.GetTournament(env.ctx, tour.ID)
	assert.ErrorIs(t, err, ErrTournamentNotFound)
}

func TestListTournaments(t *testing.T) {
	env := newTestEnv(t)
	organizer := env.user(t, "organizer", models.RoleOrganizer)
	open := env.tournament(t, organizer, models.FormatSingleElimination)
	env.tournament(t, organizer, models.FormatSingleElimination)
	env.tournament(t, organizer, models.FormatDoubleElimination)
	env.setStatus(t, organizer, open.ID, models.TournamentRegistration)

	all, err := env.tournaments.ListTournaments(env.ctx, ListTournamentsFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	page, err := env.tournaments.ListTournaments(env.ctx, ListTournamentsFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page, 2)

	status := models.TournamentRegistration
	filtered, err := env.tournaments.ListTournaments(env.ctx, ListTournamentsFilter{Status: &status})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, open.ID, filtered[0].ID)

	bad := models.TournamentStatus("archived")
	_, err = env.tournaments.ListTournaments(env.ctx, ListTournamentsFilter{Status: &bad})
	assert.ErrorIs(t, err, ErrTournamentInvalidStatus)
}

func TestAutoUpdateStatuses(t *testing.T) {
	env := newTestEnv(t)
	organizer := env.user(t, "organizer", models.RoleOrganizer)
	now := time.Now().UTC()
	past, future := now.Add(-time.Minute), now.Add(time.Hour)

	create := func(checkIn time.Time) *models.Tournament {
		tour, err := env.tournaments.CreateTournament(env.ctx, organizer, CreateTournamentInput{
			Name: "Cup", Game: "cs2", Format: models.FormatSingleElimination, MaxTeams: 4, CheckInOpensAt: &checkIn,
		})
		require.NoError(t, err)
		env.setStatus(t, organizer, tour.ID, models.TournamentRegistration)
		return tour
	}
	due := create(past)
	later := create(future)

	updated, err := env.tournaments.AutoUpdateStatuses(env.ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, updated)

	got, err := env.tournaments.GetTournament(env.ctx, due.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TournamentCheckIn, got.Status)

	got, err = env.tournaments.GetTournament(env.ctx, later.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TournamentRegistration, got.Status)

	updated, err = env.tournaments.AutoUpdateStatuses(env.ctx, now)
	require.NoError(t, err)
	assert.Zero(t, updated)
}

func TestTournamentUploadLogo(t *testing.T) {
	env := newTestEnv(t)
	organizer := env.user(t, "organizer", models.RoleOrganizer)
	tour := env.tournament(t, organizer, models.FormatSingleElimination)

	first, err := env.tournaments.UploadLogo(env.ctx, tour.ID, organizer, "image/png", strings.NewReader("png"))
	require.NoError(t, err)
	require.NotNil(t, first.LogoKey)
	assert.True(t, strings.HasPrefix(*first.LogoKey, "tournaments/"+tour.ID.String()+"/logo-"))
	require.NotNil(t, first.LogoURL)
	assert.True(t, env.uploader.has(*first.LogoKey))
	oldKey := *first.LogoKey

	second, err := env.tournaments.UploadLogo(env.ctx, tour.ID, organizer, "image/webp", strings.NewReader("webp"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(*second.LogoKey, ".webp"))
	assert.False(t, env.uploader.has(oldKey))

	_, err = env.tournaments.UploadLogo(env.ctx, tour.ID, organizer, "application/pdf", strings.NewReader("pdf"))
	assert.ErrorIs(t, err, storage.ErrUnsupportedContentType)
}
