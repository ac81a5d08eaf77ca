package services

import (
	"sync"
	"testing"

	"github.com/Dosada05/esport-arena/models"
	"github.com/Dosada05/esport-arena/realtime"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterTeam(t *testing.T) {
	env := newTestEnv(t)
	organizer := env.user(t, "organizer", models.RoleOrganizer)
	tour, err := env.tournaments.CreateTournament(env.ctx, organizer, CreateTournamentInput{
		Name: "Small Cup", Game: "cs2", Format: models.FormatSingleElimination, MaxTeams: 2,
	})
	require.NoError(t, err)

	first, firstCaptain := env.team(t, "first")
	second, secondCaptain := env.team(t, "second")
	third, thirdCaptain := env.team(t, "third")

	_, err = env.participants.RegisterTeam(env.ctx, tour.ID, first.ID, firstCaptain)
	assert.ErrorIs(t, err, ErrRegistrationNotOpen)

	env.setStatus(t, organizer, tour.ID, models.TournamentRegistration)

	_, err = env.participants.RegisterTeam(env.ctx, tour.ID, first.ID, secondCaptain)
	assert.ErrorIs(t, err, ErrUserMustBeCaptain)

	p, err := env.participants.RegisterTeam(env.ctx, tour.ID, first.ID, firstCaptain)
	require.NoError(t, err)
	assert.Equal(t, "first", p.TeamName)
	assert.False(t, p.CheckedIn)

	_, err = env.participants.RegisterTeam(env.ctx, tour.ID, first.ID, firstCaptain)
	assert.ErrorIs(t, err, ErrRegistrationConflict)

	_, err = env.participants.RegisterTeam(env.ctx, tour.ID, second.ID, secondCaptain)
	require.NoError(t, err)

	_, err = env.participants.RegisterTeam(env.ctx, tour.ID, third.ID, thirdCaptain)
	assert.ErrorIs(t, err, ErrTournamentFull)

	assert.Equal(t, 2, env.hub.count(realtime.TournamentRoom(tour.ID), realtime.EventParticipantUpdate))
}

func TestUnregister(t *testing.T) {
	env := newTestEnv(t)
	organizer := env.user(t, "organizer", models.RoleOrganizer)
	stranger := env.user(t, "stranger", models.RolePlayer)
	tour := env.tournament(t, organizer, models.FormatSingleElimination)
	env.setStatus(t, organizer, tour.ID, models.TournamentRegistration)

	team, captain := env.team(t, "leavers")
	p, err := env.participants.RegisterTeam(env.ctx, tour.ID, team.ID, captain)
	require.NoError(t, err)

	assert.ErrorIs(t, env.participants.Unregister(env.ctx, p.ID, stranger), ErrForbiddenOperation)
	require.NoError(t, env.participants.Unregister(env.ctx, p.ID, captain))

	list, err := env.participants.ListParticipants(env.ctx, tour.ID)
	require.NoError(t, err)
	assert.Empty(t, list)

	assert.ErrorIs(t, env.participants.Unregister(env.ctx, p.ID, organizer), ErrParticipantNotFound)
}

func TestListParticipantsOrderedBySeed(t *testing.T) {
	env := newTestEnv(t)
	organizer := env.user(t, "organizer", models.RoleOrganizer)
	tour := env.tournament(t, organizer, models.FormatSingleElimination)
	env.setStatus(t, organizer, tour.ID, models.TournamentRegistration)

	var ids []*models.Participant
	for _, name := range []string{"early", "middle", "late"} {
		team, captain := env.team(t, name)
		p, err := env.participants.RegisterTeam(env.ctx, tour.ID, team.ID, captain)
		require.NoError(t, err)
		ids = append(ids, p)
	}

	seed := 1
	_, err := env.participants.SetSeedOrder(env.ctx, ids[2].ID, organizer, &seed)
	require.NoError(t, err)

	zero := 0
	_, err = env.participants.SetSeedOrder(env.ctx, ids[0].ID, organizer, &zero)
	assert.ErrorIs(t, err, ErrInvalidSeedOrder)

	list, err := env.participants.ListParticipants(env.ctx, tour.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, ids[2].ID, list[0].ID)
	assert.Equal(t, ids[0].ID, list[1].ID)
	assert.Equal(t, ids[1].ID, list[2].ID)
}

func TestCheckIn(t *testing.T) {
	env := newTestEnv(t)
	organizer := env.user(t, "organizer", models.RoleOrganizer)
	tour := env.tournament(t, organizer, models.FormatSingleElimination)
	env.setStatus(t, organizer, tour.ID, models.TournamentRegistration)

	team, captain := env.team(t, "punctual")
	p, err := env.participants.RegisterTeam(env.ctx, tour.ID, team.ID, captain)
	require.NoError(t, err)

	_, err = env.participants.CheckIn(env.ctx, p.ID, captain)
	assert.ErrorIs(t, err, ErrCheckInNotOpen)

	env.setStatus(t, organizer, tour.ID, models.TournamentCheckIn)

	_, err = env.participants.CheckIn(env.ctx, p.ID, organizer)
	assert.ErrorIs(t, err, ErrCaptainActionForbidden)

	checked, err := env.participants.CheckIn(env.ctx, p.ID, captain)
	require.NoError(t, err)
	assert.True(t, checked.CheckedIn)
	assert.NotNil(t, checked.CheckedInAt)

	// Администратор может снять отметку до старта.
	unchecked, err := env.participants.SetCheckIn(env.ctx, p.ID, organizer, false)
	require.NoError(t, err)
	assert.False(t, unchecked.CheckedIn)
	assert.Nil(t, unchecked.CheckedInAt)

	dq, err := env.participants.SetDisqualified(env.ctx, p.ID, organizer, true)
	require.NoError(t, err)
	assert.True(t, dq.Disqualified)

	_, err = env.participants.CheckIn(env.ctx, p.ID, captain)
	assert.ErrorIs(t, err, ErrParticipantDisqualified)
	_, err = env.participants.SetCheckIn(env.ctx, p.ID, organizer, true)
	assert.ErrorIs(t, err, ErrParticipantDisqualified)

	// До старта дисквалификацию можно снять.
	back, err := env.participants.SetDisqualified(env.ctx, p.ID, organizer, false)
	require.NoError(t, err)
	assert.False(t, back.Disqualified)
}

func TestDisqualifyDuringTournamentForfeitsMatches(t *testing.T) {
	env := newTestEnv(t)
	details, organizer, teams := env.startedTournament(t, models.FormatSingleElimination, 4)
	seed1, seed4 := teams[0].participant, teams[3].participant

	player := env.user(t, "player", models.RolePlayer)
	_, err := env.participants.SetDisqualified(env.ctx, seed4.ID, player, true)
	assert.ErrorIs(t, err, ErrForbiddenOperation)

	updated, err := env.participants.SetDisqualified(env.ctx, seed4.ID, organizer, true)
	require.NoError(t, err)
	assert.True(t, updated.Disqualified)
	assert.False(t, updated.CheckedIn)

	matches, err := env.matches.ListMatches(env.ctx, details.Tournament.ID, nil)
	require.NoError(t, err)

	first := findMatch(matches, models.BracketWinners, 1, 1)
	require.NotNil(t, first)
	assert.Equal(t, models.MatchCompleted, first.Status)
	require.NotNil(t, first.WinnerID)
	assert.Equal(t, seed1.ID, *first.WinnerID)

	final := findMatch(matches, models.BracketWinners, 2, 1)
	require.NotNil(t, final)
	require.NotNil(t, final.Team1ID)
	assert.Equal(t, seed1.ID, *final.Team1ID)

	assert.Positive(t, env.hub.count(realtime.MatchRoom(first.ID), realtime.EventMatchUpdated))
}

func TestReinstateDuringTournamentIsLocked(t *testing.T) {
	env := newTestEnv(t)
	details, organizer, teams := env.startedTournament(t, models.FormatSingleElimination, 4)
	seed4 := teams[3].participant

	_, err := env.participants.SetDisqualified(env.ctx, seed4.ID, organizer, true)
	require.NoError(t, err)

	_, err = env.participants.SetDisqualified(env.ctx, seed4.ID, organizer, false)
	assert.ErrorIs(t, err, ErrTournamentLocked)

	list, err := env.participants.ListParticipants(env.ctx, details.Tournament.ID)
	require.NoError(t, err)
	for _, p := range list {
		assert.Equal(t, p.ID == seed4.ID, p.Disqualified, p.ID)
	}

	matches, err := env.matches.ListMatches(env.ctx, details.Tournament.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, models.MatchCompleted, findMatch(matches, models.BracketWinners, 1, 1).Status)
}

func TestConcurrentDisqualificationsSettleBothMatches(t *testing.T) {
	env := newTestEnv(t)
	details, organizer, teams := env.startedTournament(t, models.FormatSingleElimination, 4)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, p := range []*models.Participant{teams[2].participant, teams[3].participant} {
		wg.Add(1)
		go func(i int, id uuid.UUID) {
			defer wg.Done()
			_, errs[i] = env.participants.SetDisqualified(env.ctx, id, organizer, true)
		}(i, p.ID)
	}
	wg.Wait()
	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	matches, err := env.matches.ListMatches(env.ctx, details.Tournament.ID, nil)
	require.NoError(t, err)
	final := findMatch(matches, models.BracketWinners, 2, 1)
	require.NotNil(t, final.Team1ID)
	require.NotNil(t, final.Team2ID)
	assert.Equal(t, teams[0].participant.ID, *final.Team1ID)
	assert.Equal(t, teams[1].participant.ID, *final.Team2ID)
}
