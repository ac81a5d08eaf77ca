package repositories

import (
	"testing"
	"time"

	"github.com/Dosada05/esport-arena/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParticipantRepository_Create(t *testing.T) {
	f := newFixture(t)
	org := f.user(t, "org")
	captain := f.user(t, "cap")
	tour := f.tournament(t, org)
	team := f.team(t, "Astralis", captain)

	p := f.participant(t, tour, team)

	got, err := f.participants.GetByID(f.ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Astralis", got.TeamName)
	assert.Equal(t, "As", got.TeamTag)
	assert.False(t, got.CheckedIn)
	assert.Nil(t, got.SeedOrder)

	dup := &models.Participant{ID: uuid.New(), TournamentID: tour.ID, TeamID: team.ID, UserID: captain.ID, CreatedAt: time.Now().UTC()}
	assert.ErrorIs(t, f.participants.Create(f.ctx, dup), ErrParticipantConflict)

	orphan := &models.Participant{ID: uuid.New(), TournamentID: uuid.New(), TeamID: team.ID, UserID: captain.ID, CreatedAt: time.Now().UTC()}
	assert.ErrorIs(t, f.participants.Create(f.ctx, orphan), ErrParticipantReferenceInvalid)

	count, err := f.participants.CountByTournament(f.ctx, tour.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestParticipantRepository_AdminFlags(t *testing.T) {
	f := newFixture(t)
	org := f.user(t, "org")
	captain := f.user(t, "cap")
	tour := f.tournament(t, org)
	p := f.participant(t, tour, f.team(t, "Liquid", captain))

	at := time.Now().UTC()
	require.NoError(t, f.participants.UpdateCheckIn(f.ctx, p.ID, true, &at))
	seed := 2
	require.NoError(t, f.participants.UpdateSeedOrder(f.ctx, p.ID, &seed))

	got, err := f.participants.GetByID(f.ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, got.CheckedIn)
	assert.NotNil(t, got.CheckedInAt)
	require.NotNil(t, got.SeedOrder)
	assert.Equal(t, 2, *got.SeedOrder)
	assert.True(t, got.Eligible())

	require.NoError(t, f.participants.UpdateDisqualified(f.ctx, nil, p.ID, true))
	got, err = f.participants.GetByID(f.ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, got.Disqualified)
	assert.False(t, got.CheckedIn)
	assert.Nil(t, got.CheckedInAt)
	assert.False(t, got.Eligible())

	assert.ErrorIs(t, f.participants.UpdateSeedOrder(f.ctx, uuid.New(), nil), ErrParticipantNotFound)
}

func TestParticipantRepository_ListByTournamentOrder(t *testing.T) {
	f := newFixture(t)
	org := f.user(t, "org")
	tour := f.tournament(t, org)
	first := f.participant(t, tour, f.team(t, "Faze", f.user(t, "a")))
	second := f.participant(t, tour, f.team(t, "G2", f.user(t, "b")))

	list, err := f.participants.ListByTournament(f.ctx, nil, tour.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID)
	assert.Equal(t, second.ID, list[1].ID)

	require.NoError(t, f.participants.Delete(f.ctx, first.ID))
	assert.ErrorIs(t, f.participants.Delete(f.ctx, first.ID), ErrParticipantNotFound)
}
