package repositories

import (
	"testing"
	"time"

	"github.com/Dosada05/esport-arena/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTournamentRepository_CreateAndGet(t *testing.T) {
	f := newFixture(t)
	org := f.user(t, "org")
	tour := f.tournament(t, org)

	got, err := f.tournaments.GetByID(f.ctx, tour.ID)
	require.NoError(t, err)
	assert.Equal(t, "Arena Cup", got.Name)
	assert.Equal(t, models.MapPool{"mirage", "inferno", "nuke"}, got.MapPool)
	assert.Nil(t, got.WinnerParticipantID)

	_, err = f.tournaments.GetByID(f.ctx, uuid.New())
	assert.ErrorIs(t, err, ErrTournamentNotFound)

	bad := *tour
	bad.ID = uuid.New()
	bad.OrganizerID = uuid.New()
	assert.ErrorIs(t, f.tournaments.Create(f.ctx, &bad), ErrTournamentInvalidOrg)
}

func TestTournamentRepository_ListFilters(t *testing.T) {
	f := newFixture(t)
	org := f.user(t, "org")
	first := f.tournament(t, org)
	second := f.tournament(t, org)
	require.NoError(t, f.tournaments.UpdateStatus(f.ctx, nil, second.ID, models.TournamentOngoing))

	all, err := f.tournaments.List(f.ctx, ListTournamentsFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	status := models.TournamentRegistration
	filtered, err := f.tournaments.List(f.ctx, ListTournamentsFilter{Status: &status})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, first.ID, filtered[0].ID)

	limited, err := f.tournaments.List(f.ctx, ListTournamentsFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestTournamentRepository_Updates(t *testing.T) {
	f := newFixture(t)
	org := f.user(t, "org")
	tour := f.tournament(t, org)

	tour.Name = "Arena Major"
	tour.MapPool = models.MapPool{"ancient"}
	require.NoError(t, f.tournaments.Update(f.ctx, tour))

	winner := uuid.New()
	require.NoError(t, f.tournaments.UpdateWinner(f.ctx, nil, tour.ID, &winner))

	got, err := f.tournaments.GetByID(f.ctx, tour.ID)
	require.NoError(t, err)
	assert.Equal(t, "Arena Major", got.Name)
	assert.Equal(t, models.MapPool{"ancient"}, got.MapPool)
	require.NotNil(t, got.WinnerParticipantID)
	assert.Equal(t, winner, *got.WinnerParticipantID)

	assert.ErrorIs(t, f.tournaments.UpdateStatus(f.ctx, nil, uuid.New(), models.TournamentOngoing), ErrTournamentNotFound)

	require.NoError(t, f.tournaments.Delete(f.ctx, tour.ID))
	assert.ErrorIs(t, f.tournaments.Delete(f.ctx, tour.ID), ErrTournamentNotFound)
}

func TestTournamentRepository_ListDueForCheckIn(t *testing.T) {
	f := newFixture(t)
	org := f.user(t, "org")
	due := f.tournament(t, org)
	later := f.tournament(t, org)

	now := time.Now().UTC()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)
	due.CheckInOpensAt = &past
	later.CheckInOpensAt = &future
	require.NoError(t, f.tournaments.Update(f.ctx, due))
	require.NoError(t, f.tournaments.Update(f.ctx, later))

	list, err := f.tournaments.ListDueForCheckIn(f.ctx, now)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, due.ID, list[0].ID)
}
