package repositories

import (
	"testing"
	"time"

	"github.com/Dosada05/esport-arena/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhaseRepository(t *testing.T) {
	f := newFixture(t)
	tour := f.tournament(t, f.user(t, "org"))

	order, err := f.phases.NextOrder(f.ctx, tour.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, order)

	playoffs := &models.TournamentPhase{ID: uuid.New(), TournamentID: tour.ID, Name: "Playoffs", Order: 2, Status: models.PhaseDraft, CreatedAt: time.Now().UTC()}
	groups := &models.TournamentPhase{ID: uuid.New(), TournamentID: tour.ID, Name: "Groups", Order: 1, Status: models.PhaseReady, CreatedAt: time.Now().UTC()}
	require.NoError(t, f.phases.Create(f.ctx, playoffs))
	require.NoError(t, f.phases.Create(f.ctx, groups))

	order, err = f.phases.NextOrder(f.ctx, tour.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, order)

	list, err := f.phases.ListByTournament(f.ctx, tour.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Groups", list[0].Name)

	playoffs.Status = models.PhaseOngoing
	require.NoError(t, f.phases.Update(f.ctx, playoffs))
	got, err := f.phases.GetByID(f.ctx, playoffs.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PhaseOngoing, got.Status)

	require.NoError(t, f.phases.Delete(f.ctx, groups.ID))
	_, err = f.phases.GetByID(f.ctx, groups.ID)
	assert.ErrorIs(t, err, ErrPhaseNotFound)

	orphan := &models.TournamentPhase{ID: uuid.New(), TournamentID: uuid.New(), Name: "X", Order: 1, Status: models.PhaseDraft, CreatedAt: time.Now().UTC()}
	assert.ErrorIs(t, f.phases.Create(f.ctx, orphan), ErrPhaseTournamentInvalid)
}

func TestPhaseRepository_UpdateStatusInTx(t *testing.T) {
	f := newFixture(t)
	tour := f.tournament(t, f.user(t, "org"))
	phase := &models.TournamentPhase{ID: uuid.New(), TournamentID: tour.ID, Name: "Main", Order: 1, Status: models.PhaseReady, CreatedAt: time.Now().UTC()}
	require.NoError(t, f.phases.Create(f.ctx, phase))

	tx, err := f.db.BeginTxx(f.ctx, nil)
	require.NoError(t, err)
	require.NoError(t, f.phases.UpdateStatus(f.ctx, tx, phase.ID, models.PhaseOngoing))
	require.NoError(t, tx.Commit())

	got, err := f.phases.GetByID(f.ctx, phase.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PhaseOngoing, got.Status)
	assert.ErrorIs(t, f.phases.UpdateStatus(f.ctx, nil, uuid.New(), models.PhaseOngoing), ErrPhaseNotFound)
}
