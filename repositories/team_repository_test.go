package repositories

import (
	"testing"
	"time"

	"github.com/Dosada05/esport-arena/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTeamRepository_CreateAddsCaptain(t *testing.T) {
	f := newFixture(t)
	captain := f.user(t, "captain")
	team := f.team(t, "Navi", captain)

	members, err := f.teams.ListMembers(f.ctx, team.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, captain.ID, members[0].UserID)
	assert.Equal(t, "captain", members[0].Username)

	dup := &models.Team{ID: uuid.New(), Name: "Navi", CaptainID: captain.ID, CreatedAt: time.Now().UTC()}
	assert.ErrorIs(t, f.teams.Create(f.ctx, dup), ErrTeamNameConflict)
}

func TestTeamRepository_Members(t *testing.T) {
	f := newFixture(t)
	captain := f.user(t, "captain")
	player := f.user(t, "player")
	team := f.team(t, "Vitality", captain)

	require.NoError(t, f.teams.AddMember(f.ctx, team.ID, player.ID))
	assert.ErrorIs(t, f.teams.AddMember(f.ctx, team.ID, player.ID), ErrTeamMemberConflict)
	assert.ErrorIs(t, f.teams.AddMember(f.ctx, team.ID, uuid.New()), ErrTeamMemberUserInvalid)

	ok, err := f.teams.IsMember(f.ctx, team.ID, player.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	teams, err := f.teams.ListByMember(f.ctx, player.ID)
	require.NoError(t, err)
	require.Len(t, teams, 1)
	assert.Equal(t, team.ID, teams[0].ID)

	require.NoError(t, f.teams.RemoveMember(f.ctx, team.ID, player.ID))
	assert.ErrorIs(t, f.teams.RemoveMember(f.ctx, team.ID, player.ID), ErrTeamMemberNotFound)

	key := "teams/logo.png"
	require.NoError(t, f.teams.UpdateLogoKey(f.ctx, team.ID, &key))
	got, err := f.teams.GetByID(f.ctx, team.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LogoKey)
	assert.Equal(t, key, *got.LogoKey)
}
