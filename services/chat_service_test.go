package services

import (
	"strings"
	"testing"
	"time"

	"github.com/Dosada05/esport-arena/models"
	"github.com/Dosada05/esport-arena/realtime"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendMessage(t *testing.T) {
	env := newTestEnv(t)
	details, _, teams := env.startedTournament(t, models.FormatSingleElimination, 2)
	match := details.Matches[0]
	author := teams[0].captain

	tests := []struct {
		name    string
		userID  uuid.UUID
		matchID uuid.UUID
		text    string
		wantErr error
	}{
		{"empty", author.UserID, match.ID, "   ", ErrMessageEmpty},
		{"too long", author.UserID, match.ID, strings.Repeat("a", 501), ErrMessageTooLong},
		{"unknown user", uuid.New(), match.ID, "gl hf", ErrUserNotFound},
		{"unknown match", author.UserID, uuid.New(), "gl hf", ErrMatchNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.chat.SendMessage(env.ctx, tt.matchID, tt.userID, tt.text)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
	assert.Equal(t, "Le message est trop long", ErrMessageTooLong.Error())
	assert.Equal(t, "Utilisateur non trouvé", ErrUserNotFound.Error())

	// 500 символов, включая многобайтовые, допустимы.
	msg, err := env.chat.SendMessage(env.ctx, match.ID, author.UserID, strings.Repeat("é", 500))
	require.NoError(t, err)
	assert.Equal(t, 500, len([]rune(msg.Message)))

	msg, err = env.chat.SendMessage(env.ctx, match.ID, author.UserID, "  gl hf  ")
	require.NoError(t, err)
	assert.Equal(t, "gl hf", msg.Message)
	assert.NotEmpty(t, msg.Username)

	assert.Equal(t, 2, env.hub.count(realtime.MatchRoom(match.ID), realtime.EventChatMessage))
}

func TestListMessagesReturnsNewestPageInOrder(t *testing.T) {
	env := newTestEnv(t)
	details, _, teams := env.startedTournament(t, models.FormatSingleElimination, 2)
	match := details.Matches[0]

	texts := []string{"one", "two", "three", "four"}
	for i, text := range texts {
		_, err := env.chat.SendMessage(env.ctx, match.ID, teams[i%2].captain.UserID, text)
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)
	}

	all, err := env.chat.ListMessages(env.ctx, match.ID, 0)
	require.NoError(t, err)
	require.Len(t, all, 4)
	for i, m := range all {
		assert.Equal(t, texts[i], m.Message)
	}

	page, err := env.chat.ListMessages(env.ctx, match.ID, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "three", page[0].Message)
	assert.Equal(t, "four", page[1].Message)

	_, err = env.chat.ListMessages(env.ctx, uuid.New(), 10)
	assert.ErrorIs(t, err, ErrMatchNotFound)
}
