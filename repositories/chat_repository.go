package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/esport-arena/models"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var ErrChatReferenceInvalid = errors.New("chat message match or user invalid")

type ChatRepository interface {
	Create(ctx context.Context, msg *models.ChatMessage) error
	// ListRecent returns the newest limit messages of a match, newest first,
	// joined with the author's display fields.
	ListRecent(ctx context.Context, matchID uuid.UUID, limit int) ([]models.ChatMessage, error)
}

type sqlChatRepository struct {
	db *sqlx.DB
}

func NewChatRepository(db *sqlx.DB) ChatRepository {
	return &sqlChatRepository{db: db}
}

func (r *sqlChatRepository) Create(ctx context.Context, msg *models.ChatMessage) error {
	query := `
		INSERT INTO chat_messages (id, match_id, user_id, message, created_at)
		VALUES (:id, :match_id, :user_id, :message, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, msg); err != nil {
		if isForeignKeyViolation(err) {
			return ErrChatReferenceInvalid
		}
		return fmt.Errorf("failed to create chat message: %w", err)
	}
	return nil
}

func (r *sqlChatRepository) ListRecent(ctx context.Context, matchID uuid.UUID, limit int) ([]models.ChatMessage, error) {
	query := `
		SELECT c.id, c.match_id, c.user_id, c.message, c.created_at, u.username, u.avatar_key
		FROM chat_messages c
		JOIN users u ON u.id = c.user_id
		WHERE c.match_id = ?
		ORDER BY c.created_at DESC, c.id DESC
		LIMIT ?`
	messages := make([]models.ChatMessage, 0, limit)
	if err := r.db.SelectContext(ctx, &messages, r.db.Rebind(query), matchID, limit); err != nil {
		return nil, fmt.Errorf("failed to list chat messages for match %s: %w", matchID, err)
	}
	return messages, nil
}
