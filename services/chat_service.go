package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Dosada05/esport-arena/models"
	"github.com/Dosada05/esport-arena/realtime"
	"github.com/Dosada05/esport-arena/repositories"
	"github.com/Dosada05/esport-arena/storage"
	"github.com/google/uuid"
)

const maxChatMessageLength = 500

type ChatService interface {
	ListMessages(ctx context.Context, matchID uuid.UUID, limit int) ([]models.ChatMessage, error)
	SendMessage(ctx context.Context, matchID uuid.UUID, userID uuid.UUID, text string) (*models.ChatMessage, error)
}

type chatService struct {
	chatRepo  repositories.ChatRepository
	matchRepo repositories.MatchRepository
	userRepo  repositories.UserRepository
	uploader  storage.FileUploader
	hub       realtime.Broadcaster
	pageSize  int
}

func NewChatService(
	chatRepo repositories.ChatRepository,
	matchRepo repositories.MatchRepository,
	userRepo repositories.UserRepository,
	uploader storage.FileUploader,
	hub realtime.Broadcaster,
	pageSize int,
) ChatService {
	return &chatService{
		chatRepo:  chatRepo,
		matchRepo: matchRepo,
		userRepo:  userRepo,
		uploader:  uploader,
		hub:       hub,
		pageSize:  pageSize,
	}
}

// ListMessages returns the newest messages of a match in chronological order.
func (s *chatService) ListMessages(ctx context.Context, matchID uuid.UUID, limit int) ([]models.ChatMessage, error) {
	if err := s.ensureMatch(ctx, matchID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = s.pageSize
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	messages, err := s.chatRepo.ListRecent(ctx, matchID, limit)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	for i := range messages {
		messages[i].AvatarURL = populateLogoURL(messages[i].AvatarKey, s.uploader)
	}
	return messages, nil
}

func (s *chatService) SendMessage(ctx context.Context, matchID uuid.UUID, userID uuid.UUID, text string) (*models.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrMessageEmpty
	}
	if utf8.RuneCountInString(text) > maxChatMessageLength {
		return nil, ErrMessageTooLong
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %s: %w", userID, err)
	}
	if err := s.ensureMatch(ctx, matchID); err != nil {
		return nil, err
	}

	msg := &models.ChatMessage{
		ID:        uuid.New(),
		MatchID:   matchID,
		UserID:    userID,
		Message:   text,
		CreatedAt: time.Now().UTC(),
		Username:  user.Username,
		AvatarKey: user.AvatarKey,
	}
	if err := s.chatRepo.Create(ctx, msg); err != nil {
		if errors.Is(err, repositories.ErrChatReferenceInvalid) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to save chat message: %w", err)
	}
	msg.AvatarURL = populateLogoURL(msg.AvatarKey, s.uploader)

	s.hub.BroadcastToRoom(realtime.MatchRoom(matchID), realtime.EventChatMessage, msg)
	return msg, nil
}

func (s *chatService) ensureMatch(ctx context.Context, matchID uuid.UUID) error {
	if _, err := s.matchRepo.GetByID(ctx, nil, matchID); err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return ErrMatchNotFound
		}
		return fmt.Errorf("failed to get match %s: %w", matchID, err)
	}
	return nil
}
