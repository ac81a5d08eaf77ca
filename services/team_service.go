package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Dosada05/esport-arena/models"
	"github.com/Dosada05/esport-arena/repositories"
	"github.com/Dosada05/esport-arena/storage"
	"github.com/google/uuid"
)

type TeamService interface {
	CreateTeam(ctx context.Context, actor Actor, input CreateTeamInput) (*models.Team, error)
	GetTeam(ctx context.Context, id uuid.UUID) (*models.Team, error)
	ListMyTeams(ctx context.Context, actor Actor) ([]models.Team, error)
	AddMember(ctx context.Context, teamID, userID uuid.UUID, actor Actor) (*models.Team, error)
	RemoveMember(ctx context.Context, teamID, userID uuid.UUID, actor Actor) error
	UploadLogo(ctx context.Context, teamID uuid.UUID, actor Actor, contentType string, file io.Reader) (*models.Team, error)
}

type CreateTeamInput struct {
	Name string `json:"name" validate:"required,max=64"`
	Tag  string `json:"tag" validate:"max=8"`
}

type teamService struct {
	teamRepo repositories.TeamRepository
	userRepo repositories.UserRepository
	uploader storage.FileUploader
}

func NewTeamService(teamRepo repositories.TeamRepository, userRepo repositories.UserRepository, uploader storage.FileUploader) TeamService {
	return &teamService{teamRepo: teamRepo, userRepo: userRepo, uploader: uploader}
}

func (s *teamService) CreateTeam(ctx context.Context, actor Actor, input CreateTeamInput) (*models.Team, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrTeamNameRequired
	}

	team := &models.Team{
		ID:        uuid.New(),
		Name:      name,
		Tag:       strings.ToUpper(strings.TrimSpace(input.Tag)),
		CaptainID: actor.UserID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.teamRepo.Create(ctx, team); err != nil {
		switch {
		case errors.Is(err, repositories.ErrTeamNameConflict):
			return nil, ErrTeamNameConflict
		case errors.Is(err, repositories.ErrTeamMemberUserInvalid):
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to create team: %w", err)
	}
	return s.GetTeam(ctx, team.ID)
}

func (s *teamService) GetTeam(ctx context.Context, id uuid.UUID) (*models.Team, error) {
	team, err := s.getTeam(ctx, id)
	if err != nil {
		return nil, err
	}
	members, err := s.teamRepo.ListMembers(ctx, id)
	if err != nil {
		return nil, err
	}
	team.Members = members
	team.LogoURL = populateLogoURL(team.LogoKey, s.uploader)
	return team, nil
}

func (s *teamService) getTeam(ctx context.Context, id uuid.UUID) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team %s: %w", id, err)
	}
	return team, nil
}

func (s *teamService) ListMyTeams(ctx context.Context, actor Actor) ([]models.Team, error) {
	teams, err := s.teamRepo.ListByMember(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	for i := range teams {
		teams[i].LogoURL = populateLogoURL(teams[i].LogoKey, s.uploader)
	}
	return teams, nil
}

func (s *teamService) AddMember(ctx context.Context, teamID, userID uuid.UUID, actor Actor) (*models.Team, error) {
	team, err := s.getTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if team.CaptainID != actor.UserID && !actor.IsAdmin() {
		return nil, ErrCaptainActionForbidden
	}

	if err := s.teamRepo.AddMember(ctx, teamID, userID); err != nil {
		switch {
		case errors.Is(err, repositories.ErrTeamMemberConflict):
			return nil, ErrTeamMemberConflict
		case errors.Is(err, repositories.ErrTeamMemberUserInvalid):
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to add member: %w", err)
	}
	return s.GetTeam(ctx, teamID)
}

// RemoveMember: капитан удаляет любого, участник может выйти сам.
func (s *teamService) RemoveMember(ctx context.Context, teamID, userID uuid.UUID, actor Actor) error {
	team, err := s.getTeam(ctx, teamID)
	if err != nil {
		return err
	}
	if team.CaptainID == userID {
		return ErrCannotRemoveCaptain
	}
	if team.CaptainID != actor.UserID && actor.UserID != userID && !actor.IsAdmin() {
		return ErrCaptainActionForbidden
	}

	if err := s.teamRepo.RemoveMember(ctx, teamID, userID); err != nil {
		if errors.Is(err, repositories.ErrTeamMemberNotFound) {
			return ErrTeamMemberNotFound
		}
		return fmt.Errorf("failed to remove member: %w", err)
	}
	return nil
}

func (s *teamService) UploadLogo(ctx context.Context, teamID uuid.UUID, actor Actor, contentType string, file io.Reader) (*models.Team, error) {
	team, err := s.getTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if team.CaptainID != actor.UserID && !actor.IsAdmin() {
		return nil, ErrCaptainActionForbidden
	}

	key, err := uploadLogo(ctx, s.uploader, "teams", teamID, team.LogoKey, contentType, file)
	if err != nil {
		return nil, err
	}
	if err := s.teamRepo.UpdateLogoKey(ctx, teamID, &key); err != nil {
		return nil, err
	}
	return s.GetTeam(ctx, teamID)
}

// uploadLogo stores a new logo and removes the previous object; a failed
// cleanup leaves an orphan object but does not fail the upload.
func uploadLogo(ctx context.Context, uploader storage.FileUploader, prefix string, ownerID uuid.UUID, oldKey *string, contentType string, file io.Reader) (string, error) {
	ext, err := storage.ExtensionForContentType(contentType)
	if err != nil {
		return "", err
	}
	key := storage.LogoKey(prefix, ownerID, ext)
	if _, err := uploader.Upload(ctx, key, contentType, file); err != nil {
		return "", err
	}
	if oldKey != nil && *oldKey != "" {
		_ = uploader.Delete(ctx, *oldKey)
	}
	return key, nil
}
