package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Dosada05/esport-arena/models"
	"github.com/Dosada05/esport-arena/realtime"
	"github.com/Dosada05/esport-arena/repositories"
	"github.com/google/uuid"
)

type VetoService interface {
	GetVeto(ctx context.Context, matchID uuid.UUID) (*models.VetoState, error)
	AddAction(ctx context.Context, matchID uuid.UUID, actor Actor, input VetoActionInput) (*models.VetoState, error)
	Reset(ctx context.Context, matchID uuid.UUID, actor Actor) error
}

// VetoActionInput: TeamID is the participant id occupying a slot of the match.
type VetoActionInput struct {
	TeamID     uuid.UUID             `json:"team_id" validate:"required"`
	MapName    string                `json:"map_name" validate:"required,max=64"`
	ActionType models.VetoActionType `json:"action_type" validate:"required"`
	Step       int                   `json:"step"`
}

type vetoService struct {
	vetoRepo        repositories.VetoRepository
	matchRepo       repositories.MatchRepository
	tournamentRepo  repositories.TournamentRepository
	participantRepo repositories.ParticipantRepository
	teamRepo        repositories.TeamRepository
	hub             realtime.Broadcaster
}

func NewVetoService(
	vetoRepo repositories.VetoRepository,
	matchRepo repositories.MatchRepository,
	tournamentRepo repositories.TournamentRepository,
	participantRepo repositories.ParticipantRepository,
	teamRepo repositories.TeamRepository,
	hub realtime.Broadcaster,
) VetoService {
	return &vetoService{
		vetoRepo:        vetoRepo,
		matchRepo:       matchRepo,
		tournamentRepo:  tournamentRepo,
		participantRepo: participantRepo,
		teamRepo:        teamRepo,
		hub:             hub,
	}
}

func (s *vetoService) GetVeto(ctx context.Context, matchID uuid.UUID) (*models.VetoState, error) {
	_, t, err := s.getMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	return s.state(ctx, matchID, t.MapPool)
}

func (s *vetoService) state(ctx context.Context, matchID uuid.UUID, pool models.MapPool) (*models.VetoState, error) {
	actions, err := s.vetoRepo.ListByMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	used := make(map[string]bool, len(actions))
	for _, a := range actions {
		used[strings.ToLower(a.MapName)] = true
	}
	remaining := make([]string, 0, len(pool))
	for _, m := range pool {
		if !used[strings.ToLower(m)] {
			remaining = append(remaining, m)
		}
	}
	return &models.VetoState{MatchID: matchID, Actions: actions, RemainingMaps: remaining}, nil
}

// AddAction записывает бан или пик. Шаг, присланный клиентом (> 0),
// принимается как есть; иначе берётся следующий по порядку.
func (s *vetoService) AddAction(ctx context.Context, matchID uuid.UUID, actor Actor, input VetoActionInput) (*models.VetoState, error) {
	if !input.ActionType.Valid() {
		return nil, ErrVetoInvalidAction
	}
	mapName := strings.TrimSpace(input.MapName)
	if mapName == "" {
		return nil, ErrVetoMapRequired
	}
	if input.Step < 0 {
		return nil, ErrVetoInvalidStep
	}

	m, t, err := s.getMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if !m.HasTeam(input.TeamID) {
		return nil, ErrVetoTeamNotInMatch
	}
	if !canManage(t, actor) {
		isCaptain, err := s.isCaptainOf(ctx, input.TeamID, actor)
		if err != nil {
			return nil, err
		}
		if !isCaptain {
			return nil, ErrCaptainActionForbidden
		}
	}

	if len(t.MapPool) > 0 {
		found := false
		for _, name := range t.MapPool {
			if strings.EqualFold(name, mapName) {
				mapName = name
				found = true
				break
			}
		}
		if !found {
			return nil, ErrVetoMapNotInPool
		}
	}

	current, err := s.state(ctx, matchID, t.MapPool)
	if err != nil {
		return nil, err
	}
	for _, a := range current.Actions {
		if strings.EqualFold(a.MapName, mapName) {
			return nil, ErrVetoMapAlreadyUsed
		}
	}

	step := input.Step
	if step == 0 {
		maxStep, err := s.vetoRepo.MaxStep(ctx, matchID)
		if err != nil {
			return nil, err
		}
		step = maxStep + 1
	}

	action := &models.VetoAction{
		ID:         uuid.New(),
		MatchID:    matchID,
		TeamID:     input.TeamID,
		MapName:    mapName,
		ActionType: input.ActionType,
		Step:       step,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.vetoRepo.Create(ctx, action); err != nil {
		if errors.Is(err, repositories.ErrVetoMatchInvalid) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to save veto action: %w", err)
	}

	state, err := s.state(ctx, matchID, t.MapPool)
	if err != nil {
		return nil, err
	}
	s.hub.BroadcastToRoom(realtime.MatchRoom(matchID), realtime.EventVetoUpdated, state)
	return state, nil
}

// Reset удаляет все действия вето матча.
func (s *vetoService) Reset(ctx context.Context, matchID uuid.UUID, actor Actor) error {
	_, t, err := s.getMatch(ctx, matchID)
	if err != nil {
		return err
	}
	if !canManage(t, actor) {
		return ErrForbiddenOperation
	}
	if _, err := s.vetoRepo.DeleteByMatch(ctx, matchID); err != nil {
		return err
	}
	s.hub.BroadcastToRoom(realtime.MatchRoom(matchID), realtime.EventVetoReset, map[string]interface{}{"match_id": matchID})
	return nil
}

func (s *vetoService) getMatch(ctx context.Context, matchID uuid.UUID) (*models.Match, *models.Tournament, error) {
	m, err := s.matchRepo.GetByID(ctx, nil, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, nil, ErrMatchNotFound
		}
		return nil, nil, fmt.Errorf("failed to get match %s: %w", matchID, err)
	}
	t, err := s.tournamentRepo.GetByID(ctx, m.TournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, nil, ErrTournamentNotFound
		}
		return nil, nil, err
	}
	return m, t, nil
}

func (s *vetoService) isCaptainOf(ctx context.Context, participantID uuid.UUID, actor Actor) (bool, error) {
	p, err := s.participantRepo.GetByID(ctx, participantID)
	if err != nil {
		if errors.Is(err, repositories.ErrParticipantNotFound) {
			return false, ErrParticipantNotFound
		}
		return false, err
	}
	team, err := s.teamRepo.GetByID(ctx, p.TeamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return false, ErrTeamNotFound
		}
		return false, err
	}
	return team.CaptainID == actor.UserID, nil
}
