package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Dosada05/esport-arena/models"
	"github.com/Dosada05/esport-arena/repositories"
	"github.com/google/uuid"
)

type PhaseService interface {
	ListPhases(ctx context.Context, tournamentID uuid.UUID) ([]models.TournamentPhase, error)
	CreatePhase(ctx context.Context, tournamentID uuid.UUID, actor Actor, input CreatePhaseInput) (*models.TournamentPhase, error)
	UpdatePhase(ctx context.Context, phaseID uuid.UUID, actor Actor, input UpdatePhaseInput) (*models.TournamentPhase, error)
	DeletePhase(ctx context.Context, phaseID uuid.UUID, actor Actor) error
}

type CreatePhaseInput struct {
	Name   string              `json:"name" validate:"required,max=64"`
	Order  *int                `json:"order,omitempty"`
	Status *models.PhaseStatus `json:"status,omitempty"`
}

type UpdatePhaseInput struct {
	Name   *string             `json:"name,omitempty" validate:"omitempty,max=64"`
	Order  *int                `json:"order,omitempty"`
	Status *models.PhaseStatus `json:"status,omitempty"`
}

type phaseService struct {
	phaseRepo      repositories.PhaseRepository
	tournamentRepo repositories.TournamentRepository
}

func NewPhaseService(phaseRepo repositories.PhaseRepository, tournamentRepo repositories.TournamentRepository) PhaseService {
	return &phaseService{phaseRepo: phaseRepo, tournamentRepo: tournamentRepo}
}

func (s *phaseService) ListPhases(ctx context.Context, tournamentID uuid.UUID) ([]models.TournamentPhase, error) {
	if _, err := s.getTournament(ctx, tournamentID); err != nil {
		return nil, err
	}
	return s.phaseRepo.ListByTournament(ctx, tournamentID)
}

func (s *phaseService) CreatePhase(ctx context.Context, tournamentID uuid.UUID, actor Actor, input CreatePhaseInput) (*models.TournamentPhase, error) {
	t, err := s.getTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if !canManage(t, actor) {
		return nil, ErrForbiddenOperation
	}

	phase := &models.TournamentPhase{
		ID:           uuid.New(),
		TournamentID: tournamentID,
		Name:         strings.TrimSpace(input.Name),
		Status:       models.PhaseDraft,
		CreatedAt:    time.Now().UTC(),
	}
	if phase.Name == "" {
		return nil, ErrPhaseNameRequired
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, ErrPhaseInvalidStatus
		}
		phase.Status = *input.Status
	}
	if input.Order != nil {
		if *input.Order < 1 {
			return nil, ErrPhaseInvalidOrder
		}
		phase.Order = *input.Order
	} else {
		next, err := s.phaseRepo.NextOrder(ctx, tournamentID)
		if err != nil {
			return nil, err
		}
		phase.Order = next
	}

	if err := s.phaseRepo.Create(ctx, phase); err != nil {
		if errors.Is(err, repositories.ErrPhaseTournamentInvalid) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return phase, nil
}

func (s *phaseService) UpdatePhase(ctx context.Context, phaseID uuid.UUID, actor Actor, input UpdatePhaseInput) (*models.TournamentPhase, error) {
	phase, err := s.getManagedPhase(ctx, phaseID, actor)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrPhaseNameRequired
		}
		phase.Name = name
	}
	if input.Order != nil {
		if *input.Order < 1 {
			return nil, ErrPhaseInvalidOrder
		}
		phase.Order = *input.Order
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, ErrPhaseInvalidStatus
		}
		phase.Status = *input.Status
	}

	if err := s.phaseRepo.Update(ctx, phase); err != nil {
		if errors.Is(err, repositories.ErrPhaseNotFound) {
			return nil, ErrPhaseNotFound
		}
		return nil, err
	}
	return phase, nil
}

func (s *phaseService) DeletePhase(ctx context.Context, phaseID uuid.UUID, actor Actor) error {
	if _, err := s.getManagedPhase(ctx, phaseID, actor); err != nil {
		return err
	}
	if err := s.phaseRepo.Delete(ctx, phaseID); err != nil {
		if errors.Is(err, repositories.ErrPhaseNotFound) {
			return ErrPhaseNotFound
		}
		return err
	}
	return nil
}

func (s *phaseService) getManagedPhase(ctx context.Context, phaseID uuid.UUID, actor Actor) (*models.TournamentPhase, error) {
	phase, err := s.phaseRepo.GetByID(ctx, phaseID)
	if err != nil {
		if errors.Is(err, repositories.ErrPhaseNotFound) {
			return nil, ErrPhaseNotFound
		}
		return nil, fmt.Errorf("failed to get phase %s: %w", phaseID, err)
	}
	t, err := s.getTournament(ctx, phase.TournamentID)
	if err != nil {
		return nil, err
	}
	if !canManage(t, actor) {
		return nil, ErrForbiddenOperation
	}
	return phase, nil
}

func (s *phaseService) getTournament(ctx context.Context, id uuid.UUID) (*models.Tournament, error) {
	t, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %s: %w", id, err)
	}
	return t, nil
}
