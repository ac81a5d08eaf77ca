package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/esport-arena/models"
	"github.com/Dosada05/esport-arena/realtime"
	"github.com/Dosada05/esport-arena/repositories"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type ParticipantService interface {
	RegisterTeam(ctx context.Context, tournamentID, teamID uuid.UUID, actor Actor) (*models.Participant, error)
	Unregister(ctx context.Context, participantID uuid.UUID, actor Actor) error
	ListParticipants(ctx context.Context, tournamentID uuid.UUID) ([]models.Participant, error)
	CheckIn(ctx context.Context, participantID uuid.UUID, actor Actor) (*models.Participant, error)

	// Панель администратора
	SetCheckIn(ctx context.Context, participantID uuid.UUID, actor Actor, checkedIn bool) (*models.Participant, error)
	SetDisqualified(ctx context.Context, participantID uuid.UUID, actor Actor, disqualified bool) (*models.Participant, error)
	SetSeedOrder(ctx context.Context, participantID uuid.UUID, actor Actor, seed *int) (*models.Participant, error)
}

type participantService struct {
	db              *sqlx.DB
	participantRepo repositories.ParticipantRepository
	tournamentRepo  repositories.TournamentRepository
	teamRepo        repositories.TeamRepository
	store           *bracketStore
	locks           *KeyedMutex
	hub             realtime.Broadcaster
	logger          *slog.Logger
}

func NewParticipantService(
	db *sqlx.DB,
	participantRepo repositories.ParticipantRepository,
	tournamentRepo repositories.TournamentRepository,
	teamRepo repositories.TeamRepository,
	matchRepo repositories.MatchRepository,
	phaseRepo repositories.PhaseRepository,
	locks *KeyedMutex,
	hub realtime.Broadcaster,
	logger *slog.Logger,
) ParticipantService {
	return &participantService{
		db:              db,
		participantRepo: participantRepo,
		tournamentRepo:  tournamentRepo,
		teamRepo:        teamRepo,
		store: &bracketStore{
			matchRepo:       matchRepo,
			participantRepo: participantRepo,
			tournamentRepo:  tournamentRepo,
			phaseRepo:       phaseRepo,
		},
		locks:  locks,
		hub:    hub,
		logger: logger,
	}
}

func (s *participantService) RegisterTeam(ctx context.Context, tournamentID, teamID uuid.UUID, actor Actor) (*models.Participant, error) {
	t, err := s.getTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team %s: %w", teamID, err)
	}
	if team.CaptainID != actor.UserID {
		return nil, ErrUserMustBeCaptain
	}
	if t.Status != models.TournamentRegistration {
		return nil, ErrRegistrationNotOpen
	}

	count, err := s.participantRepo.CountByTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if count >= t.MaxTeams {
		return nil, ErrTournamentFull
	}

	p := &models.Participant{
		ID:           uuid.New(),
		TournamentID: tournamentID,
		TeamID:       teamID,
		UserID:       actor.UserID,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.participantRepo.Create(ctx, p); err != nil {
		switch {
		case errors.Is(err, repositories.ErrParticipantConflict):
			return nil, ErrRegistrationConflict
		case errors.Is(err, repositories.ErrParticipantReferenceInvalid):
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to register team: %w", err)
	}

	created, err := s.getParticipant(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	s.hub.BroadcastToRoom(realtime.TournamentRoom(tournamentID), realtime.EventParticipantUpdate, created)
	return created, nil
}

// Unregister: капитан команды или организатор, пока турнир не начался.
func (s *participantService) Unregister(ctx context.Context, participantID uuid.UUID, actor Actor) error {
	p, t, err := s.getWithTournament(ctx, participantID)
	if err != nil {
		return err
	}
	if p.UserID != actor.UserID && !canManage(t, actor) {
		isCaptain, err := s.isCaptain(ctx, p.TeamID, actor)
		if err != nil {
			return err
		}
		if !isCaptain {
			return ErrForbiddenOperation
		}
	}
	if !isBeforeStart(t.Status) {
		return ErrTournamentLocked
	}

	if err := s.participantRepo.Delete(ctx, participantID); err != nil {
		if errors.Is(err, repositories.ErrParticipantNotFound) {
			return ErrParticipantNotFound
		}
		return err
	}
	s.hub.BroadcastToRoom(realtime.TournamentRoom(t.ID), realtime.EventParticipantUpdate, map[string]interface{}{
		"id":      participantID,
		"removed": true,
	})
	return nil
}

func (s *participantService) ListParticipants(ctx context.Context, tournamentID uuid.UUID) ([]models.Participant, error) {
	if _, err := s.getTournament(ctx, tournamentID); err != nil {
		return nil, err
	}
	participants, err := s.participantRepo.ListByTournament(ctx, nil, tournamentID)
	if err != nil {
		return nil, err
	}
	sortParticipantsBySeed(participants)
	return participants, nil
}

func (s *participantService) CheckIn(ctx context.Context, participantID uuid.UUID, actor Actor) (*models.Participant, error) {
	p, t, err := s.getWithTournament(ctx, participantID)
	if err != nil {
		return nil, err
	}
	isCaptain, err := s.isCaptain(ctx, p.TeamID, actor)
	if err != nil {
		return nil, err
	}
	if !isCaptain {
		return nil, ErrCaptainActionForbidden
	}
	if t.Status != models.TournamentCheckIn {
		return nil, ErrCheckInNotOpen
	}
	if p.Disqualified {
		return nil, ErrParticipantDisqualified
	}
	return s.updateCheckIn(ctx, p, true)
}

func (s *participantService) SetCheckIn(ctx context.Context, participantID uuid.UUID, actor Actor, checkedIn bool) (*models.Participant, error) {
	p, t, err := s.getManaged(ctx, participantID, actor)
	if err != nil {
		return nil, err
	}
	if !isBeforeStart(t.Status) {
		return nil, ErrTournamentLocked
	}
	if checkedIn && p.Disqualified {
		return nil, ErrParticipantDisqualified
	}
	return s.updateCheckIn(ctx, p, checkedIn)
}

func (s *participantService) updateCheckIn(ctx context.Context, p *models.Participant, checkedIn bool) (*models.Participant, error) {
	var at *time.Time
	if checkedIn {
		now := time.Now().UTC()
		at = &now
	}
	if err := s.participantRepo.UpdateCheckIn(ctx, p.ID, checkedIn, at); err != nil {
		return nil, err
	}
	p.CheckedIn = checkedIn
	p.CheckedInAt = at
	s.hub.BroadcastToRoom(realtime.TournamentRoom(p.TournamentID), realtime.EventParticipantUpdate, p)
	return p, nil
}

// SetDisqualified снимает команду с турнира. Во время турнира её оставшиеся
// матчи отдаются соперникам, и сетка продвигается в той же транзакции.
// Вернуть команду в идущий турнир нельзя: отданные матчи уже сыграны.
func (s *participantService) SetDisqualified(ctx context.Context, participantID uuid.UUID, actor Actor, disqualified bool) (*models.Participant, error) {
	p, t, err := s.getManaged(ctx, participantID, actor)
	if err != nil {
		return nil, err
	}
	unlock := s.locks.Lock(t.ID)
	defer unlock()

	// Перечитываем под блокировкой: статус мог смениться, пока ждали.
	p, t, err = s.getManaged(ctx, participantID, actor)
	if err != nil {
		return nil, err
	}
	if t.Status == models.TournamentCompleted || t.Status == models.TournamentCanceled {
		return nil, ErrTournamentLocked
	}
	if t.Status == models.TournamentOngoing && !disqualified && p.Disqualified {
		return nil, ErrTournamentLocked
	}

	if t.Status != models.TournamentOngoing {
		if err := s.participantRepo.UpdateDisqualified(ctx, nil, participantID, disqualified); err != nil {
			return nil, err
		}
	} else {
		var changed []*models.Match
		var completed bool
		err = withTx(ctx, s.db, func(tx *sqlx.Tx) error {
			if err := s.participantRepo.UpdateDisqualified(ctx, tx, participantID, disqualified); err != nil {
				return err
			}
			b, err := s.store.load(ctx, tx, t.ID)
			if err != nil {
				return err
			}
			b.Settle()
			changed, completed, err = s.store.save(ctx, tx, t.ID, b)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("failed to disqualify participant: %w", err)
		}
		broadcastBracket(ctx, s.hub, s.tournamentRepo, t.ID, changed, completed)
	}

	s.logger.InfoContext(ctx, "Participant disqualification changed",
		slog.String("participant_id", participantID.String()),
		slog.Bool("disqualified", disqualified))

	updated, err := s.getParticipant(ctx, participantID)
	if err != nil {
		return nil, err
	}
	s.hub.BroadcastToRoom(realtime.TournamentRoom(p.TournamentID), realtime.EventParticipantUpdate, updated)
	return updated, nil
}

func (s *participantService) SetSeedOrder(ctx context.Context, participantID uuid.UUID, actor Actor, seed *int) (*models.Participant, error) {
	p, t, err := s.getManaged(ctx, participantID, actor)
	if err != nil {
		return nil, err
	}
	if !isBeforeStart(t.Status) {
		return nil, ErrTournamentLocked
	}
	if seed != nil && *seed < 1 {
		return nil, ErrInvalidSeedOrder
	}
	if err := s.participantRepo.UpdateSeedOrder(ctx, participantID, seed); err != nil {
		return nil, err
	}
	p.SeedOrder = seed
	s.hub.BroadcastToRoom(realtime.TournamentRoom(p.TournamentID), realtime.EventParticipantUpdate, p)
	return p, nil
}

func (s *participantService) getParticipant(ctx context.Context, id uuid.UUID) (*models.Participant, error) {
	p, err := s.participantRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrParticipantNotFound) {
			return nil, ErrParticipantNotFound
		}
		return nil, fmt.Errorf("failed to get participant %s: %w", id, err)
	}
	return p, nil
}

func (s *participantService) getTournament(ctx context.Context, id uuid.UUID) (*models.Tournament, error) {
	t, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %s: %w", id, err)
	}
	return t, nil
}

func (s *participantService) getWithTournament(ctx context.Context, participantID uuid.UUID) (*models.Participant, *models.Tournament, error) {
	p, err := s.getParticipant(ctx, participantID)
	if err != nil {
		return nil, nil, err
	}
	t, err := s.getTournament(ctx, p.TournamentID)
	if err != nil {
		return nil, nil, err
	}
	return p, t, nil
}

func (s *participantService) getManaged(ctx context.Context, participantID uuid.UUID, actor Actor) (*models.Participant, *models.Tournament, error) {
	p, t, err := s.getWithTournament(ctx, participantID)
	if err != nil {
		return nil, nil, err
	}
	if !canManage(t, actor) {
		return nil, nil, ErrForbiddenOperation
	}
	return p, t, nil
}

func (s *participantService) isCaptain(ctx context.Context, teamID uuid.UUID, actor Actor) (bool, error) {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return false, ErrTeamNotFound
		}
		return false, err
	}
	return team.CaptainID == actor.UserID, nil
}
