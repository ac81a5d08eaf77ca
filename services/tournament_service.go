package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/Dosada05/esport-arena/brackets"
	"github.com/Dosada05/esport-arena/models"
	"github.com/Dosada05/esport-arena/realtime"
	"github.com/Dosada05/esport-arena/repositories"
	"github.com/Dosada05/esport-arena/storage"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

type TournamentService interface {
	CreateTournament(ctx context.Context, actor Actor, input CreateTournamentInput) (*models.Tournament, error)
	GetTournament(ctx context.Context, id uuid.UUID) (*models.Tournament, error)
	GetTournamentDetails(ctx context.Context, id uuid.UUID) (*models.TournamentDetails, error)
	ListTournaments(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error)
	UpdateTournament(ctx context.Context, id uuid.UUID, actor Actor, input UpdateTournamentInput) (*models.Tournament, error)
	DeleteTournament(ctx context.Context, id uuid.UUID, actor Actor) error
	ChangeStatus(ctx context.Context, id uuid.UUID, actor Actor, next models.TournamentStatus) (*models.Tournament, error)
	StartTournament(ctx context.Context, id uuid.UUID, actor Actor) (*models.TournamentDetails, error)
	UploadLogo(ctx context.Context, id uuid.UUID, actor Actor, contentType string, file io.Reader) (*models.Tournament, error)
	AutoUpdateStatuses(ctx context.Context, now time.Time) (int, error)
}

type CreateTournamentInput struct {
	Name           string                  `json:"name" validate:"required,max=128"`
	Game           string                  `json:"game" validate:"required,max=64"`
	Description    *string                 `json:"description,omitempty"`
	Format         models.TournamentFormat `json:"format" validate:"required"`
	MaxTeams       int                     `json:"max_teams" validate:"required,min=2,max=256"`
	BestOf         int                     `json:"best_of,omitempty"`
	MapPool        []string                `json:"map_pool,omitempty"`
	StartsAt       *time.Time              `json:"starts_at,omitempty"`
	CheckInOpensAt *time.Time              `json:"check_in_opens_at,omitempty"`
}

type UpdateTournamentInput struct {
	Name           *string                  `json:"name,omitempty" validate:"omitempty,max=128"`
	Game           *string                  `json:"game,omitempty" validate:"omitempty,max=64"`
	Description    *string                  `json:"description,omitempty"`
	Format         *models.TournamentFormat `json:"format,omitempty"`
	MaxTeams       *int                     `json:"max_teams,omitempty" validate:"omitempty,min=2,max=256"`
	BestOf         *int                     `json:"best_of,omitempty"`
	MapPool        []string                 `json:"map_pool,omitempty"`
	StartsAt       *time.Time               `json:"starts_at,omitempty"`
	CheckInOpensAt *time.Time               `json:"check_in_opens_at,omitempty"`
}

type ListTournamentsFilter struct {
	Status      *models.TournamentStatus
	Game        *string
	OrganizerID *uuid.UUID
	Limit       int
	Offset      int
}

type tournamentService struct {
	db              *sqlx.DB
	tournamentRepo  repositories.TournamentRepository
	phaseRepo       repositories.PhaseRepository
	participantRepo repositories.ParticipantRepository
	matchRepo       repositories.MatchRepository
	uploader        storage.FileUploader
	hub             realtime.Broadcaster
	locks           *KeyedMutex
	logger          *slog.Logger
}

func NewTournamentService(
	db *sqlx.DB,
	tournamentRepo repositories.TournamentRepository,
	phaseRepo repositories.PhaseRepository,
	participantRepo repositories.ParticipantRepository,
	matchRepo repositories.MatchRepository,
	uploader storage.FileUploader,
	hub realtime.Broadcaster,
	locks *KeyedMutex,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		db:              db,
		tournamentRepo:  tournamentRepo,
		phaseRepo:       phaseRepo,
		participantRepo: participantRepo,
		matchRepo:       matchRepo,
		uploader:        uploader,
		hub:             hub,
		locks:           locks,
		logger:          logger,
	}
}

func (s *tournamentService) CreateTournament(ctx context.Context, actor Actor, input CreateTournamentInput) (*models.Tournament, error) {
	if actor.Role != models.RoleOrganizer && !actor.IsAdmin() {
		return nil, ErrForbiddenOperation
	}

	now := time.Now().UTC()
	t := &models.Tournament{
		ID:             uuid.New(),
		Name:           strings.TrimSpace(input.Name),
		Game:           strings.TrimSpace(input.Game),
		Description:    input.Description,
		OrganizerID:    actor.UserID,
		Format:         input.Format,
		Status:         models.TournamentDraft,
		MaxTeams:       input.MaxTeams,
		BestOf:         input.BestOf,
		StartsAt:       utcPtr(input.StartsAt),
		CheckInOpensAt: utcPtr(input.CheckInOpensAt),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if t.BestOf == 0 {
		t.BestOf = 1
	}
	pool, err := normalizeMapPool(input.MapPool)
	if err != nil {
		return nil, err
	}
	t.MapPool = pool

	if err := validateTournament(t); err != nil {
		return nil, err
	}

	if err := s.tournamentRepo.Create(ctx, t); err != nil {
		if errors.Is(err, repositories.ErrTournamentInvalidOrg) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}
	return t, nil
}

func validateTournament(t *models.Tournament) error {
	switch {
	case t.Name == "":
		return ErrTournamentNameRequired
	case t.Game == "":
		return ErrTournamentGameRequired
	case !t.Format.Valid():
		return ErrTournamentInvalidFormat
	case t.MaxTeams < 2:
		return ErrTournamentInvalidCapacity
	case t.BestOf != 1 && t.BestOf != 3 && t.BestOf != 5:
		return ErrTournamentInvalidBestOf
	case t.StartsAt != nil && t.CheckInOpensAt != nil && t.CheckInOpensAt.After(*t.StartsAt):
		return ErrTournamentInvalidDates
	}
	return nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

func (s *tournamentService) GetTournament(ctx context.Context, id uuid.UUID) (*models.Tournament, error) {
	t, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %s: %w", id, err)
	}
	populateTournamentLogoURL(t, s.uploader)
	return t, nil
}

// GetTournamentDetails загружает турнир, фазы, участников и матчи параллельно.
func (s *tournamentService) GetTournamentDetails(ctx context.Context, id uuid.UUID) (*models.TournamentDetails, error) {
	details := &models.TournamentDetails{}
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		t, err := s.GetTournament(gCtx, id)
		if err != nil {
			return err
		}
		details.Tournament = t
		return nil
	})
	g.Go(func() error {
		phases, err := s.phaseRepo.ListByTournament(gCtx, id)
		if err != nil {
			return err
		}
		details.Phases = phases
		return nil
	})
	g.Go(func() error {
		participants, err := s.participantRepo.ListByTournament(gCtx, nil, id)
		if err != nil {
			return err
		}
		sortParticipantsBySeed(participants)
		details.Participants = participants
		return nil
	})
	g.Go(func() error {
		matches, err := s.matchRepo.ListByTournament(gCtx, nil, id)
		if err != nil {
			return err
		}
		brackets.SortForDisplay(matches)
		details.Matches = matches
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return details, nil
}

func (s *tournamentService) ListTournaments(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, ErrTournamentInvalidStatus
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	tournaments, err := s.tournamentRepo.List(ctx, repositories.ListTournamentsFilter{
		Status:      filter.Status,
		Game:        filter.Game,
		OrganizerID: filter.OrganizerID,
		Limit:       limit,
		Offset:      offset,
	})
	if err != nil {
		return nil, err
	}
	for i := range tournaments {
		populateTournamentLogoURL(&tournaments[i], s.uploader)
	}
	return tournaments, nil
}

// getManaged loads a tournament the actor is allowed to manage.
func (s *tournamentService) getManaged(ctx context.Context, id uuid.UUID, actor Actor) (*models.Tournament, error) {
	t, err := s.GetTournament(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canManage(t, actor) {
		return nil, ErrForbiddenOperation
	}
	return t, nil
}

func isBeforeStart(status models.TournamentStatus) bool {
	return status == models.TournamentDraft || status == models.TournamentRegistration || status == models.TournamentCheckIn
}

func (s *tournamentService) UpdateTournament(ctx context.Context, id uuid.UUID, actor Actor, input UpdateTournamentInput) (*models.Tournament, error) {
	t, err := s.getManaged(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	if !isBeforeStart(t.Status) {
		return nil, ErrTournamentLocked
	}

	if input.Name != nil {
		t.Name = strings.TrimSpace(*input.Name)
	}
	if input.Game != nil {
		t.Game = strings.TrimSpace(*input.Game)
	}
	if input.Description != nil {
		t.Description = input.Description
	}
	if input.Format != nil {
		t.Format = *input.Format
	}
	if input.BestOf != nil {
		t.BestOf = *input.BestOf
	}
	if input.MapPool != nil {
		pool, err := normalizeMapPool(input.MapPool)
		if err != nil {
			return nil, err
		}
		t.MapPool = pool
	}
	if input.StartsAt != nil {
		t.StartsAt = utcPtr(input.StartsAt)
	}
	if input.CheckInOpensAt != nil {
		t.CheckInOpensAt = utcPtr(input.CheckInOpensAt)
	}
	if input.MaxTeams != nil {
		count, err := s.participantRepo.CountByTournament(ctx, id)
		if err != nil {
			return nil, err
		}
		if *input.MaxTeams < count {
			return nil, ErrTournamentInvalidCapacity
		}
		t.MaxTeams = *input.MaxTeams
	}

	if err := validateTournament(t); err != nil {
		return nil, err
	}
	if err := s.tournamentRepo.Update(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to update tournament: %w", err)
	}

	s.hub.BroadcastToRoom(realtime.TournamentRoom(id), realtime.EventTournamentUpdated, t)
	return t, nil
}

func (s *tournamentService) DeleteTournament(ctx context.Context, id uuid.UUID, actor Actor) error {
	t, err := s.getManaged(ctx, id, actor)
	if err != nil {
		return err
	}
	if t.Status != models.TournamentDraft && t.Status != models.TournamentCanceled {
		return ErrTournamentNotDeletable
	}
	if err := s.tournamentRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return ErrTournamentNotFound
		}
		return fmt.Errorf("failed to delete tournament: %w", err)
	}
	if t.LogoKey != nil {
		if err := s.uploader.Delete(ctx, *t.LogoKey); err != nil {
			s.logger.WarnContext(ctx, "Failed to delete tournament logo", slog.String("tournament_id", id.String()), slog.Any("error", err))
		}
	}
	return nil
}

func isValidStatusTransition(current, next models.TournamentStatus) bool {
	allowedTransitions := map[models.TournamentStatus][]models.TournamentStatus{
		models.TournamentDraft:        {models.TournamentRegistration, models.TournamentCanceled},
		models.TournamentRegistration: {models.TournamentCheckIn, models.TournamentCanceled},
		models.TournamentCheckIn:      {models.TournamentOngoing, models.TournamentCanceled},
		models.TournamentOngoing:      {models.TournamentCompleted, models.TournamentCanceled},
		models.TournamentCompleted:    {},
		models.TournamentCanceled:     {},
	}
	for _, allowed := range allowedTransitions[current] {
		if next == allowed {
			return true
		}
	}
	return false
}

func (s *tournamentService) ChangeStatus(ctx context.Context, id uuid.UUID, actor Actor, next models.TournamentStatus) (*models.Tournament, error) {
	if !next.Valid() {
		return nil, ErrTournamentInvalidStatus
	}
	if next == models.TournamentOngoing {
		details, err := s.StartTournament(ctx, id, actor)
		if err != nil {
			return nil, err
		}
		return details.Tournament, nil
	}

	t, err := s.getManaged(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	if !isValidStatusTransition(t.Status, next) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrTournamentInvalidStatusTransition, t.Status, next)
	}
	if err := s.tournamentRepo.UpdateStatus(ctx, nil, id, next); err != nil {
		return nil, fmt.Errorf("failed to change tournament status: %w", err)
	}
	t.Status = next

	s.logger.InfoContext(ctx, "Tournament status changed", slog.String("tournament_id", id.String()), slog.String("status", string(next)))
	s.hub.BroadcastToRoom(realtime.TournamentRoom(id), realtime.EventTournamentUpdated, t)
	return t, nil
}

// StartTournament seeds checked-in participants, generates the bracket,
// resolves byes and moves the tournament to ongoing in one transaction.
func (s *tournamentService) StartTournament(ctx context.Context, id uuid.UUID, actor Actor) (*models.TournamentDetails, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	t, err := s.getManaged(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	if t.Status != models.TournamentCheckIn {
		return nil, fmt.Errorf("%w: %s -> %s", ErrTournamentInvalidStatusTransition, t.Status, models.TournamentOngoing)
	}

	participants, err := s.participantRepo.ListByTournament(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	sortParticipantsBySeed(participants)
	seeds := make([]uuid.UUID, 0, len(participants))
	for _, p := range participants {
		if p.Eligible() {
			seeds = append(seeds, p.ID)
		}
	}
	if len(seeds) < 2 {
		return nil, ErrNotEnoughParticipants
	}

	phases, err := s.phaseRepo.ListByTournament(ctx, id)
	if err != nil {
		return nil, err
	}
	var phase *models.TournamentPhase
	for i := range phases {
		if phases[i].Status == models.PhaseDraft || phases[i].Status == models.PhaseReady {
			phase = &phases[i]
			break
		}
	}

	generator, err := brackets.NewGenerator(t.Format)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTournamentInvalidFormat, err)
	}
	params := brackets.GenerateBracketParams{TournamentID: id, Seeds: seeds, Now: time.Now().UTC()}
	if phase != nil {
		params.PhaseID = &phase.ID
	}
	matches, err := generator.GenerateBracket(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to generate %s bracket: %w", generator.GetName(), err)
	}
	brackets.New(matches, nil).Settle()

	err = withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if err := s.matchRepo.DeleteByTournament(ctx, tx, id); err != nil {
			return err
		}
		if err := s.matchRepo.CreateBatch(ctx, tx, matches); err != nil {
			return err
		}
		if phase != nil {
			if err := s.phaseRepo.UpdateStatus(ctx, tx, phase.ID, models.PhaseOngoing); err != nil {
				return err
			}
		}
		return s.tournamentRepo.UpdateStatus(ctx, tx, id, models.TournamentOngoing)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save bracket: %w", err)
	}

	s.logger.InfoContext(ctx, "Bracket generated",
		slog.String("tournament_id", id.String()),
		slog.String("generator", generator.GetName()),
		slog.Int("participants", len(seeds)),
		slog.Int("matches", len(matches)))

	details, err := s.GetTournamentDetails(ctx, id)
	if err != nil {
		return nil, err
	}
	s.hub.BroadcastToRoom(realtime.TournamentRoom(id), realtime.EventBracketGenerated, details)
	return details, nil
}

func (s *tournamentService) UploadLogo(ctx context.Context, id uuid.UUID, actor Actor, contentType string, file io.Reader) (*models.Tournament, error) {
	t, err := s.getManaged(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	key, err := uploadLogo(ctx, s.uploader, "tournaments", id, t.LogoKey, contentType, file)
	if err != nil {
		return nil, err
	}
	if err := s.tournamentRepo.UpdateLogoKey(ctx, id, &key); err != nil {
		return nil, err
	}
	t.LogoKey = &key
	populateTournamentLogoURL(t, s.uploader)
	return t, nil
}

// AutoUpdateStatuses opens check-in for tournaments whose check-in time has come.
func (s *tournamentService) AutoUpdateStatuses(ctx context.Context, now time.Time) (int, error) {
	due, err := s.tournamentRepo.ListDueForCheckIn(ctx, now)
	if err != nil {
		return 0, err
	}

	updated := 0
	for i := range due {
		t := &due[i]
		if err := s.tournamentRepo.UpdateStatus(ctx, nil, t.ID, models.TournamentCheckIn); err != nil {
			s.logger.ErrorContext(ctx, "Failed to open check-in", slog.String("tournament_id", t.ID.String()), slog.Any("error", err))
			continue
		}
		t.Status = models.TournamentCheckIn
		updated++
		s.logger.InfoContext(ctx, "Check-in opened", slog.String("tournament_id", t.ID.String()))
		s.hub.BroadcastToRoom(realtime.TournamentRoom(t.ID), realtime.EventTournamentUpdated, t)
	}
	return updated, nil
}
