package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/esport-arena/brackets"
	"github.com/Dosada05/esport-arena/models"
	"github.com/Dosada05/esport-arena/realtime"
	"github.com/Dosada05/esport-arena/repositories"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type MatchService interface {
	ListMatches(ctx context.Context, tournamentID uuid.UUID, bracketType *models.BracketType) ([]*models.Match, error)
	GetMatch(ctx context.Context, id uuid.UUID) (*models.Match, error)
	ScheduleMatch(ctx context.Context, matchID uuid.UUID, actor Actor, at *time.Time) (*models.Match, error)
	StartMatch(ctx context.Context, matchID uuid.UUID, actor Actor) (*models.Match, error)
	UpdateScore(ctx context.Context, matchID uuid.UUID, actor Actor, input UpdateScoreInput) (*models.Match, error)
}

type UpdateScoreInput struct {
	Score1   int  `json:"score1" validate:"min=0"`
	Score2   int  `json:"score2" validate:"min=0"`
	Complete bool `json:"complete"`
}

type matchService struct {
	db             *sqlx.DB
	matchRepo      repositories.MatchRepository
	tournamentRepo repositories.TournamentRepository
	store          *bracketStore
	locks          *KeyedMutex
	hub            realtime.Broadcaster
	logger         *slog.Logger
}

func NewMatchService(
	db *sqlx.DB,
	matchRepo repositories.MatchRepository,
	tournamentRepo repositories.TournamentRepository,
	participantRepo repositories.ParticipantRepository,
	phaseRepo repositories.PhaseRepository,
	locks *KeyedMutex,
	hub realtime.Broadcaster,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		db:             db,
		matchRepo:      matchRepo,
		tournamentRepo: tournamentRepo,
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

func (s *matchService) ListMatches(ctx context.Context, tournamentID uuid.UUID, bracketType *models.BracketType) ([]*models.Match, error) {
	if bracketType != nil && !bracketType.Valid() {
		return nil, ErrInvalidBracketType
	}
	if _, err := s.getTournament(ctx, tournamentID); err != nil {
		return nil, err
	}
	matches, err := s.matchRepo.ListByTournament(ctx, nil, tournamentID)
	if err != nil {
		return nil, err
	}
	if bracketType != nil {
		filtered := matches[:0]
		for _, m := range matches {
			if m.BracketType == *bracketType {
				filtered = append(filtered, m)
			}
		}
		matches = filtered
	}
	brackets.SortForDisplay(matches)
	return matches, nil
}

func (s *matchService) GetMatch(ctx context.Context, id uuid.UUID) (*models.Match, error) {
	m, err := s.matchRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match %s: %w", id, err)
	}
	return m, nil
}

// ScheduleMatch sets or clears the start time. Clearing it puts a scheduled
// match back to pending.
func (s *matchService) ScheduleMatch(ctx context.Context, matchID uuid.UUID, actor Actor, at *time.Time) (*models.Match, error) {
	m, t, unlock, err := s.lockManaged(ctx, matchID, actor)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if at != nil {
		if !brackets.IsSchedulable(m) {
			return nil, ErrMatchNotSchedulable
		}
		m.ScheduledAt = utcPtr(at)
		if m.Status == models.MatchPending {
			m.Status = models.MatchScheduled
		}
	} else {
		if m.Status == models.MatchCompleted {
			return nil, ErrMatchCompleted
		}
		m.ScheduledAt = nil
		if m.Status == models.MatchScheduled {
			m.Status = models.MatchPending
		}
	}
	m.UpdatedAt = time.Now().UTC()

	if err := s.matchRepo.Update(ctx, nil, m); err != nil {
		return nil, fmt.Errorf("failed to schedule match: %w", err)
	}
	s.broadcast(ctx, t.ID, []*models.Match{m}, false)
	return m, nil
}

func (s *matchService) StartMatch(ctx context.Context, matchID uuid.UUID, actor Actor) (*models.Match, error) {
	m, t, unlock, err := s.lockManaged(ctx, matchID, actor)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if t.Status != models.TournamentOngoing {
		return nil, ErrTournamentNotOngoing
	}
	if m.Status == models.MatchCompleted {
		return nil, ErrMatchCompleted
	}
	if m.Team1ID == nil || m.Team2ID == nil {
		return nil, ErrMatchNotReady
	}
	if m.Status == models.MatchOngoing {
		return m, nil
	}

	m.Status = models.MatchOngoing
	m.UpdatedAt = time.Now().UTC()
	if err := s.matchRepo.Update(ctx, nil, m); err != nil {
		return nil, fmt.Errorf("failed to start match: %w", err)
	}
	s.broadcast(ctx, t.ID, []*models.Match{m}, false)
	return m, nil
}

// UpdateScore записывает счёт. С complete=true определяет победителя и
// продвигает сетку; правка завершённого матча откатывает продвижение,
// если следующие матчи ещё не начались.
func (s *matchService) UpdateScore(ctx context.Context, matchID uuid.UUID, actor Actor, input UpdateScoreInput) (*models.Match, error) {
	if input.Score1 < 0 || input.Score2 < 0 {
		return nil, ErrInvalidScore
	}
	if input.Complete && input.Score1 == input.Score2 {
		return nil, ErrScoreTie
	}

	current, t, unlock, err := s.lockManaged(ctx, matchID, actor)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if t.Status != models.TournamentOngoing {
		return nil, ErrTournamentNotOngoing
	}
	if current.Team1ID == nil || current.Team2ID == nil {
		return nil, ErrMatchNotReady
	}

	var (
		updated   *models.Match
		changed   []*models.Match
		completed bool
	)
	err = withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		b, err := s.store.load(ctx, tx, t.ID)
		if err != nil {
			return err
		}
		m, ok := b.Match(matchID)
		if !ok {
			return ErrMatchNotFound
		}

		var winner uuid.UUID
		if input.Complete {
			winner = *m.Team1ID
			if input.Score2 > input.Score1 {
				winner = *m.Team2ID
			}
		}
		sameResult := m.Status == models.MatchCompleted && input.Complete && m.WinnerID != nil && *m.WinnerID == winner
		if m.Status == models.MatchCompleted && !sameResult {
			if err := b.Rewind(m.ID); err != nil {
				return err
			}
		}

		m.Score1, m.Score2 = input.Score1, input.Score2
		b.Touch(m)
		switch {
		case sameResult:
		case input.Complete:
			if err := b.Complete(m.ID, winner); err != nil {
				return err
			}
		case m.Status == models.MatchPending || m.Status == models.MatchScheduled:
			m.Status = models.MatchOngoing
		}

		changed, completed, err = s.store.save(ctx, tx, t.ID, b)
		updated = m
		return err
	})
	if err != nil {
		return nil, mapBracketError(err)
	}

	if completed {
		s.logger.InfoContext(ctx, "Tournament completed", slog.String("tournament_id", t.ID.String()))
	}
	s.broadcast(ctx, t.ID, changed, completed)
	return updated, nil
}

func mapBracketError(err error) error {
	switch {
	case errors.Is(err, brackets.ErrMatchLocked):
		return ErrMatchLocked
	case errors.Is(err, brackets.ErrMatchNotReady):
		return ErrMatchNotReady
	case errors.Is(err, brackets.ErrMatchAlreadyComplete):
		return ErrMatchCompleted
	case errors.Is(err, brackets.ErrMatchNotInBracket):
		return ErrMatchNotFound
	}
	return err
}

// lockManaged holds the tournament bracket lock and loads the match and its
// tournament under it. The caller must call unlock.
func (s *matchService) lockManaged(ctx context.Context, matchID uuid.UUID, actor Actor) (*models.Match, *models.Tournament, func(), error) {
	m, err := s.GetMatch(ctx, matchID)
	if err != nil {
		return nil, nil, nil, err
	}
	unlock := s.locks.Lock(m.TournamentID)

	// Перечитываем под блокировкой.
	m, err = s.GetMatch(ctx, matchID)
	if err != nil {
		unlock()
		return nil, nil, nil, err
	}
	t, err := s.getTournament(ctx, m.TournamentID)
	if err != nil {
		unlock()
		return nil, nil, nil, err
	}
	if !canManage(t, actor) {
		unlock()
		return nil, nil, nil, ErrForbiddenOperation
	}
	return m, t, unlock, nil
}

func (s *matchService) getTournament(ctx context.Context, id uuid.UUID) (*models.Tournament, error) {
	t, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %s: %w", id, err)
	}
	return t, nil
}

func (s *matchService) broadcast(ctx context.Context, tournamentID uuid.UUID, changed []*models.Match, completed bool) {
	broadcastBracket(ctx, s.hub, s.tournamentRepo, tournamentID, changed, completed)
}
