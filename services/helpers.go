package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/Dosada05/esport-arena/brackets"
	"github.com/Dosada05/esport-arena/models"
	"github.com/Dosada05/esport-arena/realtime"
	"github.com/Dosada05/esport-arena/repositories"
	"github.com/Dosada05/esport-arena/storage"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Actor is the authenticated user performing an operation.
type Actor struct {
	UserID uuid.UUID
	Role   models.UserRole
}

func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

// canManage: организатор турнира или администратор.
func canManage(t *models.Tournament, actor Actor) bool {
	return actor.IsAdmin() || t.OrganizerID == actor.UserID
}

func withTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// KeyedMutex serializes bracket mutations per tournament within this process.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[uuid.UUID]*sync.Mutex)}
}

func (k *KeyedMutex) Lock(id uuid.UUID) func() {
	k.mu.Lock()
	l, ok := k.locks[id]
	if !ok {
		l = &sync.Mutex{}
		k.locks[id] = l
	}
	k.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// bracketStore loads and saves a tournament bracket inside a transaction.
type bracketStore struct {
	matchRepo       repositories.MatchRepository
	participantRepo repositories.ParticipantRepository
	tournamentRepo  repositories.TournamentRepository
	phaseRepo       repositories.PhaseRepository
}

func (s *bracketStore) load(ctx context.Context, exec repositories.SQLExecutor, tournamentID uuid.UUID) (*brackets.Bracket, error) {
	matches, err := s.matchRepo.ListByTournament(ctx, exec, tournamentID)
	if err != nil {
		return nil, err
	}
	participants, err := s.participantRepo.ListByTournament(ctx, exec, tournamentID)
	if err != nil {
		return nil, err
	}
	disqualified := make(map[uuid.UUID]bool)
	for _, p := range participants {
		if p.Disqualified {
			disqualified[p.ID] = true
		}
	}
	return brackets.New(matches, disqualified), nil
}

// save persists changed matches and closes the tournament once the final is
// decided. It returns the changed matches and whether the tournament completed.
func (s *bracketStore) save(ctx context.Context, exec repositories.SQLExecutor, tournamentID uuid.UUID, b *brackets.Bracket) ([]*models.Match, bool, error) {
	changed := b.Changed()
	for _, m := range changed {
		if err := s.matchRepo.Update(ctx, exec, m); err != nil {
			return nil, false, fmt.Errorf("failed to save match %s: %w", m.ID, err)
		}
	}

	champion, decided := b.Champion()
	if !decided {
		return changed, false, nil
	}
	if err := s.tournamentRepo.UpdateWinner(ctx, exec, tournamentID, champion); err != nil {
		return nil, false, err
	}
	if err := s.tournamentRepo.UpdateStatus(ctx, exec, tournamentID, models.TournamentCompleted); err != nil {
		return nil, false, err
	}
	if final := b.Final(); final != nil && final.PhaseID != nil {
		if err := s.phaseRepo.UpdateStatus(ctx, exec, *final.PhaseID, models.PhaseCompleted); err != nil {
			return nil, false, err
		}
	}
	return changed, true, nil
}

// broadcastBracket sends every changed match to the tournament and match rooms,
// followed by the tournament itself once it is completed.
func broadcastBracket(ctx context.Context, hub realtime.Broadcaster, tournamentRepo repositories.TournamentRepository, tournamentID uuid.UUID, changed []*models.Match, completed bool) {
	room := realtime.TournamentRoom(tournamentID)
	for _, m := range changed {
		hub.BroadcastToRoom(room, realtime.EventMatchUpdated, m)
		hub.BroadcastToRoom(realtime.MatchRoom(m.ID), realtime.EventMatchUpdated, m)
	}
	if completed {
		if t, err := tournamentRepo.GetByID(ctx, tournamentID); err == nil {
			hub.BroadcastToRoom(room, realtime.EventTournamentUpdated, t)
		}
	}
}

// sortParticipantsBySeed: сначала по seed_order (без посева в конце), затем по времени регистрации.
func sortParticipantsBySeed(participants []models.Participant) {
	sort.SliceStable(participants, func(i, j int) bool {
		a, b := participants[i], participants[j]
		if (a.SeedOrder != nil) != (b.SeedOrder != nil) {
			return a.SeedOrder != nil
		}
		if a.SeedOrder != nil && *a.SeedOrder != *b.SeedOrder {
			return *a.SeedOrder < *b.SeedOrder
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
}

func normalizeMapPool(maps []string) (models.MapPool, error) {
	pool := make(models.MapPool, 0, len(maps))
	seen := make(map[string]bool, len(maps))
	for _, m := range maps {
		name := strings.TrimSpace(m)
		key := strings.ToLower(name)
		if name == "" || seen[key] {
			return nil, ErrTournamentInvalidMapPool
		}
		seen[key] = true
		pool = append(pool, name)
	}
	return pool, nil
}

func populateLogoURL(key *string, uploader storage.FileUploader) *string {
	if key == nil || *key == "" || uploader == nil {
		return nil
	}
	if url := uploader.GetPublicURL(*key); url != "" {
		return &url
	}
	return nil
}

func populateTournamentLogoURL(t *models.Tournament, uploader storage.FileUploader) {
	if t != nil {
		t.LogoURL = populateLogoURL(t.LogoKey, uploader)
	}
}
