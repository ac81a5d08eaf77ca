package brackets

import (
	"context"
	"errors"
	"fmt"
	"math/bits"
	"time"

	"github.com/Dosada05/esport-arena/models"
	"github.com/google/uuid"
)

var ErrNotEnoughParticipants = errors.New("not enough participants to generate a bracket (minimum 2)")

type GenerateBracketParams struct {
	TournamentID uuid.UUID
	PhaseID      *uuid.UUID
	// Seeds are participant ids in seeding order: Seeds[0] is seed 1.
	Seeds []uuid.UUID
	Now   time.Time
}

type BracketGenerator interface {
	GenerateBracket(ctx context.Context, params GenerateBracketParams) ([]*models.Match, error)

	GetName() string
}

// NewGenerator returns the generator for a tournament format.
func NewGenerator(format models.TournamentFormat) (BracketGenerator, error) {
	switch format {
	case models.FormatSingleElimination:
		return NewSingleEliminationGenerator(), nil
	case models.FormatDoubleElimination:
		return NewDoubleEliminationGenerator(), nil
	}
	return nil, fmt.Errorf("unsupported tournament format %q", format)
}

// bracketSize rounds up to the nearest power of two: 5 -> 8, 8 -> 8.
func bracketSize(count int) int {
	if count <= 1 {
		return count
	}
	return 1 << bits.Len(uint(count-1))
}

// round1Pairs returns zero-based seed pairs for the first round so that
// seed 1 meets the last seed and top seeds can only meet late.
// Для 8: (0,7) (3,4) (1,6) (2,5).
func round1Pairs(size int) [][2]int {
	if size < 2 {
		return [][2]int{}
	}

	order := []int{0}
	for len(order) < size {
		count := len(order) * 2
		next := make([]int, 0, count)
		for _, seed := range order {
			next = append(next, seed, (count-1)-seed)
		}
		order = next
	}

	pairs := make([][2]int, 0, size/2)
	for i := 0; i < len(order); i += 2 {
		pairs = append(pairs, [2]int{order[i], order[i+1]})
	}
	return pairs
}

func seedAt(seeds []uuid.UUID, idx int) *uuid.UUID {
	if idx >= len(seeds) {
		return nil
	}
	id := seeds[idx]
	return &id
}

func newMatch(p GenerateBracketParams, bracket models.BracketType, round, number int) *models.Match {
	return &models.Match{
		ID:           uuid.New(),
		TournamentID: p.TournamentID,
		PhaseID:      p.PhaseID,
		BracketType:  bracket,
		RoundNumber:  round,
		MatchNumber:  number,
		Status:       models.MatchPending,
		CreatedAt:    p.Now,
		UpdatedAt:    p.Now,
	}
}

func link(from *models.Match, to *models.Match, slot int) {
	from.NextMatchID = &to.ID
	from.NextMatchSlot = &slot
}

func linkLoser(from *models.Match, to *models.Match, slot int) {
	from.LoserNextMatchID = &to.ID
	from.LoserNextSlot = &slot
}

// slotFor: odd matches feed slot 1, even matches slot 2.
func slotFor(matchNumber int) int {
	if matchNumber%2 != 0 {
		return 1
	}
	return 2
}
