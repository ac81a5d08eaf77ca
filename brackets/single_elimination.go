package brackets

import (
	"context"
	"math/bits"

	"github.com/Dosada05/esport-arena/models"
)

type SingleEliminationGenerator struct{}

func NewSingleEliminationGenerator() BracketGenerator {
	return &SingleEliminationGenerator{}
}

func (g *SingleEliminationGenerator) GetName() string {
	return "SingleElimination"
}

// GenerateBracket builds the full winners tree. First-round slots without a
// seed are byes; Bracket.Settle turns them into walkovers.
func (g *SingleEliminationGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) ([]*models.Match, error) {
	if len(params.Seeds) < 2 {
		return nil, ErrNotEnoughParticipants
	}
	rounds := winnersRounds(params)
	return flatten(rounds), nil
}

// winnersRounds creates the winners bracket, rounds[0] being round 1, with
// winner links filled in and first-round seeds placed.
func winnersRounds(params GenerateBracketParams) [][]*models.Match {
	size := bracketSize(len(params.Seeds))
	total := bits.Len(uint(size)) - 1

	rounds := make([][]*models.Match, total)
	// Проще строить с финала назад.
	for r := total; r >= 1; r-- {
		count := size >> r
		round := make([]*models.Match, count)
		for i := 0; i < count; i++ {
			m := newMatch(params, models.BracketWinners, r, i+1)
			if r < total {
				link(m, rounds[r][i/2], slotFor(i+1))
			}
			round[i] = m
		}
		rounds[r-1] = round
	}

	for i, pair := range round1Pairs(size) {
		m := rounds[0][i]
		m.Team1ID = seedAt(params.Seeds, pair[0])
		m.Team2ID = seedAt(params.Seeds, pair[1])
	}
	return rounds
}

func flatten(rounds [][]*models.Match) []*models.Match {
	var all []*models.Match
	for _, round := range rounds {
		all = append(all, round...)
	}
	return all
}
