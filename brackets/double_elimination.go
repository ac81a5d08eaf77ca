package brackets

import (
	"context"

	"github.com/Dosada05/esport-arena/models"
)

type DoubleEliminationGenerator struct{}

func NewDoubleEliminationGenerator() BracketGenerator {
	return &DoubleEliminationGenerator{}
}

func (g *DoubleEliminationGenerator) GetName() string {
	return "DoubleElimination"
}

// GenerateBracket builds winners and losers brackets plus a single grand final.
//
// With W winners rounds the losers bracket has 2(W-1) rounds. Odd losers rounds
// play survivors against each other, even rounds bring in the losers of the
// next winners round. The winners champion takes grand final slot 1, the
// losers champion slot 2.
func (g *DoubleEliminationGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) ([]*models.Match, error) {
	if len(params.Seeds) < 2 {
		return nil, ErrNotEnoughParticipants
	}

	wb := winnersRounds(params)
	w := len(wb)
	lbRounds := 2 * (w - 1)

	grandFinal := newMatch(params, models.BracketGrandFinal, max(w, lbRounds)+1, 1)
	link(wb[w-1][0], grandFinal, 1)

	if w == 1 {
		linkLoser(wb[0][0], grandFinal, 2)
		return append(flatten(wb), grandFinal), nil
	}

	size := len(wb[0]) * 2
	lb := make([][]*models.Match, lbRounds)
	for j := 1; j <= lbRounds; j++ {
		k := (j + 1) / 2
		count := size >> (k + 1)
		round := make([]*models.Match, count)
		for i := range round {
			round[i] = newMatch(params, models.BracketLosers, j, i+1)
		}
		lb[j-1] = round
	}

	for j := 1; j <= lbRounds; j++ {
		for i, m := range lb[j-1] {
			switch {
			case j == lbRounds:
				link(m, grandFinal, 2)
			case j%2 != 0:
				link(m, lb[j][i], 1)
			default:
				link(m, lb[j][i/2], slotFor(i+1))
			}
		}
	}

	for i, m := range wb[0] {
		linkLoser(m, lb[0][i/2], slotFor(i+1))
	}
	for r := 2; r <= w; r++ {
		for i, m := range wb[r-1] {
			linkLoser(m, lb[2*(r-1)-1][i], 2)
		}
	}

	all := flatten(wb)
	all = append(all, flatten(lb)...)
	return append(all, grandFinal), nil
}
