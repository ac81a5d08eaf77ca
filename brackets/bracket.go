package brackets

import (
	"errors"
	"sort"
	"time"

	"github.com/Dosada05/esport-arena/models"
	"github.com/google/uuid"
)

var (
	ErrMatchNotInBracket    = errors.New("match does not belong to this bracket")
	ErrMatchNotReady        = errors.New("match does not have both teams yet")
	ErrMatchAlreadyComplete = errors.New("match is already completed")
	ErrInvalidWinner        = errors.New("winner is not a team of this match")
	ErrMatchLocked          = errors.New("a following match has already started")
)

type feeder struct {
	from  *models.Match
	loser bool
}

// Bracket is the in-memory graph of a tournament's matches. Mutations are
// recorded so the caller can persist only what changed.
type Bracket struct {
	matches      map[uuid.UUID]*models.Match
	ordered      []*models.Match
	feeders      map[uuid.UUID]map[int][]feeder
	disqualified map[uuid.UUID]bool
	changed      map[uuid.UUID]bool
	now          func() time.Time
}

// New builds a bracket over matches. disqualified holds participant ids that
// forfeit every match they are still in.
func New(matches []*models.Match, disqualified map[uuid.UUID]bool) *Bracket {
	b := &Bracket{
		matches:      make(map[uuid.UUID]*models.Match, len(matches)),
		ordered:      make([]*models.Match, len(matches)),
		feeders:      make(map[uuid.UUID]map[int][]feeder),
		disqualified: disqualified,
		changed:      make(map[uuid.UUID]bool),
		now:          func() time.Time { return time.Now().UTC() },
	}
	if b.disqualified == nil {
		b.disqualified = map[uuid.UUID]bool{}
	}

	copy(b.ordered, matches)
	sort.SliceStable(b.ordered, func(i, j int) bool {
		a, c := b.ordered[i], b.ordered[j]
		if bracketRank(a.BracketType) != bracketRank(c.BracketType) {
			return bracketRank(a.BracketType) < bracketRank(c.BracketType)
		}
		if a.RoundNumber != c.RoundNumber {
			return a.RoundNumber < c.RoundNumber
		}
		return a.MatchNumber < c.MatchNumber
	})

	for _, m := range matches {
		b.matches[m.ID] = m
	}
	for _, m := range matches {
		if m.NextMatchID != nil && m.NextMatchSlot != nil {
			b.addFeeder(*m.NextMatchID, *m.NextMatchSlot, feeder{from: m})
		}
		if m.LoserNextMatchID != nil && m.LoserNextSlot != nil {
			b.addFeeder(*m.LoserNextMatchID, *m.LoserNextSlot, feeder{from: m, loser: true})
		}
	}
	return b
}

func (b *Bracket) addFeeder(to uuid.UUID, slot int, f feeder) {
	if b.feeders[to] == nil {
		b.feeders[to] = make(map[int][]feeder)
	}
	b.feeders[to][slot] = append(b.feeders[to][slot], f)
}

func bracketRank(t models.BracketType) int {
	switch t {
	case models.BracketWinners:
		return 0
	case models.BracketLosers:
		return 1
	}
	return 2
}

func (b *Bracket) Match(id uuid.UUID) (*models.Match, bool) {
	m, ok := b.matches[id]
	return m, ok
}

// Changed returns the matches modified since the bracket was built, in bracket order.
func (b *Bracket) Changed() []*models.Match {
	out := make([]*models.Match, 0, len(b.changed))
	for _, m := range b.ordered {
		if b.changed[m.ID] {
			out = append(out, m)
		}
	}
	return out
}

// Final returns the match that decides the tournament: the grand final when
// present, otherwise the winners match without a next match.
func (b *Bracket) Final() *models.Match {
	var final *models.Match
	for _, m := range b.ordered {
		if m.NextMatchID != nil {
			continue
		}
		if m.BracketType == models.BracketGrandFinal {
			return m
		}
		if m.BracketType == models.BracketWinners {
			final = m
		}
	}
	return final
}

// Champion returns the winner of the final once it is completed.
func (b *Bracket) Champion() (*uuid.UUID, bool) {
	final := b.Final()
	if final == nil || final.Status != models.MatchCompleted {
		return nil, false
	}
	return final.WinnerID, true
}

// Settle resolves walkovers until nothing changes: a team facing an empty
// slot that can no longer be filled advances, a disqualified team forfeits,
// and a match that can receive no team at all is closed without a winner.
func (b *Bracket) Settle() {
	for {
		progressed := false
		for _, m := range b.ordered {
			if m.Status == models.MatchCompleted {
				continue
			}
			if b.settleMatch(m) {
				progressed = true
			}
		}
		if !progressed {
			return
		}
	}
}

func (b *Bracket) settleMatch(m *models.Match) bool {
	// Дисквалифицированная команда ждёт, пока определится соперник.
	if !b.slotFinal(m, 1) || !b.slotFinal(m, 2) {
		return false
	}
	active1, active2 := b.active(m.Team1ID), b.active(m.Team2ID)
	switch {
	case active1 && active2:
		return false
	case active1:
		b.complete(m, m.Team1ID)
	case active2:
		b.complete(m, m.Team2ID)
	default:
		b.complete(m, nil)
	}
	return true
}

func (b *Bracket) active(team *uuid.UUID) bool {
	return team != nil && !b.disqualified[*team]
}

// slotFinal reports whether a slot holds its definitive occupant: it has a
// team, or every match feeding it is completed.
func (b *Bracket) slotFinal(m *models.Match, slot int) bool {
	if m.TeamInSlot(slot) != nil {
		return true
	}
	for _, f := range b.feeders[m.ID][slot] {
		if f.from.Status != models.MatchCompleted {
			return false
		}
	}
	return true
}

// Complete records the winner of a match with both teams present, advances
// winner and loser, and settles the rest of the bracket.
func (b *Bracket) Complete(matchID, winner uuid.UUID) error {
	m, ok := b.matches[matchID]
	if !ok {
		return ErrMatchNotInBracket
	}
	if m.Status == models.MatchCompleted {
		return ErrMatchAlreadyComplete
	}
	if m.Team1ID == nil || m.Team2ID == nil {
		return ErrMatchNotReady
	}
	if !m.HasTeam(winner) {
		return ErrInvalidWinner
	}
	b.complete(m, &winner)
	b.Settle()
	return nil
}

func (b *Bracket) complete(m *models.Match, winner *uuid.UUID) {
	m.Status = models.MatchCompleted
	m.WinnerID = winner
	b.Touch(m)

	if winner == nil {
		return
	}
	if m.NextMatchID != nil && m.NextMatchSlot != nil {
		if next, ok := b.matches[*m.NextMatchID]; ok {
			next.SetTeamInSlot(*m.NextMatchSlot, winner)
			b.Touch(next)
		}
	}
	loser := m.Opponent(*winner)
	if loser == nil || b.disqualified[*loser] {
		return
	}
	if m.LoserNextMatchID != nil && m.LoserNextSlot != nil {
		if next, ok := b.matches[*m.LoserNextMatchID]; ok {
			next.SetTeamInSlot(*m.LoserNextSlot, loser)
			b.Touch(next)
		}
	}
}

// Rewind reopens a completed match: the teams it sent forward are taken back
// out of the following matches. Walkovers closed by Settle on top of those
// teams are reopened too. Fails with ErrMatchLocked when a following match
// has started or was actually played.
func (b *Bracket) Rewind(matchID uuid.UUID) error {
	m, ok := b.matches[matchID]
	if !ok {
		return ErrMatchNotInBracket
	}
	if m.Status != models.MatchCompleted {
		return nil
	}
	if err := b.checkRewind(m); err != nil {
		return err
	}

	b.retract(m)
	m.WinnerID = nil
	m.Status = models.MatchOngoing
	b.Touch(m)
	return nil
}

type slotRef struct {
	match *models.Match
	slot  int
}

// advanced returns the slots of following matches that m filled.
func (b *Bracket) advanced(m *models.Match) []slotRef {
	targets := []struct {
		id   *uuid.UUID
		slot *int
	}{
		{m.NextMatchID, m.NextMatchSlot},
		{m.LoserNextMatchID, m.LoserNextSlot},
	}
	var out []slotRef
	for _, t := range targets {
		if t.id == nil || t.slot == nil {
			continue
		}
		next, ok := b.matches[*t.id]
		if !ok || next.TeamInSlot(*t.slot) == nil {
			continue
		}
		out = append(out, slotRef{match: next, slot: *t.slot})
	}
	return out
}

func (b *Bracket) checkRewind(m *models.Match) error {
	for _, ref := range b.advanced(m) {
		switch {
		case ref.match.Status == models.MatchOngoing:
			return ErrMatchLocked
		case ref.match.Status != models.MatchCompleted:
		case !b.walkover(ref.match):
			return ErrMatchLocked
		default:
			if err := b.checkRewind(ref.match); err != nil {
				return err
			}
		}
	}
	return nil
}

// retract empties the slots m filled, reopening walkovers along the way.
func (b *Bracket) retract(m *models.Match) {
	for _, ref := range b.advanced(m) {
		next := ref.match
		if next.Status == models.MatchCompleted {
			b.retract(next)
			next.WinnerID = nil
			next.Status = models.MatchPending
		}
		next.SetTeamInSlot(ref.slot, nil)
		if next.Status == models.MatchScheduled {
			next.Status = models.MatchPending
			next.ScheduledAt = nil
		}
		b.Touch(next)
	}
}

// walkover reports whether a completed match was closed by Settle rather than
// played: a slot stayed empty, or a disqualified team forfeited before any score.
func (b *Bracket) walkover(m *models.Match) bool {
	if m.Status != models.MatchCompleted {
		return false
	}
	if m.Team1ID == nil || m.Team2ID == nil {
		return true
	}
	if m.Score1 != 0 || m.Score2 != 0 {
		return false
	}
	return b.disqualified[*m.Team1ID] || b.disqualified[*m.Team2ID]
}

// Touch marks a match as changed so it is persisted with the rest of the bracket.
func (b *Bracket) Touch(m *models.Match) {
	m.UpdatedAt = b.now()
	b.changed[m.ID] = true
}
