package models

import (
	"time"

	"github.com/google/uuid"
)

type MatchStatus string

const (
	MatchPending   MatchStatus = "pending"
	MatchScheduled MatchStatus = "scheduled"
	MatchOngoing   MatchStatus = "ongoing"
	MatchCompleted MatchStatus = "completed"
)

type BracketType string

const (
	BracketWinners    BracketType = "winners"
	BracketLosers     BracketType = "losers"
	BracketGrandFinal BracketType = "grand_final"
)

func (b BracketType) Valid() bool {
	return b == BracketWinners || b == BracketLosers || b == BracketGrandFinal
}

type Match struct {
	ID           uuid.UUID   `json:"id" db:"id"`
	TournamentID uuid.UUID   `json:"tournament_id" db:"tournament_id"`
	PhaseID      *uuid.UUID  `json:"phase_id,omitempty" db:"phase_id"`
	BracketType  BracketType `json:"bracket_type" db:"bracket_type"`
	RoundNumber  int         `json:"round_number" db:"round_number"`
	MatchNumber  int         `json:"match_number" db:"match_number"`
	Team1ID      *uuid.UUID  `json:"team1_id,omitempty" db:"team1_id"`
	Team2ID      *uuid.UUID  `json:"team2_id,omitempty" db:"team2_id"`
	Score1       int         `json:"score1" db:"score1"`
	Score2       int         `json:"score2" db:"score2"`
	WinnerID     *uuid.UUID  `json:"winner_id,omitempty" db:"winner_id"`
	Status       MatchStatus `json:"status" db:"status"`
	ScheduledAt  *time.Time  `json:"scheduled_at,omitempty" db:"scheduled_at"`

	NextMatchID      *uuid.UUID `json:"next_match_id,omitempty" db:"next_match_id"`
	NextMatchSlot    *int       `json:"next_match_slot,omitempty" db:"next_match_slot"`
	LoserNextMatchID *uuid.UUID `json:"loser_next_match_id,omitempty" db:"loser_next_match_id"`
	LoserNextSlot    *int       `json:"loser_next_slot,omitempty" db:"loser_next_slot"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// TeamInSlot returns the participant in slot 1 or 2.
func (m *Match) TeamInSlot(slot int) *uuid.UUID {
	if slot == 1 {
		return m.Team1ID
	}
	return m.Team2ID
}

func (m *Match) SetTeamInSlot(slot int, id *uuid.UUID) {
	if slot == 1 {
		m.Team1ID = id
	} else {
		m.Team2ID = id
	}
}

// HasTeam reports whether the participant plays in this match.
func (m *Match) HasTeam(id uuid.UUID) bool {
	return (m.Team1ID != nil && *m.Team1ID == id) || (m.Team2ID != nil && *m.Team2ID == id)
}

// Opponent returns the other participant, or nil if the slot is empty.
func (m *Match) Opponent(id uuid.UUID) *uuid.UUID {
	if m.Team1ID != nil && *m.Team1ID == id {
		return m.Team2ID
	}
	if m.Team2ID != nil && *m.Team2ID == id {
		return m.Team1ID
	}
	return nil
}

// Loser returns the participant who lost a completed match, or nil.
func (m *Match) Loser() *uuid.UUID {
	if m.Status != MatchCompleted || m.WinnerID == nil {
		return nil
	}
	return m.Opponent(*m.WinnerID)
}
