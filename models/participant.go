package models

import (
	"time"

	"github.com/google/uuid"
)

// Participant is a team registration in a tournament.
type Participant struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	TournamentID uuid.UUID  `json:"tournament_id" db:"tournament_id"`
	TeamID       uuid.UUID  `json:"team_id" db:"team_id"`
	UserID       uuid.UUID  `json:"user_id" db:"user_id"`
	CheckedIn    bool       `json:"checked_in" db:"checked_in"`
	CheckedInAt  *time.Time `json:"checked_in_at,omitempty" db:"checked_in_at"`
	Disqualified bool       `json:"disqualified" db:"disqualified"`
	SeedOrder    *int       `json:"seed_order,omitempty" db:"seed_order"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`

	TeamName string `json:"team_name,omitempty" db:"team_name"`
	TeamTag  string `json:"team_tag,omitempty" db:"team_tag"`
}

// Eligible reports whether the participant can be seeded into a bracket.
func (p *Participant) Eligible() bool {
	return p.CheckedIn && !p.Disqualified
}
