package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TournamentStatus представляет статусы турнира.
type TournamentStatus string

const (
	TournamentDraft        TournamentStatus = "draft"
	TournamentRegistration TournamentStatus = "registration"
	TournamentCheckIn      TournamentStatus = "check_in"
	TournamentOngoing      TournamentStatus = "ongoing"
	TournamentCompleted    TournamentStatus = "completed"
	TournamentCanceled     TournamentStatus = "canceled"
)

func (s TournamentStatus) Valid() bool {
	switch s {
	case TournamentDraft, TournamentRegistration, TournamentCheckIn, TournamentOngoing, TournamentCompleted, TournamentCanceled:
		return true
	}
	return false
}

type TournamentFormat string

const (
	FormatSingleElimination TournamentFormat = "single_elimination"
	FormatDoubleElimination TournamentFormat = "double_elimination"
)

func (f TournamentFormat) Valid() bool {
	return f == FormatSingleElimination || f == FormatDoubleElimination
}

// MapPool is the ordered list of maps available for veto. Stored as a JSON array.
type MapPool []string

func (p MapPool) Value() (driver.Value, error) {
	if p == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(p))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (p *MapPool) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*p = MapPool{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("map pool: unsupported scan type %T", src)
	}
	var maps []string
	if err := json.Unmarshal(raw, &maps); err != nil {
		return fmt.Errorf("map pool: %w", err)
	}
	*p = maps
	return nil
}

func (p MapPool) Contains(name string) bool {
	for _, m := range p {
		if m == name {
			return true
		}
	}
	return false
}

// Tournament представляет турнир.
type Tournament struct {
	ID                  uuid.UUID        `json:"id" db:"id"`
	Name                string           `json:"name" db:"name"`
	Game                string           `json:"game" db:"game"`
	Description         *string          `json:"description,omitempty" db:"description"`
	OrganizerID         uuid.UUID        `json:"organizer_id" db:"organizer_id"`
	Format              TournamentFormat `json:"format" db:"format"`
	Status              TournamentStatus `json:"status" db:"status"`
	MaxTeams            int              `json:"max_teams" db:"max_teams"`
	BestOf              int              `json:"best_of" db:"best_of"`
	MapPool             MapPool          `json:"map_pool" db:"map_pool"`
	StartsAt            *time.Time       `json:"starts_at,omitempty" db:"starts_at"`
	CheckInOpensAt      *time.Time       `json:"check_in_opens_at,omitempty" db:"check_in_opens_at"`
	WinnerParticipantID *uuid.UUID       `json:"winner_participant_id,omitempty" db:"winner_participant_id"`
	LogoKey             *string          `json:"-" db:"logo_key"`
	LogoURL             *string          `json:"logo_url,omitempty" db:"-"`
	CreatedAt           time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time        `json:"updated_at" db:"updated_at"`
}

// TournamentDetails aggregates everything a tournament page needs.
type TournamentDetails struct {
	Tournament   *Tournament       `json:"tournament"`
	Phases       []TournamentPhase `json:"phases"`
	Participants []Participant     `json:"participants"`
	Matches      []*Match          `json:"matches"`
}
