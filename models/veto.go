package models

import (
	"time"

	"github.com/google/uuid"
)

type VetoActionType string

const (
	VetoBan  VetoActionType = "ban"
	VetoPick VetoActionType = "pick"
)

func (t VetoActionType) Valid() bool {
	return t == VetoBan || t == VetoPick
}

type VetoAction struct {
	ID         uuid.UUID      `json:"id" db:"id"`
	MatchID    uuid.UUID      `json:"match_id" db:"match_id"`
	TeamID     uuid.UUID      `json:"team_id" db:"team_id"`
	MapName    string         `json:"map_name" db:"map_name"`
	ActionType VetoActionType `json:"action_type" db:"action_type"`
	Step       int            `json:"step" db:"step"`
	CreatedAt  time.Time      `json:"created_at" db:"created_at"`
}

// VetoState is the veto log of a match together with the maps still available.
type VetoState struct {
	MatchID       uuid.UUID    `json:"match_id"`
	Actions       []VetoAction `json:"actions"`
	RemainingMaps []string     `json:"remaining_maps"`
}
