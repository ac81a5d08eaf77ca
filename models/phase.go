package models

import (
	"time"

	"github.com/google/uuid"
)

type PhaseStatus string

const (
	PhaseDraft     PhaseStatus = "draft"
	PhaseReady     PhaseStatus = "ready"
	PhaseOngoing   PhaseStatus = "ongoing"
	PhaseCompleted PhaseStatus = "completed"
)

func (s PhaseStatus) Valid() bool {
	switch s {
	case PhaseDraft, PhaseReady, PhaseOngoing, PhaseCompleted:
		return true
	}
	return false
}

// TournamentPhase is a stage of a tournament (group stage, playoffs) with its own status.
type TournamentPhase struct {
	ID           uuid.UUID   `json:"id" db:"id"`
	TournamentID uuid.UUID   `json:"tournament_id" db:"tournament_id"`
	Name         string      `json:"name" db:"name"`
	Order        int         `json:"order" db:"phase_order"`
	Status       PhaseStatus `json:"status" db:"status"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
}
