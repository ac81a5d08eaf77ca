package handlers

import (
	"net/http"

	"github.com/Dosada05/esport-arena/services"
)

type PhaseHandler struct {
	phaseService services.PhaseService
}

func NewPhaseHandler(ps services.PhaseService) *PhaseHandler {
	return &PhaseHandler{phaseService: ps}
}

// List godoc
// @Summary Фазы турнира
// @Tags phases
// @Produce json
// @Param tournamentID path string true "Tournament ID (uuid)"
// @Success 200 {object} map[string]interface{}
// @Router /tournaments/{tournamentID}/phases [get]
func (h *PhaseHandler) List(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	phases, err := h.phaseService.ListPhases(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"phases": phases})
}

// Create godoc
// @Summary Добавить фазу
// @Tags phases
// @Accept json
// @Produce json
// @Param tournamentID path string true "Tournament ID (uuid)"
// @Param body body services.CreatePhaseInput true "Фаза"
// @Success 201 {object} map[string]interface{}
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/phases [post]
func (h *PhaseHandler) Create(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	var input services.CreatePhaseInput
	if !decodeAndValidate(w, r, &input) {
		return
	}

	phase, err := h.phaseService.CreatePhase(r.Context(), tournamentID, actor, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, jsonResponse{"phase": phase})
}

// Update godoc
// @Summary Изменить фазу
// @Tags phases
// @Accept json
// @Produce json
// @Param phaseID path string true "Phase ID (uuid)"
// @Param body body services.UpdatePhaseInput true "Изменяемые поля"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /phases/{phaseID} [patch]
func (h *PhaseHandler) Update(w http.ResponseWriter, r *http.Request) {
	phaseID, err := getIDFromURL(r, "phaseID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	var input services.UpdatePhaseInput
	if !decodeAndValidate(w, r, &input) {
		return
	}

	phase, err := h.phaseService.UpdatePhase(r.Context(), phaseID, actor, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"phase": phase})
}

// Delete godoc
// @Summary Удалить фазу
// @Tags phases
// @Param phaseID path string true "Phase ID (uuid)"
// @Success 204
// @Security BearerAuth
// @Router /phases/{phaseID} [delete]
func (h *PhaseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	phaseID, err := getIDFromURL(r, "phaseID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	if err := h.phaseService.DeletePhase(r.Context(), phaseID, actor); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
