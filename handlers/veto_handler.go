package handlers

import (
	"net/http"

	"github.com/Dosada05/esport-arena/services"
)

type VetoHandler struct {
	vetoService services.VetoService
}

func NewVetoHandler(vs services.VetoService) *VetoHandler {
	return &VetoHandler{vetoService: vs}
}

// Get godoc
// @Summary Состояние вето карт
// @Tags veto
// @Produce json
// @Param matchID path string true "Match ID (uuid)"
// @Success 200 {object} map[string]interface{}
// @Router /matches/{matchID}/veto [get]
func (h *VetoHandler) Get(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	state, err := h.vetoService.GetVeto(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, state)
}

// AddAction godoc
// @Summary Бан или пик карты
// @Tags veto
// @Accept json
// @Produce json
// @Param matchID path string true "Match ID (uuid)"
// @Param body body services.VetoActionInput true "Действие"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]string "Карты нет в пуле"
// @Failure 409 {object} map[string]string "Карта уже использована"
// @Security BearerAuth
// @Router /matches/{matchID}/veto [post]
func (h *VetoHandler) AddAction(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	var input services.VetoActionInput
	if !decodeAndValidate(w, r, &input) {
		return
	}

	state, err := h.vetoService.AddAction(r.Context(), matchID, actor, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, state)
}

// Reset godoc
// @Summary Сбросить вето
// @Tags veto
// @Param matchID path string true "Match ID (uuid)"
// @Success 204
// @Security BearerAuth
// @Router /matches/{matchID}/veto [delete]
func (h *VetoHandler) Reset(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	if err := h.vetoService.Reset(r.Context(), matchID, actor); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
