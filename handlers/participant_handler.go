package handlers

import (
	"net/http"

	"github.com/Dosada05/esport-arena/services"
	"github.com/google/uuid"
)

type ParticipantHandler struct {
	participantService services.ParticipantService
}

func NewParticipantHandler(ps services.ParticipantService) *ParticipantHandler {
	return &ParticipantHandler{
		participantService: ps,
	}
}

// List godoc
// @Summary Участники турнира
// @Description Отсортированы по seed_order, затем по дате регистрации.
// @Tags participants
// @Produce json
// @Param tournamentID path string true "Tournament ID (uuid)"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Router /tournaments/{tournamentID}/participants [get]
func (h *ParticipantHandler) List(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	participants, err := h.participantService.ListParticipants(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"participants": participants})
}

type registerTeamInput struct {
	TeamID uuid.UUID `json:"team_id" validate:"required"`
}

// Register godoc
// @Summary Зарегистрировать команду на турнир
// @Tags participants
// @Description Заявку подает капитан команды.
// @Accept json
// @Produce json
// @Param tournamentID path string true "Tournament ID (uuid)"
// @Param body body registerTeamInput true "Команда"
// @Success 201 {object} map[string]interface{} "Заявка создана"
// @Failure 403 {object} map[string]string "Нет прав / Регистрация закрыта"
// @Failure 404 {object} map[string]string "Турнир или команда не найдены"
// @Failure 409 {object} map[string]string "Уже зарегистрирована / Турнир полон"
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/participants [post]
func (h *ParticipantHandler) Register(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	var input registerTeamInput
	if !decodeAndValidate(w, r, &input) {
		return
	}

	participant, err := h.participantService.RegisterTeam(r.Context(), tournamentID, input.TeamID, actor)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, jsonResponse{"participant": participant})
}

// Unregister godoc
// @Summary Отозвать заявку
// @Tags participants
// @Param participantID path string true "Participant ID (uuid)"
// @Success 204
// @Failure 409 {object} map[string]string "Турнир уже начался"
// @Security BearerAuth
// @Router /participants/{participantID} [delete]
func (h *ParticipantHandler) Unregister(w http.ResponseWriter, r *http.Request) {
	participantID, err := getIDFromURL(r, "participantID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	if err := h.participantService.Unregister(r.Context(), participantID, actor); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CheckIn godoc
// @Summary Подтвердить участие (check-in)
// @Tags participants
// @Produce json
// @Param participantID path string true "Participant ID (uuid)"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]string "Check-in закрыт"
// @Security BearerAuth
// @Router /participants/{participantID}/check-in [post]
func (h *ParticipantHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	participantID, err := getIDFromURL(r, "participantID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	participant, err := h.participantService.CheckIn(r.Context(), participantID, actor)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"participant": participant})
}
