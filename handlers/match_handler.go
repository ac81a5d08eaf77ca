package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/Dosada05/esport-arena/models"
	"github.com/Dosada05/esport-arena/services"
)

type MatchHandler struct {
	matchService services.MatchService
}

func NewMatchHandler(ms services.MatchService) *MatchHandler {
	return &MatchHandler{matchService: ms}
}

// List godoc
// @Summary Матчи турнира
// @Description Сначала матчи с назначенным временем, затем по раунду и номеру матча.
// @Tags matches
// @Produce json
// @Param tournamentID path string true "Tournament ID (uuid)"
// @Param bracket_type query string false "winners, losers или grand_final"
// @Success 200 {object} map[string]interface{}
// @Router /tournaments/{tournamentID}/matches [get]
func (h *MatchHandler) List(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var bracket *models.BracketType
	if raw := r.URL.Query().Get("bracket_type"); raw != "" {
		b := models.BracketType(raw)
		if !b.Valid() {
			badRequestResponse(w, r, errors.New("invalid bracket_type query parameter"))
			return
		}
		bracket = &b
	}

	matches, err := h.matchService.ListMatches(r.Context(), tournamentID, bracket)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"matches": matches})
}

// Get godoc
// @Summary Матч
// @Tags matches
// @Produce json
// @Param matchID path string true "Match ID (uuid)"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Router /matches/{matchID} [get]
func (h *MatchHandler) Get(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	match, err := h.matchService.GetMatch(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"match": match})
}

type scheduleMatchInput struct {
	ScheduledAt *time.Time `json:"scheduled_at"`
}

// Schedule godoc
// @Summary Назначить время матча
// @Description scheduled_at: null снимает расписание.
// @Tags matches
// @Accept json
// @Produce json
// @Param matchID path string true "Match ID (uuid)"
// @Param body body scheduleMatchInput true "Время (RFC 3339)"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /matches/{matchID}/schedule [patch]
func (h *MatchHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	var input scheduleMatchInput
	if !decodeAndValidate(w, r, &input) {
		return
	}

	match, err := h.matchService.ScheduleMatch(r.Context(), matchID, actor, input.ScheduledAt)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"match": match})
}

// Start godoc
// @Summary Начать матч
// @Tags matches
// @Produce json
// @Param matchID path string true "Match ID (uuid)"
// @Success 200 {object} map[string]interface{}
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /matches/{matchID}/start [post]
func (h *MatchHandler) Start(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	match, err := h.matchService.StartMatch(r.Context(), matchID, actor)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"match": match})
}
