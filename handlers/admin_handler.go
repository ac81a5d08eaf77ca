package handlers

import (
	"net/http"

	"github.com/Dosada05/esport-arena/services"
	"github.com/google/uuid"
)

// AdminHandler обслуживает панель администратора турнира.
// Доступ ограничен ролями organizer и admin на уровне роутера,
// права на конкретный турнир проверяет сервис.
type AdminHandler struct {
	participantService services.ParticipantService
	matchService       services.MatchService
}

func NewAdminHandler(ps services.ParticipantService, ms services.MatchService) *AdminHandler {
	return &AdminHandler{participantService: ps, matchService: ms}
}

type setCheckInInput struct {
	CheckedIn *bool `json:"checked_in" validate:"required"`
}

type setDisqualifiedInput struct {
	Disqualified *bool `json:"disqualified" validate:"required"`
}

// seed_order: null снимает посев
type setSeedInput struct {
	SeedOrder *int `json:"seed_order" validate:"omitempty,min=1"`
}

// SetCheckIn godoc
// @Summary Отметить check-in участника
// @Tags admin
// @Accept json
// @Produce json
// @Param participantID path string true "Participant ID (uuid)"
// @Param body body setCheckInInput true "checked_in"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /admin/participants/{participantID}/check-in [patch]
func (h *AdminHandler) SetCheckIn(w http.ResponseWriter, r *http.Request) {
	h.updateParticipant(w, r, func(id uuid.UUID, actor services.Actor) (interface{}, error) {
		var input setCheckInInput
		if !decodeAndValidate(w, r, &input) {
			return nil, nil
		}
		return h.participantService.SetCheckIn(r.Context(), id, actor, *input.CheckedIn)
	})
}

// SetDisqualified godoc
// @Summary Дисквалифицировать или восстановить участника
// @Description Во время турнира соперник дисквалифицированной команды проходит дальше автоматически. Восстановить команду можно только до старта.
// @Tags admin
// @Accept json
// @Produce json
// @Param participantID path string true "Participant ID (uuid)"
// @Param body body setDisqualifiedInput true "disqualified"
// @Success 200 {object} map[string]interface{}
// @Failure 409 {object} map[string]string "Турнир завершен или уже идет"
// @Security BearerAuth
// @Router /admin/participants/{participantID}/disqualification [patch]
func (h *AdminHandler) SetDisqualified(w http.ResponseWriter, r *http.Request) {
	h.updateParticipant(w, r, func(id uuid.UUID, actor services.Actor) (interface{}, error) {
		var input setDisqualifiedInput
		if !decodeAndValidate(w, r, &input) {
			return nil, nil
		}
		return h.participantService.SetDisqualified(r.Context(), id, actor, *input.Disqualified)
	})
}

// SetSeed godoc
// @Summary Изменить посев участника
// @Tags admin
// @Accept json
// @Produce json
// @Param participantID path string true "Participant ID (uuid)"
// @Param body body setSeedInput true "seed_order"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /admin/participants/{participantID}/seed [patch]
func (h *AdminHandler) SetSeed(w http.ResponseWriter, r *http.Request) {
	h.updateParticipant(w, r, func(id uuid.UUID, actor services.Actor) (interface{}, error) {
		var input setSeedInput
		if !decodeAndValidate(w, r, &input) {
			return nil, nil
		}
		return h.participantService.SetSeedOrder(r.Context(), id, actor, input.SeedOrder)
	})
}

// UpdateScore godoc
// @Summary Ввести счет матча
// @Description При complete=true победитель проходит дальше по сетке, проигравший падает в нижнюю сетку.
// @Tags admin
// @Accept json
// @Produce json
// @Param matchID path string true "Match ID (uuid)"
// @Param body body services.UpdateScoreInput true "Счет"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string "Ничья или неверный счет"
// @Failure 409 {object} map[string]string "Матч заблокирован"
// @Security BearerAuth
// @Router /admin/matches/{matchID}/score [patch]
func (h *AdminHandler) UpdateScore(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	var input services.UpdateScoreInput
	if !decodeAndValidate(w, r, &input) {
		return
	}

	match, err := h.matchService.UpdateScore(r.Context(), matchID, actor, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"match": match})
}

// updateParticipant разбирает participantID и актора, вызывает fn и пишет ответ.
// fn возвращает (nil, nil), если ответ уже записан.
func (h *AdminHandler) updateParticipant(w http.ResponseWriter, r *http.Request, fn func(uuid.UUID, services.Actor) (interface{}, error)) {
	participantID, err := getIDFromURL(r, "participantID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}

	participant, err := fn(participantID, actor)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if participant == nil {
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"participant": participant})
}
