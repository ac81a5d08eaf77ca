package handlers

import (
	"net/http"

	"github.com/Dosada05/esport-arena/services"
	"github.com/google/uuid"
)

type TeamHandler struct {
	teamService services.TeamService
}

func NewTeamHandler(ts services.TeamService) *TeamHandler {
	return &TeamHandler{teamService: ts}
}

// Create godoc
// @Summary Создать команду
// @Description Создатель становится капитаном и первым участником.
// @Tags teams
// @Accept json
// @Produce json
// @Param body body services.CreateTeamInput true "Название и тег"
// @Success 201 {object} map[string]interface{}
// @Failure 409 {object} map[string]string "Название занято"
// @Security BearerAuth
// @Router /teams [post]
func (h *TeamHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	var input services.CreateTeamInput
	if !decodeAndValidate(w, r, &input) {
		return
	}

	team, err := h.teamService.CreateTeam(r.Context(), actor, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, jsonResponse{"team": team})
}

// ListMine godoc
// @Summary Мои команды
// @Tags teams
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /teams/mine [get]
func (h *TeamHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	teams, err := h.teamService.ListMyTeams(r.Context(), actor)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"teams": teams})
}

// Get godoc
// @Summary Команда с составом
// @Tags teams
// @Produce json
// @Param teamID path string true "Team ID (uuid)"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Router /teams/{teamID} [get]
func (h *TeamHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	team, err := h.teamService.GetTeam(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"team": team})
}

type addMemberInput struct {
	UserID uuid.UUID `json:"user_id" validate:"required"`
}

// AddMember godoc
// @Summary Добавить участника в команду
// @Tags teams
// @Accept json
// @Produce json
// @Param teamID path string true "Team ID (uuid)"
// @Param body body addMemberInput true "Пользователь"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]string "Только капитан"
// @Failure 409 {object} map[string]string "Уже в команде"
// @Security BearerAuth
// @Router /teams/{teamID}/members [post]
func (h *TeamHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	teamID, err := getIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	var input addMemberInput
	if !decodeAndValidate(w, r, &input) {
		return
	}

	team, err := h.teamService.AddMember(r.Context(), teamID, input.UserID, actor)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"team": team})
}

// RemoveMember godoc
// @Summary Удалить участника (или выйти из команды)
// @Tags teams
// @Param teamID path string true "Team ID (uuid)"
// @Param userID path string true "User ID (uuid)"
// @Success 204
// @Failure 400 {object} map[string]string "Капитана удалить нельзя"
// @Security BearerAuth
// @Router /teams/{teamID}/members/{userID} [delete]
func (h *TeamHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	teamID, err := getIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	userID, err := getIDFromURL(r, "userID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}

	if err := h.teamService.RemoveMember(r.Context(), teamID, userID, actor); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UploadLogo godoc
// @Summary Загрузить логотип команды
// @Tags teams
// @Accept multipart/form-data
// @Produce json
// @Param teamID path string true "Team ID (uuid)"
// @Param logo formData file true "Изображение (png, jpeg, gif, webp)"
// @Success 200 {object} map[string]interface{}
// @Failure 415 {object} map[string]string "Неподдерживаемый тип файла"
// @Failure 503 {object} map[string]string "Хранилище не настроено"
// @Security BearerAuth
// @Router /teams/{teamID}/logo [post]
func (h *TeamHandler) UploadLogo(w http.ResponseWriter, r *http.Request) {
	teamID, err := getIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	file, contentType, ok := readLogo(w, r)
	if !ok {
		return
	}
	defer file.Close()

	team, err := h.teamService.UploadLogo(r.Context(), teamID, actor, contentType, file)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"team": team})
}
