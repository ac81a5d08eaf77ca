package handlers

import (
	"net/http"

	"github.com/Dosada05/esport-arena/services"
)

type ChatHandler struct {
	chatService services.ChatService
}

func NewChatHandler(cs services.ChatService) *ChatHandler {
	return &ChatHandler{chatService: cs}
}

// List godoc
// @Summary Сообщения чата матча
// @Tags chat
// @Produce json
// @Param matchID path string true "Match ID (uuid)"
// @Param limit query int false "Количество последних сообщений"
// @Success 200 {object} map[string]interface{}
// @Router /matches/{matchID}/chat [get]
func (h *ChatHandler) List(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	limit, err := queryInt(r, "limit", 1)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	messages, err := h.chatService.ListMessages(r.Context(), matchID, limit)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"messages": messages})
}

// длина и пустота проверяются в сервисе после trim
type sendMessageInput struct {
	Message string `json:"message"`
}

// Send godoc
// @Summary Отправить сообщение в чат матча
// @Tags chat
// @Accept json
// @Produce json
// @Param matchID path string true "Match ID (uuid)"
// @Param body body sendMessageInput true "Текст (до 500 символов)"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]string "Le message est trop long"
// @Security BearerAuth
// @Router /matches/{matchID}/chat [post]
func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}
	var input sendMessageInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	message, err := h.chatService.SendMessage(r.Context(), matchID, actor.UserID, input.Message)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, jsonResponse{"message": message})
}
