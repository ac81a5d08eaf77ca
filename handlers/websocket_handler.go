package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Dosada05/esport-arena/realtime"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origin проверяет CORS-слой, сокеты открыты для любых клиентов.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WebSocketHandler struct {
	hub *realtime.Hub
}

func NewWebSocketHandler(hub *realtime.Hub) *WebSocketHandler {
	return &WebSocketHandler{hub: hub}
}

// ServeMatch подписывает клиента на события матча: счет, чат, вето.
// Клиент подключается к /ws/matches/{matchID}
func (h *WebSocketHandler) ServeMatch(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "matchID", realtime.MatchRoom)
}

// ServeTournament подписывает клиента на обновления сетки турнира.
// Клиент подключается к /ws/tournaments/{tournamentID}
func (h *WebSocketHandler) ServeTournament(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "tournamentID", realtime.TournamentRoom)
}

func (h *WebSocketHandler) serve(w http.ResponseWriter, r *http.Request, param string, room func(uuid.UUID) string) {
	id, err := getIDFromURL(r, param)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// upgrader.Upgrade сам отправляет HTTP ошибку клиенту
		slog.Warn("websocket upgrade failed", slog.String("room", room(id)), slog.Any("error", err))
		return
	}
	h.hub.Serve(conn, room(id))
}
