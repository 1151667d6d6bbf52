package handlers

import (
	"log/slog"
	"net/http"

	"github.com/arenagg/tournament-core/middleware"
	"github.com/arenagg/tournament-core/notify"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Происхождение фильтрует CORS-слой/прокси перед нами.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type WebSocketHandler struct {
	hub *notify.Hub
}

func NewWebSocketHandler(hub *notify.Hub) *WebSocketHandler {
	return &WebSocketHandler{hub: hub}
}

// ServeWS обрабатывает GET /ws: аутентифицированный пользователь получает
// поток своих уведомлений.
func (h *WebSocketHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, "authentication required for notifications stream")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.WarnContext(r.Context(), "websocket upgrade failed", slog.Any("error", err))
		return
	}

	client := &notify.Client{
		Hub:    h.hub,
		Conn:   conn,
		Send:   make(chan []byte, 64),
		UserID: userID,
	}
	h.hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
