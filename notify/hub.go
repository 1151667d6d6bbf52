package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// Client — одно WebSocket-соединение пользователя.
type Client struct {
	Hub      *Hub
	Conn     *websocket.Conn
	Send     chan []byte
	UserID   int
	IsClosed bool
	Mu       sync.Mutex
}

// Hub хранит комнаты "по пользователю" и рассылает уведомления.
// Реализует Notifier. При наличии Bridge событие публикуется в Redis,
// и локальная доставка происходит уже из подписки — так каждый инстанс
// доставляет событие своим клиентам ровно один раз.
type Hub struct {
	rooms      map[int]map[*Client]bool
	Register   chan *Client
	Unregister chan *Client
	bridge     Bridge
	logger     *slog.Logger
	mu         sync.RWMutex
}

// Bridge разносит события между инстансами (см. RedisBridge).
type Bridge interface {
	Publish(ctx context.Context, n Notification) error
	Subscribe(handler func(n Notification)) error
}

func NewHub(logger *slog.Logger, bridge Bridge) *Hub {
	return &Hub{
		rooms:      make(map[int]map[*Client]bool),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		bridge:     bridge,
		logger:     logger,
	}
}

// Run обслуживает регистрацию клиентов; запускается одной горутиной из main.
func (h *Hub) Run() {
	if h.bridge != nil {
		if err := h.bridge.Subscribe(h.deliverLocal); err != nil {
			h.logger.Error("notification bridge subscription failed", slog.Any("error", err))
		}
	}
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			if _, ok := h.rooms[client.UserID]; !ok {
				h.rooms[client.UserID] = make(map[*Client]bool)
			}
			h.rooms[client.UserID][client] = true
			h.mu.Unlock()
			h.logger.Debug("notification client registered", slog.Int("user_id", client.UserID))

		case client := <-h.Unregister:
			h.mu.Lock()
			if clients, ok := h.rooms[client.UserID]; ok {
				if _, okClient := clients[client]; okClient {
					client.Mu.Lock()
					if !client.IsClosed {
						close(client.Send)
						client.IsClosed = true
					}
					client.Mu.Unlock()
					delete(clients, client)
					if len(clients) == 0 {
						delete(h.rooms, client.UserID)
					}
				}
			}
			h.mu.Unlock()
			h.logger.Debug("notification client unregistered", slog.Int("user_id", client.UserID))
		}
	}
}

// Notify реализует Notifier. Любая ошибка доставки только логируется.
func (h *Hub) Notify(ctx context.Context, n Notification) {
	if n.SentAt.IsZero() {
		n.SentAt = time.Now()
	}
	if h.bridge != nil {
		if err := h.bridge.Publish(ctx, n); err != nil {
			h.logger.Warn("failed to publish notification, delivering locally",
				slog.Int("user_id", n.UserID), slog.Any("error", err))
			h.deliverLocal(n)
		}
		return
	}
	h.deliverLocal(n)
}

func (h *Hub) deliverLocal(n Notification) {
	message, err := json.Marshal(n)
	if err != nil {
		h.logger.Error("failed to marshal notification", slog.Any("error", err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.rooms[n.UserID] {
		client.Mu.Lock()
		if client.IsClosed {
			client.Mu.Unlock()
			continue
		}
		select {
		case client.Send <- message:
		default:
			// Канал клиента полон: соединение отстало, пропускаем.
		}
		client.Mu.Unlock()
	}
}

func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister <- c
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error { c.Conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })

	for {
		// Входящие сообщения игнорируются: канал только серверный.
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
