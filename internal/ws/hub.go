package ws

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/nlemma/numberguessr/internal/engine"
	"github.com/nlemma/numberguessr/internal/model"
)

// Hub tracks every live connection by connection id and fans outbound
// messages out to them. It is the engine's Notifier: addressed sends for
// room traffic, a broadcast for lobby-list pushes.
type Hub struct {
	mu      sync.RWMutex
	clients map[model.ConnectionID]*Client
	logger  *slog.Logger
}

// NewHub creates an empty Hub
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[model.ConnectionID]*Client),
		logger:  logger.With(slog.String("component", "ws")),
	}
}

// Ensure Hub implements the engine's notifier
var _ engine.Notifier = (*Hub)(nil)

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	h.clients[client.ID] = client
	total := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("client registered",
		slog.String("connection", string(client.ID)),
		slog.Int("total_clients", total),
	)
}

// Unregister removes a client and closes its send queue
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client.ID]; ok {
		delete(h.clients, client.ID)
		close(client.send)
	}
	total := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("client unregistered",
		slog.String("connection", string(client.ID)),
		slog.Int("total_clients", total),
	)
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Send marshals payload and queues it for one connection. A full queue
// drops the message rather than blocking the caller.
func (h *Hub) Send(id model.ConnectionID, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("marshal outbound failed", slog.String("error", err.Error()))
		return
	}

	// Held across the queue write so Unregister cannot close the
	// channel mid-send
	h.mu.RLock()
	defer h.mu.RUnlock()
	client, ok := h.clients[id]
	if !ok {
		return
	}

	select {
	case client.send <- data:
	default:
		h.logger.Warn("message dropped - client buffer full",
			slog.String("connection", string(id)),
		)
	}
}

// BroadcastAll queues payload for every connected client.
func (h *Hub) BroadcastAll(payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("marshal broadcast failed", slog.String("error", err.Error()))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for id, client := range h.clients {
		select {
		case client.send <- data:
		default:
			h.logger.Warn("broadcast dropped - client buffer full",
				slog.String("connection", string(id)),
			)
		}
	}
}

// RoomUpdate implements engine.Notifier
func (h *Hub) RoomUpdate(id model.ConnectionID, snapshot model.RoomSnapshot) {
	h.Send(id, RoomUpdateMsg{Type: TypeRoomUpdate, Room: snapshot})
}

// OpponentLeft implements engine.Notifier
func (h *Hub) OpponentLeft(id model.ConnectionID, code model.RoomCode) {
	h.Send(id, OpponentLeftMsg{Type: TypeOpponentLeft, RoomCode: code})
}

// LobbiesUpdate implements engine.Notifier
func (h *Hub) LobbiesUpdate(lobbies []model.LobbySummary) {
	h.BroadcastAll(LobbiesMsg{Type: TypeLobbiesUpdate, Lobbies: lobbiesJSON(lobbies)})
}
