package ws

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/nlemma/numberguessr/internal/engine"
	"github.com/nlemma/numberguessr/internal/model"
)

// Handler upgrades HTTP requests to websocket sessions.
//
// The client may present its stable identity as a "token" query
// parameter; a client without one is assigned a fresh identity, reported
// back in the welcome message so it can be kept for next time.
type Handler struct {
	hub      *Hub
	engine   *engine.Engine
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// NewHandler creates a websocket handler
func NewHandler(hub *Hub, eng *engine.Engine, logger *slog.Logger) *Handler {
	return &Handler{
		hub:    hub,
		engine: eng,
		logger: logger.With(slog.String("component", "ws")),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The game client is a separate origin; room access is
			// gated by codes, not cookies
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	identity := model.Identity(r.URL.Query().Get("token"))
	if identity == "" {
		identity = model.Identity(uuid.NewString())
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("upgrade failed", slog.String("error", err.Error()))
		return
	}

	client := newClient(model.ConnectionID(uuid.NewString()), identity, conn, h.hub, h.engine, h.logger)
	h.hub.Register(client)

	go client.writePump()

	h.hub.Send(client.ID, WelcomeMsg{
		Type:         TypeWelcome,
		ConnectionID: client.ID,
		Identity:     client.Identity,
	})

	go client.readPump()
}
