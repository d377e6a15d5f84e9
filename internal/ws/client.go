package ws

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nlemma/numberguessr/internal/engine"
	"github.com/nlemma/numberguessr/internal/model"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096

	// Outbound queue depth per client
	sendBufferSize = 64
)

// Client is one live websocket connection. The read pump feeds commands
// to the engine; the write pump drains the send queue the hub fills.
type Client struct {
	ID       model.ConnectionID
	Identity model.Identity

	conn   *websocket.Conn
	send   chan []byte
	hub    *Hub
	engine *engine.Engine
	logger *slog.Logger
}

func newClient(id model.ConnectionID, identity model.Identity, conn *websocket.Conn, hub *Hub, eng *engine.Engine, logger *slog.Logger) *Client {
	return &Client{
		ID:       id,
		Identity: identity,
		conn:     conn,
		send:     make(chan []byte, sendBufferSize),
		hub:      hub,
		engine:   eng,
		logger: logger.With(
			slog.String("component", "ws"),
			slog.String("connection", string(id)),
		),
	}
}

// readPump reads client frames until the connection drops, then tears
// down every room the connection was seated in.
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		c.engine.Disconnect(context.Background(), c.ID)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("unexpected close", slog.String("error", err.Error()))
			}
			return
		}
		c.handleMessage(data)
	}
}

// writePump drains the send queue and keeps the connection alive with
// pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the queue
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage validates one command and hands it to the engine.
func (c *Client) handleMessage(data []byte) {
	ctx := context.Background()

	msg, err := DecodeInbound(data)
	if err != nil {
		c.sendError(CodeInvalidRequest, err.Error())
		return
	}

	switch msg.Type {
	case TypeCreateRoom:
		c.handleCreateRoom(ctx, msg)
	case TypeJoinRoom:
		c.handleJoinRoom(ctx, msg)
	case TypePickNumber:
		c.handlePickNumber(ctx, msg)
	case TypeGuess:
		c.handleGuess(ctx, msg)
	case TypeListLobbies:
		c.hub.Send(c.ID, LobbiesMsg{Type: TypeLobbiesUpdate, Lobbies: lobbiesJSON(c.engine.ListLobbies())})
	case TypeGetLeaderboard:
		entries, err := c.engine.Leaderboard(ctx)
		if err != nil {
			c.logger.Error("leaderboard read failed", slog.String("error", err.Error()))
			c.sendError(CodeInternalError, "could not load leaderboard")
			return
		}
		c.hub.Send(c.ID, LeaderboardMsg{Type: TypeLeaderboard, Entries: leaderboardJSON(entries)})
	default:
		c.sendError(CodeInvalidRequest, "unknown message type: "+msg.Type)
	}
}

func (c *Client) handleCreateRoom(ctx context.Context, msg *Inbound) {
	if msg.DisplayName == "" {
		c.sendError(CodeInvalidRequest, "display_name is required")
		return
	}

	var settings model.Settings
	if msg.Settings != nil {
		if msg.Settings.Min >= msg.Settings.Max {
			c.sendError(CodeInvalidRequest, "settings.min must be less than settings.max")
			return
		}
		settings = model.Settings{Min: msg.Settings.Min, Max: msg.Settings.Max}
	}

	snap, err := c.engine.CreateRoom(ctx, c.ID, c.Identity, msg.DisplayName, model.RoomCode(msg.Code), settings, msg.IsPublic)
	if err != nil {
		c.sendCommandError(err)
		return
	}
	c.hub.Send(c.ID, RoomUpdateMsg{Type: TypeRoomUpdate, Room: snap})
}

func (c *Client) handleJoinRoom(ctx context.Context, msg *Inbound) {
	if msg.DisplayName == "" || msg.Code == "" {
		c.sendError(CodeInvalidRequest, "display_name and code are required")
		return
	}
	if err := c.engine.JoinRoom(ctx, c.ID, c.Identity, msg.DisplayName, model.RoomCode(msg.Code)); err != nil {
		c.sendCommandError(err)
	}
}

func (c *Client) handlePickNumber(ctx context.Context, msg *Inbound) {
	if msg.RoomCode == "" {
		c.sendError(CodeInvalidRequest, "room_code is required")
		return
	}
	number, err := intField(msg.Number, "number")
	if err != nil {
		c.sendError(CodeInvalidRequest, err.Error())
		return
	}
	if err := c.engine.PickNumber(ctx, c.ID, model.RoomCode(msg.RoomCode), number); err != nil {
		c.sendCommandError(err)
	}
}

func (c *Client) handleGuess(ctx context.Context, msg *Inbound) {
	if msg.RoomCode == "" {
		c.sendError(CodeInvalidRequest, "room_code is required")
		return
	}
	value, err := intField(msg.Value, "value")
	if err != nil {
		c.sendError(CodeInvalidRequest, err.Error())
		return
	}
	if err := c.engine.Guess(ctx, c.ID, model.RoomCode(msg.RoomCode), value, msg.Lie); err != nil {
		c.sendCommandError(err)
	}
}

func (c *Client) sendError(code, message string) {
	c.hub.Send(c.ID, ErrorMsg{Type: TypeError, Error: ErrorJSON{Code: code, Message: message}})
}

// sendCommandError maps engine errors to wire codes.
func (c *Client) sendCommandError(err error) {
	switch {
	case errors.Is(err, model.ErrRoomNotFound):
		c.sendError(CodeRoomNotFound, "room not found")
	case errors.Is(err, model.ErrRoomExists):
		c.sendError(CodeRoomExists, "room already exists")
	case errors.Is(err, model.ErrRoomFull):
		c.sendError(CodeRoomFull, "room is full")
	case errors.Is(err, model.ErrNameTaken):
		c.sendError(CodeNameTaken, "name already taken in this room")
	case errors.Is(err, model.ErrOutOfRange):
		c.sendError(CodeOutOfRange, "number is outside the room's range")
	default:
		c.logger.Error("command failed", slog.String("error", err.Error()))
		c.sendError(CodeInternalError, "internal error")
	}
}
