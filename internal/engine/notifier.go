package engine

import "github.com/nlemma/numberguessr/internal/model"

// Notifier is the engine's view of the connection layer: it delivers
// outbound messages to live connections. Implementations must be safe
// for concurrent use and must not block on slow clients.
type Notifier interface {
	// RoomUpdate delivers a per-viewer room snapshot to one connection.
	RoomUpdate(id model.ConnectionID, snapshot model.RoomSnapshot)

	// OpponentLeft tells the remaining participant their opponent is gone.
	OpponentLeft(id model.ConnectionID, code model.RoomCode)

	// LobbiesUpdate pushes the public-waiting room list to every
	// connected client.
	LobbiesUpdate(lobbies []model.LobbySummary)
}
