package ws

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nlemma/numberguessr/internal/model"
)

// Inbound message types
const (
	TypeCreateRoom     = "create_room"
	TypeJoinRoom       = "join_room"
	TypePickNumber     = "pick_number"
	TypeGuess          = "guess"
	TypeListLobbies    = "list_lobbies"
	TypeGetLeaderboard = "get_leaderboard"
)

// Outbound message types
const (
	TypeWelcome       = "welcome"
	TypeRoomUpdate    = "room_update"
	TypeLobbiesUpdate = "lobbies_update"
	TypeLeaderboard   = "leaderboard"
	TypeOpponentLeft  = "opponent_left"
	TypeError         = "error"
)

// Error codes surfaced to clients
const (
	CodeRoomNotFound   = "ROOM_NOT_FOUND"
	CodeRoomExists     = "ROOM_EXISTS"
	CodeRoomFull       = "ROOM_FULL"
	CodeNameTaken      = "NAME_TAKEN"
	CodeOutOfRange     = "OUT_OF_RANGE"
	CodeInvalidRequest = "INVALID_REQUEST"
	CodeInternalError  = "INTERNAL_ERROR"
)

// Inbound is one client command. Numeric fields use json.Number so a
// malformed value is rejected here, before it can reach the engine.
type Inbound struct {
	Type string `json:"type"`

	// create_room / join_room
	DisplayName string           `json:"display_name,omitempty"`
	IsPublic    bool             `json:"is_public,omitempty"`
	Settings    *InboundSettings `json:"settings,omitempty"`
	Code        string           `json:"code,omitempty"`

	// pick_number / guess
	RoomCode string      `json:"room_code,omitempty"`
	Number   json.Number `json:"number,omitempty"`
	Value    json.Number `json:"value,omitempty"`
	Lie      bool        `json:"lie,omitempty"`
}

// InboundSettings is the requested guessing range.
type InboundSettings struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Outbound messages each carry their own shape so empty lists serialize
// as [] rather than disappearing.

// WelcomeMsg is sent once per connection, right after the upgrade.
type WelcomeMsg struct {
	Type         string             `json:"type"`
	ConnectionID model.ConnectionID `json:"connection_id"`
	Identity     model.Identity     `json:"identity"`
}

// RoomUpdateMsg carries a per-viewer room snapshot.
type RoomUpdateMsg struct {
	Type string             `json:"type"`
	Room model.RoomSnapshot `json:"room"`
}

// LobbiesMsg carries the public-waiting room list.
type LobbiesMsg struct {
	Type    string      `json:"type"`
	Lobbies []LobbyJSON `json:"lobbies"`
}

// LeaderboardMsg carries the ordered standings.
type LeaderboardMsg struct {
	Type    string               `json:"type"`
	Entries []LeaderboardRowJSON `json:"entries"`
}

// OpponentLeftMsg tells the remaining player the room is gone.
type OpponentLeftMsg struct {
	Type     string         `json:"type"`
	RoomCode model.RoomCode `json:"room_code"`
}

// ErrorMsg is a command rejection.
type ErrorMsg struct {
	Type  string    `json:"type"`
	Error ErrorJSON `json:"error"`
}

// LobbyJSON is one public-waiting room in a lobby listing.
type LobbyJSON struct {
	Code        model.RoomCode `json:"code"`
	PlayerCount int            `json:"player_count"`
	HostName    string         `json:"host_name"`
}

// LeaderboardRowJSON is one standings row. The stable identity token is
// never exposed on the wire.
type LeaderboardRowJSON struct {
	DisplayName string `json:"display_name"`
	Wins        int    `json:"wins"`
	Losses      int    `json:"losses"`
}

// ErrorJSON is a command rejection.
type ErrorJSON struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// DecodeInbound parses a raw client frame.
func DecodeInbound(data []byte) (*Inbound, error) {
	var msg Inbound
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("malformed message: %w", err)
	}
	if msg.Type == "" {
		return nil, errors.New("missing message type")
	}
	return &msg, nil
}

// intField converts a json.Number command field to an int.
func intField(n json.Number, name string) (int, error) {
	if n == "" {
		return 0, fmt.Errorf("missing %s", name)
	}
	v, err := n.Int64()
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return int(v), nil
}

// lobbiesJSON converts lobby summaries to their wire form. Always
// non-nil so an empty list serializes as [] rather than null.
func lobbiesJSON(lobbies []model.LobbySummary) []LobbyJSON {
	out := make([]LobbyJSON, 0, len(lobbies))
	for _, l := range lobbies {
		out = append(out, LobbyJSON{
			Code:        l.Code,
			PlayerCount: l.PlayerCount,
			HostName:    l.HostName,
		})
	}
	return out
}

// leaderboardJSON converts standings to their wire form.
func leaderboardJSON(entries []model.LeaderboardEntry) []LeaderboardRowJSON {
	out := make([]LeaderboardRowJSON, 0, len(entries))
	for _, e := range entries {
		out = append(out, LeaderboardRowJSON{
			DisplayName: e.DisplayName,
			Wins:        e.Wins,
			Losses:      e.Losses,
		})
	}
	return out
}
