package model

import "time"

// RoomCode is a short human-readable identifier for joining rooms
type RoomCode string

// RoomStatus represents where a room is in its lifecycle.
// Transitions only run forward: waiting -> picking -> playing -> finished.
type RoomStatus string

const (
	RoomStatusWaiting  RoomStatus = "waiting"
	RoomStatusPicking  RoomStatus = "picking"
	RoomStatusPlaying  RoomStatus = "playing"
	RoomStatusFinished RoomStatus = "finished"
)

// MaxPlayers is the fixed seat count per room.
const MaxPlayers = 2

// Settings holds the shared guessing range for a room, fixed at creation.
type Settings struct {
	Min int
	Max int
}

// DefaultSettings returns the range used when the creator supplies none.
func DefaultSettings() Settings {
	return Settings{Min: 1, Max: 100}
}

// Contains reports whether n is inside the configured range.
func (s Settings) Contains(n int) bool {
	return n >= s.Min && n <= s.Max
}

// Room is the authoritative state of one game session. Seat order is
// significant: the first-seated player moves first.
type Room struct {
	Code     RoomCode
	IsPublic bool
	HostName string // snapshot of the creator's name, used for lobby listings
	Settings Settings
	Players  []Player
	Status   RoomStatus

	// TurnConnectionID is meaningful only while Status is playing.
	TurnConnectionID ConnectionID
	// WinnerName is meaningful only once Status is finished.
	WinnerName string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// PlayerByConnection returns the seated player with the given connection
// id, or nil if not seated.
func (r *Room) PlayerByConnection(id ConnectionID) *Player {
	for i := range r.Players {
		if r.Players[i].ConnectionID == id {
			return &r.Players[i]
		}
	}
	return nil
}

// Opponent returns the other seated player, or nil if the room does not
// have two players yet.
func (r *Room) Opponent(id ConnectionID) *Player {
	for i := range r.Players {
		if r.Players[i].ConnectionID != id {
			return &r.Players[i]
		}
	}
	return nil
}

// HasPlayerNamed reports whether a seated player already uses the name.
func (r *Room) HasPlayerNamed(name string) bool {
	for i := range r.Players {
		if r.Players[i].DisplayName == name {
			return true
		}
	}
	return false
}

// IsFull reports whether both seats are taken.
func (r *Room) IsFull() bool {
	return len(r.Players) >= MaxPlayers
}
