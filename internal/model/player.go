package model

import "time"

// ConnectionID identifies one live connection. It is assigned by the
// connection layer at connect time and dies with the connection.
type ConnectionID string

// Identity is a stable, reconnect-surviving player reference. Clients hold
// it as an opaque token; the leaderboard is keyed by it.
type Identity string

// Feedback is the direction hint returned for a guess: it tells the guesser
// where the opponent's secret number lies relative to their guess.
type Feedback string

const (
	FeedbackHigher  Feedback = "higher"
	FeedbackLower   Feedback = "lower"
	FeedbackCorrect Feedback = "correct"
)

// Guess is one recorded guess, after any lie inversion has been applied.
type Guess struct {
	Value    int
	Feedback Feedback
	WasLie   bool // true only if this guess consumed the lie ability
	Time     time.Time
	Author   ConnectionID
}

// Player is one seated participant in a room.
type Player struct {
	ConnectionID ConnectionID
	Identity     Identity
	DisplayName  string
	SecretNumber *int // nil until picked; set at most once per room
	HasUsedLie   bool
	Guesses      []Guess
}

// HasPicked reports whether the player has submitted a secret number.
func (p *Player) HasPicked() bool {
	return p.SecretNumber != nil
}
