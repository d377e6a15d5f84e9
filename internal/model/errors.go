package model

import "errors"

// Common errors used across the application
var (
	// Room errors
	ErrRoomNotFound = errors.New("room not found")
	ErrRoomExists   = errors.New("room already exists")
	ErrRoomFull     = errors.New("room is full")
	ErrNameTaken    = errors.New("display name already taken in this room")

	// Game errors
	ErrOutOfRange = errors.New("number is outside the room's range")

	// Leaderboard errors
	ErrEntryNotFound = errors.New("leaderboard entry not found")
)
