package storage

import (
	"context"

	"github.com/nlemma/numberguessr/internal/model"
)

// Storage defines the interface for durable leaderboard persistence.
// Room state is deliberately not persisted: rooms are single-use and die
// with the process.
type Storage interface {
	// RecordResult atomically accumulates one win or one loss for the
	// identity and refreshes its display name to the latest value seen.
	RecordResult(ctx context.Context, identity model.Identity, displayName string, won bool) error

	// GetLeaderboardEntry returns the record for one identity, or
	// model.ErrEntryNotFound if nothing has been recorded for it.
	GetLeaderboardEntry(ctx context.Context, identity model.Identity) (*model.LeaderboardEntry, error)

	// GetLeaderboard returns all recorded entries in unspecified order.
	GetLeaderboard(ctx context.Context) ([]model.LeaderboardEntry, error)
}
