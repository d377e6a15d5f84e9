package memory

import (
	"context"
	"sync"

	"github.com/nlemma/numberguessr/internal/model"
	"github.com/nlemma/numberguessr/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu      sync.RWMutex
	entries map[model.Identity]*model.LeaderboardEntry
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		entries: make(map[model.Identity]*model.LeaderboardEntry),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) RecordResult(ctx context.Context, identity model.Identity, displayName string, won bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[identity]
	if !ok {
		entry = &model.LeaderboardEntry{Identity: identity}
		s.entries[identity] = entry
	}
	entry.DisplayName = displayName
	if won {
		entry.Wins++
	} else {
		entry.Losses++
	}
	return nil
}

func (s *Storage) GetLeaderboardEntry(ctx context.Context, identity model.Identity) (*model.LeaderboardEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[identity]
	if !ok {
		return nil, model.ErrEntryNotFound
	}
	copied := *entry
	return &copied, nil
}

func (s *Storage) GetLeaderboard(ctx context.Context) ([]model.LeaderboardEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]model.LeaderboardEntry, 0, len(s.entries))
	for _, entry := range s.entries {
		entries = append(entries, *entry)
	}
	return entries, nil
}
