package leaderboard

import (
	"context"
	"log/slog"
	"sort"

	"github.com/nlemma/numberguessr/internal/model"
	"github.com/nlemma/numberguessr/internal/storage"
)

// Service exposes the durable win/loss standings. Records are keyed by
// the stable identity, never the connection id, so a player keeps their
// history across reconnects.
type Service struct {
	storage storage.Storage
	logger  *slog.Logger
}

// New creates a leaderboard service backed by the given storage
func New(store storage.Storage, logger *slog.Logger) *Service {
	return &Service{
		storage: store,
		logger:  logger.With(slog.String("component", "leaderboard")),
	}
}

// RecordResult accumulates one win or loss for the identity. The caller
// is responsible for invoking it exactly once per participant per
// finished game.
func (s *Service) RecordResult(ctx context.Context, identity model.Identity, displayName string, won bool) error {
	if identity == "" {
		// Nothing stable to key on; skip rather than pollute the table
		return nil
	}
	if err := s.storage.RecordResult(ctx, identity, displayName, won); err != nil {
		return err
	}
	s.logger.Info("result recorded",
		slog.String("identity", string(identity)),
		slog.Bool("won", won),
	)
	return nil
}

// GetAll returns the standings ordered by wins descending, then losses
// ascending, then display name for a stable tiebreak.
func (s *Service) GetAll(ctx context.Context) ([]model.LeaderboardEntry, error) {
	entries, err := s.storage.GetLeaderboard(ctx)
	if err != nil {
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Wins != entries[j].Wins {
			return entries[i].Wins > entries[j].Wins
		}
		if entries[i].Losses != entries[j].Losses {
			return entries[i].Losses < entries[j].Losses
		}
		return entries[i].DisplayName < entries[j].DisplayName
	})
	return entries, nil
}
