package redis

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nlemma/numberguessr/internal/model"
	"github.com/nlemma/numberguessr/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface.
// Each identity owns a hash of {name, wins, losses}; a set indexes all
// identities so the full leaderboard can be read back.
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{client: client, cfg: cfg}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{client: client, cfg: cfg}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) RecordResult(ctx context.Context, identity model.Identity, displayName string, won bool) error {
	key := entryKey(identity)
	field := "losses"
	if won {
		field = "wins"
	}

	// Pipeline keeps counter, name and index updates together
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, "name", displayName)
	pipe.HIncrBy(ctx, key, field, 1)
	pipe.SAdd(ctx, identityIndexKey(), string(identity))
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Storage) GetLeaderboardEntry(ctx context.Context, identity model.Identity) (*model.LeaderboardEntry, error) {
	fields, err := s.client.HGetAll(ctx, entryKey(identity)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrEntryNotFound
		}
		return nil, err
	}
	if len(fields) == 0 {
		return nil, model.ErrEntryNotFound
	}
	return entryFromFields(identity, fields), nil
}

func (s *Storage) GetLeaderboard(ctx context.Context) ([]model.LeaderboardEntry, error) {
	identities, err := s.client.SMembers(ctx, identityIndexKey()).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]model.LeaderboardEntry, 0, len(identities))
	for _, id := range identities {
		identity := model.Identity(id)
		fields, err := s.client.HGetAll(ctx, entryKey(identity)).Result()
		if err != nil {
			return nil, err
		}
		if len(fields) == 0 {
			// Index member without a hash: skip rather than fail the read
			continue
		}
		entries = append(entries, *entryFromFields(identity, fields))
	}
	return entries, nil
}

func entryFromFields(identity model.Identity, fields map[string]string) *model.LeaderboardEntry {
	wins, _ := strconv.Atoi(fields["wins"])
	losses, _ := strconv.Atoi(fields["losses"])
	return &model.LeaderboardEntry{
		Identity:    identity,
		DisplayName: fields["name"],
		Wins:        wins,
		Losses:      losses,
	}
}
