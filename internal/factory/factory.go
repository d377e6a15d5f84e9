package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/nlemma/numberguessr/internal/dependencies/clock"
	"github.com/nlemma/numberguessr/internal/dependencies/random"
	"github.com/nlemma/numberguessr/internal/engine"
	"github.com/nlemma/numberguessr/internal/leaderboard"
	"github.com/nlemma/numberguessr/internal/registry"
	"github.com/nlemma/numberguessr/internal/storage"
	"github.com/nlemma/numberguessr/internal/storage/memory"
	redisstorage "github.com/nlemma/numberguessr/internal/storage/redis"
	"github.com/nlemma/numberguessr/internal/ws"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Components
	Registry    *registry.Registry
	Leaderboard *leaderboard.Service
	Engine      *engine.Engine
	Hub         *ws.Hub
	WSHandler   *ws.Handler
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	clk := clock.New()
	rnd := random.New()

	return NewWithDependencies(store, clk, rnd, logger), nil
}

// NewWithDependencies creates an App with the given dependencies (useful for testing)
func NewWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, logger *slog.Logger) *App {
	reg := registry.New(clk, rnd, logger)
	lb := leaderboard.New(store, logger)
	hub := ws.NewHub(logger)
	eng := engine.New(reg, lb, hub, clk, logger)
	wsHandler := ws.NewHandler(hub, eng, logger)

	return &App{
		Storage:     store,
		Clock:       clk,
		Random:      rnd,
		Registry:    reg,
		Leaderboard: lb,
		Engine:      eng,
		Hub:         hub,
		WSHandler:   wsHandler,
	}
}
