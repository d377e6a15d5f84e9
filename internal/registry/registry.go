package registry

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/nlemma/numberguessr/internal/dependencies/clock"
	"github.com/nlemma/numberguessr/internal/dependencies/random"
	"github.com/nlemma/numberguessr/internal/model"
)

const (
	// RoomCodeLength is the length of generated room codes
	RoomCodeLength = 6
	// RoomCodeAlphabet is the characters used in room codes (avoid confusing chars)
	RoomCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// Registry is the process-wide collection of active rooms, keyed by room
// code. Rooms are held only in memory: they are single-use and are not
// expected to survive a restart.
//
// Lock ordering is registry before room. Callers never hold a room lock
// directly; all access goes through Update and View, which serialize
// everything touching a single room.
type Registry struct {
	mu    sync.RWMutex
	rooms map[model.RoomCode]*entry

	clock  clock.Clock
	random random.Random
	logger *slog.Logger
}

type entry struct {
	mu   sync.Mutex
	room *model.Room
}

// New creates an empty Registry
func New(clk clock.Clock, rnd random.Random, logger *slog.Logger) *Registry {
	return &Registry{
		rooms:  make(map[model.RoomCode]*entry),
		clock:  clk,
		random: rnd,
		logger: logger.With(slog.String("component", "registry")),
	}
}

// Create makes a new room in the waiting state with the host seated
// first. An empty code requests a generated one; a supplied code that is
// already taken fails with model.ErrRoomExists.
func (reg *Registry) Create(code model.RoomCode, settings model.Settings, isPublic bool, host model.Player) (model.RoomCode, error) {
	now := reg.clock.Now()

	reg.mu.Lock()
	defer reg.mu.Unlock()

	if code == "" {
		for {
			code = model.RoomCode(reg.random.String(RoomCodeLength, RoomCodeAlphabet))
			if _, taken := reg.rooms[code]; !taken {
				break
			}
		}
	} else if _, taken := reg.rooms[code]; taken {
		return "", model.ErrRoomExists
	}

	reg.rooms[code] = &entry{
		room: &model.Room{
			Code:      code,
			IsPublic:  isPublic,
			HostName:  host.DisplayName,
			Settings:  settings,
			Players:   []model.Player{host},
			Status:    model.RoomStatusWaiting,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}

	reg.logger.Info("room created",
		slog.String("code", string(code)),
		slog.Bool("public", isPublic),
	)

	return code, nil
}

// Update runs fn with exclusive access to the room. The room lock is
// held for the duration of fn, so concurrent commands against the same
// room cannot interleave. Returns model.ErrRoomNotFound for unknown codes.
func (reg *Registry) Update(code model.RoomCode, fn func(room *model.Room) error) error {
	reg.mu.RLock()
	e, ok := reg.rooms[code]
	reg.mu.RUnlock()
	if !ok {
		return model.ErrRoomNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := fn(e.room); err != nil {
		return err
	}
	e.room.UpdatedAt = reg.clock.Now()
	return nil
}

// View runs fn with shared access semantics against the room. fn must
// not mutate the room.
func (reg *Registry) View(code model.RoomCode, fn func(room *model.Room)) error {
	return reg.Update(code, func(room *model.Room) error {
		fn(room)
		return nil
	})
}

// Remove deletes the room. Removing an absent code is a no-op, so a
// disconnect racing a finished-game cleanup is harmless.
func (reg *Registry) Remove(code model.RoomCode) {
	reg.mu.Lock()
	_, existed := reg.rooms[code]
	delete(reg.rooms, code)
	reg.mu.Unlock()

	if existed {
		reg.logger.Info("room removed", slog.String("code", string(code)))
	}
}

// ListPublicWaiting returns the matchmaking view: public rooms still
// waiting for an opponent, ordered by code for a stable listing.
func (reg *Registry) ListPublicWaiting() []model.LobbySummary {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	summaries := make([]model.LobbySummary, 0)
	for code, e := range reg.rooms {
		e.mu.Lock()
		if e.room.IsPublic && e.room.Status == model.RoomStatusWaiting {
			summaries = append(summaries, model.LobbySummary{
				Code:        code,
				PlayerCount: len(e.room.Players),
				HostName:    e.room.HostName,
			})
		}
		e.mu.Unlock()
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Code < summaries[j].Code
	})
	return summaries
}

// RoomsForConnection returns the codes of every room the connection is
// seated in. Used by the disconnect sweep.
func (reg *Registry) RoomsForConnection(id model.ConnectionID) []model.RoomCode {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	var codes []model.RoomCode
	for code, e := range reg.rooms {
		e.mu.Lock()
		if e.room.PlayerByConnection(id) != nil {
			codes = append(codes, code)
		}
		e.mu.Unlock()
	}
	return codes
}
