package engine

import (
	"context"
	"errors"
	"log/slog"

	"github.com/nlemma/numberguessr/internal/dependencies/clock"
	"github.com/nlemma/numberguessr/internal/leaderboard"
	"github.com/nlemma/numberguessr/internal/model"
	"github.com/nlemma/numberguessr/internal/registry"
)

// Engine is the server-side session orchestrator. It receives client
// commands from the connection layer, mutates room state under the game
// rules, and emits outbound notifications through the Notifier.
//
// All per-room mutation runs inside registry.Update, so two commands
// against the same room never interleave. Broadcasts and leaderboard
// writes happen after the room lock is released.
type Engine struct {
	registry    *registry.Registry
	leaderboard *leaderboard.Service
	notifier    Notifier
	clock       clock.Clock
	logger      *slog.Logger
}

// New creates a session engine
func New(
	reg *registry.Registry,
	lb *leaderboard.Service,
	notifier Notifier,
	clk clock.Clock,
	logger *slog.Logger,
) *Engine {
	return &Engine{
		registry:    reg,
		leaderboard: lb,
		notifier:    notifier,
		clock:       clk,
		logger:      logger.With(slog.String("component", "engine")),
	}
}

// delivery is a snapshot addressed to one connection, captured under the
// room lock and sent after it is released.
type delivery struct {
	to       model.ConnectionID
	snapshot model.RoomSnapshot
}

// outcome captures one player's result of a finished game.
type outcome struct {
	identity model.Identity
	name     string
	won      bool
}

// CreateRoom creates a room with the caller seated as host and returns
// the host's snapshot. An empty code asks for a generated one.
func (e *Engine) CreateRoom(
	ctx context.Context,
	conn model.ConnectionID,
	identity model.Identity,
	displayName string,
	code model.RoomCode,
	settings model.Settings,
	isPublic bool,
) (model.RoomSnapshot, error) {
	if settings.Min >= settings.Max {
		settings = model.DefaultSettings()
	}

	host := model.Player{
		ConnectionID: conn,
		Identity:     identity,
		DisplayName:  displayName,
	}

	created, err := e.registry.Create(code, settings, isPublic, host)
	if err != nil {
		return model.RoomSnapshot{}, err
	}

	var snap model.RoomSnapshot
	_ = e.registry.View(created, func(room *model.Room) {
		snap = room.Snapshot(conn)
	})

	if isPublic {
		e.notifier.LobbiesUpdate(e.registry.ListPublicWaiting())
	}

	return snap, nil
}

// JoinRoom seats the caller as the second player. On success every
// participant receives an updated snapshot; if the room was public its
// disappearance from the lobby list is pushed too.
func (e *Engine) JoinRoom(
	ctx context.Context,
	conn model.ConnectionID,
	identity model.Identity,
	displayName string,
	code model.RoomCode,
) error {
	var (
		deliveries []delivery
		fillsRoom  bool
	)

	err := e.registry.Update(code, func(room *model.Room) error {
		if room.Status != model.RoomStatusWaiting || room.IsFull() {
			return model.ErrRoomFull
		}
		if room.HasPlayerNamed(displayName) {
			return model.ErrNameTaken
		}

		room.Players = append(room.Players, model.Player{
			ConnectionID: conn,
			Identity:     identity,
			DisplayName:  displayName,
		})

		if room.IsFull() {
			room.Status = model.RoomStatusPicking
			fillsRoom = room.IsPublic
		}

		deliveries = snapshotAll(room)
		return nil
	})
	if err != nil {
		return err
	}

	e.deliver(deliveries)
	if fillsRoom {
		e.notifier.LobbiesUpdate(e.registry.ListPublicWaiting())
	}

	e.logger.Info("player joined",
		slog.String("code", string(code)),
		slog.String("connection", string(conn)),
	)
	return nil
}

// PickNumber records the caller's secret number. Outside the picking
// phase, or after the caller has already picked, it is a silent no-op.
// When both players have picked the room moves to playing with the
// first-seated player on turn.
func (e *Engine) PickNumber(ctx context.Context, conn model.ConnectionID, code model.RoomCode, number int) error {
	var deliveries []delivery

	err := e.registry.Update(code, func(room *model.Room) error {
		if room.Status != model.RoomStatusPicking {
			return nil
		}
		player := room.PlayerByConnection(conn)
		if player == nil || player.HasPicked() {
			return nil
		}
		if !room.Settings.Contains(number) {
			return model.ErrOutOfRange
		}

		n := number
		player.SecretNumber = &n

		allPicked := true
		for i := range room.Players {
			if !room.Players[i].HasPicked() {
				allPicked = false
				break
			}
		}
		if allPicked {
			room.Status = model.RoomStatusPlaying
			room.TurnConnectionID = room.Players[0].ConnectionID
		}

		deliveries = snapshotAll(room)
		return nil
	})
	if errors.Is(err, model.ErrRoomNotFound) {
		// Stale client against a torn-down room
		return nil
	}
	if err != nil {
		return err
	}

	e.deliver(deliveries)
	return nil
}

// Guess evaluates the caller's guess. Out-of-turn or wrong-phase guesses
// are silently ignored. A correct final feedback finishes the game: the
// result is recorded on the leaderboard and the room is discarded after
// the final broadcast.
func (e *Engine) Guess(ctx context.Context, conn model.ConnectionID, code model.RoomCode, value int, lie bool) error {
	var (
		deliveries []delivery
		finished   bool
		results    []outcome
	)

	err := e.registry.Update(code, func(room *model.Room) error {
		if room.Status != model.RoomStatusPlaying || room.TurnConnectionID != conn {
			return nil
		}

		player := room.PlayerByConnection(conn)
		opponent := room.Opponent(conn)
		if player == nil || opponent == nil || opponent.SecretNumber == nil {
			// Unreachable given the state machine, but never worth a panic
			return nil
		}

		feedback, lieConsumed := evaluateGuess(value, *opponent.SecretNumber, lie, !player.HasUsedLie)
		if lieConsumed {
			player.HasUsedLie = true
		}

		player.Guesses = append(player.Guesses, model.Guess{
			Value:    value,
			Feedback: feedback,
			WasLie:   lieConsumed,
			Time:     e.clock.Now(),
			Author:   conn,
		})

		if feedback == model.FeedbackCorrect {
			room.Status = model.RoomStatusFinished
			room.WinnerName = player.DisplayName
			finished = true
			results = []outcome{
				{identity: player.Identity, name: player.DisplayName, won: true},
				{identity: opponent.Identity, name: opponent.DisplayName, won: false},
			}
		} else {
			room.TurnConnectionID = opponent.ConnectionID
		}

		deliveries = snapshotAll(room)
		return nil
	})
	if errors.Is(err, model.ErrRoomNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if finished {
		// Durable write first: the room must not be discarded with the
		// result still unrecorded. Failures are logged, never fatal.
		for _, r := range results {
			if err := e.leaderboard.RecordResult(ctx, r.identity, r.name, r.won); err != nil {
				e.logger.Error("leaderboard write failed",
					slog.String("identity", string(r.identity)),
					slog.String("error", err.Error()),
				)
			}
		}
	}

	e.deliver(deliveries)

	if finished {
		// Rooms are single-use; drop after the final broadcast
		e.registry.Remove(code)
		e.logger.Info("game finished", slog.String("code", string(code)))
	}
	return nil
}

// Disconnect tears down every room the connection is seated in. The
// remaining participant is told the opponent left; nothing is salvaged.
func (e *Engine) Disconnect(ctx context.Context, conn model.ConnectionID) {
	codes := e.registry.RoomsForConnection(conn)
	lobbyChanged := false

	for _, code := range codes {
		var (
			notify  []model.ConnectionID
			public  bool
			waiting bool
		)
		_ = e.registry.View(code, func(room *model.Room) {
			public = room.IsPublic
			waiting = room.Status == model.RoomStatusWaiting
			for i := range room.Players {
				if room.Players[i].ConnectionID != conn {
					notify = append(notify, room.Players[i].ConnectionID)
				}
			}
		})

		for _, id := range notify {
			e.notifier.OpponentLeft(id, code)
		}
		e.registry.Remove(code)

		if public && waiting {
			lobbyChanged = true
		}

		e.logger.Info("room torn down on disconnect",
			slog.String("code", string(code)),
			slog.String("connection", string(conn)),
		)
	}

	if lobbyChanged {
		e.notifier.LobbiesUpdate(e.registry.ListPublicWaiting())
	}
}

// ListLobbies returns the current matchmaking snapshot.
func (e *Engine) ListLobbies() []model.LobbySummary {
	return e.registry.ListPublicWaiting()
}

// Leaderboard returns the ordered standings.
func (e *Engine) Leaderboard(ctx context.Context) ([]model.LeaderboardEntry, error) {
	return e.leaderboard.GetAll(ctx)
}

// snapshotAll builds the per-viewer snapshot for every seated player.
// Must be called with the room lock held.
func snapshotAll(room *model.Room) []delivery {
	deliveries := make([]delivery, 0, len(room.Players))
	for i := range room.Players {
		id := room.Players[i].ConnectionID
		deliveries = append(deliveries, delivery{to: id, snapshot: room.Snapshot(id)})
	}
	return deliveries
}

func (e *Engine) deliver(deliveries []delivery) {
	for _, d := range deliveries {
		e.notifier.RoomUpdate(d.to, d.snapshot)
	}
}
