package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/nlemma/numberguessr/internal/dependencies/mocks"
	"github.com/nlemma/numberguessr/internal/leaderboard"
	"github.com/nlemma/numberguessr/internal/model"
	"github.com/nlemma/numberguessr/internal/registry"
	"github.com/nlemma/numberguessr/internal/storage/memory"
	"github.com/nlemma/numberguessr/internal/testutil"
)

// recordingNotifier captures everything the engine emits.
type recordingNotifier struct {
	roomUpdates    map[model.ConnectionID][]model.RoomSnapshot
	opponentLeft   map[model.ConnectionID][]model.RoomCode
	lobbiesUpdates [][]model.LobbySummary
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{
		roomUpdates:  make(map[model.ConnectionID][]model.RoomSnapshot),
		opponentLeft: make(map[model.ConnectionID][]model.RoomCode),
	}
}

func (n *recordingNotifier) RoomUpdate(id model.ConnectionID, snapshot model.RoomSnapshot) {
	n.roomUpdates[id] = append(n.roomUpdates[id], snapshot)
}

func (n *recordingNotifier) OpponentLeft(id model.ConnectionID, code model.RoomCode) {
	n.opponentLeft[id] = append(n.opponentLeft[id], code)
}

func (n *recordingNotifier) LobbiesUpdate(lobbies []model.LobbySummary) {
	n.lobbiesUpdates = append(n.lobbiesUpdates, lobbies)
}

func (n *recordingNotifier) lastRoomUpdate(id model.ConnectionID) model.RoomSnapshot {
	updates := n.roomUpdates[id]
	if len(updates) == 0 {
		return model.RoomSnapshot{}
	}
	return updates[len(updates)-1]
}

type EngineSuite struct {
	suite.Suite
	clock    *mocks.MockClock
	random   *mocks.MockRandom
	registry *registry.Registry
	storage  *memory.Storage
	notifier *recordingNotifier
	engine   *Engine
	ctx      context.Context
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func (s *EngineSuite) SetupTest() {
	logger := testutil.VerboseLogger(s.T())
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.registry = registry.New(s.clock, s.random, logger)
	s.storage = memory.New()
	s.notifier = newRecordingNotifier()
	s.engine = New(s.registry, leaderboard.New(s.storage, logger), s.notifier, s.clock, logger)
	s.ctx = context.Background()
}

const (
	connP1 = model.ConnectionID("conn-p1")
	connP2 = model.ConnectionID("conn-p2")
	connP3 = model.ConnectionID("conn-p3")
	idP1   = model.Identity("id-p1")
	idP2   = model.Identity("id-p2")
	idP3   = model.Identity("id-p3")
)

// setupRoom creates a room with the given range and seats both players.
func (s *EngineSuite) setupRoom(min, max int) model.RoomCode {
	snap, err := s.engine.CreateRoom(s.ctx, connP1, idP1, "Alice", "ROOM1", model.Settings{Min: min, Max: max}, true)
	s.Require().NoError(err)
	s.Require().NoError(s.engine.JoinRoom(s.ctx, connP2, idP2, "Bob", snap.Code))
	return snap.Code
}

// setupPlayingRoom additionally picks both secrets: Alice 4, Bob 7.
func (s *EngineSuite) setupPlayingRoom() model.RoomCode {
	code := s.setupRoom(1, 10)
	s.Require().NoError(s.engine.PickNumber(s.ctx, connP1, code, 4))
	s.Require().NoError(s.engine.PickNumber(s.ctx, connP2, code, 7))
	return code
}

// Create

func (s *EngineSuite) TestCreateRoomReturnsHostSnapshot() {
	snap, err := s.engine.CreateRoom(s.ctx, connP1, idP1, "Alice", "ROOM1", model.Settings{Min: 1, Max: 10}, true)
	s.Require().NoError(err)

	s.Equal(model.RoomCode("ROOM1"), snap.Code)
	s.Equal(model.RoomStatusWaiting, snap.Status)
	s.Equal("Alice", snap.HostName)
	s.Require().Len(snap.Players, 1)
	s.False(snap.Players[0].HasPicked)
}

func (s *EngineSuite) TestCreateRoomDuplicateCode() {
	_, err := s.engine.CreateRoom(s.ctx, connP1, idP1, "Alice", "ROOM1", model.Settings{}, true)
	s.Require().NoError(err)

	_, err = s.engine.CreateRoom(s.ctx, connP2, idP2, "Bob", "ROOM1", model.Settings{}, true)
	s.ErrorIs(err, model.ErrRoomExists)
}

func (s *EngineSuite) TestCreateRoomInvalidSettingsFallBackToDefault() {
	snap, err := s.engine.CreateRoom(s.ctx, connP1, idP1, "Alice", "ROOM1", model.Settings{Min: 10, Max: 10}, false)
	s.Require().NoError(err)
	s.Equal(1, snap.Settings.Min)
	s.Equal(100, snap.Settings.Max)
}

func (s *EngineSuite) TestCreatePublicRoomPushesLobbies() {
	_, _ = s.engine.CreateRoom(s.ctx, connP1, idP1, "Alice", "ROOM1", model.Settings{Min: 1, Max: 10}, true)

	s.Require().Len(s.notifier.lobbiesUpdates, 1)
	s.Require().Len(s.notifier.lobbiesUpdates[0], 1)
	s.Equal(model.RoomCode("ROOM1"), s.notifier.lobbiesUpdates[0][0].Code)
}

func (s *EngineSuite) TestCreatePrivateRoomDoesNotPushLobbies() {
	_, _ = s.engine.CreateRoom(s.ctx, connP1, idP1, "Alice", "ROOM1", model.Settings{Min: 1, Max: 10}, false)
	s.Empty(s.notifier.lobbiesUpdates)
}

// Join

func (s *EngineSuite) TestJoinMovesRoomToPicking() {
	code := s.setupRoom(1, 10)

	snap := s.notifier.lastRoomUpdate(connP1)
	s.Equal(code, snap.Code)
	s.Equal(model.RoomStatusPicking, snap.Status)
	s.Len(snap.Players, 2)
}

func (s *EngineSuite) TestJoinUnknownRoom() {
	err := s.engine.JoinRoom(s.ctx, connP2, idP2, "Bob", "NOPE")
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *EngineSuite) TestJoinFullRoomScenarioC() {
	code := s.setupRoom(1, 10)

	err := s.engine.JoinRoom(s.ctx, connP3, idP3, "Carol", code)
	s.ErrorIs(err, model.ErrRoomFull)

	// Room state unchanged
	snap := s.notifier.lastRoomUpdate(connP1)
	s.Len(snap.Players, 2)
	s.Equal(model.RoomStatusPicking, snap.Status)
}

func (s *EngineSuite) TestJoinNameTaken() {
	_, _ = s.engine.CreateRoom(s.ctx, connP1, idP1, "Alice", "ROOM1", model.Settings{Min: 1, Max: 10}, true)

	err := s.engine.JoinRoom(s.ctx, connP2, idP2, "Alice", "ROOM1")
	s.ErrorIs(err, model.ErrNameTaken)
}

func (s *EngineSuite) TestJoinFillingPublicRoomPushesLobbies() {
	s.setupRoom(1, 10)

	// One push on create, one on fill; the fill push is empty
	s.Require().Len(s.notifier.lobbiesUpdates, 2)
	s.Empty(s.notifier.lobbiesUpdates[1])
}

// Pick

func (s *EngineSuite) TestPickOutOfRange() {
	code := s.setupRoom(1, 10)

	err := s.engine.PickNumber(s.ctx, connP1, code, 11)
	s.ErrorIs(err, model.ErrOutOfRange)

	// Secret stays unset
	snap := s.notifier.lastRoomUpdate(connP1)
	s.False(snap.Players[0].HasPicked)
}

func (s *EngineSuite) TestPickBothMovesToPlayingWithFirstSeatOnTurn() {
	code := s.setupRoom(1, 10)

	s.Require().NoError(s.engine.PickNumber(s.ctx, connP1, code, 4))
	s.Equal(model.RoomStatusPicking, s.notifier.lastRoomUpdate(connP1).Status)

	s.Require().NoError(s.engine.PickNumber(s.ctx, connP2, code, 7))
	snap := s.notifier.lastRoomUpdate(connP1)
	s.Equal(model.RoomStatusPlaying, snap.Status)
	s.Equal(connP1, snap.Turn)
}

func (s *EngineSuite) TestPickTwiceIsANoOp() {
	code := s.setupRoom(1, 10)
	s.Require().NoError(s.engine.PickNumber(s.ctx, connP1, code, 4))

	before := len(s.notifier.roomUpdates[connP1])
	s.Require().NoError(s.engine.PickNumber(s.ctx, connP1, code, 9))
	s.Len(s.notifier.roomUpdates[connP1], before)

	// Original pick survives
	s.Require().NoError(s.engine.PickNumber(s.ctx, connP2, code, 7))
	snap := s.notifier.lastRoomUpdate(connP1)
	s.Require().NotNil(snap.Players[0].SecretNumber)
	s.Equal(4, *snap.Players[0].SecretNumber)
}

func (s *EngineSuite) TestPickOutsidePickingPhaseIsANoOp() {
	code := s.setupPlayingRoom()
	s.Require().NoError(s.engine.PickNumber(s.ctx, connP1, code, 5))

	snap := s.notifier.lastRoomUpdate(connP1)
	s.Equal(model.RoomStatusPlaying, snap.Status)
	s.Equal(4, *snap.Players[0].SecretNumber)
}

func (s *EngineSuite) TestPickAgainstMissingRoomIsANoOp() {
	s.Require().NoError(s.engine.PickNumber(s.ctx, connP1, "GONE", 5))
}

// Snapshots

func (s *EngineSuite) TestSnapshotsHideOpponentSecret() {
	s.setupPlayingRoom()

	p1View := s.notifier.lastRoomUpdate(connP1)
	s.Require().NotNil(p1View.Players[0].SecretNumber)
	s.Equal(4, *p1View.Players[0].SecretNumber)
	s.Nil(p1View.Players[1].SecretNumber)
	s.True(p1View.Players[1].HasPicked)

	p2View := s.notifier.lastRoomUpdate(connP2)
	s.Nil(p2View.Players[0].SecretNumber)
	s.Require().NotNil(p2View.Players[1].SecretNumber)
	s.Equal(7, *p2View.Players[1].SecretNumber)
}

// Guess

func (s *EngineSuite) TestScenarioAFullGame() {
	code := s.setupPlayingRoom()

	// P1 guesses 9 against Bob's 7: secret is lower, turn flips
	s.Require().NoError(s.engine.Guess(s.ctx, connP1, code, 9, false))
	snap := s.notifier.lastRoomUpdate(connP2)
	s.Equal(model.RoomStatusPlaying, snap.Status)
	s.Equal(connP2, snap.Turn)
	s.Require().Len(snap.Players[0].Guesses, 1)
	s.Equal(model.FeedbackLower, snap.Players[0].Guesses[0].Feedback)

	// P2 guesses Alice's 4 exactly: game over
	s.Require().NoError(s.engine.Guess(s.ctx, connP2, code, 4, false))
	snap = s.notifier.lastRoomUpdate(connP2)
	s.Equal(model.RoomStatusFinished, snap.Status)
	s.Equal("Bob", snap.Winner)
	s.Equal(model.FeedbackCorrect, snap.Players[1].Guesses[0].Feedback)
}

func (s *EngineSuite) TestScenarioBLieThenSpentLie() {
	code := s.setupPlayingRoom()

	// Truthfully "higher" (2 < 7), lie says "lower"
	s.Require().NoError(s.engine.Guess(s.ctx, connP1, code, 2, true))
	snap := s.notifier.lastRoomUpdate(connP1)
	s.Equal(model.FeedbackLower, snap.Players[0].Guesses[0].Feedback)
	s.True(snap.Players[0].Guesses[0].WasLie)
	s.True(snap.Players[0].HasUsedLie)

	// Pass the turn back
	s.Require().NoError(s.engine.Guess(s.ctx, connP2, code, 9, false))

	// Second lie attempt is ignored: truthful "higher" again
	s.Require().NoError(s.engine.Guess(s.ctx, connP1, code, 2, true))
	snap = s.notifier.lastRoomUpdate(connP1)
	s.Require().Len(snap.Players[0].Guesses, 2)
	s.Equal(model.FeedbackHigher, snap.Players[0].Guesses[1].Feedback)
	s.False(snap.Players[0].Guesses[1].WasLie)
}

func (s *EngineSuite) TestLieMasksCorrectGuess() {
	code := s.setupPlayingRoom()

	// P1 hits Bob's 7 exactly but lies: reported higher, game continues
	s.Require().NoError(s.engine.Guess(s.ctx, connP1, code, 7, true))
	snap := s.notifier.lastRoomUpdate(connP1)
	s.Equal(model.RoomStatusPlaying, snap.Status)
	s.Equal(connP2, snap.Turn)
	s.Equal(model.FeedbackHigher, snap.Players[0].Guesses[0].Feedback)
}

func (s *EngineSuite) TestSpentLieCorrectGuessStillWins() {
	code := s.setupPlayingRoom()

	s.Require().NoError(s.engine.Guess(s.ctx, connP1, code, 2, true))
	s.Require().NoError(s.engine.Guess(s.ctx, connP2, code, 9, false))

	// Lie flag set but already spent: truthful correct ends the game
	s.Require().NoError(s.engine.Guess(s.ctx, connP1, code, 7, true))
	snap := s.notifier.lastRoomUpdate(connP1)
	s.Equal(model.RoomStatusFinished, snap.Status)
	s.Equal("Alice", snap.Winner)
}

func (s *EngineSuite) TestGuessOutOfTurnIsSilentlyIgnored() {
	code := s.setupPlayingRoom()

	before := len(s.notifier.roomUpdates[connP2])
	s.Require().NoError(s.engine.Guess(s.ctx, connP2, code, 5, false))
	s.Len(s.notifier.roomUpdates[connP2], before)
}

func (s *EngineSuite) TestGuessBeforePlayingIsSilentlyIgnored() {
	code := s.setupRoom(1, 10)

	before := len(s.notifier.roomUpdates[connP1])
	s.Require().NoError(s.engine.Guess(s.ctx, connP1, code, 5, false))
	s.Len(s.notifier.roomUpdates[connP1], before)
}

func (s *EngineSuite) TestTurnAlternates() {
	code := s.setupPlayingRoom()

	s.Require().NoError(s.engine.Guess(s.ctx, connP1, code, 1, false))
	s.Equal(connP2, s.notifier.lastRoomUpdate(connP1).Turn)

	s.Require().NoError(s.engine.Guess(s.ctx, connP2, code, 1, false))
	s.Equal(connP1, s.notifier.lastRoomUpdate(connP1).Turn)
}

func (s *EngineSuite) TestFinishedRoomIsDiscarded() {
	code := s.setupPlayingRoom()

	s.Require().NoError(s.engine.Guess(s.ctx, connP1, code, 7, false))

	// Any further command hits a missing room and is a no-op
	err := s.engine.JoinRoom(s.ctx, connP3, idP3, "Carol", code)
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *EngineSuite) TestFinishedGameRecordsBothResultsOnce() {
	code := s.setupPlayingRoom()
	s.Require().NoError(s.engine.Guess(s.ctx, connP1, code, 7, false))

	winner, err := s.storage.GetLeaderboardEntry(s.ctx, idP1)
	s.Require().NoError(err)
	s.Equal(1, winner.Wins)
	s.Equal(0, winner.Losses)

	loser, err := s.storage.GetLeaderboardEntry(s.ctx, idP2)
	s.Require().NoError(err)
	s.Equal(0, loser.Wins)
	s.Equal(1, loser.Losses)

	// A stale retry of the winning guess finds no room and records nothing
	s.Require().NoError(s.engine.Guess(s.ctx, connP1, code, 7, false))
	winner, _ = s.storage.GetLeaderboardEntry(s.ctx, idP1)
	s.Equal(1, winner.Wins)
}

func (s *EngineSuite) TestLeaderboardAccumulatesAcrossRooms() {
	for i := 0; i < 2; i++ {
		code := s.setupPlayingRoom()
		s.Require().NoError(s.engine.Guess(s.ctx, connP1, code, 7, false))
	}

	entries, err := s.engine.Leaderboard(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(entries, 2)
	s.Equal("Alice", entries[0].DisplayName)
	s.Equal(2, entries[0].Wins)
	s.Equal(2, entries[1].Losses)
}

// Disconnect

func (s *EngineSuite) TestScenarioDDisconnectMidGame() {
	code := s.setupPlayingRoom()

	s.engine.Disconnect(s.ctx, connP2)

	s.Equal([]model.RoomCode{code}, s.notifier.opponentLeft[connP1])

	err := s.engine.JoinRoom(s.ctx, connP3, idP3, "Carol", code)
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *EngineSuite) TestDisconnectFromWaitingPublicRoomPushesLobbies() {
	_, _ = s.engine.CreateRoom(s.ctx, connP1, idP1, "Alice", "ROOM1", model.Settings{Min: 1, Max: 10}, true)

	before := len(s.notifier.lobbiesUpdates)
	s.engine.Disconnect(s.ctx, connP1)

	s.Require().Len(s.notifier.lobbiesUpdates, before+1)
	s.Empty(s.notifier.lobbiesUpdates[before])
}

func (s *EngineSuite) TestDisconnectUnknownConnectionIsANoOp() {
	s.engine.Disconnect(s.ctx, "stranger")
	s.Empty(s.notifier.opponentLeft)
}

func (s *EngineSuite) TestDisconnectRecordsNoResults() {
	s.setupPlayingRoom()
	s.engine.Disconnect(s.ctx, connP2)

	entries, _ := s.engine.Leaderboard(s.ctx)
	s.Empty(entries)
}

// Lobby listing

func (s *EngineSuite) TestListLobbies() {
	_, _ = s.engine.CreateRoom(s.ctx, connP1, idP1, "Alice", "ROOM1", model.Settings{Min: 1, Max: 10}, true)
	_, _ = s.engine.CreateRoom(s.ctx, connP2, idP2, "Bob", "ROOM2", model.Settings{Min: 1, Max: 10}, false)

	lobbies := s.engine.ListLobbies()
	s.Require().Len(lobbies, 1)
	s.Equal(model.RoomCode("ROOM1"), lobbies[0].Code)
}
