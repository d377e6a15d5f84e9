package registry

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/nlemma/numberguessr/internal/dependencies/mocks"
	"github.com/nlemma/numberguessr/internal/model"
	"github.com/nlemma/numberguessr/internal/testutil"
)

type RegistrySuite struct {
	suite.Suite
	clock    *mocks.MockClock
	random   *mocks.MockRandom
	registry *Registry
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistrySuite))
}

func (s *RegistrySuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.registry = New(s.clock, s.random, testutil.NopLogger())
}

func (s *RegistrySuite) host(name string) model.Player {
	return model.Player{
		ConnectionID: model.ConnectionID("conn-" + name),
		Identity:     model.Identity("id-" + name),
		DisplayName:  name,
	}
}

func (s *RegistrySuite) TestCreateGeneratesCode() {
	s.random.QueueString("ABC123")

	code, err := s.registry.Create("", model.DefaultSettings(), true, s.host("Alice"))
	s.Require().NoError(err)
	s.Equal(model.RoomCode("ABC123"), code)
}

func (s *RegistrySuite) TestCreateRetriesOnCodeCollision() {
	s.random.QueueString("ABC123")
	_, err := s.registry.Create("", model.DefaultSettings(), true, s.host("Alice"))
	s.Require().NoError(err)

	// First generated code collides, second does not
	s.random.QueueString("ABC123", "XYZ789")
	code, err := s.registry.Create("", model.DefaultSettings(), true, s.host("Bob"))
	s.Require().NoError(err)
	s.Equal(model.RoomCode("XYZ789"), code)
}

func (s *RegistrySuite) TestCreateExplicitCode() {
	code, err := s.registry.Create("MYROOM", model.DefaultSettings(), false, s.host("Alice"))
	s.Require().NoError(err)
	s.Equal(model.RoomCode("MYROOM"), code)
}

func (s *RegistrySuite) TestCreateExplicitCodeCollisionFails() {
	_, err := s.registry.Create("MYROOM", model.DefaultSettings(), false, s.host("Alice"))
	s.Require().NoError(err)

	_, err = s.registry.Create("MYROOM", model.DefaultSettings(), false, s.host("Bob"))
	s.ErrorIs(err, model.ErrRoomExists)
}

func (s *RegistrySuite) TestCreateSeatsHostFirst() {
	code, _ := s.registry.Create("MYROOM", model.Settings{Min: 1, Max: 10}, true, s.host("Alice"))

	var room model.Room
	err := s.registry.View(code, func(r *model.Room) { room = *r })
	s.Require().NoError(err)

	s.Equal(model.RoomStatusWaiting, room.Status)
	s.Equal("Alice", room.HostName)
	s.Require().Len(room.Players, 1)
	s.Equal("Alice", room.Players[0].DisplayName)
	s.Equal(1, room.Settings.Min)
	s.Equal(10, room.Settings.Max)
}

func (s *RegistrySuite) TestUpdateUnknownRoom() {
	err := s.registry.Update("NOPE", func(r *model.Room) error { return nil })
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *RegistrySuite) TestUpdateBumpsUpdatedAt() {
	code, _ := s.registry.Create("MYROOM", model.DefaultSettings(), true, s.host("Alice"))

	s.clock.Advance(time.Minute)
	err := s.registry.Update(code, func(r *model.Room) error {
		r.Status = model.RoomStatusPicking
		return nil
	})
	s.Require().NoError(err)

	_ = s.registry.View(code, func(r *model.Room) {
		s.Equal(s.clock.Now(), r.UpdatedAt)
	})
}

func (s *RegistrySuite) TestRemoveIsIdempotent() {
	code, _ := s.registry.Create("MYROOM", model.DefaultSettings(), true, s.host("Alice"))

	s.registry.Remove(code)
	s.registry.Remove(code)

	err := s.registry.View(code, func(r *model.Room) {})
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *RegistrySuite) TestListPublicWaitingFiltersPrivateRooms() {
	_, _ = s.registry.Create("PUBLIC", model.DefaultSettings(), true, s.host("Alice"))
	_, _ = s.registry.Create("SECRET", model.DefaultSettings(), false, s.host("Bob"))

	lobbies := s.registry.ListPublicWaiting()
	s.Require().Len(lobbies, 1)
	s.Equal(model.RoomCode("PUBLIC"), lobbies[0].Code)
	s.Equal(1, lobbies[0].PlayerCount)
	s.Equal("Alice", lobbies[0].HostName)
}

func (s *RegistrySuite) TestListPublicWaitingFiltersNonWaitingRooms() {
	code, _ := s.registry.Create("PUBLIC", model.DefaultSettings(), true, s.host("Alice"))

	_ = s.registry.Update(code, func(r *model.Room) error {
		r.Status = model.RoomStatusPicking
		return nil
	})

	s.Empty(s.registry.ListPublicWaiting())
}

func (s *RegistrySuite) TestListPublicWaitingSortedByCode() {
	_, _ = s.registry.Create("ZZZ", model.DefaultSettings(), true, s.host("Alice"))
	_, _ = s.registry.Create("AAA", model.DefaultSettings(), true, s.host("Bob"))

	lobbies := s.registry.ListPublicWaiting()
	s.Require().Len(lobbies, 2)
	s.Equal(model.RoomCode("AAA"), lobbies[0].Code)
	s.Equal(model.RoomCode("ZZZ"), lobbies[1].Code)
}

func (s *RegistrySuite) TestRoomsForConnection() {
	host := s.host("Alice")
	code, _ := s.registry.Create("MYROOM", model.DefaultSettings(), true, host)
	_, _ = s.registry.Create("OTHER", model.DefaultSettings(), true, s.host("Bob"))

	codes := s.registry.RoomsForConnection(host.ConnectionID)
	s.Equal([]model.RoomCode{code}, codes)
}

func (s *RegistrySuite) TestConcurrentCreateAndRemove() {
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			code := model.RoomCode(fmt.Sprintf("ROOM%02d", i))
			_, err := s.registry.Create(code, model.DefaultSettings(), i%2 == 0, s.host(fmt.Sprintf("p%d", i)))
			s.NoError(err)
			if i%4 == 0 {
				s.registry.Remove(code)
			}
		}(i)
	}
	wg.Wait()

	lobbies := s.registry.ListPublicWaiting()
	// Even-indexed rooms are public, every fourth is removed again
	s.Len(lobbies, 8)
}
