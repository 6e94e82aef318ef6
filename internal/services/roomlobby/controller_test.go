package roomlobby

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/avorobev/fableroom/internal/dependencies/mocks"
	"github.com/avorobev/fableroom/internal/model"
	"github.com/avorobev/fableroom/internal/services/notify"
	"github.com/avorobev/fableroom/internal/services/presence"
	"github.com/avorobev/fableroom/internal/services/sessionstate"
	"github.com/avorobev/fableroom/internal/testutil"
)

type sentAction struct {
	action string
	data   any
}

type fakeConn struct {
	mu        sync.Mutex
	connected bool
	room      model.RoomCode
	events    chan model.Event
	sent      []sentAction
	failDial  bool
}

func newFakeConn() *fakeConn {
	return &fakeConn{events: make(chan model.Event, 16)}
}

func (f *fakeConn) Connect(room model.RoomCode, credential string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connected = false
	f.room = ""
	if credential == "" || f.failDial {
		return
	}
	f.connected = true
	f.room = room
}

func (f *fakeConn) Disconnect() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connected = false
	f.room = ""
}

func (f *fakeConn) SendAction(action string, data any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.connected {
		return model.ErrNotConnected
	}
	f.sent = append(f.sent, sentAction{action, data})
	return nil
}

func (f *fakeConn) Events() <-chan model.Event { return f.events }

func (f *fakeConn) Connected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

func (f *fakeConn) CurrentRoom() model.RoomCode {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.room
}

// forceConnect puts the fake in the connected state without going
// through Controller.Connect, so tests can skip the initial refresh
func (f *fakeConn) forceConnect(room model.RoomCode) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connected = true
	f.room = room
}

func (f *fakeConn) sentActions() []sentAction {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentAction(nil), f.sent...)
}

type fakeRooms struct {
	mu       sync.Mutex
	room     *model.Room
	getErr   error
	gate     chan struct{}
	getCodes []model.RoomCode
	paused   []bool
	started  int
}

func (f *fakeRooms) GetRoomInfo(_ context.Context, code model.RoomCode) (*model.Room, error) {
	f.mu.Lock()
	f.getCodes = append(f.getCodes, code)
	gate := f.gate
	err := f.getErr
	room := f.room
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	if room != nil {
		r := *room
		return &r, nil
	}
	return &model.Room{Code: code}, nil
}

// setGate makes subsequent fetches block until the channel closes
func (f *fakeRooms) setGate(gate chan struct{}) {
	f.mu.Lock()
	f.gate = gate
	f.mu.Unlock()
}

func (f *fakeRooms) PauseRoom(_ context.Context, _ model.RoomCode, paused bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paused = append(f.paused, paused)
	return nil
}

func (f *fakeRooms) StartGame(_ context.Context, _ model.RoomCode) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started++
	return nil
}

func (f *fakeRooms) getCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.getCodes)
}

func (f *fakeRooms) lookups() []model.RoomCode {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.RoomCode(nil), f.getCodes...)
}

func (f *fakeRooms) pauseCalls() []bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]bool(nil), f.paused...)
}

func (f *fakeRooms) startCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.started
}

type ControllerSuite struct {
	suite.Suite
	ctx    context.Context
	clock  *mocks.MockClock
	bridge *notify.Bridge
	conn   *fakeConn
	rooms  *fakeRooms
	ctrl   *Controller
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	s.ctx = context.Background()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.bridge = notify.New(s.clock, testutil.NopLogger())
	s.conn = newFakeConn()
	s.rooms = &fakeRooms{}
	s.ctrl = New(Config{
		Conn:   s.conn,
		Rooms:  s.rooms,
		Notify: s.bridge,
		Clock:  s.clock,
		Logger: testutil.NopLogger(),
		UserID: "user-1",
	})
}

// waitForRoom blocks until a refresh goroutine has landed a snapshot
func (s *ControllerSuite) waitForRoom() {
	s.Require().Eventually(func() bool {
		return s.ctrl.View().Room != nil
	}, 2*time.Second, 5*time.Millisecond)
}

func (s *ControllerSuite) TestConnectThenJoinedBecomesActive() {
	s.ctrl.Connect(s.ctx, "ab12cd", "secret-token")

	view := s.ctrl.View()
	s.True(view.Connected)
	s.Equal(model.RoomCode("AB12CD"), view.RoomCode, "join codes are canonicalized")
	s.Equal(presence.StateJoining, view.State)

	s.ctrl.Dispatch(s.ctx, &model.RoomJoinedEvent{Room: model.Room{Code: "AB12CD"}})

	s.Equal(presence.StateActive, s.ctrl.View().State)
	s.waitForRoom()
	s.Equal(model.RoomCode("AB12CD"), s.ctrl.View().Room.Code)
}

func (s *ControllerSuite) TestReconnectDiscardsPullsFromOldConnection() {
	gate := make(chan struct{})
	s.rooms.setGate(gate)

	// The first connection's pull stalls in flight
	s.ctrl.Connect(s.ctx, "AAAAAA", "secret-token")
	s.Require().Eventually(func() bool {
		return s.rooms.getCount() == 1
	}, 2*time.Second, 5*time.Millisecond)

	s.rooms.setGate(nil)
	s.ctrl.Connect(s.ctx, "BBBBBB", "secret-token")
	s.Require().Eventually(func() bool {
		room := s.ctrl.View().Room
		return room != nil && room.Code == "BBBBBB"
	}, 2*time.Second, 5*time.Millisecond)

	// Releasing the stalled pull must not overwrite the new room
	close(gate)
	s.Never(func() bool {
		room := s.ctrl.View().Room
		return room == nil || room.Code != "BBBBBB"
	}, 300*time.Millisecond, 10*time.Millisecond)
}

func (s *ControllerSuite) TestConnectCancelsPendingLookup() {
	s.ctrl.QueueLookup(s.ctx, "ab12cd", func(*model.Room, error) {
		s.Fail("probe must not fire once a session is established")
	})

	s.ctrl.Connect(s.ctx, "ZZ99XX", "secret-token")
	s.clock.Advance(time.Second)

	s.Require().Eventually(func() bool {
		return s.rooms.getCount() > 0
	}, 2*time.Second, 5*time.Millisecond)
	s.NotContains(s.rooms.lookups(), model.RoomCode("AB12CD"))
}

func (s *ControllerSuite) TestConnectFailureLeavesNoRoom() {
	s.conn.failDial = true

	s.ctrl.Connect(s.ctx, "AB12CD", "secret-token")

	view := s.ctrl.View()
	s.False(view.Connected)
	s.Equal(presence.StateNoRoom, view.State)
	s.Equal(0, s.rooms.getCount(), "no snapshot pull without a connection")
}

func (s *ControllerSuite) TestMasterDisconnectedPausesAndRefreshes() {
	s.conn.forceConnect("AB12CD")
	s.ctrl.Dispatch(s.ctx, &model.RoomJoinedEvent{Room: model.Room{Code: "AB12CD"}})
	s.waitForRoom()
	before := s.rooms.getCount()

	s.ctrl.Dispatch(s.ctx, &model.MasterDisconnectedEvent{Master: "alice"})

	s.Equal(presence.StatePaused, s.ctrl.View().State)
	s.Require().Eventually(func() bool {
		return s.rooms.getCount() > before
	}, 2*time.Second, 5*time.Millisecond)

	items := s.bridge.List()
	last := items[len(items)-1]
	s.Equal(model.SeverityWarning, last.Severity)
	s.Contains(last.Message, "alice")
}

func (s *ControllerSuite) TestStateChangedAppliesWithoutFetching() {
	s.conn.forceConnect("AB12CD")

	s.ctrl.Dispatch(s.ctx, &model.StateChangedEvent{State: model.GameState{
		Players: []model.GamePlayer{{ID: "p1", Name: "Bob"}},
	}})

	view := s.ctrl.View()
	s.Require().NotNil(view.Game)
	s.Len(view.Game.Players, 1)
	s.Equal(0, s.rooms.getCount(), "pushed state needs no pull")
}

func (s *ControllerSuite) TestDisconnectedEventResetsEverything() {
	s.conn.forceConnect("AB12CD")
	s.ctrl.Dispatch(s.ctx, &model.RoomJoinedEvent{Room: model.Room{Code: "AB12CD"}})
	s.waitForRoom()

	s.ctrl.Dispatch(s.ctx, &model.DisconnectedEvent{Reason: "unexpected EOF"})

	view := s.ctrl.View()
	s.Equal(presence.StateNoRoom, view.State)
	s.Nil(view.Room)
	s.Nil(view.Game)

	items := s.bridge.List()
	last := items[len(items)-1]
	s.Equal(model.SeverityWarning, last.Severity)
}

func (s *ControllerSuite) TestPauseRejectedForNonMaster() {
	s.conn.forceConnect("AB12CD")
	s.rooms.room = &model.Room{Code: "AB12CD", MasterID: "somebody-else"}
	s.ctrl.Dispatch(s.ctx, &model.RoomJoinedEvent{Room: model.Room{Code: "AB12CD"}})
	s.waitForRoom()

	err := s.ctrl.Pause(s.ctx, true)

	s.ErrorIs(err, model.ErrNotMaster)
	s.Empty(s.rooms.pauseCalls())
}

func (s *ControllerSuite) TestPauseAsMaster() {
	s.conn.forceConnect("AB12CD")
	s.rooms.room = &model.Room{Code: "AB12CD", MasterID: "user-1"}
	s.ctrl.Dispatch(s.ctx, &model.RoomJoinedEvent{Room: model.Room{Code: "AB12CD"}})
	s.waitForRoom()

	s.Require().NoError(s.ctrl.Pause(s.ctx, true))
	s.Equal([]bool{true}, s.rooms.pauseCalls())

	s.Require().NoError(s.ctrl.Pause(s.ctx, false))
	s.Equal([]bool{true, false}, s.rooms.pauseCalls())
}

func (s *ControllerSuite) TestStartGameAsMaster() {
	s.conn.forceConnect("AB12CD")
	s.rooms.room = &model.Room{Code: "AB12CD", MasterID: "user-1"}
	s.ctrl.Dispatch(s.ctx, &model.RoomJoinedEvent{Room: model.Room{Code: "AB12CD"}})
	s.waitForRoom()

	s.Require().NoError(s.ctrl.StartGame(s.ctx))
	s.Equal(1, s.rooms.startCount())
}

func (s *ControllerSuite) TestStartGameRejectedWithoutRoom() {
	err := s.ctrl.StartGame(s.ctx)
	s.ErrorIs(err, model.ErrNotMaster)
}

func (s *ControllerSuite) TestLeaveTearsEverythingDown() {
	s.conn.forceConnect("AB12CD")
	s.ctrl.Dispatch(s.ctx, &model.RoomJoinedEvent{Room: model.Room{Code: "AB12CD"}})
	s.waitForRoom()

	s.ctrl.Leave()

	view := s.ctrl.View()
	s.False(view.Connected)
	s.Equal(presence.StateNoRoom, view.State)
	s.Nil(view.Room)
	s.Nil(view.Game)
}

func (s *ControllerSuite) TestActivateResumesSurvivingConnection() {
	s.conn.forceConnect("AB12CD")

	s.ctrl.Activate(s.ctx)

	s.Equal(presence.StateActive, s.ctrl.View().State)
	s.waitForRoom()
}

func (s *ControllerSuite) TestActivateWithoutConnectionDoesNothing() {
	s.ctrl.Activate(s.ctx)

	s.Equal(presence.StateNoRoom, s.ctrl.View().State)
	s.Equal(0, s.rooms.getCount())
}

func (s *ControllerSuite) TestRefreshFailureAddsErrorNotification() {
	s.conn.forceConnect("AB12CD")
	s.rooms.getErr = errors.New("server melted")

	s.ctrl.Dispatch(s.ctx, &model.RoomPausedEvent{})

	s.Require().Eventually(func() bool {
		for _, n := range s.bridge.List() {
			if n.Severity == model.SeverityError && n.Message == "server melted" {
				return true
			}
		}
		return false
	}, 2*time.Second, 5*time.Millisecond)
	s.Nil(s.ctrl.View().Room)
}

func (s *ControllerSuite) TestSendPassesThrough() {
	s.Error(s.ctrl.Send("player:move", nil))

	s.conn.forceConnect("AB12CD")
	s.Require().NoError(s.ctrl.Send("player:move", map[string]string{"to": "tavern"}))

	actions := s.conn.sentActions()
	s.Require().Len(actions, 1)
	s.Equal("player:move", actions[0].action)
}

func (s *ControllerSuite) TestLookupDebouncesToFinalValue() {
	var (
		mu      sync.Mutex
		results []model.RoomCode
	)
	record := func(room *model.Room, err error) {
		s.Require().NoError(err)
		mu.Lock()
		results = append(results, room.Code)
		mu.Unlock()
	}

	s.ctrl.QueueLookup(s.ctx, "ab12cd", record)
	s.clock.Advance(LookupDebounce / 2)
	s.ctrl.QueueLookup(s.ctx, "zz99xx", record)
	s.clock.Advance(LookupDebounce)

	s.Equal([]model.RoomCode{"ZZ99XX"}, s.rooms.lookups(), "only the final value is probed")
	mu.Lock()
	defer mu.Unlock()
	s.Equal([]model.RoomCode{"ZZ99XX"}, results)
}

func (s *ControllerSuite) TestLookupIgnoresIncompleteCodes() {
	s.ctrl.QueueLookup(s.ctx, "ab1", func(*model.Room, error) {
		s.Fail("probe must not run for an incomplete code")
	})

	s.clock.Advance(time.Second)
	s.Equal(0, s.rooms.getCount())
}

func (s *ControllerSuite) TestIncompleteCodeCancelsPendingLookup() {
	s.ctrl.QueueLookup(s.ctx, "ab12cd", func(*model.Room, error) {
		s.Fail("probe was superseded and must not run")
	})
	s.ctrl.QueueLookup(s.ctx, "ab12c", nil)

	s.clock.Advance(time.Second)
	s.Equal(0, s.rooms.getCount())
}

func (s *ControllerSuite) TestRunReconcilesOnTicker() {
	s.conn.forceConnect("AB12CD")

	ctx, cancel := context.WithCancel(s.ctx)
	defer cancel()
	go s.ctrl.Run(ctx)

	s.Require().Eventually(func() bool {
		s.clock.Advance(sessionstate.DefaultReconcileInterval)
		return s.rooms.getCount() > 0
	}, 2*time.Second, 10*time.Millisecond)
}

func (s *ControllerSuite) TestRunDispatchesInboundEvents() {
	s.conn.forceConnect("AB12CD")

	ctx, cancel := context.WithCancel(s.ctx)
	defer cancel()
	go s.ctrl.Run(ctx)

	s.conn.events <- &model.RoomPausedEvent{Reason: "break"}

	s.Require().Eventually(func() bool {
		return s.ctrl.View().State == presence.StatePaused
	}, 2*time.Second, 5*time.Millisecond)
}
