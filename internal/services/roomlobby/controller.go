package roomlobby

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/avorobev/fableroom/internal/dependencies/clock"
	"github.com/avorobev/fableroom/internal/model"
	"github.com/avorobev/fableroom/internal/services/notify"
	"github.com/avorobev/fableroom/internal/services/presence"
	"github.com/avorobev/fableroom/internal/services/sessionstate"
)

// LookupDebounce is how long the join-code probe waits after the last edit
const LookupDebounce = 500 * time.Millisecond

// Conn is the persistent-connection surface the controller drives.
// The controller is the exclusive owner of the single handle.
type Conn interface {
	Connect(room model.RoomCode, credential string)
	Disconnect()
	SendAction(action string, data any) error
	Events() <-chan model.Event
	Connected() bool
	CurrentRoom() model.RoomCode
}

// RoomService is the request/response collaborator for room commands
type RoomService interface {
	GetRoomInfo(ctx context.Context, code model.RoomCode) (*model.Room, error)
	PauseRoom(ctx context.Context, code model.RoomCode, paused bool) error
	StartGame(ctx context.Context, code model.RoomCode) error
}

// View is the read-only model consumed by presentation code
type View struct {
	State         presence.State
	Connected     bool
	RoomCode      model.RoomCode
	Room          *model.Room
	Game          *model.GameState
	Notifications []model.Notification
}

// Config wires the controller's collaborators
type Config struct {
	Conn   Conn
	Rooms  RoomService
	Notify *notify.Bridge
	Clock  clock.Clock
	Logger *slog.Logger
	// UserID backs the client-side master check on Pause/StartGame.
	// It is a UX guard only; the server is the authority.
	UserID string
}

// Controller is the composition root for a live room session: it owns
// the connection, the state store, the presence machine and the
// reconciliation timer, and runs the single dispatch loop.
type Controller struct {
	conn     Conn
	rooms    RoomService
	store    *sessionstate.Store
	presence *presence.Machine
	notify   *notify.Bridge
	clock    clock.Clock
	logger   *slog.Logger
	userID   string

	mu          sync.Mutex
	lookupTimer clock.Timer
}

// New creates a controller
func New(cfg Config) *Controller {
	return &Controller{
		conn:     cfg.Conn,
		rooms:    cfg.Rooms,
		store:    sessionstate.New(cfg.Rooms, cfg.Logger),
		presence: presence.New(cfg.Notify, cfg.Logger),
		notify:   cfg.Notify,
		clock:    cfg.Clock,
		logger:   cfg.Logger,
		userID:   cfg.UserID,
	}
}

// Activate prepares the controller for display. A connection that
// survived a prior view skips straight to the active state; otherwise
// the caller must Connect explicitly.
func (c *Controller) Activate(ctx context.Context) {
	if c.conn.Connected() && c.conn.CurrentRoom() != "" {
		c.presence.Resume()
		c.refresh(ctx)
	}
}

// Connect opens the session connection for a room. Connection failures
// surface as the view staying disconnected, not as an error.
//
// Any pending join-code probe and every pull still in flight for a
// previous connection are invalidated first, so a late response can
// never land on the new handle's state.
func (c *Controller) Connect(ctx context.Context, code model.RoomCode, credential string) {
	c.cancelLookup()
	c.store.Reset()

	code = model.CanonicalRoomCode(string(code))
	c.presence.BeginJoin()
	c.conn.Connect(code, credential)
	if !c.conn.Connected() {
		c.presence.Reset()
		return
	}
	c.refresh(ctx)
}

// Leave tears everything down and returns the view to NoRoom
func (c *Controller) Leave() {
	c.cancelLookup()
	c.conn.Disconnect()
	c.store.Reset()
	c.presence.Reset()
}

// Pause pauses or resumes the room. Guarded client-side to masters;
// authority is enforced server-side.
func (c *Controller) Pause(ctx context.Context, paused bool) error {
	if !c.isMaster() {
		return model.ErrNotMaster
	}
	code := c.conn.CurrentRoom()
	if code == "" {
		return model.ErrNotConnected
	}
	if err := c.rooms.PauseRoom(ctx, code, paused); err != nil {
		return err
	}
	c.refresh(ctx)
	return nil
}

// StartGame starts the room's game. Same guard as Pause.
func (c *Controller) StartGame(ctx context.Context) error {
	if !c.isMaster() {
		return model.ErrNotMaster
	}
	code := c.conn.CurrentRoom()
	if code == "" {
		return model.ErrNotConnected
	}
	if err := c.rooms.StartGame(ctx, code); err != nil {
		return err
	}
	c.refresh(ctx)
	return nil
}

// Send forwards a fire-and-forget player action over the connection
func (c *Controller) Send(action string, data any) error {
	return c.conn.SendAction(action, data)
}

// View returns the current read-only view model
func (c *Controller) View() View {
	return View{
		State:         c.presence.State(),
		Connected:     c.conn.Connected(),
		RoomCode:      c.conn.CurrentRoom(),
		Room:          c.store.Room(),
		Game:          c.store.Game(),
		Notifications: c.notify.List(),
	}
}

// Run executes the dispatch loop until ctx is done or the event stream
// closes. All event handlers and the reconciliation tick run on this
// one goroutine, in arrival order.
func (c *Controller) Run(ctx context.Context) {
	ticker := c.clock.NewTicker(sessionstate.DefaultReconcileInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-c.conn.Events():
			if !ok {
				return
			}
			c.dispatch(ctx, ev)
		case <-ticker.C():
			// Backstop pull: reconciles state even if a push was missed
			c.refresh(ctx)
		}
	}
}

// Dispatch applies a single inbound event. Exposed for tests; Run is
// the production path.
func (c *Controller) Dispatch(ctx context.Context, ev model.Event) {
	c.dispatch(ctx, ev)
}

func (c *Controller) dispatch(ctx context.Context, ev model.Event) {
	switch e := ev.(type) {
	case *model.StateChangedEvent:
		c.store.ApplyGameState(e.State)

	case *model.DisconnectedEvent:
		c.store.Reset()
		c.presence.Reset()
		c.notify.Add(model.SeverityWarning, "Disconnected",
			"Connection to the session was lost", presence.NotifyTTL)

	default:
		if c.presence.Handle(ev) {
			c.refresh(ctx)
		}
	}
}

// refresh issues one sequence-tagged pull without blocking the
// dispatch loop. The store discards responses that lose the race.
func (c *Controller) refresh(ctx context.Context) {
	code := c.conn.CurrentRoom()
	if code == "" {
		return
	}
	go func() {
		if err := c.store.Refresh(ctx, code); err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Warn("room refresh failed",
				slog.String("room", string(code)),
				slog.String("error", err.Error()),
			)
			c.notify.Add(model.SeverityError, "Refresh failed", err.Error(), presence.NotifyTTL)
		}
	}()
}

func (c *Controller) isMaster() bool {
	room := c.store.Room()
	return room != nil && room.IsMaster(c.userID)
}

// QueueLookup schedules a room probe for a partially typed join code.
// Rapid edits reset the window so only the final value is looked up;
// anything other than a complete 6-character code cancels the probe.
func (c *Controller) QueueLookup(ctx context.Context, raw string, result func(*model.Room, error)) {
	c.cancelLookup()

	code := model.CanonicalRoomCode(raw)
	if !code.Valid() {
		return
	}

	c.mu.Lock()
	c.lookupTimer = c.clock.AfterFunc(LookupDebounce, func() {
		room, err := c.rooms.GetRoomInfo(ctx, code)
		result(room, err)
	})
	c.mu.Unlock()
}

func (c *Controller) cancelLookup() {
	c.mu.Lock()
	if c.lookupTimer != nil {
		c.lookupTimer.Stop()
		c.lookupTimer = nil
	}
	c.mu.Unlock()
}
