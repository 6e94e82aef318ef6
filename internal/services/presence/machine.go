package presence

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/avorobev/fableroom/internal/model"
)

// State is the derived room-lifecycle state
type State string

const (
	StateNoRoom               State = "no_room"
	StateJoining              State = "joining"
	StateActive               State = "active"
	StatePaused               State = "paused"
	StateClosedAwaitingMaster State = "closed_awaiting_master"
)

// NotifyTTL is how long auto-expiring presence notifications live
const NotifyTTL = 5 * time.Second

// Notifier receives the user-facing messages the machine produces
type Notifier interface {
	Add(severity model.Severity, title, message string, expiry time.Duration) string
}

// Machine derives room-lifecycle state from the inbound event stream.
// It is owned by the controller's dispatch goroutine and is not safe
// for concurrent use.
type Machine struct {
	state  State
	notify Notifier
	logger *slog.Logger
}

// New creates a machine in the NoRoom state
func New(notify Notifier, logger *slog.Logger) *Machine {
	return &Machine{
		state:  StateNoRoom,
		notify: notify,
		logger: logger,
	}
}

// State returns the current lifecycle state
func (m *Machine) State() State {
	return m.state
}

// BeginJoin marks a connection attempt in progress
func (m *Machine) BeginJoin() {
	m.transition(StateJoining)
}

// Resume puts the machine straight into Active, for a view re-activated
// while its connection survived.
func (m *Machine) Resume() {
	m.transition(StateActive)
}

// Reset returns the machine to NoRoom on disconnect or leave
func (m *Machine) Reset() {
	m.transition(StateNoRoom)
}

// Handle applies one inbound event and reports whether a fresh room
// snapshot should be pulled. Each lifecycle event produces at most one
// notification. Events the machine does not know are ignored.
func (m *Machine) Handle(ev model.Event) bool {
	switch e := ev.(type) {
	case *model.RoomJoinedEvent:
		m.transition(StateActive)
		m.notify.Add(model.SeveritySuccess, "Joined room",
			fmt.Sprintf("You are in room %s", e.Room.Code), NotifyTTL)
		return true

	case *model.PlayerJoinedEvent:
		m.notify.Add(model.SeverityInfo, "Player joined",
			fmt.Sprintf("%s joined the room", e.Username), NotifyTTL)
		return true

	case *model.PlayerLeftEvent:
		m.notify.Add(model.SeverityWarning, "Player left",
			fmt.Sprintf("%s left the room", e.Username), NotifyTTL)
		return true

	case *model.RoomPausedEvent:
		m.transition(StatePaused)
		msg := "The master paused the session"
		if e.Reason != "" {
			msg = e.Reason
		}
		m.notify.Add(model.SeverityWarning, "Session paused", msg, NotifyTTL)
		return true

	case *model.RoomResumedEvent:
		m.transition(StateActive)
		m.notify.Add(model.SeveritySuccess, "Session resumed",
			fmt.Sprintf("%s resumed the session", e.Master), NotifyTTL)
		return true

	case *model.MasterDisconnectedEvent:
		m.transition(StatePaused)
		m.notify.Add(model.SeverityWarning, "Master disconnected",
			fmt.Sprintf("%s lost connection, session paused", e.Master), NotifyTTL)
		return true

	case *model.MasterReconnectedEvent:
		m.transition(StateActive)
		msg := fmt.Sprintf("%s is back, session resumed", e.Master)
		if e.Message != "" {
			msg = e.Message
		}
		m.notify.Add(model.SeveritySuccess, "Master reconnected", msg, NotifyTTL)
		return true

	case *model.MasterConnectedEvent:
		// Presence fact only; no lifecycle change, no refresh
		m.notify.Add(model.SeverityInfo, "Master connected",
			fmt.Sprintf("%s is connected", e.Master), NotifyTTL)
		return false

	case *model.RoomClosedEvent:
		m.transition(StateClosedAwaitingMaster)
		msg := "The room was closed because the master is absent"
		if e.Message != "" {
			msg = e.Message
		}
		// Stays until the user dismisses it
		m.notify.Add(model.SeverityError, "Room closed", msg, 0)
		return true

	case *model.RoomReopenedEvent:
		m.transition(StateActive)
		msg := fmt.Sprintf("%s reopened the room", e.Master)
		if e.Message != "" {
			msg = e.Message
		}
		m.notify.Add(model.SeveritySuccess, "Room reopened", msg, NotifyTTL)
		return true

	case *model.RoomErrorEvent:
		m.notify.Add(model.SeverityError, "Room error", e.Err, NotifyTTL)
		return false

	default:
		return false
	}
}

func (m *Machine) transition(to State) {
	if m.state == to {
		return
	}
	m.logger.Debug("presence transition",
		slog.String("from", string(m.state)),
		slog.String("to", string(to)),
	)
	m.state = to
}
