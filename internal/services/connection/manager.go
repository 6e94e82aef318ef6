package connection

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/url"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/avorobev/fableroom/internal/model"
)

// wireEvent is the inbound envelope: an event name plus its payload
type wireEvent struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// outboundMessage is the only outbound shape: fire-and-forget actions
type outboundMessage struct {
	Action string `json:"action"`
	Data   any    `json:"data,omitempty"`
}

// handle is one live connection. At most one exists per manager;
// opening a new one tears down the previous handle first.
type handle struct {
	id   uint64
	conn *websocket.Conn
	room model.RoomCode
	done chan struct{}
}

// Manager owns the persistent connection to the session server.
//
// It performs no automatic reconnection: a transport failure surfaces as
// Connected() == false plus one DisconnectedEvent, and reconnecting is
// the caller's decision.
type Manager struct {
	baseURL string
	dialer  *websocket.Dialer
	logger  *slog.Logger
	events  chan model.Event

	mu     sync.Mutex
	handle *handle
	nextID uint64
}

// New creates a manager for the given ws:// or wss:// base URL
func New(baseURL string, logger *slog.Logger) *Manager {
	return &Manager{
		baseURL: baseURL,
		dialer:  websocket.DefaultDialer,
		logger:  logger,
		events:  make(chan model.Event, 64),
	}
}

// Connect tears down any existing handle and opens a new connection.
// The credential and optional room code travel as handshake parameters,
// not as a follow-up message.
//
// A missing credential or a transport rejection leaves the manager in
// the disconnected state without an error: callers observe state.
func (m *Manager) Connect(room model.RoomCode, credential string) {
	m.teardown()

	if credential == "" {
		m.logger.Warn("connect skipped: no credential available")
		return
	}

	u, err := url.Parse(m.baseURL)
	if err != nil {
		m.logger.Warn("connect failed: bad server url", slog.String("error", err.Error()))
		return
	}
	q := u.Query()
	q.Set("token", credential)
	if room != "" {
		q.Set("room", string(room))
	}
	u.RawQuery = q.Encode()

	conn, resp, err := m.dialer.Dial(u.String(), nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		m.logger.Warn("connect failed",
			slog.String("room", string(room)),
			slog.String("error", err.Error()),
		)
		return
	}

	m.mu.Lock()
	m.nextID++
	h := &handle{
		id:   m.nextID,
		conn: conn,
		room: room,
		done: make(chan struct{}),
	}
	m.handle = h
	m.mu.Unlock()

	m.logger.Info("connected",
		slog.Uint64("conn_id", h.id),
		slog.String("room", string(room)),
	)

	go m.readLoop(h)
}

// Disconnect closes the current handle. Calling it with no open handle
// is a no-op; the room identifier is always cleared.
func (m *Manager) Disconnect() {
	m.teardown()
}

// SendAction sends one fire-and-forget action. No acknowledgement is
// awaited; if the server replies, it does so as a separate inbound event.
func (m *Manager) SendAction(action string, data any) error {
	m.mu.Lock()
	h := m.handle
	m.mu.Unlock()

	if h == nil {
		return model.ErrNotConnected
	}
	return h.conn.WriteJSON(outboundMessage{Action: action, Data: data})
}

// Events returns the inbound event stream. Events are delivered in
// transport arrival order to a single consumer.
func (m *Manager) Events() <-chan model.Event {
	return m.events
}

// Connected reports whether a handle is currently open
func (m *Manager) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.handle != nil
}

// CurrentRoom returns the room of the open handle, or ""
func (m *Manager) CurrentRoom() model.RoomCode {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.handle == nil {
		return ""
	}
	return m.handle.room
}

// ConnectionID returns the monotonic id of the open handle, or 0
func (m *Manager) ConnectionID() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.handle == nil {
		return 0
	}
	return m.handle.id
}

// teardown closes the current handle if one is open. Deliberate teardown
// stays silent; only a transport failure emits a DisconnectedEvent.
func (m *Manager) teardown() {
	m.mu.Lock()
	h := m.handle
	m.handle = nil
	m.mu.Unlock()

	if h == nil {
		return
	}

	close(h.done)
	_ = h.conn.Close()
	m.logger.Info("disconnected", slog.Uint64("conn_id", h.id))
}

func (m *Manager) readLoop(h *handle) {
	for {
		var we wireEvent
		if err := h.conn.ReadJSON(&we); err != nil {
			select {
			case <-h.done:
				// Deliberate teardown; the error is just the closed socket
				return
			default:
			}

			m.mu.Lock()
			stillCurrent := m.handle == h
			if stillCurrent {
				m.handle = nil
			}
			m.mu.Unlock()

			if stillCurrent {
				m.logger.Warn("connection lost",
					slog.Uint64("conn_id", h.id),
					slog.String("error", err.Error()),
				)
				m.deliver(h, &model.DisconnectedEvent{Reason: err.Error()})
			}
			return
		}

		ev, err := model.ParseEvent(we.Event, we.Data)
		if err != nil {
			if errors.Is(err, model.ErrUnknownEvent) {
				// Forward compatibility: skip events this client predates
				m.logger.Debug("ignoring unknown event", slog.String("event", we.Event))
				continue
			}
			m.logger.Warn("malformed event",
				slog.String("event", we.Event),
				slog.String("error", err.Error()),
			)
			continue
		}

		m.deliver(h, ev)
	}
}

// deliver blocks until the consumer takes the event, preserving arrival
// order; teardown of the handle unblocks it.
func (m *Manager) deliver(h *handle, ev model.Event) {
	select {
	case m.events <- ev:
	case <-h.done:
	}
}
