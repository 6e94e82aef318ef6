package model

import (
	"encoding/json"
	"fmt"
)

// EventType identifies an inbound session event by its wire name
type EventType string

const (
	EventStateChanged       EventType = "state:changed"
	EventRoomJoined         EventType = "room:joined"
	EventPlayerJoined       EventType = "room:player-joined"
	EventPlayerLeft         EventType = "room:player-left"
	EventRoomPaused         EventType = "room:paused"
	EventRoomResumed        EventType = "room:resumed"
	EventMasterDisconnected EventType = "room:master-disconnected"
	EventMasterReconnected  EventType = "room:master-reconnected"
	EventMasterConnected    EventType = "room:master-connected"
	EventRoomClosed         EventType = "room:closed"
	EventRoomReopened       EventType = "room:reopened"
	EventRoomError          EventType = "room:error"

	// EventDisconnected is synthesized locally when the transport drops;
	// it never arrives over the wire
	EventDisconnected EventType = "disconnected"
)

// Event is an inbound session event. The concrete types below form a
// closed union so handlers dispatch on type, not on wire strings.
type Event interface {
	EventType() EventType
}

// StateChangedEvent carries a wholesale replacement of the game state
type StateChangedEvent struct {
	State GameState
}

// RoomJoinedEvent confirms this client joined a room
type RoomJoinedEvent struct {
	Room Room `json:"room"`
}

// PlayerJoinedEvent announces another participant joining
type PlayerJoinedEvent struct {
	UserID   string     `json:"userId"`
	Username string     `json:"username"`
	Role     PlayerRole `json:"role"`
}

// PlayerLeftEvent announces a participant leaving
type PlayerLeftEvent struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

// RoomPausedEvent announces the room entering pause
type RoomPausedEvent struct {
	Reason string `json:"reason,omitempty"`
}

// RoomResumedEvent announces the room leaving pause
type RoomResumedEvent struct {
	Master string `json:"master"`
}

// MasterDisconnectedEvent announces the master losing connectivity
type MasterDisconnectedEvent struct {
	Master string `json:"master"`
}

// MasterReconnectedEvent announces the master coming back
type MasterReconnectedEvent struct {
	Master  string `json:"master"`
	Message string `json:"message,omitempty"`
}

// MasterConnectedEvent announces the master's presence without a state change
type MasterConnectedEvent struct {
	Master string `json:"master"`
}

// RoomClosedEvent announces the room closing, usually for master absence
type RoomClosedEvent struct {
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message,omitempty"`
}

// RoomReopenedEvent announces a closed room reopening
type RoomReopenedEvent struct {
	Master  string `json:"master"`
	Message string `json:"message,omitempty"`
}

// RoomErrorEvent carries a non-fatal room-level error
type RoomErrorEvent struct {
	Err string `json:"error"`
}

// DisconnectedEvent is synthesized when the transport closes
type DisconnectedEvent struct {
	Reason string
}

func (StateChangedEvent) EventType() EventType       { return EventStateChanged }
func (RoomJoinedEvent) EventType() EventType         { return EventRoomJoined }
func (PlayerJoinedEvent) EventType() EventType       { return EventPlayerJoined }
func (PlayerLeftEvent) EventType() EventType         { return EventPlayerLeft }
func (RoomPausedEvent) EventType() EventType         { return EventRoomPaused }
func (RoomResumedEvent) EventType() EventType        { return EventRoomResumed }
func (MasterDisconnectedEvent) EventType() EventType { return EventMasterDisconnected }
func (MasterReconnectedEvent) EventType() EventType  { return EventMasterReconnected }
func (MasterConnectedEvent) EventType() EventType    { return EventMasterConnected }
func (RoomClosedEvent) EventType() EventType         { return EventRoomClosed }
func (RoomReopenedEvent) EventType() EventType       { return EventRoomReopened }
func (RoomErrorEvent) EventType() EventType          { return EventRoomError }
func (DisconnectedEvent) EventType() EventType       { return EventDisconnected }

// ParseEvent decodes a wire event into its typed form.
// Unknown event names return ErrUnknownEvent so callers can skip them;
// future server events must not break older clients.
func ParseEvent(name string, data json.RawMessage) (Event, error) {
	decode := func(v Event) (Event, error) {
		if len(data) == 0 {
			return v, nil
		}
		if err := json.Unmarshal(data, v); err != nil {
			return nil, fmt.Errorf("decoding %s payload: %w", name, err)
		}
		return v, nil
	}

	switch EventType(name) {
	case EventStateChanged:
		ev := &StateChangedEvent{}
		if len(data) > 0 {
			if err := json.Unmarshal(data, &ev.State); err != nil {
				return nil, fmt.Errorf("decoding %s payload: %w", name, err)
			}
		}
		return ev, nil
	case EventRoomJoined:
		return decode(&RoomJoinedEvent{})
	case EventPlayerJoined:
		return decode(&PlayerJoinedEvent{})
	case EventPlayerLeft:
		return decode(&PlayerLeftEvent{})
	case EventRoomPaused:
		return decode(&RoomPausedEvent{})
	case EventRoomResumed:
		return decode(&RoomResumedEvent{})
	case EventMasterDisconnected:
		return decode(&MasterDisconnectedEvent{})
	case EventMasterReconnected:
		return decode(&MasterReconnectedEvent{})
	case EventMasterConnected:
		return decode(&MasterConnectedEvent{})
	case EventRoomClosed:
		return decode(&RoomClosedEvent{})
	case EventRoomReopened:
		return decode(&RoomReopenedEvent{})
	case EventRoomError:
		return decode(&RoomErrorEvent{})
	default:
		return nil, ErrUnknownEvent
	}
}
