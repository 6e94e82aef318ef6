package model

import "errors"

// Common errors used across the application
var (
	// Connection errors
	ErrNoCredential = errors.New("no credential available")
	ErrNotConnected = errors.New("not connected to a room")

	// Room errors
	ErrInvalidRoomCode = errors.New("room code must be 6 characters")
	ErrRoomNotFound    = errors.New("room not found")
	ErrNotMaster       = errors.New("only the master may do this")

	// Event errors
	ErrUnknownEvent = errors.New("unknown event name")
)
