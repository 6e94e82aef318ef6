package model

import "time"

// GamePlayer is a player entry inside the live game state
type GamePlayer struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	LocationID string `json:"locationId,omitempty"`
}

// Location is a node in the game's location graph
type Location struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Connections []string `json:"connections,omitempty"`
}

// GameLogEntry is one line of the game's event log
type GameLogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Text      string    `json:"text"`
}

// GameState is the live, high-frequency authoritative game payload.
// The server pushes the whole thing on every change; the client never diffs.
type GameState struct {
	Players   []GamePlayer   `json:"players"`
	Locations []Location     `json:"locations"`
	Log       []GameLogEntry `json:"log,omitempty"`
}
