package model

import (
	"strings"
	"time"
)

// RoomCodeLength is the fixed length of room codes
const RoomCodeLength = 6

// RoomCode is the human-readable identifier for joining rooms.
// Codes are case-insensitive and always stored uppercase.
type RoomCode string

// CanonicalRoomCode uppercases and trims a user-supplied room code
func CanonicalRoomCode(raw string) RoomCode {
	return RoomCode(strings.ToUpper(strings.TrimSpace(raw)))
}

// Valid reports whether the code has the required fixed length
func (c RoomCode) Valid() bool {
	return len(c) == RoomCodeLength
}

// PlayerRole distinguishes the master from ordinary players
type PlayerRole string

const (
	RoleMaster PlayerRole = "master"
	RolePlayer PlayerRole = "player"
)

// CharacterSelection controls how players pick characters for a room
type CharacterSelection string

const (
	CharacterSelectionPredefined CharacterSelection = "predefined"
	CharacterSelectionInRoom     CharacterSelection = "in-room"
)

// RoomPlayer represents a participant in a room
type RoomPlayer struct {
	UserID      string     `json:"userId"`
	Username    string     `json:"username"`
	Role        PlayerRole `json:"role"`
	CharacterID string     `json:"characterId,omitempty"`
	IsConnected bool       `json:"isConnected"`
	JoinedAt    time.Time  `json:"joinedAt"`
}

// Room is the server-authoritative snapshot of a room.
// It is replaced wholesale on every refresh, never mutated in place.
type Room struct {
	ID                 string             `json:"id"`
	Code               RoomCode           `json:"code"`
	MasterID           string             `json:"masterId"`
	MaxPlayers         *int               `json:"maxPlayers,omitempty"`
	CharacterSelection CharacterSelection `json:"characterSelection"`
	Paused             bool               `json:"isPaused"`
	Active             bool               `json:"isActive"`
	GameStarted        bool               `json:"gameStarted"`
	Players            []RoomPlayer       `json:"players"`
	CreatedAt          time.Time          `json:"createdAt"`
}

// GetPlayer returns the participant with the given user id, or nil
func (r *Room) GetPlayer(userID string) *RoomPlayer {
	for i := range r.Players {
		if r.Players[i].UserID == userID {
			return &r.Players[i]
		}
	}
	return nil
}

// Master returns the master participant, or nil if absent from the list
func (r *Room) Master() *RoomPlayer {
	for i := range r.Players {
		if r.Players[i].Role == RoleMaster {
			return &r.Players[i]
		}
	}
	return nil
}

// IsMaster reports whether the given user is this room's master
func (r *Room) IsMaster(userID string) bool {
	return userID != "" && r.MasterID == userID
}
