package gameapi

import (
	"context"
	"fmt"

	"github.com/avorobev/fableroom/internal/model"
)

// RoomSettings are the options for creating a room
type RoomSettings struct {
	MaxPlayers         *int                     `json:"maxPlayers,omitempty"`
	CharacterSelection model.CharacterSelection `json:"characterSelection,omitempty"`
}

// RoomResponse wraps a room snapshot
type RoomResponse struct {
	Room model.Room `json:"room"`
}

// JoinResponse is returned when joining a room
type JoinResponse struct {
	Room   model.Room       `json:"room"`
	Player model.RoomPlayer `json:"player"`
}

// PauseResponse confirms a pause/resume command
type PauseResponse struct {
	Success bool `json:"success"`
	Paused  bool `json:"paused"`
}

// CreateRoom creates a new room with the caller as master
func (c *Client) CreateRoom(ctx context.Context, settings RoomSettings) (*model.Room, error) {
	if settings.CharacterSelection == "" {
		settings.CharacterSelection = model.CharacterSelectionPredefined
	}

	var resp RoomResponse
	if err := c.Post(ctx, "/api/rooms/create", settings, &resp); err != nil {
		return nil, err
	}
	return &resp.Room, nil
}

// JoinRoom joins an existing room, optionally with a pre-selected character.
// The code is canonicalized before transmission.
func (c *Client) JoinRoom(ctx context.Context, code model.RoomCode, characterID string) (*JoinResponse, error) {
	code = model.CanonicalRoomCode(string(code))
	if !code.Valid() {
		return nil, model.ErrInvalidRoomCode
	}

	req := map[string]string{"code": string(code)}
	if characterID != "" {
		req["characterId"] = characterID
	}

	var resp JoinResponse
	if err := c.Post(ctx, "/api/rooms/join", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetRoomInfo fetches the authoritative room snapshot
func (c *Client) GetRoomInfo(ctx context.Context, code model.RoomCode) (*model.Room, error) {
	code = model.CanonicalRoomCode(string(code))
	if !code.Valid() {
		return nil, model.ErrInvalidRoomCode
	}

	var resp RoomResponse
	if err := c.Get(ctx, fmt.Sprintf("/api/rooms/%s", code), &resp); err != nil {
		return nil, err
	}
	return &resp.Room, nil
}

// PauseRoom pauses or resumes the room. Master only; the server enforces it.
func (c *Client) PauseRoom(ctx context.Context, code model.RoomCode, paused bool) error {
	code = model.CanonicalRoomCode(string(code))
	req := map[string]bool{"paused": paused}
	return c.Post(ctx, fmt.Sprintf("/api/rooms/%s/pause", code), req, nil)
}

// StartGame starts the room's game. Master only; the server enforces it.
func (c *Client) StartGame(ctx context.Context, code model.RoomCode) error {
	code = model.CanonicalRoomCode(string(code))
	return c.Post(ctx, fmt.Sprintf("/api/rooms/%s/start", code), nil, nil)
}
