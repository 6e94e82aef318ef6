package gameapi

import (
	"context"
	"fmt"
	"time"

	"github.com/avorobev/fableroom/internal/model"
)

// RoomSave is a saved room session that can be restored later
type RoomSave struct {
	ID          string         `json:"id"`
	RoomCode    model.RoomCode `json:"roomCode"`
	MasterID    string         `json:"masterId"`
	Players     []string       `json:"players"`
	GameStarted bool           `json:"gameStarted"`
	CreatedAt   time.Time      `json:"createdAt"`
}

// HistoryResponse wraps the list of saves
type HistoryResponse struct {
	Snapshots []RoomSave `json:"snapshots"`
}

// RoomHistory lists the user's saved rooms
func (c *Client) RoomHistory(ctx context.Context) ([]RoomSave, error) {
	var resp HistoryResponse
	if err := c.Get(ctx, "/api/rooms/history", &resp); err != nil {
		return nil, err
	}
	return resp.Snapshots, nil
}

// RestoreRoom recreates a room from a save and returns its fresh code
func (c *Client) RestoreRoom(ctx context.Context, saveID string) (model.RoomCode, error) {
	var resp struct {
		RoomCode model.RoomCode `json:"roomCode"`
	}
	if err := c.Post(ctx, fmt.Sprintf("/api/rooms/saves/%s/restore", saveID), nil, &resp); err != nil {
		return "", err
	}
	return model.CanonicalRoomCode(string(resp.RoomCode)), nil
}

// GetSave fetches a single save
func (c *Client) GetSave(ctx context.Context, saveID string) (*RoomSave, error) {
	var result RoomSave
	if err := c.Get(ctx, fmt.Sprintf("/api/rooms/saves/%s", saveID), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// DeleteSave removes a save
func (c *Client) DeleteSave(ctx context.Context, saveID string) error {
	return c.Delete(ctx, fmt.Sprintf("/api/rooms/saves/%s", saveID))
}
