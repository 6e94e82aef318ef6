package gameapi

import (
	"context"
	"fmt"
	"time"
)

// Character is a character sheet owned by the current user
type Character struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Sheet       map[string]any `json:"sheet,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
}

// CharactersResponse wraps the character list
type CharactersResponse struct {
	Characters []Character `json:"characters"`
}

// ListCharacters returns the user's character sheets
func (c *Client) ListCharacters(ctx context.Context) ([]Character, error) {
	var resp CharactersResponse
	if err := c.Get(ctx, "/api/characters", &resp); err != nil {
		return nil, err
	}
	return resp.Characters, nil
}

// CreateCharacter creates a new character sheet
func (c *Client) CreateCharacter(ctx context.Context, name, description string) (*Character, error) {
	req := map[string]string{
		"name":        name,
		"description": description,
	}
	var result Character
	if err := c.Post(ctx, "/api/characters", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// DeleteCharacter removes a character sheet
func (c *Client) DeleteCharacter(ctx context.Context, id string) error {
	return c.Delete(ctx, fmt.Sprintf("/api/characters/%s", id))
}
