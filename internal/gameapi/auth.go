package gameapi

import "context"

// User is the authenticated account
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// AuthResult combines the account and its bearer credential
type AuthResult struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// Register creates a new account and returns its credential
func (c *Client) Register(ctx context.Context, username, password string) (*AuthResult, error) {
	req := map[string]string{
		"username": username,
		"password": password,
	}
	var result AuthResult
	if err := c.Post(ctx, "/api/auth/register", req, &result); err != nil {
		return nil, err
	}
	c.SetToken(result.Token)
	return &result, nil
}

// Login authenticates an existing account and returns its credential
func (c *Client) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	req := map[string]string{
		"username": username,
		"password": password,
	}
	var result AuthResult
	if err := c.Post(ctx, "/api/auth/login", req, &result); err != nil {
		return nil, err
	}
	c.SetToken(result.Token)
	return &result, nil
}

// Me returns the account behind the current credential
func (c *Client) Me(ctx context.Context) (*User, error) {
	var result User
	if err := c.Get(ctx, "/api/auth/me", &result); err != nil {
		return nil, err
	}
	return &result, nil
}
