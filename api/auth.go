package api

import (
	"context"
	"net/http"
)

type registerReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Nickname string `json:"nickname"`
	Email    string `json:"email,omitempty"`
}

// Login authenticates and stores the returned bearer token.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	body := map[string]string{"username": username, "password": password}

	var out LoginResult
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &out); err != nil {
		return nil, err
	}
	if err := c.tokens.Save(out.AccessToken); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Register(ctx context.Context, username, password, nickname, email string) (*User, error) {
	var out User
	err := c.do(ctx, http.MethodPost, "/auth/register", &registerReq{
		Username: username,
		Password: password,
		Nickname: nickname,
		Email:    email,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout drops the stored token. Purely local, the token is stateless.
func (c *Client) Logout() error {
	return c.tokens.Clear()
}

// Me returns the authenticated user.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var out User
	if err := c.do(ctx, http.MethodGet, "/users/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
