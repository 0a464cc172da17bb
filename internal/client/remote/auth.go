package remote

import (
	"context"
	"net/http"

	"github.com/boulin/eventverse/internal/api"
)

func (c *Client) Register(ctx context.Context, email, password string) (*api.Account, error) {
	acc, err := anonymous[api.Account](ctx, c, http.MethodPost, "/auth/register",
		api.Credentials{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	return &acc, nil
}

// Login authenticates and keeps the returned tokens for later calls.
func (c *Client) Login(ctx context.Context, email, password string) (*api.TokenPair, error) {
	pair, err := anonymous[api.TokenPair](ctx, c, http.MethodPost, "/auth/login",
		api.Credentials{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	c.SetTokens(pair.AccessToken, pair.RefreshToken)
	return &pair, nil
}

// Refresh exchanges the stored refresh token for a new pair.
func (c *Client) Refresh(ctx context.Context) (*api.TokenPair, error) {
	_, refresh := c.Tokens()
	if refresh == "" {
		return nil, &Error{Message: "not logged in", StatusCode: http.StatusUnauthorized}
	}

	pair, err := anonymous[api.TokenPair](ctx, c, http.MethodPost, "/auth/refresh",
		api.RefreshRequest{RefreshToken: refresh})
	if err != nil {
		return nil, err
	}
	c.SetTokens(pair.AccessToken, pair.RefreshToken)

	c.mu.RLock()
	hook := c.onRefresh
	c.mu.RUnlock()
	if hook != nil {
		hook(pair)
	}
	return &pair, nil
}
