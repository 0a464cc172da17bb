package remote

import (
	"context"
	"net/http"

	"github.com/boulin/eventverse/internal/api"
)

func (c *Client) GetUser(ctx context.Context) (*api.User, error) {
	return userCall(ctx, c, http.MethodGet, nil)
}

func (c *Client) CreateUser(ctx context.Context, in api.UserInput) (*api.User, error) {
	return userCall(ctx, c, http.MethodPost, in)
}

func (c *Client) UpdateUser(ctx context.Context, in api.UserUpdate) (*api.User, error) {
	return userCall(ctx, c, http.MethodPatch, in)
}

func (c *Client) DeleteUser(ctx context.Context) (*api.User, error) {
	return userCall(ctx, c, http.MethodDelete, nil)
}

func userCall(ctx context.Context, c *Client, method string, body any) (*api.User, error) {
	u, err := call[api.User](ctx, c, method, "/user", body)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
