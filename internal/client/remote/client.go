package remote

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/boulin/eventverse/internal/api"
	"github.com/boulin/eventverse/internal/common"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

// DefaultTimeout bounds every request unless overridden.
const DefaultTimeout = 10 * time.Second

type Client struct {
	http *resty.Client

	mu           sync.RWMutex
	accessToken  string
	refreshToken string
	onRefresh    func(api.TokenPair)

	refreshMu sync.Mutex
}

// New returns a client for the API served at serverURL.
func New(serverURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	base := strings.TrimRight(serverURL, "/") + common.APIVersionPrefix

	c := &Client{}
	c.http = resty.New().
		SetBaseURL(base).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
			if r.Header.Get(common.RequestIDHeaderName) == "" {
				r.SetHeader(common.RequestIDHeaderName, uuid.NewString())
			}
			return nil
		})
	return c
}

// SetTokens installs a previously stored session.
func (c *Client) SetTokens(access, refresh string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accessToken = access
	c.refreshToken = refresh
}

func (c *Client) Tokens() (access, refresh string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.accessToken, c.refreshToken
}

// OnTokenRefresh registers fn to be called with every rotated token pair.
func (c *Client) OnTokenRefresh(fn func(api.TokenPair)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onRefresh = fn
}

func (c *Client) send(ctx context.Context, method, path string, body, out any, token string) (*resty.Response, error) {
	req := c.http.R().
		SetContext(ctx).
		SetError(&api.ErrorResponse{})
	if out != nil {
		req.SetResult(out)
	}
	if body != nil {
		req.SetBody(body)
	}
	if token != "" {
		req.SetAuthToken(token)
	}
	return req.Execute(method, path)
}

// call performs an authenticated request and decodes the JSON result.
func call[T any](ctx context.Context, c *Client, method, path string, body any) (T, error) {
	var out T

	token, _ := c.Tokens()
	resp, err := c.send(ctx, method, path, body, &out, token)
	if err == nil && tokenExpired(resp) {
		if rerr := c.refreshFrom(ctx, token); rerr != nil {
			return out, rerr
		}
		token, _ = c.Tokens()
		out = *new(T)
		resp, err = c.send(ctx, method, path, body, &out, token)
	}
	if err != nil {
		return out, transportError(err)
	}
	if resp.IsError() {
		return out, responseError(resp)
	}
	return out, nil
}

// anonymous performs an unauthenticated request.
func anonymous[T any](ctx context.Context, c *Client, method, path string, body any) (T, error) {
	var out T
	resp, err := c.send(ctx, method, path, body, &out, "")
	if err != nil {
		return out, transportError(err)
	}
	if resp.IsError() {
		return out, responseError(resp)
	}
	return out, nil
}

func tokenExpired(resp *resty.Response) bool {
	if resp.StatusCode() != http.StatusUnauthorized {
		return false
	}
	e, ok := resp.Error().(*api.ErrorResponse)
	return ok && e.Message == common.ErrTokenExpired.Error()
}

func responseError(resp *resty.Response) *Error {
	msg := http.StatusText(resp.StatusCode())
	if e, ok := resp.Error().(*api.ErrorResponse); ok && e.Message != "" {
		msg = e.Message
	}
	return &Error{Message: msg, StatusCode: resp.StatusCode()}
}

// refreshFrom rotates the token pair unless another caller already did so
// since stale was sent.
func (c *Client) refreshFrom(ctx context.Context, stale string) error {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	if current, _ := c.Tokens(); current != stale {
		return nil
	}
	_, err := c.Refresh(ctx)
	return err
}
