package remote

import (
	"context"
	"io"
	"net/http"
	"net/url"

	"github.com/boulin/eventverse/internal/api"
)

func eventPath(id string) string {
	return "/events/" + url.PathEscape(id)
}

func (c *Client) GetAllEvents(ctx context.Context) ([]api.Event, error) {
	return call[[]api.Event](ctx, c, http.MethodGet, "/events", nil)
}

func (c *Client) GetEvent(ctx context.Context, id string) (*api.Event, error) {
	return eventCall(ctx, c, http.MethodGet, eventPath(id), nil)
}

func (c *Client) CreateEvent(ctx context.Context, in api.EventInput) (*api.Event, error) {
	return eventCall(ctx, c, http.MethodPost, "/events", in)
}

func (c *Client) UpdateEvent(ctx context.Context, id string, in api.EventInput) (*api.Event, error) {
	return eventCall(ctx, c, http.MethodPatch, eventPath(id), in)
}

// DeleteEvent returns the event as it was before deletion.
func (c *Client) DeleteEvent(ctx context.Context, id string) (*api.Event, error) {
	return eventCall(ctx, c, http.MethodDelete, eventPath(id), nil)
}

func (c *Client) LikeEvent(ctx context.Context, id string) (*api.Event, error) {
	return eventCall(ctx, c, http.MethodPost, eventPath(id)+"/like", nil)
}

func (c *Client) UnlikeEvent(ctx context.Context, id string) (*api.Event, error) {
	return eventCall(ctx, c, http.MethodDelete, eventPath(id)+"/like", nil)
}

func (c *Client) RequestCoverUpload(ctx context.Context, id string) (*api.CoverUpload, error) {
	up, err := call[api.CoverUpload](ctx, c, http.MethodPost, eventPath(id)+"/cover", nil)
	if err != nil {
		return nil, err
	}
	return &up, nil
}

// UploadCover PUTs the image to a presigned URL. The request carries no API
// credentials.
func (c *Client) UploadCover(ctx context.Context, presignedURL, contentType string, body io.Reader) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", contentType).
		SetBody(body).
		Put(presignedURL)
	if err != nil {
		return transportError(err)
	}
	if resp.IsError() {
		return &Error{Message: http.StatusText(resp.StatusCode()), StatusCode: resp.StatusCode()}
	}
	return nil
}

func eventCall(ctx context.Context, c *Client, method, path string, body any) (*api.Event, error) {
	e, err := call[api.Event](ctx, c, method, path, body)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
