package remote

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/boulin/eventverse/internal/api"
	"github.com/boulin/eventverse/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func newServer(t *testing.T, h http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL, 2*time.Second), srv
}

func TestGetAllEvents_SendsBearerAndRequestID(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/events", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer acc-1", r.Header.Get(common.AuthorizationHeaderName))
		assert.NotEmpty(t, r.Header.Get(common.RequestIDHeaderName))
		writeJSON(w, http.StatusOK, []map[string]any{
			{"id": "e1", "title": "Concert", "startDate": 1773500966535, "target": "2"},
		})
	})
	c, _ := newServer(t, mux)
	c.SetTokens("acc-1", "ref-1")

	got, err := c.GetAllEvents(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "e1", got[0].ID)
	assert.Equal(t, api.AudienceTeenager, got[0].Target)
	assert.Equal(t, int64(1773500966535), got[0].StartDate.UnixMilli())
}

func TestCall_MapsServerErrorMessageAndStatus(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/events/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, api.ErrorResponse{Message: "event not found"})
	})
	c, _ := newServer(t, mux)

	_, err := c.GetEvent(context.Background(), "nope")
	require.Error(t, err)

	var re *Error
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "event not found", re.Message)
	assert.Equal(t, http.StatusNotFound, re.StatusCode)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestCall_NonJSONErrorUsesStatusText(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/user", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	})
	c, _ := newServer(t, mux)

	_, err := c.GetUser(context.Background())
	var re *Error
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "Bad Gateway", re.Message)
	assert.Equal(t, http.StatusBadGateway, re.StatusCode)
	assert.ErrorIs(t, err, common.ErrorInternal)
}

func TestCall_TransportFailureHasZeroStatus(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	c := New(srv.URL, time.Second)
	srv.Close()

	_, err := c.GetAllEvents(context.Background())
	var re *Error
	require.ErrorAs(t, err, &re)
	assert.Equal(t, 0, re.StatusCode)
	assert.NotEmpty(t, re.Message)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestCall_RefreshesExpiredTokenOnceAndRetries(t *testing.T) {
	var refreshes atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/user", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(common.AuthorizationHeaderName) != "Bearer acc-2" {
			writeJSON(w, http.StatusUnauthorized, api.ErrorResponse{Message: common.ErrTokenExpired.Error()})
			return
		}
		writeJSON(w, http.StatusOK, api.User{UID: "u1", Name: "Ada"})
	})
	mux.HandleFunc("POST /v1/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshes.Add(1)
		var req api.RefreshRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "ref-1", req.RefreshToken)
		assert.Empty(t, r.Header.Get(common.AuthorizationHeaderName))
		writeJSON(w, http.StatusOK, api.TokenPair{AccessToken: "acc-2", RefreshToken: "ref-2", UID: "u1"})
	})
	c, _ := newServer(t, mux)
	c.SetTokens("acc-1", "ref-1")

	var rotated api.TokenPair
	c.OnTokenRefresh(func(p api.TokenPair) { rotated = p })

	u, err := c.GetUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Ada", u.Name)
	assert.Equal(t, int32(1), refreshes.Load())
	assert.Equal(t, "ref-2", rotated.RefreshToken)

	access, refresh := c.Tokens()
	assert.Equal(t, "acc-2", access)
	assert.Equal(t, "ref-2", refresh)
}

func TestCall_OtherUnauthorizedIsNotRetried(t *testing.T) {
	var refreshes atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/events", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, api.ErrorResponse{Message: "invalid token"})
	})
	mux.HandleFunc("POST /v1/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshes.Add(1)
	})
	c, _ := newServer(t, mux)
	c.SetTokens("bad", "ref")

	_, err := c.GetAllEvents(context.Background())
	require.ErrorIs(t, err, common.ErrorUnauthorized)
	assert.Zero(t, refreshes.Load())
}

func TestCall_RefreshFailureIsReturned(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/events", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, api.ErrorResponse{Message: common.ErrTokenExpired.Error()})
	})
	mux.HandleFunc("POST /v1/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, api.ErrorResponse{Message: common.ErrRefreshTokenExpired.Error()})
	})
	c, _ := newServer(t, mux)
	c.SetTokens("old", "old-ref")

	_, err := c.GetAllEvents(context.Background())
	var re *Error
	require.ErrorAs(t, err, &re)
	assert.Equal(t, common.ErrRefreshTokenExpired.Error(), re.Message)
}

func TestLogin_StoresTokens(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var cr api.Credentials
		require.NoError(t, json.NewDecoder(r.Body).Decode(&cr))
		if cr.Password != "correct horse" {
			writeJSON(w, http.StatusUnauthorized, api.ErrorResponse{Message: "invalid credentials"})
			return
		}
		writeJSON(w, http.StatusOK, api.TokenPair{AccessToken: "a", RefreshToken: "r", UID: "u9"})
	})
	c, _ := newServer(t, mux)

	_, err := c.Login(context.Background(), "ada@example.com", "wrong")
	require.ErrorIs(t, err, common.ErrorUnauthorized)

	pair, err := c.Login(context.Background(), "ada@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, "u9", pair.UID)
	access, refresh := c.Tokens()
	assert.Equal(t, "a", access)
	assert.Equal(t, "r", refresh)
}

func TestRegister(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/auth/register", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, api.Account{UID: "u1", Email: "ada@example.com"})
	})
	c, _ := newServer(t, mux)

	acc, err := c.Register(context.Background(), "ada@example.com", "long enough")
	require.NoError(t, err)
	assert.Equal(t, "u1", acc.UID)
}

func TestRefresh_WithoutSession(t *testing.T) {
	c := New("http://127.0.0.1:1", time.Second)
	_, err := c.Refresh(context.Background())
	require.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestMutations_UseExpectedRoutes(t *testing.T) {
	var seen []string
	mux := http.NewServeMux()
	handler := func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Method+" "+r.URL.Path)
		writeJSON(w, http.StatusOK, api.Event{ID: "e1"})
	}
	mux.HandleFunc("/v1/events", handler)
	mux.HandleFunc("/v1/events/", handler)
	c, _ := newServer(t, mux)
	ctx := context.Background()

	_, err := c.CreateEvent(ctx, api.EventInput{Title: "t"})
	require.NoError(t, err)
	_, err = c.UpdateEvent(ctx, "e1", api.EventInput{Title: "t"})
	require.NoError(t, err)
	_, err = c.DeleteEvent(ctx, "e1")
	require.NoError(t, err)
	_, err = c.LikeEvent(ctx, "e1")
	require.NoError(t, err)
	_, err = c.UnlikeEvent(ctx, "e1")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"POST /v1/events",
		"PATCH /v1/events/e1",
		"DELETE /v1/events/e1",
		"POST /v1/events/e1/like",
		"DELETE /v1/events/e1/like",
	}, seen)
}

func TestUploadCover_PutsWithoutCredentials(t *testing.T) {
	var got []byte
	storage := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Empty(t, r.Header.Get(common.AuthorizationHeaderName))
		assert.Equal(t, "image/png", r.Header.Get("Content-Type"))
		got, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer storage.Close()

	c := New("http://api.invalid", time.Second)
	c.SetTokens("secret", "r")

	err := c.UploadCover(context.Background(), storage.URL+"/covers/e1.png", "image/png", strings.NewReader("PNGDATA"))
	require.NoError(t, err)
	assert.Equal(t, "PNGDATA", string(got))
}

func TestError_Formatting(t *testing.T) {
	assert.Equal(t, "dial tcp: refused", (&Error{Message: "dial tcp: refused"}).Error())
	assert.Equal(t, "nope (HTTP 403)", (&Error{Message: "nope", StatusCode: 403}).Error())
	assert.False(t, errors.Is(&Error{StatusCode: 418}, common.ErrorInternal))
}
