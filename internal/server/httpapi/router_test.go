package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/boulin/eventverse/internal/api"
	"github.com/boulin/eventverse/internal/common"
	"github.com/boulin/eventverse/internal/logging"
	"github.com/boulin/eventverse/internal/server/models"
	"github.com/boulin/eventverse/internal/server/services"
	"github.com/boulin/eventverse/internal/timex"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubAccounts struct {
	registerErr error
	loginErr    error
	refreshErr  error
	gotEmail    string
}

func (s *stubAccounts) Register(_ context.Context, email, _ string) (*models.Account, error) {
	s.gotEmail = email
	if s.registerErr != nil {
		return nil, s.registerErr
	}
	return &models.Account{ID: "u1", Email: email}, nil
}

func (s *stubAccounts) Login(context.Context, string, string) (*services.TokenPair, error) {
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	return &services.TokenPair{AccessToken: "access", RefreshToken: "refresh", UserID: "u1"}, nil
}

func (s *stubAccounts) RefreshToken(_ context.Context, token string) (*services.TokenPair, error) {
	if s.refreshErr != nil {
		return nil, s.refreshErr
	}
	return &services.TokenPair{AccessToken: "access2", RefreshToken: token + "2", UserID: "u1"}, nil
}

// UserIDFromAccessToken accepts "good-<uid>" and reports "expired" as
// expired.
func (s *stubAccounts) UserIDFromAccessToken(token string) (string, error) {
	switch {
	case token == "expired":
		return "", common.ErrTokenExpired
	case len(token) > 5 && token[:5] == "good-":
		return token[5:], nil
	default:
		return "", common.ErrInvalidToken
	}
}

type stubProfiles struct {
	profile *models.Profile
	err     error
	gotUID  string
	gotIn   api.UserInput
	gotUpd  api.UserUpdate
}

func (s *stubProfiles) result(uid string) (*models.Profile, error) {
	s.gotUID = uid
	if s.err != nil {
		return nil, s.err
	}
	return s.profile, nil
}

func (s *stubProfiles) Get(_ context.Context, uid string) (*models.Profile, error) {
	return s.result(uid)
}

func (s *stubProfiles) Create(_ context.Context, uid string, in api.UserInput) (*models.Profile, error) {
	s.gotIn = in
	return s.result(uid)
}

func (s *stubProfiles) Update(_ context.Context, uid string, upd api.UserUpdate) (*models.Profile, error) {
	s.gotUpd = upd
	return s.result(uid)
}

func (s *stubProfiles) Delete(_ context.Context, uid string) (*models.Profile, error) {
	return s.result(uid)
}

type stubEvents struct {
	list   []api.Event
	event  *models.Event
	err    error
	calls  []string
	gotIn  api.EventInput
	upload *api.CoverUpload
}

func (s *stubEvents) record(op, uid, id string) (*models.Event, error) {
	s.calls = append(s.calls, fmt.Sprintf("%s %s %s", op, uid, id))
	if s.err != nil {
		return nil, s.err
	}
	return s.event, nil
}

func (s *stubEvents) List(context.Context) ([]api.Event, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.list, nil
}

func (s *stubEvents) Get(_ context.Context, id string) (*models.Event, error) {
	return s.record("get", "", id)
}

func (s *stubEvents) Create(_ context.Context, uid string, in api.EventInput) (*models.Event, error) {
	s.gotIn = in
	return s.record("create", uid, "")
}

func (s *stubEvents) Update(_ context.Context, uid, id string, in api.EventInput) (*models.Event, error) {
	s.gotIn = in
	return s.record("update", uid, id)
}

func (s *stubEvents) Delete(_ context.Context, uid, id string) (*models.Event, error) {
	return s.record("delete", uid, id)
}

func (s *stubEvents) Like(_ context.Context, uid, id string) (*models.Event, error) {
	return s.record("like", uid, id)
}

func (s *stubEvents) Unlike(_ context.Context, uid, id string) (*models.Event, error) {
	return s.record("unlike", uid, id)
}

func (s *stubEvents) RequestCover(_ context.Context, uid, id string) (*api.CoverUpload, error) {
	s.calls = append(s.calls, fmt.Sprintf("cover %s %s", uid, id))
	if s.err != nil {
		return nil, s.err
	}
	return s.upload, nil
}

type fixture struct {
	accounts *stubAccounts
	profiles *stubProfiles
	events   *stubEvents
	router   *gin.Engine
}

func newFixture() *fixture {
	f := &fixture{accounts: &stubAccounts{}, profiles: &stubProfiles{}, events: &stubEvents{}}
	f.router = NewRouter(NewHandler(f.accounts, f.profiles, f.events, logging.Nop{}))
	return f
}

func (f *fixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerScheme+" "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func concert() *models.Event {
	start := time.Date(2026, 7, 1, 20, 0, 0, 0, time.UTC)
	return &models.Event{
		ID:        "e1",
		Title:     "Concert",
		StartDate: start,
		EndDate:   start.Add(2 * time.Hour),
		Creator:   "u1",
		Liked:     []string{"u2"},
	}
}

func TestHealthz(t *testing.T) {
	f := newFixture()
	w := f.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(common.RequestIDHeaderName))
}

func TestRequestID_Echoed(t *testing.T) {
	f := newFixture()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(common.RequestIDHeaderName, "req-42")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	assert.Equal(t, "req-42", w.Header().Get(common.RequestIDHeaderName))
}

func TestAuth_Routes(t *testing.T) {
	t.Run("register", func(t *testing.T) {
		f := newFixture()
		w := f.do(t, http.MethodPost, "/v1/auth/register", "", api.Credentials{Email: "ada@example.com", Password: "correct horse"})
		require.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, api.Account{UID: "u1", Email: "ada@example.com"}, decode[api.Account](t, w))
		assert.Equal(t, "ada@example.com", f.accounts.gotEmail)
	})

	t.Run("register conflict", func(t *testing.T) {
		f := newFixture()
		f.accounts.registerErr = fmt.Errorf("%w: email already registered", common.ErrorConflict)
		w := f.do(t, http.MethodPost, "/v1/auth/register", "", api.Credentials{Email: "ada@example.com", Password: "x"})
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, decode[api.ErrorResponse](t, w).Message, "email already registered")
	})

	t.Run("login", func(t *testing.T) {
		f := newFixture()
		w := f.do(t, http.MethodPost, "/v1/auth/login", "", api.Credentials{Email: "ada@example.com", Password: "pw"})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, api.TokenPair{AccessToken: "access", RefreshToken: "refresh", UID: "u1"}, decode[api.TokenPair](t, w))
	})

	t.Run("login rejected", func(t *testing.T) {
		f := newFixture()
		f.accounts.loginErr = common.ErrorUnauthorized
		w := f.do(t, http.MethodPost, "/v1/auth/login", "", api.Credentials{})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("refresh", func(t *testing.T) {
		f := newFixture()
		w := f.do(t, http.MethodPost, "/v1/auth/refresh", "", api.RefreshRequest{RefreshToken: "r"})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "r2", decode[api.TokenPair](t, w).RefreshToken)
	})

	t.Run("refresh expired", func(t *testing.T) {
		f := newFixture()
		f.accounts.refreshErr = common.ErrRefreshTokenExpired
		w := f.do(t, http.MethodPost, "/v1/auth/refresh", "", api.RefreshRequest{RefreshToken: "r"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, common.ErrRefreshTokenExpired.Error(), decode[api.ErrorResponse](t, w).Message)
	})

	t.Run("malformed body", func(t *testing.T) {
		f := newFixture()
		w := f.do(t, http.MethodPost, "/v1/auth/login", "", "{")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestRequireAuth(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		status  int
		message string
	}{
		{"missing", "", http.StatusUnauthorized, "missing bearer token"},
		{"invalid", "garbage", http.StatusUnauthorized, "invalid token"},
		{"expired", "expired", http.StatusUnauthorized, "token expired"},
		{"valid", "good-u1", http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.events.list = []api.Event{}
			w := f.do(t, http.MethodGet, "/v1/events", tt.token, nil)
			assert.Equal(t, tt.status, w.Code)
			if tt.message != "" {
				assert.Equal(t, tt.message, decode[api.ErrorResponse](t, w).Message)
			}
		})
	}
}

func TestEvents_Routes(t *testing.T) {
	f := newFixture()
	f.events.event = concert()
	f.events.list = []api.Event{concert().ToAPI()}

	w := f.do(t, http.MethodGet, "/v1/events", "good-u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[[]api.Event](t, w)
	require.Len(t, list, 1)
	assert.Equal(t, "Concert", list[0].Title)

	w = f.do(t, http.MethodGet, "/v1/events/e1", "good-u2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[api.Event](t, w)
	assert.Equal(t, []string{"u2"}, got.Liked)
	assert.True(t, got.StartDate.Equal(concert().StartDate))

	in := api.EventInput{Title: "Concert", StartDate: timex.NewMillis(concert().StartDate), EndDate: timex.NewMillis(concert().EndDate), Target: api.AudienceChildren}
	w = f.do(t, http.MethodPost, "/v1/events", "good-u1", in)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, api.AudienceChildren, f.events.gotIn.Target)

	assert.Equal(t, http.StatusOK, f.do(t, http.MethodPatch, "/v1/events/e1", "good-u1", in).Code)
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodDelete, "/v1/events/e1", "good-u1", nil).Code)
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/v1/events/e1/like", "good-u2", nil).Code)
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodDelete, "/v1/events/e1/like", "good-u2", nil).Code)

	assert.Equal(t, []string{
		"get  e1",
		"create u1 ",
		"update u1 e1",
		"delete u1 e1",
		"like u2 e1",
		"unlike u2 e1",
	}, f.events.calls)
}

func TestEvents_Cover(t *testing.T) {
	f := newFixture()
	f.events.upload = &api.CoverUpload{URL: "http://s3/put", Key: "events/e1/k", PublicURL: "http://cdn/events/e1/k"}

	w := f.do(t, http.MethodPost, "/v1/events/e1/cover", "good-u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, *f.events.upload, decode[api.CoverUpload](t, w))
}

func TestEvents_ErrorMapping(t *testing.T) {
	tests := []struct {
		err     error
		status  int
		message string
	}{
		{fmt.Errorf("%w: title is required", common.ErrorValidation), http.StatusBadRequest, "validation error: title is required"},
		{fmt.Errorf("%w: only the creator can change this event", common.ErrorForbidden), http.StatusForbidden, "forbidden: only the creator can change this event"},
		{common.ErrorNotFound, http.StatusNotFound, "not found"},
		{common.ErrorConflict, http.StatusConflict, "already exists"},
		{errors.New("pq: connection reset"), http.StatusInternalServerError, "internal error"},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			f := newFixture()
			f.events.err = tt.err
			w := f.do(t, http.MethodPatch, "/v1/events/e1", "good-u1", api.EventInput{})
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.message, decode[api.ErrorResponse](t, w).Message)
		})
	}
}

func TestUser_Routes(t *testing.T) {
	f := newFixture()
	f.profiles.profile = &models.Profile{UID: "u1", IsOrganizer: true, Name: "Ada", Preferences: api.DefaultPreferences()}

	w := f.do(t, http.MethodGet, "/v1/user", "good-u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	u := decode[api.User](t, w)
	assert.Equal(t, "Ada", u.Name)
	assert.Equal(t, []string{}, u.CreatedEvents)
	assert.Equal(t, "u1", f.profiles.gotUID)

	code := "letmein"
	w = f.do(t, http.MethodPost, "/v1/user", "good-u1", api.UserInput{IsOrganizer: true, OrganizerCode: &code})
	assert.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, f.profiles.gotIn.OrganizerCode)
	assert.Equal(t, "letmein", *f.profiles.gotIn.OrganizerCode)

	name := "Grace"
	w = f.do(t, http.MethodPatch, "/v1/user", "good-u1", api.UserUpdate{Name: &name})
	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, f.profiles.gotUpd.Name)
	assert.Nil(t, f.profiles.gotUpd.Preferences)

	assert.Equal(t, http.StatusOK, f.do(t, http.MethodDelete, "/v1/user", "good-u1", nil).Code)
}

func TestUser_NotCreated(t *testing.T) {
	f := newFixture()
	f.profiles.err = common.ErrorNotFound

	w := f.do(t, http.MethodGet, "/v1/user", "good-u9", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	f.profiles.err = fmt.Errorf("%w: invalid organizer code", common.ErrorForbidden)
	w = f.do(t, http.MethodPost, "/v1/user", "good-u9", api.UserInput{IsOrganizer: true})
	assert.Equal(t, http.StatusForbidden, w.Code)
}
