package services

import (
	"context"
	"net/http"

	"github.com/boulin/eventverse/internal/api"
	"github.com/boulin/eventverse/internal/client/live"
	"github.com/boulin/eventverse/internal/client/netbound"
	"github.com/boulin/eventverse/internal/client/repositories/users"
	"github.com/boulin/eventverse/internal/client/resource"
)

// UserService gives cached access to the signed-in user's profile. The
// profile is fetched when it is not cached or when force is set; it has no
// staleness window.
type UserService interface {
	GetUser(ctx context.Context, force bool) <-chan resource.Resource[*api.User]
	CreateUser(ctx context.Context, in api.UserInput) <-chan resource.Resource[*api.User]
	UpdateUser(ctx context.Context, in api.UserUpdate) <-chan resource.Resource[*api.User]
	DeleteUser(ctx context.Context) <-chan resource.Resource[*api.User]
}

// UserClient is the part of the API client used for the profile.
type UserClient interface {
	GetUser(ctx context.Context) (*api.User, error)
	CreateUser(ctx context.Context, in api.UserInput) (*api.User, error)
	UpdateUser(ctx context.Context, in api.UserUpdate) (*api.User, error)
	DeleteUser(ctx context.Context) (*api.User, error)
}

// Session tells which user is signed in.
type Session interface {
	CurrentUserID() string
}

type userService struct {
	engine  *netbound.Engine
	client  UserClient
	repo    users.Repository
	session Session
}

func NewUserService(engine *netbound.Engine, client UserClient, repo users.Repository, session Session) UserService {
	return &userService{engine: engine, client: client, repo: repo, session: session}
}

func (s *userService) GetUser(ctx context.Context, force bool) <-chan resource.Resource[*api.User] {
	uid := s.session.CurrentUserID()
	if uid == "" {
		return notLoggedIn[*api.User]()
	}

	return netbound.Fetch(ctx, s.engine, netbound.Query[*api.User]{
		Topic: live.TopicUsers,
		Local: func(ctx context.Context) (*api.User, error) {
			return s.repo.GetByID(ctx, uid)
		},
		ShouldFetch: func(_ context.Context, cached *api.User) (bool, error) {
			return cached == nil || force, nil
		},
		Remote: s.client.GetUser,
		Save:   s.repo.Upsert,
		Shared: "user:" + uid,
	})
}

func (s *userService) mutate(ctx context.Context, call func(context.Context) (*api.User, error), save func(context.Context, *api.User) error) <-chan resource.Resource[*api.User] {
	return netbound.Mutate(ctx, s.engine, netbound.Mutation[*api.User]{
		Topic:  live.TopicUsers,
		Remote: call,
		Save:   save,
		Local: func(ctx context.Context, u *api.User) (*api.User, error) {
			return s.repo.GetByID(ctx, u.UID)
		},
	})
}

func (s *userService) CreateUser(ctx context.Context, in api.UserInput) <-chan resource.Resource[*api.User] {
	return s.mutate(ctx, func(ctx context.Context) (*api.User, error) {
		return s.client.CreateUser(ctx, in)
	}, s.repo.Upsert)
}

func (s *userService) UpdateUser(ctx context.Context, in api.UserUpdate) <-chan resource.Resource[*api.User] {
	return s.mutate(ctx, func(ctx context.Context) (*api.User, error) {
		return s.client.UpdateUser(ctx, in)
	}, s.repo.Upsert)
}

func (s *userService) DeleteUser(ctx context.Context) <-chan resource.Resource[*api.User] {
	return s.mutate(ctx, s.client.DeleteUser, func(ctx context.Context, u *api.User) error {
		return s.repo.DeleteByID(ctx, u.UID)
	})
}

// notLoggedIn is a finished stream: Loading, then a 401 Error.
func notLoggedIn[T any]() <-chan resource.Resource[T] {
	ch := make(chan resource.Resource[T], 2)
	ch <- resource.Loading[T]()
	ch <- resource.Error[T]("not logged in", http.StatusUnauthorized)
	close(ch)
	return ch
}
