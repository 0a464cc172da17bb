package httpapi

import (
	"context"

	"github.com/boulin/eventverse/internal/api"
	"github.com/boulin/eventverse/internal/common"
	"github.com/boulin/eventverse/internal/logging"
	"github.com/boulin/eventverse/internal/server/models"
	"github.com/boulin/eventverse/internal/server/services"
	"github.com/gin-gonic/gin"
)

type AccountService interface {
	Register(ctx context.Context, email, password string) (*models.Account, error)
	Login(ctx context.Context, email, password string) (*services.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	UserIDFromAccessToken(token string) (string, error)
}

type ProfileService interface {
	Get(ctx context.Context, uid string) (*models.Profile, error)
	Create(ctx context.Context, uid string, in api.UserInput) (*models.Profile, error)
	Update(ctx context.Context, uid string, upd api.UserUpdate) (*models.Profile, error)
	Delete(ctx context.Context, uid string) (*models.Profile, error)
}

type EventService interface {
	List(ctx context.Context) ([]api.Event, error)
	Get(ctx context.Context, id string) (*models.Event, error)
	Create(ctx context.Context, uid string, in api.EventInput) (*models.Event, error)
	Update(ctx context.Context, uid, id string, in api.EventInput) (*models.Event, error)
	Delete(ctx context.Context, uid, id string) (*models.Event, error)
	Like(ctx context.Context, uid, id string) (*models.Event, error)
	Unlike(ctx context.Context, uid, id string) (*models.Event, error)
	RequestCover(ctx context.Context, uid, id string) (*api.CoverUpload, error)
}

// Handler serves the API routes on top of the services.
type Handler struct {
	accounts AccountService
	profiles ProfileService
	events   EventService
	log      logging.Logger
}

func NewHandler(accounts AccountService, profiles ProfileService, events EventService, log logging.Logger) *Handler {
	return &Handler{
		accounts: accounts,
		profiles: profiles,
		events:   events,
		log:      log.With("module", "httpapi"),
	}
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestID(), accessLog(h.log))

	r.GET("/healthz", h.health)

	v1 := r.Group(common.APIVersionPrefix)

	authGroup := v1.Group("/auth")
	authGroup.POST("/register", h.register)
	authGroup.POST("/login", h.login)
	authGroup.POST("/refresh", h.refresh)

	secured := v1.Group("", requireAuth(h.accounts))

	secured.GET("/events", h.listEvents)
	secured.POST("/events", h.createEvent)
	secured.GET("/events/:id", h.getEvent)
	secured.PATCH("/events/:id", h.updateEvent)
	secured.DELETE("/events/:id", h.deleteEvent)
	secured.POST("/events/:id/like", h.likeEvent)
	secured.DELETE("/events/:id/like", h.unlikeEvent)
	secured.POST("/events/:id/cover", h.requestCover)

	secured.GET("/user", h.getUser)
	secured.POST("/user", h.createUser)
	secured.PATCH("/user", h.updateUser)
	secured.DELETE("/user", h.deleteUser)

	return r
}
