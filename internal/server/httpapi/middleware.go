package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/boulin/eventverse/internal/api"
	"github.com/boulin/eventverse/internal/common"
	"github.com/boulin/eventverse/internal/logging"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const userIDKey = "uid"

type tokenVerifier interface {
	UserIDFromAccessToken(token string) (string, error)
}

// requestID echoes the caller's X-Request-ID or assigns a new one.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(common.RequestIDHeaderName))
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(common.RequestIDHeaderName, id)
		c.Header(common.RequestIDHeaderName, id)
		c.Next()
	}
}

func accessLog(log logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		args := []any{
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", status,
			"duration", time.Since(start).String(),
			"request_id", c.GetString(common.RequestIDHeaderName),
		}
		switch {
		case status >= http.StatusInternalServerError:
			log.Error(c.Request.Context(), "request", args...)
		case status >= http.StatusBadRequest:
			log.Warn(c.Request.Context(), "request", args...)
		default:
			log.Info(c.Request.Context(), "request", args...)
		}
	}
}

// requireAuth resolves the bearer token to a user id stored under userIDKey.
func requireAuth(v tokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader(common.AuthorizationHeaderName))
		token, ok := strings.CutPrefix(header, common.BearerScheme+" ")
		if !ok || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, api.ErrorResponse{Message: "missing bearer token"})
			return
		}

		uid, err := v.UserIDFromAccessToken(strings.TrimSpace(token))
		if err != nil {
			msg := common.ErrInvalidToken.Error()
			if errors.Is(err, common.ErrTokenExpired) {
				msg = common.ErrTokenExpired.Error()
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, api.ErrorResponse{Message: msg})
			return
		}

		c.Set(userIDKey, uid)
		c.Next()
	}
}

func currentUser(c *gin.Context) string {
	return c.GetString(userIDKey)
}
