package httpapi

import (
	"errors"
	"net/http"

	"github.com/boulin/eventverse/internal/api"
	"github.com/boulin/eventverse/internal/common"
	"github.com/gin-gonic/gin"
)

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, common.ErrorValidation):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrRefreshTokenExpired):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrorForbidden):
		return http.StatusForbidden
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrorConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError answers with the status for err. Internal failures are
// logged and reported without detail.
func (h *Handler) writeError(c *gin.Context, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		h.log.Error(c.Request.Context(), "request failed",
			"path", c.FullPath(), "error", err, "request_id", c.GetString(common.RequestIDHeaderName))
		msg = common.ErrorInternal.Error()
	}
	c.AbortWithStatusJSON(status, api.ErrorResponse{Message: msg})
}

func (h *Handler) bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, api.ErrorResponse{Message: "invalid request body: " + err.Error()})
		return false
	}
	return true
}
