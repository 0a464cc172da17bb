package httpapi

import (
	"net/http"

	"github.com/boulin/eventverse/internal/api"
	"github.com/boulin/eventverse/internal/server/models"
	"github.com/gin-gonic/gin"
)

func (h *Handler) getUser(c *gin.Context) {
	h.respondUser(c, http.StatusOK)(h.profiles.Get(c.Request.Context(), currentUser(c)))
}

func (h *Handler) createUser(c *gin.Context) {
	var in api.UserInput
	if !h.bind(c, &in) {
		return
	}
	h.respondUser(c, http.StatusCreated)(h.profiles.Create(c.Request.Context(), currentUser(c), in))
}

func (h *Handler) updateUser(c *gin.Context) {
	var upd api.UserUpdate
	if !h.bind(c, &upd) {
		return
	}
	h.respondUser(c, http.StatusOK)(h.profiles.Update(c.Request.Context(), currentUser(c), upd))
}

func (h *Handler) deleteUser(c *gin.Context) {
	h.respondUser(c, http.StatusOK)(h.profiles.Delete(c.Request.Context(), currentUser(c)))
}

func (h *Handler) respondUser(c *gin.Context, status int) func(*models.Profile, error) {
	return func(p *models.Profile, err error) {
		if err != nil {
			h.writeError(c, err)
			return
		}
		c.JSON(status, p.ToAPI())
	}
}
