package httpapi

import (
	"net/http"

	"github.com/boulin/eventverse/internal/api"
	"github.com/boulin/eventverse/internal/server/models"
	"github.com/gin-gonic/gin"
)

func (h *Handler) listEvents(c *gin.Context) {
	events, err := h.events.List(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, events)
}

func (h *Handler) getEvent(c *gin.Context) {
	h.respondEvent(c, http.StatusOK)(h.events.Get(c.Request.Context(), c.Param("id")))
}

func (h *Handler) createEvent(c *gin.Context) {
	var in api.EventInput
	if !h.bind(c, &in) {
		return
	}
	h.respondEvent(c, http.StatusCreated)(h.events.Create(c.Request.Context(), currentUser(c), in))
}

func (h *Handler) updateEvent(c *gin.Context) {
	var in api.EventInput
	if !h.bind(c, &in) {
		return
	}
	h.respondEvent(c, http.StatusOK)(h.events.Update(c.Request.Context(), currentUser(c), c.Param("id"), in))
}

func (h *Handler) deleteEvent(c *gin.Context) {
	h.respondEvent(c, http.StatusOK)(h.events.Delete(c.Request.Context(), currentUser(c), c.Param("id")))
}

func (h *Handler) likeEvent(c *gin.Context) {
	h.respondEvent(c, http.StatusOK)(h.events.Like(c.Request.Context(), currentUser(c), c.Param("id")))
}

func (h *Handler) unlikeEvent(c *gin.Context) {
	h.respondEvent(c, http.StatusOK)(h.events.Unlike(c.Request.Context(), currentUser(c), c.Param("id")))
}

func (h *Handler) requestCover(c *gin.Context) {
	up, err := h.events.RequestCover(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, up)
}

func (h *Handler) respondEvent(c *gin.Context, status int) func(*models.Event, error) {
	return func(e *models.Event, err error) {
		if err != nil {
			h.writeError(c, err)
			return
		}
		c.JSON(status, e.ToAPI())
	}
}
