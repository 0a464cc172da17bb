package httpapi

import (
	"net/http"

	"github.com/boulin/eventverse/internal/api"
	"github.com/gin-gonic/gin"
)

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) register(c *gin.Context) {
	var req api.Credentials
	if !h.bind(c, &req) {
		return
	}
	account, err := h.accounts.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, api.Account{UID: account.ID, Email: account.Email})
}

func (h *Handler) login(c *gin.Context) {
	var req api.Credentials
	if !h.bind(c, &req) {
		return
	}
	pair, err := h.accounts.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.TokenPair{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken, UID: pair.UserID})
}

func (h *Handler) refresh(c *gin.Context) {
	var req api.RefreshRequest
	if !h.bind(c, &req) {
		return
	}
	pair, err := h.accounts.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.TokenPair{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken, UID: pair.UserID})
}
