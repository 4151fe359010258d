package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tradejournal/internal/auth"
)

type AuthHandler struct {
	Auth *auth.Service
}

func (h *AuthHandler) Register(r *gin.Engine) {
	group := r.Group("/api/auth")
	group.POST("/register", h.register)
	group.POST("/login", h.login)
	group.GET("/user", h.currentUser)
}

func (h *AuthHandler) register(c *gin.Context) {
	var req auth.Credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	user, err := h.Auth.Register(c.Request.Context(), req)
	if err != nil {
		Fail(c, err)
		return
	}
	Ok(c, user, nil)
}

func (h *AuthHandler) login(c *gin.Context) {
	var req auth.Credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	result, err := h.Auth.Login(c.Request.Context(), req)
	if err != nil {
		Fail(c, err)
		return
	}
	Ok(c, result, nil)
}

func (h *AuthHandler) currentUser(c *gin.Context) {
	user := auth.CurrentUser(c)
	if user == nil {
		Error(c, http.StatusUnauthorized, "not authenticated", nil)
		return
	}
	Ok(c, user, nil)
}
