package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tradejournal/internal/auth"
	"tradejournal/internal/service"
)

type AccountHandler struct {
	Ledger *service.LedgerService
}

func (h *AccountHandler) Register(r *gin.Engine) {
	group := r.Group("/api/accounts")
	group.POST("", h.create)
	group.GET("", h.list)
	group.GET("/:id", h.get)
	group.PUT("/:id", h.update)
	group.DELETE("/:id", h.delete)
}

func (h *AccountHandler) create(c *gin.Context) {
	user := auth.CurrentUser(c)
	var req service.CreateAccountInput
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	item, err := h.Ledger.CreateAccount(c.Request.Context(), user.ID, req)
	if err != nil {
		Fail(c, err)
		return
	}
	Ok(c, item, nil)
}

func (h *AccountHandler) list(c *gin.Context) {
	user := auth.CurrentUser(c)
	items, err := h.Ledger.ListAccounts(c.Request.Context(), user.ID)
	if err != nil {
		Fail(c, err)
		return
	}
	Ok(c, items, nil)
}

func (h *AccountHandler) get(c *gin.Context) {
	user := auth.CurrentUser(c)
	id, ok := uint64Param(c, "id")
	if !ok {
		Error(c, http.StatusBadRequest, "account id required", nil)
		return
	}
	item, err := h.Ledger.GetAccount(c.Request.Context(), user.ID, id)
	if err != nil {
		Fail(c, err)
		return
	}
	Ok(c, item, nil)
}

func (h *AccountHandler) update(c *gin.Context) {
	user := auth.CurrentUser(c)
	id, ok := uint64Param(c, "id")
	if !ok {
		Error(c, http.StatusBadRequest, "account id required", nil)
		return
	}
	var req service.UpdateAccountInput
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	item, err := h.Ledger.UpdateAccount(c.Request.Context(), user.ID, id, req)
	if err != nil {
		Fail(c, err)
		return
	}
	Ok(c, item, nil)
}

func (h *AccountHandler) delete(c *gin.Context) {
	user := auth.CurrentUser(c)
	id, ok := uint64Param(c, "id")
	if !ok {
		Error(c, http.StatusBadRequest, "account id required", nil)
		return
	}
	if err := h.Ledger.DeleteAccount(c.Request.Context(), user.ID, id); err != nil {
		Fail(c, err)
		return
	}
	Ok(c, map[string]any{"deleted": id}, nil)
}
