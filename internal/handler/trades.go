package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"tradejournal/internal/auth"
	"tradejournal/internal/repository"
	"tradejournal/internal/service"
)

type TradeHandler struct {
	Ledger *service.LedgerService
}

func (h *TradeHandler) Register(r *gin.Engine) {
	group := r.Group("/api/trades")
	group.POST("", h.create)
	group.GET("", h.list)
	group.GET("/:id", h.get)
	group.PUT("/:id", h.update)
	group.DELETE("/:id", h.delete)
}

func (h *TradeHandler) create(c *gin.Context) {
	user := auth.CurrentUser(c)
	var req service.CreateTradeInput
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	item, err := h.Ledger.CreateTrade(c.Request.Context(), user.ID, req)
	if err != nil {
		Fail(c, err)
		return
	}
	Ok(c, item, nil)
}

func (h *TradeHandler) list(c *gin.Context) {
	user := auth.CurrentUser(c)
	limit := intQuery(c, "limit", 100)
	offset := intQuery(c, "offset", 0)

	var sidePtr *string
	if side := strings.ToUpper(strings.TrimSpace(c.Query("side"))); side != "" {
		sidePtr = &side
	}
	params := repository.ListTradesParams{
		UserID:          user.ID,
		AccountID:       uint64QueryPtr(c, "account_id"),
		Symbol:          strQueryPtr(c, "symbol"),
		Side:            sidePtr,
		SetupStrategyID: uint64QueryPtr(c, "setup_strategy_id"),
		EntryTypeID:     uint64QueryPtr(c, "entry_type_id"),
		Limit:           limit,
		Offset:          offset,
	}
	items, total, err := h.Ledger.ListTrades(c.Request.Context(), params)
	if err != nil {
		Fail(c, err)
		return
	}
	Ok(c, items, paginationMeta(limit, offset, total))
}

func (h *TradeHandler) get(c *gin.Context) {
	user := auth.CurrentUser(c)
	id, ok := uint64Param(c, "id")
	if !ok {
		Error(c, http.StatusBadRequest, "trade id required", nil)
		return
	}
	item, err := h.Ledger.GetTrade(c.Request.Context(), user.ID, id)
	if err != nil {
		Fail(c, err)
		return
	}
	Ok(c, item, nil)
}

func (h *TradeHandler) update(c *gin.Context) {
	user := auth.CurrentUser(c)
	id, ok := uint64Param(c, "id")
	if !ok {
		Error(c, http.StatusBadRequest, "trade id required", nil)
		return
	}
	var req service.UpdateTradeInput
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	item, err := h.Ledger.UpdateTrade(c.Request.Context(), user.ID, id, req)
	if err != nil {
		Fail(c, err)
		return
	}
	Ok(c, item, nil)
}

func (h *TradeHandler) delete(c *gin.Context) {
	user := auth.CurrentUser(c)
	id, ok := uint64Param(c, "id")
	if !ok {
		Error(c, http.StatusBadRequest, "trade id required", nil)
		return
	}
	if err := h.Ledger.DeleteTrade(c.Request.Context(), user.ID, id); err != nil {
		Fail(c, err)
		return
	}
	Ok(c, map[string]any{"deleted": id}, nil)
}
