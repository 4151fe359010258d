package handler

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"tradejournal/internal/apperr"
	"tradejournal/internal/auth"
	"tradejournal/internal/service"
)

type DashboardHandler struct {
	Metrics *service.MetricsService
}

func (h *DashboardHandler) Register(r *gin.Engine) {
	group := r.Group("/api/dashboard")
	group.GET("/metrics", h.metrics)
	group.GET("/equity-curve", h.equityCurve)
	group.GET("/pnl-over-time", h.pnlOverTime)

	r.GET("/api/calendar/monthly", h.monthlyCalendar)
}

// accountFilter rejects a present-but-malformed account_id instead of
// silently widening the query to all accounts.
func accountFilter(c *gin.Context) (*uint64, error) {
	raw := strings.TrimSpace(c.Query("account_id"))
	if raw == "" {
		return nil, nil
	}
	id := uint64QueryPtr(c, "account_id")
	if id == nil {
		return nil, fmt.Errorf("%w: account_id must be an integer", apperr.ErrValidation)
	}
	return id, nil
}

func (h *DashboardHandler) metrics(c *gin.Context) {
	user := auth.CurrentUser(c)
	accountID, err := accountFilter(c)
	if err != nil {
		Fail(c, err)
		return
	}
	result, err := h.Metrics.Dashboard(c.Request.Context(), user.ID, accountID)
	if err != nil {
		Fail(c, err)
		return
	}
	Ok(c, result, nil)
}

func (h *DashboardHandler) equityCurve(c *gin.Context) {
	user := auth.CurrentUser(c)
	accountID, err := accountFilter(c)
	if err != nil {
		Fail(c, err)
		return
	}
	points, err := h.Metrics.EquityCurve(c.Request.Context(), user.ID, accountID)
	if err != nil {
		Fail(c, err)
		return
	}
	Ok(c, points, nil)
}

func (h *DashboardHandler) pnlOverTime(c *gin.Context) {
	user := auth.CurrentUser(c)
	accountID, err := accountFilter(c)
	if err != nil {
		Fail(c, err)
		return
	}
	points, err := h.Metrics.PnLOverTime(c.Request.Context(), user.ID, accountID, c.Query("period"))
	if err != nil {
		Fail(c, err)
		return
	}
	Ok(c, points, nil)
}

func (h *DashboardHandler) monthlyCalendar(c *gin.Context) {
	user := auth.CurrentUser(c)
	accountID, err := accountFilter(c)
	if err != nil {
		Fail(c, err)
		return
	}
	year := intQuery(c, "year", 0)
	month := intQuery(c, "month", 0)
	result, err := h.Metrics.Calendar(c.Request.Context(), user.ID, year, month, accountID)
	if err != nil {
		Fail(c, err)
		return
	}
	Ok(c, result, nil)
}
