package handler

import (
	"github.com/gin-gonic/gin"

	"tradejournal/internal/auth"
	"tradejournal/internal/repository"
)

// AuditLogHandler exposes the caller's own write-audit trail.
type AuditLogHandler struct {
	Repo repository.Repository
}

func (h *AuditLogHandler) Register(r *gin.Engine) {
	r.GET("/api/audit-logs", h.list)
}

func (h *AuditLogHandler) list(c *gin.Context) {
	user := auth.CurrentUser(c)
	limit := intQuery(c, "limit", 200)
	offset := intQuery(c, "offset", 0)
	items, err := h.Repo.ListAuditLogs(c.Request.Context(), repository.ListAuditLogsParams{
		UserID: &user.ID,
		Path:   strQueryPtr(c, "path"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		Fail(c, err)
		return
	}
	Ok(c, items, paginationMeta(limit, offset, int64(len(items))))
}
