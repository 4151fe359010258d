package audit

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"tradejournal/internal/auth"
	"tradejournal/internal/models"
	"tradejournal/internal/repository"
)

// WriteAuditMiddleware records every write-method API request after it
// completes. Recording failures are logged and never affect the response.
func WriteAuditMiddleware(repo repository.Repository, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.Request.URL.Path
		method := strings.ToUpper(c.Request.Method)
		if !strings.HasPrefix(path, "/api/") {
			return
		}
		if method == http.MethodGet || method == http.MethodHead || method == http.MethodOptions {
			return
		}

		entry := &models.AuditLog{
			Method:     method,
			Path:       path,
			Status:     c.Writer.Status(),
			DurationMs: time.Since(start).Milliseconds(),
		}
		if user := auth.CurrentUser(c); user != nil {
			entry.UserID = user.ID
		}
		details, err := json.Marshal(map[string]any{
			"query":     c.Request.URL.RawQuery,
			"client_ip": c.ClientIP(),
		})
		if err == nil {
			entry.Details = datatypes.JSON(details)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := repo.InsertAuditLog(ctx, entry); err != nil && logger != nil {
			logger.Debug("audit log insert failed", zap.Error(err))
		}
	}
}
