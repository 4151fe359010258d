package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"tradejournal/internal/access"
	"tradejournal/internal/auth"
	"tradejournal/internal/blob"
	"tradejournal/internal/service"
)

// ScreenshotHandler accepts multipart image uploads for a trade, pushes
// the file to the blob store and appends the resulting URL as an IMAGE
// block on the trade's documentation.
type ScreenshotHandler struct {
	Docs *service.DocumentationService
	Blob *blob.Client
}

func (h *ScreenshotHandler) Register(r *gin.Engine) {
	group := r.Group("/api/screenshots")
	group.POST("", h.upload)
	group.DELETE("/:id", h.delete)
}

func (h *ScreenshotHandler) upload(c *gin.Context) {
	user := auth.CurrentUser(c)
	if h.Blob == nil || !h.Blob.Configured() {
		Error(c, http.StatusServiceUnavailable, "blob store not configured", nil)
		return
	}
	tradeID, err := strconv.ParseUint(strings.TrimSpace(c.PostForm("trade_id")), 10, 64)
	if err != nil {
		Error(c, http.StatusBadRequest, "trade_id must be an integer", nil)
		return
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		Error(c, http.StatusBadRequest, "file is required", nil)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		Error(c, http.StatusBadRequest, "cannot read file", nil)
		return
	}
	defer file.Close()

	url, err := h.Blob.Upload(c.Request.Context(), fileHeader.Filename, file)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	item, err := h.Docs.AppendItem(c.Request.Context(), user.ID,
		access.OwnerRef{Kind: access.KindTrade, ID: tradeID},
		service.DocItemInput{ItemType: "IMAGE", ImageURL: &url})
	if err != nil {
		Fail(c, err)
		return
	}
	Ok(c, item, nil)
}

func (h *ScreenshotHandler) delete(c *gin.Context) {
	user := auth.CurrentUser(c)
	id, ok := uint64Param(c, "id")
	if !ok {
		Error(c, http.StatusBadRequest, "screenshot id required", nil)
		return
	}
	if err := h.Docs.DeleteItem(c.Request.Context(), user.ID, id); err != nil {
		Fail(c, err)
		return
	}
	Ok(c, map[string]any{"deleted": id}, nil)
}
