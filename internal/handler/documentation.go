package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"tradejournal/internal/access"
	"tradejournal/internal/auth"
	"tradejournal/internal/service"
)

type DocumentationHandler struct {
	Docs *service.DocumentationService
}

func (h *DocumentationHandler) Register(r *gin.Engine) {
	r.GET("/api/documentation", h.listWidgets)

	items := r.Group("/api/documentation-items")
	items.POST("", h.addItem)
	items.GET("", h.listItems)
	items.PUT("", h.replaceAll)
	items.DELETE("/:id", h.deleteItem)
}

func ownerRefFromQuery(c *gin.Context) (access.OwnerRef, bool) {
	kind, err := access.ParseOwnerKind(strings.TrimSpace(c.Query("parent_type")))
	if err != nil {
		Fail(c, err)
		return access.OwnerRef{}, false
	}
	id, err := strconv.ParseUint(strings.TrimSpace(c.Query("parent_id")), 10, 64)
	if err != nil {
		Error(c, http.StatusBadRequest, "parent_id must be an integer", nil)
		return access.OwnerRef{}, false
	}
	return access.OwnerRef{Kind: kind, ID: id}, true
}

type ownerRefBody struct {
	ParentType string `json:"parent_type"`
	ParentID   uint64 `json:"parent_id"`
}

func (b ownerRefBody) ref(c *gin.Context) (access.OwnerRef, bool) {
	kind, err := access.ParseOwnerKind(strings.TrimSpace(b.ParentType))
	if err != nil {
		Fail(c, err)
		return access.OwnerRef{}, false
	}
	if b.ParentID == 0 {
		Error(c, http.StatusBadRequest, "parent_id is required", nil)
		return access.OwnerRef{}, false
	}
	return access.OwnerRef{Kind: kind, ID: b.ParentID}, true
}

func (h *DocumentationHandler) listWidgets(c *gin.Context) {
	user := auth.CurrentUser(c)
	ref, ok := ownerRefFromQuery(c)
	if !ok {
		return
	}
	widgets, err := h.Docs.ListWidgets(c.Request.Context(), user.ID, ref)
	if err != nil {
		Fail(c, err)
		return
	}
	Ok(c, widgets, nil)
}

type addItemRequest struct {
	ownerRefBody
	service.DocItemInput
}

func (h *DocumentationHandler) addItem(c *gin.Context) {
	user := auth.CurrentUser(c)
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	ref, ok := req.ref(c)
	if !ok {
		return
	}
	item, err := h.Docs.AddItem(c.Request.Context(), user.ID, ref, req.DocItemInput)
	if err != nil {
		Fail(c, err)
		return
	}
	Ok(c, item, nil)
}

func (h *DocumentationHandler) listItems(c *gin.Context) {
	user := auth.CurrentUser(c)
	ref, ok := ownerRefFromQuery(c)
	if !ok {
		return
	}
	items, err := h.Docs.ListItems(c.Request.Context(), user.ID, ref)
	if err != nil {
		Fail(c, err)
		return
	}
	Ok(c, items, nil)
}

type replaceAllRequest struct {
	ownerRefBody
	Items []service.DocItemInput `json:"items"`
}

func (h *DocumentationHandler) replaceAll(c *gin.Context) {
	user := auth.CurrentUser(c)
	var req replaceAllRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	ref, ok := req.ref(c)
	if !ok {
		return
	}
	items, err := h.Docs.ReplaceAll(c.Request.Context(), user.ID, ref, req.Items)
	if err != nil {
		Fail(c, err)
		return
	}
	Ok(c, items, nil)
}

func (h *DocumentationHandler) deleteItem(c *gin.Context) {
	user := auth.CurrentUser(c)
	id, ok := uint64Param(c, "id")
	if !ok {
		Error(c, http.StatusBadRequest, "item id required", nil)
		return
	}
	if err := h.Docs.DeleteItem(c.Request.Context(), user.ID, id); err != nil {
		Fail(c, err)
		return
	}
	Ok(c, map[string]any{"deleted": id}, nil)
}
