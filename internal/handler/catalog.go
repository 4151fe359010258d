package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tradejournal/internal/auth"
	"tradejournal/internal/service"
)

// CatalogHandler serves setup strategies and entry types. Both resources
// share request shapes and visibility rules, so they share one handler.
type CatalogHandler struct {
	Catalog *service.CatalogService
}

func (h *CatalogHandler) Register(r *gin.Engine) {
	strategies := r.Group("/api/setup-strategies")
	strategies.POST("", h.createStrategy)
	strategies.GET("", h.listStrategies)
	strategies.GET("/:id", h.getStrategy)
	strategies.PUT("/:id", h.updateStrategy)
	strategies.DELETE("/:id", h.deleteStrategy)

	entryTypes := r.Group("/api/entry-types")
	entryTypes.POST("", h.createEntryType)
	entryTypes.GET("", h.listEntryTypes)
	entryTypes.GET("/:id", h.getEntryType)
	entryTypes.PUT("/:id", h.updateEntryType)
	entryTypes.DELETE("/:id", h.deleteEntryType)
}

func (h *CatalogHandler) createStrategy(c *gin.Context) {
	user := auth.CurrentUser(c)
	var req service.CatalogItemInput
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	item, err := h.Catalog.CreateSetupStrategy(c.Request.Context(), user.ID, req)
	if err != nil {
		Fail(c, err)
		return
	}
	Ok(c, item, nil)
}

func (h *CatalogHandler) listStrategies(c *gin.Context) {
	user := auth.CurrentUser(c)
	items, err := h.Catalog.ListSetupStrategies(c.Request.Context(), user.ID)
	if err != nil {
		Fail(c, err)
		return
	}
	Ok(c, items, nil)
}

func (h *CatalogHandler) getStrategy(c *gin.Context) {
	user := auth.CurrentUser(c)
	id, ok := uint64Param(c, "id")
	if !ok {
		Error(c, http.StatusBadRequest, "strategy id required", nil)
		return
	}
	item, err := h.Catalog.GetSetupStrategy(c.Request.Context(), user.ID, id)
	if err != nil {
		Fail(c, err)
		return
	}
	Ok(c, item, nil)
}

func (h *CatalogHandler) updateStrategy(c *gin.Context) {
	user := auth.CurrentUser(c)
	id, ok := uint64Param(c, "id")
	if !ok {
		Error(c, http.StatusBadRequest, "strategy id required", nil)
		return
	}
	var req service.CatalogItemUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	item, err := h.Catalog.UpdateSetupStrategy(c.Request.Context(), user.ID, id, req)
	if err != nil {
		Fail(c, err)
		return
	}
	Ok(c, item, nil)
}

func (h *CatalogHandler) deleteStrategy(c *gin.Context) {
	user := auth.CurrentUser(c)
	id, ok := uint64Param(c, "id")
	if !ok {
		Error(c, http.StatusBadRequest, "strategy id required", nil)
		return
	}
	if err := h.Catalog.DeleteSetupStrategy(c.Request.Context(), user.ID, id); err != nil {
		Fail(c, err)
		return
	}
	Ok(c, map[string]any{"deleted": id}, nil)
}

func (h *CatalogHandler) createEntryType(c *gin.Context) {
	user := auth.CurrentUser(c)
	var req service.CatalogItemInput
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	item, err := h.Catalog.CreateEntryType(c.Request.Context(), user.ID, req)
	if err != nil {
		Fail(c, err)
		return
	}
	Ok(c, item, nil)
}

func (h *CatalogHandler) listEntryTypes(c *gin.Context) {
	user := auth.CurrentUser(c)
	items, err := h.Catalog.ListEntryTypes(c.Request.Context(), user.ID)
	if err != nil {
		Fail(c, err)
		return
	}
	Ok(c, items, nil)
}

func (h *CatalogHandler) getEntryType(c *gin.Context) {
	user := auth.CurrentUser(c)
	id, ok := uint64Param(c, "id")
	if !ok {
		Error(c, http.StatusBadRequest, "entry type id required", nil)
		return
	}
	item, err := h.Catalog.GetEntryType(c.Request.Context(), user.ID, id)
	if err != nil {
		Fail(c, err)
		return
	}
	Ok(c, item, nil)
}

func (h *CatalogHandler) updateEntryType(c *gin.Context) {
	user := auth.CurrentUser(c)
	id, ok := uint64Param(c, "id")
	if !ok {
		Error(c, http.StatusBadRequest, "entry type id required", nil)
		return
	}
	var req service.CatalogItemUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	item, err := h.Catalog.UpdateEntryType(c.Request.Context(), user.ID, id, req)
	if err != nil {
		Fail(c, err)
		return
	}
	Ok(c, item, nil)
}

func (h *CatalogHandler) deleteEntryType(c *gin.Context) {
	user := auth.CurrentUser(c)
	id, ok := uint64Param(c, "id")
	if !ok {
		Error(c, http.StatusBadRequest, "entry type id required", nil)
		return
	}
	if err := h.Catalog.DeleteEntryType(c.Request.Context(), user.ID, id); err != nil {
		Fail(c, err)
		return
	}
	Ok(c, map[string]any{"deleted": id}, nil)
}
