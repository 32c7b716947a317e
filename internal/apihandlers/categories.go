package apihandlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type categoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *Handlers) CreateCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	cat, err := h.app.CategoriesService.CreateCategory(c.Request.Context(), req.Name, req.Description)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toCategoryResponse(cat))
}

func (h *Handlers) ListCategories(c *gin.Context) {
	categories, err := h.app.CategoriesService.ListCategories(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}
	out := make([]categoryResponse, len(categories))
	for i, cat := range categories {
		out[i] = toCategoryResponse(cat)
	}
	c.JSON(http.StatusOK, gin.H{"categories": out, "count": len(out)})
}

func (h *Handlers) GetCategory(c *gin.Context) {
	id, ok := categoryID(c)
	if !ok {
		return
	}
	cat, err := h.app.CategoriesService.GetCategory(c.Request.Context(), id)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCategoryResponse(cat))
}

func (h *Handlers) UpdateCategory(c *gin.Context) {
	id, ok := categoryID(c)
	if !ok {
		return
	}
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	cat, err := h.app.CategoriesService.UpdateCategory(c.Request.Context(), id, req.Name, req.Description)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCategoryResponse(cat))
}

func (h *Handlers) DeleteCategory(c *gin.Context) {
	id, ok := categoryID(c)
	if !ok {
		return
	}
	if err := h.app.CategoriesService.DeleteCategory(c.Request.Context(), id); err != nil {
		RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListCategoryMessages returns the messages assigned to one category,
// highest score first.
func (h *Handlers) ListCategoryMessages(c *gin.Context) {
	id, ok := categoryID(c)
	if !ok {
		return
	}
	cat, err := h.app.CategoriesService.GetCategory(c.Request.Context(), id)
	if err != nil {
		RespondError(c, err)
		return
	}
	msgs, err := h.app.MessagesService.ListMessagesByCategory(c.Request.Context(), id)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"category": toCategoryResponse(cat),
		"messages": toMessageResponses(msgs),
		"count":    len(msgs),
	})
}

func categoryID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		BadRequest(c, "category id must be an integer")
		return 0, false
	}
	return id, true
}
