package apihandlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mailsift/internal/services"
)

type bootstrapRequest struct {
	MessagesFile   string                   `json:"messages_file"`
	CategoriesFile string                   `json:"categories_file"`
	DropExisting   bool                     `json:"drop_existing"`
	AutoClassify   bool                     `json:"auto_classify"`
	Strategy       services.StrategyOptions `json:"strategy"`
}

// Bootstrap seeds the store from server-local JSONL files: categories
// first, then messages, then an optional classification pass.
func (h *Handlers) Bootstrap(c *gin.Context) {
	var req bootstrapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	if req.MessagesFile == "" && req.CategoriesFile == "" {
		BadRequest(c, "at least one of messages_file or categories_file is required")
		return
	}

	result, err := h.app.BootstrapService.Bootstrap(c.Request.Context(), services.BootstrapOptions{
		MessagesFile:   req.MessagesFile,
		CategoriesFile: req.CategoriesFile,
		DropExisting:   req.DropExisting,
		AutoClassify:   req.AutoClassify,
		Strategy:       req.Strategy,
	})
	if err != nil {
		RespondError(c, err)
		return
	}

	previewMsgs := toMessageResponses(result.PreviewMessages)
	previewCats := make([]categoryResponse, len(result.PreviewCategories))
	for i, cat := range result.PreviewCategories {
		previewCats[i] = toCategoryResponse(cat)
	}
	c.JSON(http.StatusOK, gin.H{
		"total_categories":   result.TotalCategories,
		"total_messages":     result.TotalMessages,
		"total_classified":   result.TotalClassified,
		"preview_messages":   previewMsgs,
		"preview_categories": previewCats,
	})
}
