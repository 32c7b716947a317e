// Package apihandlers implements the HTTP surface of the classifier.
// Handlers stay thin: decode, call a service, encode. All domain rules
// live in the services.
package apihandlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"mailsift/internal/app"
	"mailsift/internal/models"
)

type Handlers struct {
	app *app.App
}

func New(a *app.App) *Handlers {
	return &Handlers{app: a}
}

// RegisterRoutes mounts all endpoints under /api/v1.
func (h *Handlers) RegisterRoutes(r *gin.Engine) {
	r.GET("/healthz", h.Health)

	v1 := r.Group("/api/v1")
	{
		v1.POST("/messages", h.CreateMessage)
		v1.GET("/messages", h.ListMessages)
		v1.GET("/messages/:id", h.GetMessage)
		v1.PUT("/messages/:id", h.UpdateMessage)
		v1.DELETE("/messages/:id", h.DeleteMessage)
		v1.POST("/messages/:id/classify", h.ClassifyMessage)
		v1.GET("/messages/:id/categories", h.ListMessageCategories)

		v1.POST("/categories", h.CreateCategory)
		v1.GET("/categories", h.ListCategories)
		v1.GET("/categories/:id", h.GetCategory)
		v1.PUT("/categories/:id", h.UpdateCategory)
		v1.DELETE("/categories/:id", h.DeleteCategory)
		v1.GET("/categories/:id/messages", h.ListCategoryMessages)

		v1.POST("/bootstrap", h.Bootstrap)
	}
}

// Health reports liveness of the API and its primary store.
func (h *Handlers) Health(c *gin.Context) {
	status := "ok"
	code := 200
	if err := h.app.Ping(c.Request.Context()); err != nil {
		status = "degraded"
		code = 503
	}
	c.JSON(code, gin.H{"status": status, "time": time.Now().UTC().Format(time.RFC3339)})
}

// messageResponse is the wire shape of a message. The embedding itself
// never leaves the API; only its presence does.
type messageResponse struct {
	ID           string     `json:"id"`
	Subject      string     `json:"subject"`
	From         string     `json:"from"`
	To           []string   `json:"to"`
	Snippet      *string    `json:"snippet,omitempty"`
	Body         *string    `json:"body,omitempty"`
	Date         *time.Time `json:"date,omitempty"`
	HasEmbedding bool       `json:"has_embedding"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func toMessageResponse(m *models.Message) messageResponse {
	return messageResponse{
		ID:           m.ID,
		Subject:      m.Subject,
		From:         m.Sender,
		To:           m.To,
		Snippet:      m.Snippet,
		Body:         m.Body,
		Date:         m.Date,
		HasEmbedding: m.HasEmbedding(),
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func toMessageResponses(msgs []*models.Message) []messageResponse {
	out := make([]messageResponse, len(msgs))
	for i, m := range msgs {
		out[i] = toMessageResponse(m)
	}
	return out
}

type categoryResponse struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	HasEmbedding bool      `json:"has_embedding"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func toCategoryResponse(c *models.Category) categoryResponse {
	return categoryResponse{
		ID:           c.ID,
		Name:         c.Name,
		Description:  c.Description,
		HasEmbedding: c.HasEmbedding(),
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

type assignmentResponse struct {
	CategoryID   int64     `json:"category_id"`
	CategoryName string    `json:"category_name"`
	Score        float64   `json:"score"`
	Explanation  string    `json:"explanation"`
	ClassifiedAt time.Time `json:"classified_at"`
}

func toAssignmentResponses(as []*models.CategoryAssignment) []assignmentResponse {
	out := make([]assignmentResponse, len(as))
	for i, a := range as {
		out[i] = assignmentResponse{
			CategoryID:   a.CategoryID,
			CategoryName: a.CategoryName,
			Score:        a.Score,
			Explanation:  a.Explanation,
			ClassifiedAt: a.ClassifiedAt,
		}
	}
	return out
}
