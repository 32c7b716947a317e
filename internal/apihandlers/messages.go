package apihandlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"mailsift/internal/ingest"
	"mailsift/internal/services"
	"mailsift/internal/tasks"
)

type messageRequest struct {
	ID           string   `json:"id"`
	Subject      string   `json:"subject"`
	From         string   `json:"from"`
	To           []string `json:"to"`
	Snippet      *string  `json:"snippet"`
	Body         *string  `json:"body"`
	Date         *string  `json:"date"`
	BodyIsBase64 bool     `json:"body_is_base64"`
}

func (r *messageRequest) toParams() (services.MessageParams, error) {
	params := services.MessageParams{
		ID:           r.ID,
		Subject:      r.Subject,
		Sender:       r.From,
		To:           r.To,
		Snippet:      r.Snippet,
		Body:         r.Body,
		BodyIsBase64: r.BodyIsBase64,
	}
	if r.Date != nil && *r.Date != "" {
		date, err := ingest.ParseISODate(*r.Date)
		if err != nil {
			return services.MessageParams{}, err
		}
		params.Date = &date
	}
	return params, nil
}

func (h *Handlers) CreateMessage(c *gin.Context) {
	var req messageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	params, err := req.toParams()
	if err != nil {
		BadRequest(c, "invalid date: "+err.Error())
		return
	}

	msg, err := h.app.MessagesService.CreateMessage(c.Request.Context(), params)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toMessageResponse(msg))
}

func (h *Handlers) ListMessages(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	msgs, err := h.app.MessagesService.ListMessages(c.Request.Context(), limit, offset)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": toMessageResponses(msgs), "count": len(msgs)})
}

func (h *Handlers) GetMessage(c *gin.Context) {
	msg, err := h.app.MessagesService.GetMessage(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toMessageResponse(msg))
}

func (h *Handlers) UpdateMessage(c *gin.Context) {
	var req messageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	params, err := req.toParams()
	if err != nil {
		BadRequest(c, "invalid date: "+err.Error())
		return
	}

	msg, err := h.app.MessagesService.UpdateMessage(c.Request.Context(), c.Param("id"), params)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toMessageResponse(msg))
}

func (h *Handlers) DeleteMessage(c *gin.Context) {
	if err := h.app.MessagesService.DeleteMessage(c.Request.Context(), c.Param("id")); err != nil {
		RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type classifyRequest struct {
	services.StrategyOptions
	Async bool `json:"async"`
}

// ClassifyMessage runs or enqueues a classification of one message
// against all categories. With async=true the work goes to the queue and
// the response is 202 with the task id.
func (h *Handlers) ClassifyMessage(c *gin.Context) {
	var req classifyRequest
	// An empty body means defaults for everything.
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			BadRequest(c, "invalid request body: "+err.Error())
			return
		}
	}
	id := c.Param("id")
	async := req.Async || c.Query("async") == "1" || c.Query("async") == "true"

	if async {
		task, err := tasks.NewClassifyMessageTask(tasks.ClassifyMessagePayload{
			MessageID: id,
			Strategy:  req.Strategy,
			TopN:      req.TopN,
			Threshold: req.Threshold,
		})
		if err != nil {
			RespondError(c, err)
			return
		}
		info, err := h.app.JobClient().EnqueueContext(c.Request.Context(), task)
		if err != nil {
			RespondError(c, err)
			return
		}
		log.Infof("enqueued classification task %s for message %s", info.ID, id)
		c.JSON(http.StatusAccepted, gin.H{
			"task_id":    info.ID,
			"queue":      info.Queue,
			"message_id": id,
			"queued_at":  time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	resp, err := h.app.ClassificationService.ClassifyMessage(c.Request.Context(), id, req.StrategyOptions)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListMessageCategories returns the categories currently assigned to a
// message, highest score first.
func (h *Handlers) ListMessageCategories(c *gin.Context) {
	id := c.Param("id")
	// Distinguish an unknown message from one with no assignments.
	if _, err := h.app.MessagesService.GetMessage(c.Request.Context(), id); err != nil {
		RespondError(c, err)
		return
	}
	assignments, err := h.app.CategoriesService.ListAssignmentsForMessage(c.Request.Context(), id)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message_id": id,
		"categories": toAssignmentResponses(assignments),
		"count":      len(assignments),
	})
}
