package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"queue-manager-api/internal/services"
)

// QueueHandler handles walk-in queue HTTP requests
type QueueHandler struct {
	queueService services.QueueService
}

// NewQueueHandler creates a new queue handler
func NewQueueHandler(queueService services.QueueService) *QueueHandler {
	return &QueueHandler{
		queueService: queueService,
	}
}

// @Summary Queue summary
// @Description Waiting customers in order with the estimated wait for a new arrival
// @Tags queue
// @Produce json
// @Success 200 {object} models.QueueSummary
// @Router /queue [get]
func (h *QueueHandler) GetSummary(c *gin.Context) {
	summary, err := h.queueService.GetSummary(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// @Summary Join the queue
// @Tags queue
// @Accept json
// @Produce json
// @Param entry body services.JoinQueueRequest true "Walk-in customer"
// @Success 201 {object} models.QueueEntry
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /queue [post]
func (h *QueueHandler) JoinQueue(c *gin.Context) {
	var req services.JoinQueueRequest
	if !bindJSON(c, &req) {
		return
	}

	entry, err := h.queueService.JoinQueue(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, entry)
}

// @Summary Call the next customer
// @Tags queue
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.QueueEntry
// @Failure 404 {object} ErrorResponse
// @Router /queue/next [post]
func (h *QueueHandler) CallNext(c *gin.Context) {
	entry, err := h.queueService.CallNext(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, entry)
}

// @Summary Get a queue entry
// @Tags queue
// @Produce json
// @Param id path string true "Queue entry ID"
// @Success 200 {object} models.QueueEntry
// @Failure 404 {object} ErrorResponse
// @Router /queue/{id} [get]
func (h *QueueHandler) GetEntry(c *gin.Context) {
	entry, err := h.queueService.GetEntry(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, entry)
}

// @Summary Leave the queue
// @Tags queue
// @Produce json
// @Param id path string true "Queue entry ID"
// @Success 200 {object} models.QueueEntry
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /queue/{id} [delete]
func (h *QueueHandler) LeaveQueue(c *gin.Context) {
	entry, err := h.queueService.LeaveQueue(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, entry)
}
