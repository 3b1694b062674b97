package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"bilet/internal/models"
)

// Events handlers

// CreateEvent - POST /api/events
func (h *Handlers) CreateEvent(c *gin.Context) {
	var req models.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, err := h.services.Events.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "Failed to create event")
		return
	}

	c.JSON(http.StatusCreated, response)
}

// ListEvents - GET /api/events
// Upcoming events with free-ticket counts; ?query= narrows by name.
func (h *Handlers) ListEvents(c *gin.Context) {
	response, err := h.services.Events.List(c.Request.Context(), c.Query("query"))
	if err != nil {
		respondError(c, err, "Failed to list events")
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetEvent - GET /api/events/:id
func (h *Handlers) GetEvent(c *gin.Context) {
	eventID, ok := eventIDParam(c)
	if !ok {
		return
	}

	response, err := h.services.Events.Detail(c.Request.Context(), eventID)
	if err != nil {
		respondError(c, err, "Failed to get event")
		return
	}

	c.JSON(http.StatusOK, response)
}

// CreateTickets - POST /api/events/:id/tickets
func (h *Handlers) CreateTickets(c *gin.Context) {
	eventID, ok := eventIDParam(c)
	if !ok {
		return
	}

	var req models.CreateTicketsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, err := h.services.Events.CreateTickets(c.Request.Context(), eventID, &req)
	if err != nil {
		respondError(c, err, "Failed to create tickets")
		return
	}

	c.JSON(http.StatusCreated, response)
}

func eventIDParam(c *gin.Context) (int64, bool) {
	eventID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return 0, false
	}
	return eventID, true
}
