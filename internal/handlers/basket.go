package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bilet/internal/middleware"
	"bilet/internal/models"
)

// Basket handlers

// GetBasket - GET /api/basket
// The session basket grouped by event, after the expiry sweep.
func (h *Handlers) GetBasket(c *gin.Context) {
	response, err := h.services.Baskets.Get(c.Request.Context(), middleware.SessionID(c))
	if err != nil {
		respondError(c, err, "Failed to load basket")
		return
	}

	c.JSON(http.StatusOK, response)
}

// ReserveTicket - POST /api/events/:id/reserve
// Lock the last available ticket of a category into the session basket.
func (h *Handlers) ReserveTicket(c *gin.Context) {
	eventID, ok := eventIDParam(c)
	if !ok {
		return
	}

	var req models.ReserveTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, err := h.services.Baskets.Reserve(c.Request.Context(), middleware.SessionID(c), eventID, req.Category)
	if err != nil {
		respondError(c, err, "Failed to reserve ticket")
		return
	}

	c.JSON(http.StatusCreated, response)
}

// RemoveTicket - DELETE /api/basket/tickets
// Release one held ticket of an event and category back to availability.
func (h *Handlers) RemoveTicket(c *gin.Context) {
	var req models.RemoveTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.services.Baskets.Remove(c.Request.Context(), middleware.SessionID(c), req.EventID, req.Category)
	if err != nil {
		respondError(c, err, "Failed to remove ticket")
		return
	}

	c.Status(http.StatusOK)
}

// Checkout - POST /api/basket/checkout
// Amount-equality payment check; a mismatch returns the recoverable form
// message with status 200, not an error.
func (h *Handlers) Checkout(c *gin.Context) {
	var req models.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, err := h.services.Baskets.Checkout(c.Request.Context(), middleware.SessionID(c), &req)
	if err != nil {
		respondError(c, err, "Failed to check out basket")
		return
	}

	c.JSON(http.StatusOK, response)
}
