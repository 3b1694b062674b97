package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetStats - GET /api/stats
// Read-only reporting: totals, per-event summaries, per-day order series.
func (h *Handlers) GetStats(c *gin.Context) {
	response, err := h.services.Stats.Get(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to get stats")
		return
	}

	c.JSON(http.StatusOK, response)
}
