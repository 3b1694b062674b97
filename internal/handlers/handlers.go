package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "bilet/internal/errors"
	"bilet/internal/service"
)

type Handlers struct {
	services *service.Services
}

func NewHandlers(services *service.Services) *Handlers {
	return &Handlers{services: services}
}

// respondError maps domain errors to HTTP statuses. Only NotFound-style and
// conflict errors expose their message; storage failures stay opaque.
func respondError(c *gin.Context, err error, fallback string) {
	var noTicket *apperrors.NoTicketToRemoveError
	switch {
	case errors.As(err, &noTicket):
		c.JSON(http.StatusNotFound, gin.H{"error": noTicket.Error()})
	case errors.Is(err, apperrors.ErrEventNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": apperrors.ErrEventNotFound.Error()})
	case errors.Is(err, apperrors.ErrTicketUnavailable):
		c.JSON(http.StatusConflict, gin.H{"error": apperrors.ErrTicketUnavailable.Error()})
	case errors.Is(err, apperrors.ErrInvalidCategory):
		c.JSON(http.StatusBadRequest, gin.H{"error": apperrors.ErrInvalidCategory.Error()})
	default:
		slog.Error(fallback, "error", err, "path", c.Request.URL.Path)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
