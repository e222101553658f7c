// File: tripbot/handlers/history.go
package handlers

import (
	"net/http"

	"tripbot/services/booking"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HistoryHandler exposes a user's recent bookings over HTTP, mirroring what
// the chat "history" command shows.
type HistoryHandler struct {
	Svc    booking.Service
	Logger *zap.Logger
}

func NewHistoryHandler(svc booking.Service, logger *zap.Logger) *HistoryHandler {
	return &HistoryHandler{Svc: svc, Logger: logger}
}

func (h *HistoryHandler) GetHistoryHandler(c *gin.Context) {
	userID := c.Param("userID")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing user id"})
		return
	}

	tickets, err := h.Svc.History(c.Request.Context(), userID)
	if err != nil {
		h.Logger.Error("failed to fetch history", zap.String("userId", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch booking history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"userId": userID, "tickets": tickets})
}
