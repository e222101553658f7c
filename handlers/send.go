// File: tripbot/handlers/send.go
package handlers

import (
	"net/http"

	"tripbot/services/notification"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SendHandler lets an operator push an outbound message to a user, outside
// the normal conversation flow.
type SendHandler struct {
	Sender notification.Sender
	Logger *zap.Logger
}

func NewSendHandler(sender notification.Sender, logger *zap.Logger) *SendHandler {
	return &SendHandler{Sender: sender, Logger: logger}
}

func (h *SendHandler) SendMessageHandler(c *gin.Context) {
	var input struct {
		To   string `json:"to" binding:"required"`
		Body string `json:"body" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	if err := h.Sender.Send(c.Request.Context(), input.To, input.Body); err != nil {
		h.Logger.Error("operator send failed", zap.String("to", input.To), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to send message"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"sent": true})
}
