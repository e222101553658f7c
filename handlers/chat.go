// File: tripbot/handlers/chat.go
package handlers

import (
	"bytes"
	"encoding/xml"
	"net/http"
	"strings"
	"time"

	"tripbot/middleware"
	"tripbot/models"
	"tripbot/services/booking"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ChatHandler serves the inbound WhatsApp webhook. Twilio posts form fields
// From and Body and expects a TwiML document back.
type ChatHandler struct {
	Svc      booking.Service
	Throttle *middleware.SenderThrottle
	Logger   *zap.Logger
}

func NewChatHandler(svc booking.Service, throttle *middleware.SenderThrottle, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{Svc: svc, Throttle: throttle, Logger: logger}
}

func (h *ChatHandler) WebhookHandler(c *gin.Context) {
	from := strings.TrimSpace(c.PostForm("From"))
	body := strings.TrimSpace(c.PostForm("Body"))
	if from == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing From field"})
		return
	}

	// Rapid-fire messages from the same sender are dropped, not queued.
	if !h.Throttle.Allow(from) {
		h.Logger.Debug("throttled sender", zap.String("from", from))
		c.Data(http.StatusOK, "application/xml", []byte(emptyTwiML))
		return
	}

	reply, err := h.Svc.HandleMessage(c.Request.Context(), models.InboundMessage{
		UserID:     from,
		Text:       body,
		ReceivedAt: time.Now(),
	})
	if err != nil {
		h.Logger.Error("chat handling failed", zap.String("from", from), zap.Error(err))
		c.Data(http.StatusOK, "application/xml", []byte(twiML("Something went wrong on our side. Please try again.")))
		return
	}

	c.Data(http.StatusOK, "application/xml", []byte(twiML(reply.Text)))
}

const emptyTwiML = `<?xml version="1.0" encoding="UTF-8"?><Response></Response>`

func twiML(text string) string {
	var escaped bytes.Buffer
	_ = xml.EscapeText(&escaped, []byte(text))
	return `<?xml version="1.0" encoding="UTF-8"?><Response><Message>` + escaped.String() + `</Message></Response>`
}
