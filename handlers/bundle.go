// File: tripbot/handlers/bundle.go
package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// Chat webhook.
	ChatWebhookHandler gin.HandlerFunc

	// Payment gateway webhook.
	PaymentWebhookHandler gin.HandlerFunc

	// Booking history.
	GetHistoryHandler gin.HandlerFunc

	// Operator-initiated outbound message.
	SendMessageHandler gin.HandlerFunc
}
