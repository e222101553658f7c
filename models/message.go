package models

import "time"

// InboundMessage is one raw chat message from the transport.
type InboundMessage struct {
	UserID     string    `json:"userId"`
	Text       string    `json:"text"`
	ReceivedAt time.Time `json:"receivedAt"`
}

// Reply is the outbound answer to an inbound message. Menus span multiple
// lines in a single message, matching WhatsApp delivery.
type Reply struct {
	Text string `json:"text"`
}
