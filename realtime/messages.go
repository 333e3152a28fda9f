package realtime

import (
	"time"

	"taskroom/domain"
)

const (
	typeChatMessage           = "chat_message"
	typeConnectionEstablished = "connection_established"
)

// inboundMessage is what clients send. Unknown types are ignored silently.
type inboundMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// connectionEstablishedMessage is sent directly to a client right after its
// session joins a room. It is never broadcast.
type connectionEstablishedMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// chatMessage is the broadcast shape delivered to clients.
type chatMessage struct {
	Type      string `json:"type"`
	Sender    string `json:"sender"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

// outboundFromEvent converts a bus event to its wire shape. The event's own
// timestamp wins when it carries one, otherwise the delivery clock is used.
func outboundFromEvent(e domain.ChatEvent, deliveredAt time.Time) chatMessage {
	at := e.At
	if at.IsZero() {
		at = deliveredAt
	}
	return chatMessage{
		Type:      typeChatMessage,
		Sender:    e.Sender,
		Text:      e.Text,
		Timestamp: at.UTC().Format(time.RFC3339),
	}
}
