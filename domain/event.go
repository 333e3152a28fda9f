package domain

import "time"

type EventKind string

const (
	// KindChatMessage covers both user chat and system notices.
	KindChatMessage EventKind = "chat_message"
)

// ChatEvent is an immutable broadcast event flowing through a project group.
// Events are transient: they are never persisted, a client that is offline
// when an event is published simply misses it.
type ChatEvent struct {
	Kind      EventKind
	Sender    string
	Text      string
	ProjectID int
	At        time.Time
}
