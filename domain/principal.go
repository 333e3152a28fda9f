// Package domain contains core concepts of the collaboration system.
// This file defines the Principal attached to a realtime connection.
// No runtime, network, or UI logic should be added here.
package domain

// AnonymousName is the sender name used for unauthenticated principals.
const AnonymousName = "Anonymous"

// Principal is the identity resolved from a credential at handshake time.
// It is immutable once attached to a connection.
type Principal struct {
	UserID        string
	DisplayName   string
	Authenticated bool
}

// Anonymous returns the principal used when no valid credential is presented.
func Anonymous() Principal {
	return Principal{}
}

// SenderName returns the name a chat message from this principal is signed with.
func (p Principal) SenderName() string {
	if p.Authenticated && p.DisplayName != "" {
		return p.DisplayName
	}
	return AnonymousName
}
