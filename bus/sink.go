package bus

import (
	"context"

	"taskroom/domain"
)

// ChannelSink bridges the bus to a single connection's write loop.
type ChannelSink struct {
	events chan domain.ChatEvent
}

func NewChannelSink(bufferSize int) *ChannelSink {
	return &ChannelSink{events: make(chan domain.ChatEvent, bufferSize)}
}

// Consume is called by the bus during fan-out. It hands the event to the
// owning connection's write loop without ever blocking the publisher: when
// the buffer is full the event is dropped for this one subscriber.
func (s *ChannelSink) Consume(ctx context.Context, e domain.ChatEvent) error {
	select {
	case s.events <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		// Backpressured connection: drop this single delivery.
		return nil
	}
}

// Events exposes the delivery channel to the session's write loop.
func (s *ChannelSink) Events() <-chan domain.ChatEvent {
	return s.events
}
