package bus

import (
	"context"
	"testing"

	"taskroom/domain"

	"github.com/stretchr/testify/require"
)

func TestChannelSink_DropsOnOverflow(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	sink := NewChannelSink(2)

	// Filling the buffer never blocks nor errors
	req.NoError(sink.Consume(ctx, domain.ChatEvent{Text: "one"}))
	req.NoError(sink.Consume(ctx, domain.ChatEvent{Text: "two"}))
	req.NoError(sink.Consume(ctx, domain.ChatEvent{Text: "dropped"}))

	req.Equal("one", (<-sink.Events()).Text)
	req.Equal("two", (<-sink.Events()).Text)
	select {
	case e := <-sink.Events():
		req.Failf("unexpected delivery", "got %q", e.Text)
	default:
	}
}

func TestChannelSink_DeliversInOrder(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	sink := NewChannelSink(4)

	req.NoError(sink.Consume(ctx, domain.ChatEvent{Text: "a"}))
	req.NoError(sink.Consume(ctx, domain.ChatEvent{Text: "b"}))

	req.Equal("a", (<-sink.Events()).Text)
	req.Equal("b", (<-sink.Events()).Text)
}
