package services

import (
	"context"
	"log/slog"
	"testing"

	"taskroom/bus"
	"taskroom/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// Runs the trigger against the real bus to check the end-to-end contract:
// every connection in the project's group gets the notice, others get nothing.
func TestNotifier_TaskCompletedReachesOnlyTheProjectGroup(t *testing.T) {
	req := require.New(t)
	registry := bus.NewGroupRegistry(slog.Default())
	notifier := NewNotifier(registry, slog.Default())

	sinkA := bus.NewChannelSink(8)
	sinkB := bus.NewChannelSink(8)
	sinkOther := bus.NewChannelSink(8)
	registry.Join(domain.GroupKeyForProject(7), uuid.NewString(), sinkA)
	registry.Join(domain.GroupKeyForProject(7), uuid.NewString(), sinkB)
	registry.Join(domain.GroupKeyForProject(8), uuid.NewString(), sinkOther)

	notifier.TaskCompleted(context.Background(), 7, "Design")

	for _, sink := range []*bus.ChannelSink{sinkA, sinkB} {
		select {
		case e := <-sink.Events():
			req.Equal(domain.KindChatMessage, e.Kind)
			req.Equal(SystemSender, e.Sender)
			req.Equal("The task 'Design' has been completed.", e.Text)
		default:
			req.Fail("expected a completion notice")
		}
	}

	select {
	case e := <-sinkOther.Events():
		req.Failf("group isolation broken", "got %q", e.Text)
	default:
	}
}
