package workers

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fixedStats struct{ groups, connections int }

func (s fixedStats) GroupCount() int      { return s.groups }
func (s fixedStats) ConnectionCount() int { return s.connections }

func TestTelemetryWorker_StopsOnCancel(t *testing.T) {
	req := require.New(t)
	worker := NewTelemetryWorker(slog.Default(), 10*time.Millisecond, fixedStats{groups: 2, connections: 5})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- worker.Run(ctx) }()

	// Let a few ticks go by, then stop
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		req.ErrorIs(err, context.Canceled)
	case <-time.After(1 * time.Second):
		req.Fail("telemetry worker did not stop on cancel")
	}
}
