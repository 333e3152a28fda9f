package workers

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"
)

// StatsSource exposes live broadcast counters, typically the group registry.
type StatsSource interface {
	GroupCount() int
	ConnectionCount() int
}

// TelemetryWorker periodically logs process health (RSS, CPU, OS status)
// alongside the live room and connection counts.
type TelemetryWorker struct {
	log      *slog.Logger
	interval time.Duration
	stats    StatsSource
}

func NewTelemetryWorker(log *slog.Logger, interval time.Duration, stats StatsSource) *TelemetryWorker {
	return &TelemetryWorker{log: log, interval: interval, stats: stats}
}

func (w *TelemetryWorker) Run(ctx context.Context) error {
	w.log.Info("Starting telemetry worker", "interval", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			rss, cpu, status, err := selfStats(p)
			if err != nil {
				w.log.Error("Failed to collect self stats", "err", err)
				continue
			}
			w.log.Info("Telemetry",
				"ram_bytes", rss,
				"cpu_percent", cpu,
				"pid_status", status,
				"rooms", w.stats.GroupCount(),
				"connections", w.stats.ConnectionCount())
		}
	}
}

func selfStats(p *process.Process) (uint64, float64, string, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return 0, 0, "", err
	}
	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return 0, 0, "", err
	}
	status, err := p.Status()
	if err != nil {
		return 0, 0, "", err
	}
	return memInfo.RSS, cpuPercent, status, nil
}
