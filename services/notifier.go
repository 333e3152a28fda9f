package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"taskroom/contract"
	"taskroom/domain"
)

// SystemSender signs every trigger-originated broadcast.
const SystemSender = "System"

// Notifier is the bridge from the CRUD layer into the broadcast bus.
// It is invoked synchronously after a tracked mutation and its authorization
// check have both succeeded, and never waits for delivery: fan-out outcome is
// the bus's business.
type Notifier struct {
	bus contract.Bus
	log *slog.Logger
}

func NewNotifier(bus contract.Bus, log *slog.Logger) *Notifier {
	return &Notifier{bus: bus, log: log}
}

// TaskCompleted pushes a completion notice into the project's chat group.
// The group key derivation is shared with the realtime sessions, so the
// notice reaches exactly the connections currently joined to that project.
func (n *Notifier) TaskCompleted(ctx context.Context, projectID int, taskTitle string) {
	event := domain.ChatEvent{
		Kind:      domain.KindChatMessage,
		Sender:    SystemSender,
		Text:      fmt.Sprintf("The task '%s' has been completed.", taskTitle),
		ProjectID: projectID,
		At:        time.Now().UTC(),
	}
	n.bus.Publish(ctx, domain.GroupKeyForProject(projectID), event)
	n.log.Info("task completion broadcast", "project_id", projectID, "task", taskTitle)
}
