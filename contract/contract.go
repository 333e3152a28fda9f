//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"taskroom/domain"
)

// EventSink is the delivery end of a single realtime connection.
// Consume must never block the caller: implementations drop the event
// when the connection cannot keep up.
type EventSink interface {
	Consume(ctx context.Context, e domain.ChatEvent) error
}

// Bus is the group broadcast mechanism shared by sessions and the
// notification trigger. It holds addressing identifiers only, never
// connection lifecycle ownership: a session must call Leave as part of
// its own teardown.
type Bus interface {
	// Join adds a connection to a group. Idempotent.
	Join(key domain.GroupKey, connectionID string, sink EventSink)
	// Leave removes a connection from a group. Idempotent; empty groups
	// are garbage-collected.
	Leave(key domain.GroupKey, connectionID string)
	// Publish delivers the event to every member of the group at the
	// instant of publish. Fire-and-forget per subscriber.
	Publish(ctx context.Context, key domain.GroupKey, e domain.ChatEvent)
}

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}
