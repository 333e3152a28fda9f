// Package bus implements the process-wide group broadcast mechanism.
// It is constructed once at startup and handed to every session and to the
// notification trigger, so the membership table is never ambient global state.
package bus

import (
	"context"
	"log/slog"
	"sync"

	"taskroom/contract"
	"taskroom/domain"
)

type memberSet map[string]contract.EventSink

// GroupRegistry maps group keys to the sinks of currently joined connections.
//
// Join, Leave and Publish on the same group are serialized with respect to
// membership mutation: Publish snapshots the member set under the read lock,
// so a Leave that completes before a Publish acquires the lock is guaranteed
// to exclude that connection from the snapshot. Delivery itself happens
// outside the lock and never blocks on a slow subscriber (sinks drop on
// overflow), so a stuck connection cannot stall the publisher or its peers.
type GroupRegistry struct {
	mu     sync.RWMutex
	groups map[domain.GroupKey]memberSet
	log    *slog.Logger
}

func NewGroupRegistry(log *slog.Logger) *GroupRegistry {
	return &GroupRegistry{
		groups: make(map[domain.GroupKey]memberSet),
		log:    log,
	}
}

// Join adds a connection to a group. Idempotent: re-joining replaces the
// sink registered under the same connection id.
func (r *GroupRegistry) Join(key domain.GroupKey, connectionID string, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.groups[key]
	if !ok {
		members = make(memberSet)
		r.groups[key] = members
	}
	members[connectionID] = sink
}

// Leave removes a connection from a group. Idempotent. The group entry is
// removed once its last member leaves so the table never accumulates empty
// sets over time.
func (r *GroupRegistry) Leave(key domain.GroupKey, connectionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.groups[key]
	if !ok {
		return
	}
	delete(members, connectionID)
	if len(members) == 0 {
		delete(r.groups, key)
	}
}

// Publish delivers the event to every member of the group at the instant of
// publish. Publishing to an unknown or empty group is a no-op. A failed or
// dropped delivery to one subscriber never affects the others and is never
// surfaced to the publisher.
func (r *GroupRegistry) Publish(ctx context.Context, key domain.GroupKey, e domain.ChatEvent) {
	r.mu.RLock()
	members := r.groups[key]
	sinks := make([]contract.EventSink, 0, len(members))
	for _, sink := range members {
		sinks = append(sinks, sink)
	}
	r.mu.RUnlock()

	for _, sink := range sinks {
		if err := sink.Consume(ctx, e); err != nil {
			r.log.Debug("delivery skipped", "group", key, "error", err)
		}
	}
}

// GroupCount reports the number of non-empty groups, for telemetry.
func (r *GroupRegistry) GroupCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.groups)
}

// ConnectionCount reports the number of joined connections across all groups.
func (r *GroupRegistry) ConnectionCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	total := 0
	for _, members := range r.groups {
		total += len(members)
	}
	return total
}
