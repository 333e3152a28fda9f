package domain

import "fmt"

// GroupKey identifies a broadcast scope. A group is not a persisted entity:
// it exists only as the set of connections currently subscribed under its key.
type GroupKey string

// GroupKeyForProject derives the broadcast group key of a project room.
// Sessions and the notification trigger must both go through this function
// so that a CRUD-side publish reaches the exact group the sessions joined.
func GroupKeyForProject(projectID int) GroupKey {
	return GroupKey(fmt.Sprintf("project_chat_%d", projectID))
}
