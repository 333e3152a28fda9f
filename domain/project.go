package domain

import "time"

// Project is owned by the user that created it. Ownership gates task
// completion, which in turn gates the system notification trigger.
type Project struct {
	ID          int
	Name        string
	Description string
	OwnerID     string
	CreatedAt   time.Time
	Tasks       []Task
}

type Task struct {
	ID           int
	ProjectID    int
	Title        string
	Description  string
	DueDate      *time.Time
	IsCompleted  bool
	AssignedToID string
}
