package model

import (
	"time"

	"github.com/google/uuid"
)

// WorkflowStatus is the lifecycle state of a workflow item.
type WorkflowStatus string

const (
	WorkflowPending    WorkflowStatus = "pending"
	WorkflowInProgress WorkflowStatus = "in_progress"
	WorkflowCompleted  WorkflowStatus = "completed"
	WorkflowFailed     WorkflowStatus = "failed"
)

// Valid reports whether s is a known workflow status.
func (s WorkflowStatus) Valid() bool {
	switch s {
	case WorkflowPending, WorkflowInProgress, WorkflowCompleted, WorkflowFailed:
		return true
	}
	return false
}

// WorkflowItem is one row on the workflows page. It is the entity behind
// the workflowItems resource and feeds the dashboard chart aggregations.
type WorkflowItem struct {
	ID        uuid.UUID      `json:"id"`
	Name      string         `json:"name"`
	Status    WorkflowStatus `json:"status"`
	Assignee  string         `json:"assignee"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}
