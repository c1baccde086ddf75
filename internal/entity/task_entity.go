package entity

import (
	"time"

	"github.com/google/uuid"

	"task-manager-be/pkg/textmatch"
)

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

type Task struct {
	Id          uuid.UUID
	Title       string
	Description string
	Priority    TaskPriority
	DueDate     *time.Time
	Completed   bool
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

// SearchRecord flattens the task into the field map the search engine scans.
// Only these fields are ever visible to search.
func (t *Task) SearchRecord() textmatch.Record {
	return textmatch.Record{
		"id":          t.Id.String(),
		"title":       t.Title,
		"description": t.Description,
		"priority":    string(t.Priority),
	}
}
