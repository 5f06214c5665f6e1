package models

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

type TaskPriority string

const (
	PriorityLow      TaskPriority = "Low"
	PriorityMedium   TaskPriority = "Medium"
	PriorityHigh     TaskPriority = "High"
	PriorityCritical TaskPriority = "Critical"
)

var TaskPriorities = []TaskPriority{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}

type TaskStatus string

const (
	TaskToDo       TaskStatus = "To Do"
	TaskInProgress TaskStatus = "In Progress"
	TaskCompleted  TaskStatus = "Completed"
	TaskCancelled  TaskStatus = "Cancelled"
)

var TaskStatuses = []TaskStatus{TaskToDo, TaskInProgress, TaskCompleted, TaskCancelled}

// Unassigned is the literal assignee id of a task with no owner.
const Unassigned = "Unassigned"

type Task struct {
	ID            string       `json:"id"`
	ProjectID     string       `json:"project_id"`
	Name          string       `json:"name"`
	Description   string       `json:"description"`
	AssigneeID    string       `json:"assignee_id"`
	StartDate     time.Time    `json:"start_date"`
	Deadline      time.Time    `json:"deadline"`
	CompletedDate *time.Time   `json:"completed_date"`
	Priority      TaskPriority `json:"priority"`
	Status        TaskStatus   `json:"status"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`

	// AssigneeName is a helper field for joined queries.
	AssigneeName string `json:"assignee_name,omitempty"`
}

func (t *Task) Assigned() bool {
	return t.AssigneeID != "" && t.AssigneeID != Unassigned
}

var taskIDSuffixRe = regexp.MustCompile(`^_\d{5}$`)

// ValidateTaskID checks the T<project_id>_00000 grammar against the owning
// project.
func ValidateTaskID(id, projectID string) error {
	prefix := "T" + projectID
	if !strings.HasPrefix(id, prefix) || !taskIDSuffixRe.MatchString(strings.TrimPrefix(id, prefix)) {
		return fmt.Errorf("task id %q must match T%s_00000: %w", id, projectID, ErrValidation)
	}
	return nil
}

func (t *Task) Validate() error {
	if err := ValidateProjectID(t.ProjectID); err != nil {
		return err
	}
	if err := ValidateTaskID(t.ID, t.ProjectID); err != nil {
		return err
	}
	if len(strings.TrimSpace(t.Name)) < 3 {
		return fmt.Errorf("task name must be at least 3 characters: %w", ErrValidation)
	}
	if t.AssigneeID != Unassigned {
		if err := ValidateStaffID(t.AssigneeID); err != nil {
			return err
		}
	}
	if t.StartDate.IsZero() || t.Deadline.IsZero() {
		return fmt.Errorf("task start date and deadline must be set: %w", ErrValidation)
	}
	if t.Deadline.Before(t.StartDate) {
		return fmt.Errorf("task deadline must be on or after its start date: %w", ErrValidation)
	}
	if !validTaskPriority(t.Priority) {
		return fmt.Errorf("invalid task priority %q: %w", t.Priority, ErrValidation)
	}
	if !validTaskStatus(t.Status) {
		return fmt.Errorf("invalid task status %q: %w", t.Status, ErrValidation)
	}
	return nil
}

// ClampToProject pulls the task dates inside the project window: start is
// raised to the project start, the deadline is capped at the expected end and
// never precedes the start.
func (t *Task) ClampToProject(p *Project) {
	if t.StartDate.Before(p.StartDate) {
		t.StartDate = p.StartDate
	}
	if t.Deadline.After(p.ExpectedEnd) {
		t.Deadline = p.ExpectedEnd
	}
	if t.Deadline.Before(t.StartDate) {
		t.Deadline = t.StartDate
	}
}

func validTaskPriority(p TaskPriority) bool {
	for _, v := range TaskPriorities {
		if p == v {
			return true
		}
	}
	return false
}

func validTaskStatus(s TaskStatus) bool {
	for _, v := range TaskStatuses {
		if s == v {
			return true
		}
	}
	return false
}
