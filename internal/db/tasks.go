package db

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ldi/stride/pkg/models"
)

const taskColumns = `t.id, t.project_id, t.name, t.description, t.assignee_id, t.start_date,
       t.deadline, t.completed_date, t.priority, t.status, t.created_at, t.updated_at,
       COALESCE(s.full_name, '') AS assignee_name`

const taskFrom = ` FROM tasks t LEFT JOIN staff s ON t.assignee_id = s.id`

// NextTaskID derives the next free task id of a project from the highest
// existing suffix, so deleted ids are never reused out of order.
func (db *DB) NextTaskID(ctx context.Context, projectID string) (string, error) {
	rows, err := db.QueryContext(ctx, `SELECT id FROM tasks WHERE project_id = ?`, projectID)
	if err != nil {
		return "", fmt.Errorf("failed to list task ids: %w", err)
	}
	defer rows.Close()

	max := 0
	prefix := "T" + projectID + "_"
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", fmt.Errorf("failed to scan task id: %w", err)
		}
		n, err := strconv.Atoi(strings.TrimPrefix(id, prefix))
		if err == nil && n > max {
			max = n
		}
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("rows error: %w", err)
	}

	return fmt.Sprintf("T%s_%05d", projectID, max+1), nil
}

func (db *DB) CreateTask(ctx context.Context, t *models.Task) error {
	project, err := db.GetProject(ctx, t.ProjectID)
	if err != nil {
		return err
	}
	if project == nil {
		return fmt.Errorf("project %s: %w", t.ProjectID, models.ErrNotFound)
	}

	if t.ID == "" {
		if t.ID, err = db.NextTaskID(ctx, t.ProjectID); err != nil {
			return err
		}
	}
	if t.AssigneeID == "" {
		t.AssigneeID = models.Unassigned
	}
	if t.Status == "" {
		t.Status = models.TaskToDo
	}
	if t.Priority == "" {
		t.Priority = models.PriorityLow
	}

	// Task dates outside the project window are clamped, not rejected.
	t.ClampToProject(project)
	if err := t.Validate(); err != nil {
		return err
	}
	if err := db.checkAssignee(ctx, t.AssigneeID); err != nil {
		return err
	}

	existing, err := db.GetTask(ctx, t.ID)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("task id %s already exists: %w", t.ID, models.ErrValidation)
	}

	db.syncCompletedDate(t)

	ts := db.timestamp()
	t.CreatedAt, _ = parseTimestamp(ts)
	t.UpdatedAt = t.CreatedAt

	query := `
		INSERT INTO tasks (id, project_id, name, description, assignee_id, start_date,
		                   deadline, completed_date, priority, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	if _, err := db.ExecContext(ctx, query,
		t.ID, t.ProjectID, t.Name, t.Description, t.AssigneeID,
		models.FormatDate(t.StartDate), models.FormatDate(t.Deadline), formatOptionalDate(t.CompletedDate),
		t.Priority, t.Status, ts, ts,
	); err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	if err := db.refreshProjectStatus(ctx, t.ProjectID); err != nil {
		return err
	}

	db.logActivity(ctx, "task", t.ID, "create", t.Name)
	db.triggerChange(ctx)
	return nil
}

func (db *DB) checkAssignee(ctx context.Context, assigneeID string) error {
	if assigneeID == models.Unassigned {
		return nil
	}
	s, err := db.GetStaff(ctx, assigneeID)
	if err != nil {
		return err
	}
	if s == nil {
		return fmt.Errorf("assignee %s: %w", assigneeID, models.ErrNotFound)
	}
	return nil
}

// syncCompletedDate keeps the completed date tied to the Completed status: set
// when entering it, cleared otherwise.
func (db *DB) syncCompletedDate(t *models.Task) {
	if t.Status == models.TaskCompleted {
		if t.CompletedDate == nil {
			today := models.DateOnly(db.now())
			t.CompletedDate = &today
		}
	} else {
		t.CompletedDate = nil
	}
}

func (db *DB) GetTask(ctx context.Context, id string) (*models.Task, error) {
	query := `SELECT ` + taskColumns + taskFrom + ` WHERE t.id = ?`
	tasks, err := db.queryTasks(ctx, query, id)
	if err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return nil, nil
	}
	return tasks[0], nil
}

// ListTasks returns tasks, optionally filtered by project, status or assignee.
func (db *DB) ListTasks(ctx context.Context, projectID string, status *models.TaskStatus, assigneeID string) ([]*models.Task, error) {
	query := `SELECT ` + taskColumns + taskFrom + ` WHERE 1=1`
	args := []any{}

	if projectID != "" {
		query += " AND t.project_id = ?"
		args = append(args, projectID)
	}
	if status != nil {
		query += " AND t.status = ?"
		args = append(args, *status)
	}
	if assigneeID != "" {
		query += " AND t.assignee_id = ?"
		args = append(args, assigneeID)
	}

	query += " ORDER BY t.project_id, t.id"
	return db.queryTasks(ctx, query, args...)
}

// TasksForProject is the repository accessor the report builders consume.
func (db *DB) TasksForProject(ctx context.Context, projectID string) ([]*models.Task, error) {
	return db.ListTasks(ctx, projectID, nil, "")
}

// SearchTasks matches the keyword against task ids and names.
func (db *DB) SearchTasks(ctx context.Context, keyword string) ([]*models.Task, error) {
	query := `SELECT ` + taskColumns + taskFrom + ` WHERE t.id LIKE ? OR t.name LIKE ? ORDER BY t.id`
	pattern := "%" + keyword + "%"
	return db.queryTasks(ctx, query, pattern, pattern)
}

// OverdueTasks lists tasks whose deadline has passed without completion,
// across all projects or scoped to one.
func (db *DB) OverdueTasks(ctx context.Context, projectID string, asOf time.Time) ([]*models.Task, error) {
	query := `SELECT ` + taskColumns + taskFrom + ` WHERE t.deadline < ? AND t.status != ?`
	args := []any{models.FormatDate(asOf), models.TaskCompleted}

	if projectID != "" {
		query += " AND t.project_id = ?"
		args = append(args, projectID)
	}

	query += " ORDER BY t.deadline, t.id"
	return db.queryTasks(ctx, query, args...)
}

func (db *DB) UpdateTask(ctx context.Context, t *models.Task) error {
	current, err := db.GetTask(ctx, t.ID)
	if err != nil {
		return err
	}
	if current == nil {
		return fmt.Errorf("task %s: %w", t.ID, models.ErrNotFound)
	}

	project, err := db.GetProject(ctx, t.ProjectID)
	if err != nil {
		return err
	}
	if project == nil {
		return fmt.Errorf("project %s: %w", t.ProjectID, models.ErrNotFound)
	}

	t.ClampToProject(project)
	if err := t.Validate(); err != nil {
		return err
	}
	if err := db.checkAssignee(ctx, t.AssigneeID); err != nil {
		return err
	}
	if t.Status != current.Status {
		if err := validateTaskTransition(current.Status, t.Status); err != nil {
			return err
		}
	}
	db.syncCompletedDate(t)

	ts := db.timestamp()
	query := `
		UPDATE tasks
		SET name = ?, description = ?, assignee_id = ?, start_date = ?, deadline = ?,
		    completed_date = ?, priority = ?, status = ?, updated_at = ?
		WHERE id = ?
	`
	if _, err := db.ExecContext(ctx, query,
		t.Name, t.Description, t.AssigneeID,
		models.FormatDate(t.StartDate), models.FormatDate(t.Deadline), formatOptionalDate(t.CompletedDate),
		t.Priority, t.Status, ts, t.ID,
	); err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	if err := db.refreshProjectStatus(ctx, t.ProjectID); err != nil {
		return err
	}

	t.UpdatedAt, _ = parseTimestamp(ts)
	db.logActivity(ctx, "task", t.ID, "update", "")
	db.triggerChange(ctx)
	return nil
}

// SetTaskStatus applies a status transition, maintaining the completed date
// and the owning project's derived status.
func (db *DB) SetTaskStatus(ctx context.Context, id string, status models.TaskStatus) error {
	t, err := db.GetTask(ctx, id)
	if err != nil {
		return err
	}
	if t == nil {
		return fmt.Errorf("task %s: %w", id, models.ErrNotFound)
	}

	if err := validateTaskTransition(t.Status, status); err != nil {
		return err
	}

	t.Status = status
	db.syncCompletedDate(t)

	query := `UPDATE tasks SET status = ?, completed_date = ?, updated_at = ? WHERE id = ?`
	if _, err := db.ExecContext(ctx, query, t.Status, formatOptionalDate(t.CompletedDate), db.timestamp(), id); err != nil {
		return fmt.Errorf("failed to set task status: %w", err)
	}

	if err := db.refreshProjectStatus(ctx, t.ProjectID); err != nil {
		return err
	}

	db.logActivity(ctx, "task", id, "status_change", string(status))
	db.triggerChange(ctx)
	return nil
}

// DeleteTask removes a task. Assignment lists are derived, so the assignee's
// task list shrinks with it; the project status is recomputed afterwards.
func (db *DB) DeleteTask(ctx context.Context, id string) error {
	t, err := db.GetTask(ctx, id)
	if err != nil {
		return err
	}
	if t == nil {
		return fmt.Errorf("task %s: %w", id, models.ErrNotFound)
	}

	if _, err := db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	if err := db.refreshProjectStatus(ctx, t.ProjectID); err != nil {
		return err
	}

	db.logActivity(ctx, "task", id, "delete", "")
	db.triggerChange(ctx)
	return nil
}

func validateTaskTransition(from, to models.TaskStatus) error {
	if from == to {
		return nil
	}

	allowed := map[models.TaskStatus][]models.TaskStatus{
		models.TaskToDo:       {models.TaskInProgress, models.TaskCancelled},
		models.TaskInProgress: {models.TaskCompleted, models.TaskCancelled, models.TaskToDo},
		models.TaskCompleted:  {models.TaskInProgress},
		models.TaskCancelled:  {models.TaskToDo},
	}
	for _, s := range allowed[from] {
		if to == s {
			return nil
		}
	}
	return fmt.Errorf("invalid transition from %s to %s: %w", from, to, models.ErrValidation)
}

func (db *DB) queryTasks(ctx context.Context, query string, args ...any) ([]*models.Task, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return tasks, nil
}

func scanTask(rows *sql.Rows) (*models.Task, error) {
	t := &models.Task{}
	var start, deadline, completed, created, updated string
	if err := rows.Scan(
		&t.ID, &t.ProjectID, &t.Name, &t.Description, &t.AssigneeID, &start,
		&deadline, &completed, &t.Priority, &t.Status, &created, &updated,
		&t.AssigneeName,
	); err != nil {
		return nil, fmt.Errorf("failed to scan task: %w", err)
	}

	var err error
	if t.StartDate, err = models.ParseStoredDate(start); err != nil {
		return nil, err
	}
	if t.Deadline, err = models.ParseStoredDate(deadline); err != nil {
		return nil, err
	}
	if t.CompletedDate, err = parseOptionalDate(completed); err != nil {
		return nil, err
	}
	if t.CreatedAt, err = parseTimestamp(created); err != nil {
		return nil, err
	}
	if t.UpdatedAt, err = parseTimestamp(updated); err != nil {
		return nil, err
	}
	return t, nil
}
