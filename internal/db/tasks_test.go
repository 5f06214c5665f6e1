package db

import (
	"context"
	"errors"
	"testing"

	"github.com/ldi/stride/pkg/models"
)

func TestCreateTaskAutoID(t *testing.T) {
	db := testDB(t)

	pm := seedStaff(t, db, "NV_00001", models.TitleProjectManager)
	p := seedProject(t, db, "P25_00001", pm.ID)

	t1 := seedTask(t, db, p.ID, pm.ID)
	t2 := seedTask(t, db, p.ID, pm.ID)

	if t1.ID != "TP25_00001_00001" {
		t.Errorf("Expected first id TP25_00001_00001, got %s", t1.ID)
	}
	if t2.ID != "TP25_00001_00002" {
		t.Errorf("Expected second id TP25_00001_00002, got %s", t2.ID)
	}

	// Ids keep counting past deletions instead of reusing holes.
	if err := db.DeleteTask(context.Background(), t2.ID); err != nil {
		t.Fatalf("Failed to delete task: %v", err)
	}
	t3 := seedTask(t, db, p.ID, pm.ID)
	if t3.ID != "TP25_00001_00002" {
		t.Errorf("Expected next id TP25_00001_00002 after highest remaining, got %s", t3.ID)
	}
}

func TestCreateTaskClampsToProject(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	pm := seedStaff(t, db, "NV_00001", models.TitleProjectManager)
	p := seedProject(t, db, "P25_00001", pm.ID) // 2025-03-01 .. 2025-04-30

	task := &models.Task{
		ProjectID:  p.ID,
		Name:       "Early and late task",
		AssigneeID: pm.ID,
		StartDate:  models.Date(2025, 2, 1),
		Deadline:   models.Date(2025, 6, 1),
	}
	if err := db.CreateTask(ctx, task); err != nil {
		t.Fatalf("Failed to create task: %v", err)
	}

	got, _ := db.GetTask(ctx, task.ID)
	if !got.StartDate.Equal(p.StartDate) {
		t.Errorf("Expected start clamped to %v, got %v", p.StartDate, got.StartDate)
	}
	if !got.Deadline.Equal(p.ExpectedEnd) {
		t.Errorf("Expected deadline clamped to %v, got %v", p.ExpectedEnd, got.Deadline)
	}
}

func TestCreateTaskChecks(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	pm := seedStaff(t, db, "NV_00001", models.TitleProjectManager)
	p := seedProject(t, db, "P25_00001", pm.ID)

	// Step 1: unknown project.
	task := &models.Task{
		ProjectID: "P99_99999",
		Name:      "Orphan task",
		StartDate: models.Date(2025, 3, 3),
		Deadline:  models.Date(2025, 3, 14),
	}
	if err := db.CreateTask(ctx, task); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("Expected not found for unknown project, got %v", err)
	}

	// Step 2: unknown assignee.
	task = &models.Task{
		ProjectID:  p.ID,
		Name:       "Ghost assignee",
		AssigneeID: "NV_99999",
		StartDate:  models.Date(2025, 3, 3),
		Deadline:   models.Date(2025, 3, 14),
	}
	if err := db.CreateTask(ctx, task); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("Expected not found for unknown assignee, got %v", err)
	}

	// Step 3: explicit id collision.
	existing := seedTask(t, db, p.ID, pm.ID)
	task = &models.Task{
		ID:        existing.ID,
		ProjectID: p.ID,
		Name:      "Duplicate id",
		StartDate: models.Date(2025, 3, 3),
		Deadline:  models.Date(2025, 3, 14),
	}
	if err := db.CreateTask(ctx, task); !errors.Is(err, models.ErrValidation) {
		t.Fatalf("Expected validation error for duplicate id, got %v", err)
	}
}

func TestSetTaskStatusTransitions(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	pm := seedStaff(t, db, "NV_00001", models.TitleProjectManager)
	p := seedProject(t, db, "P25_00001", pm.ID)
	task := seedTask(t, db, p.ID, pm.ID)

	// Step 1: To Do cannot jump straight to Completed.
	err := db.SetTaskStatus(ctx, task.ID, models.TaskCompleted)
	if !errors.Is(err, models.ErrValidation) {
		t.Fatalf("Expected validation error for To Do -> Completed, got %v", err)
	}

	// Step 2: completing through In Progress stamps the completed date.
	if err := db.SetTaskStatus(ctx, task.ID, models.TaskInProgress); err != nil {
		t.Fatalf("Failed transition to In Progress: %v", err)
	}
	if err := db.SetTaskStatus(ctx, task.ID, models.TaskCompleted); err != nil {
		t.Fatalf("Failed transition to Completed: %v", err)
	}
	got, _ := db.GetTask(ctx, task.ID)
	if got.CompletedDate == nil || !got.CompletedDate.Equal(models.Date(2025, 3, 10)) {
		t.Fatalf("Expected completed date 2025-03-10, got %v", got.CompletedDate)
	}

	// Step 3: reopening clears it again.
	if err := db.SetTaskStatus(ctx, task.ID, models.TaskInProgress); err != nil {
		t.Fatalf("Failed to reopen task: %v", err)
	}
	got, _ = db.GetTask(ctx, task.ID)
	if got.CompletedDate != nil {
		t.Fatalf("Expected completed date cleared, got %v", got.CompletedDate)
	}

	if err := db.SetTaskStatus(ctx, "TP25_00001_99999", models.TaskInProgress); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("Expected not found for missing task, got %v", err)
	}
}

func TestListTasksFilters(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	pm := seedStaff(t, db, "NV_00001", models.TitleProjectManager)
	dev := seedStaff(t, db, "NV_00002", models.TitleNone)
	p1 := seedProject(t, db, "P25_00001", pm.ID)
	p2 := seedProject(t, db, "P25_00002", pm.ID)

	seedTask(t, db, p1.ID, pm.ID)
	b := seedTask(t, db, p1.ID, dev.ID)
	seedTask(t, db, p2.ID, dev.ID)

	if err := db.SetTaskStatus(ctx, b.ID, models.TaskInProgress); err != nil {
		t.Fatalf("Failed to set status: %v", err)
	}

	byProject, err := db.ListTasks(ctx, p1.ID, nil, "")
	if err != nil {
		t.Fatalf("List by project failed: %v", err)
	}
	if len(byProject) != 2 {
		t.Errorf("Expected 2 tasks in %s, got %d", p1.ID, len(byProject))
	}

	inProgress := models.TaskInProgress
	byStatus, err := db.ListTasks(ctx, "", &inProgress, "")
	if err != nil {
		t.Fatalf("List by status failed: %v", err)
	}
	if len(byStatus) != 1 || byStatus[0].ID != b.ID {
		t.Errorf("Expected [%s], got %v", b.ID, byStatus)
	}

	byAssignee, err := db.ListTasks(ctx, "", nil, dev.ID)
	if err != nil {
		t.Fatalf("List by assignee failed: %v", err)
	}
	if len(byAssignee) != 2 {
		t.Errorf("Expected 2 tasks for %s, got %d", dev.ID, len(byAssignee))
	}

	if byProject[0].AssigneeName != "Anna Kovaleva" {
		t.Errorf("Expected joined assignee name, got %q", byProject[0].AssigneeName)
	}
}

func TestOverdueTasks(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	pm := seedStaff(t, db, "NV_00001", models.TitleProjectManager)
	p := seedProject(t, db, "P25_00001", pm.ID)

	// Deadline 2025-03-14 for all three seeded tasks.
	late := seedTask(t, db, p.ID, pm.ID)
	done := seedTask(t, db, p.ID, pm.ID)
	seedTask(t, db, p.ID, pm.ID)

	if err := db.SetTaskStatus(ctx, done.ID, models.TaskInProgress); err != nil {
		t.Fatalf("Failed to set status: %v", err)
	}
	if err := db.SetTaskStatus(ctx, done.ID, models.TaskCompleted); err != nil {
		t.Fatalf("Failed to set status: %v", err)
	}

	// Step 1: nothing overdue while the deadline is still ahead.
	overdue, err := db.OverdueTasks(ctx, "", models.Date(2025, 3, 14))
	if err != nil {
		t.Fatalf("Overdue query failed: %v", err)
	}
	if len(overdue) != 0 {
		t.Fatalf("Expected no overdue tasks on the deadline day, got %d", len(overdue))
	}

	// Step 2: past the deadline, only the unfinished tasks show up.
	overdue, err = db.OverdueTasks(ctx, p.ID, models.Date(2025, 3, 15))
	if err != nil {
		t.Fatalf("Overdue query failed: %v", err)
	}
	if len(overdue) != 2 {
		t.Fatalf("Expected 2 overdue tasks, got %d", len(overdue))
	}
	for _, task := range overdue {
		if task.ID == done.ID {
			t.Errorf("Completed task %s must not be overdue", done.ID)
		}
	}
	if overdue[0].ID != late.ID {
		t.Errorf("Expected %s first, got %s", late.ID, overdue[0].ID)
	}
}
