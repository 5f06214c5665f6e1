package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ldi/stride/pkg/models"
)

func TestBuildWeeklyMetrics(t *testing.T) {
	store := newFakeStore()
	p, pm := pmFixture(store)
	b := testBuilder(store, models.Date(2025, 1, 8))
	ctx := context.Background()

	doneInWindow := models.Date(2025, 1, 5)
	doneBefore := models.Date(2024, 12, 30)

	// Window will be 2025-01-01 .. 2025-01-07.
	store.addTask(p.ID, 1, models.Date(2025, 1, 2), models.Date(2025, 1, 6), models.TaskCompleted, &doneInWindow)
	store.addTask(p.ID, 2, models.Date(2025, 1, 3), models.Date(2025, 1, 7), models.TaskInProgress, nil)
	// Completed outside the window counts toward total but not completed.
	store.addTask(p.ID, 3, models.Date(2025, 1, 1), models.Date(2025, 1, 5), models.TaskCompleted, &doneBefore)
	// Cancelled in-window task is excluded from the total.
	store.addTask(p.ID, 4, models.Date(2025, 1, 2), models.Date(2025, 1, 6), models.TaskCancelled, nil)
	// Spans the whole window.
	store.addTask(p.ID, 5, models.Date(2024, 12, 20), models.Date(2025, 2, 10), models.TaskToDo, nil)
	// Entirely outside the window.
	store.addTask(p.ID, 6, models.Date(2025, 1, 20), models.Date(2025, 1, 25), models.TaskToDo, nil)

	result, err := b.BuildWeekly(ctx, p.ID, pm.ID, models.Date(2025, 1, 7))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	r := result.Report

	if r.ID != "WRP25_00001_W01" {
		t.Errorf("Expected id WRP25_00001_W01, got %s", r.ID)
	}
	if r.TotalTasks != 4 {
		t.Errorf("Expected total 4, got %d", r.TotalTasks)
	}
	if r.Completed != 1 {
		t.Errorf("Expected completed 1, got %d", r.Completed)
	}
	if r.Completed > r.TotalTasks {
		t.Error("Completed exceeds total")
	}
	// Task 3 is Completed, so only in-window open tasks past their deadline
	// count. Task 2's deadline equals the period end and is not overdue.
	if r.Overdue != 0 {
		t.Errorf("Expected no overdue tasks, got %d", r.Overdue)
	}
	if r.Status != models.ProgressAtRisk {
		t.Errorf("Expected At Risk, got %s", r.Status)
	}
	if r.Progress != 25.0 {
		t.Errorf("Expected progress 25.0, got %v", r.Progress)
	}

	// Nothing is saved until CreateWeekly.
	if len(store.weekly) != 0 {
		t.Errorf("Expected no saved reports, got %d", len(store.weekly))
	}
}

func TestBuildWeeklyDelayScenario(t *testing.T) {
	store := newFakeStore()
	p, pm := pmFixture(store)
	b := testBuilder(store, models.Date(2025, 1, 15))
	ctx := context.Background()

	// An open task due mid-January.
	task := store.addTask(p.ID, 1, models.Date(2025, 1, 2), models.Date(2025, 1, 10), models.TaskToDo, nil)

	// Step 1: first week 01/01 .. 07/01, nothing overdue yet.
	first, err := b.CreateWeekly(ctx, p.ID, pm.ID, models.Date(2025, 1, 7))
	if err != nil {
		t.Fatalf("Failed to create first report: %v", err)
	}
	if first.Report.Status == models.ProgressDelay {
		t.Fatalf("Did not expect Delay in the first week")
	}

	// Step 2: second week allocates 08/01 .. 14/01 automatically; the task
	// is now past its deadline and still open.
	second, err := b.CreateWeekly(ctx, p.ID, pm.ID, time.Time{})
	if err != nil {
		t.Fatalf("Failed to create second report: %v", err)
	}
	r := second.Report
	if !r.PeriodStart.Equal(models.Date(2025, 1, 8)) || !r.PeriodEnd.Equal(models.Date(2025, 1, 14)) {
		t.Errorf("Expected 2025-01-08..2025-01-14, got %v..%v", r.PeriodStart, r.PeriodEnd)
	}
	if r.ID != "WRP25_00001_W02" {
		t.Errorf("Expected id WRP25_00001_W02, got %s", r.ID)
	}
	if r.Overdue != 1 || len(second.OverdueTasks) != 1 || second.OverdueTasks[0].ID != task.ID {
		t.Errorf("Expected task %s overdue, got %+v", task.ID, second.OverdueTasks)
	}
	if r.Status != models.ProgressDelay {
		t.Errorf("Expected Delay, got %s", r.Status)
	}
}

func TestBuildWeeklyAuthorChecks(t *testing.T) {
	store := newFakeStore()
	p, _ := pmFixture(store)
	b := testBuilder(store, models.Date(2025, 1, 8))
	ctx := context.Background()

	otherPM := &models.Staff{
		ID: "NV_00002", FullName: "Maria Petrova", Age: 40,
		Level: models.LevelSenior, Role: models.RoleDeveloper,
		ManagementTitle: models.TitleProjectManager,
	}
	dev := &models.Staff{
		ID: "NV_00003", FullName: "Boris Ivanov", Age: 28,
		Level: models.LevelJunior, Role: models.RoleDeveloper,
	}
	store.staff[otherPM.ID] = otherPM
	store.staff[dev.ID] = dev

	end := models.Date(2025, 1, 7)

	if _, err := b.BuildWeekly(ctx, p.ID, "NV_99999", end); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Expected not found for unknown author, got %v", err)
	}
	if _, err := b.BuildWeekly(ctx, p.ID, dev.ID, end); !errors.Is(err, models.ErrPermission) {
		t.Errorf("Expected permission error for non-manager, got %v", err)
	}
	if _, err := b.BuildWeekly(ctx, p.ID, otherPM.ID, end); !errors.Is(err, models.ErrPermission) {
		t.Errorf("Expected permission error for another project's manager, got %v", err)
	}
	if _, err := b.BuildWeekly(ctx, "P25_00099", "NV_00001", end); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Expected not found for unknown project, got %v", err)
	}
}

func TestBuildWeeklyIDCollision(t *testing.T) {
	store := newFakeStore()
	p, pm := pmFixture(store)
	b := testBuilder(store, models.Date(2025, 1, 8))
	ctx := context.Background()

	// A week-1 id present without a matching period record forces a clash.
	store.weekly = append(store.weekly, &models.WeeklyReport{
		ID:        models.WeeklyReportID(p.ID, 1),
		ProjectID: "P25_00099",
	})

	_, err := b.BuildWeekly(ctx, p.ID, pm.ID, models.Date(2025, 1, 7))
	if !errors.Is(err, models.ErrValidation) {
		t.Fatalf("Expected validation error on id collision, got %v", err)
	}
}

func TestWeeklySequenceInvariants(t *testing.T) {
	store := newFakeStore()
	p, pm := pmFixture(store)
	b := testBuilder(store, models.Date(2025, 2, 1))
	ctx := context.Background()

	// Step 1: report every week until the allocator refuses.
	if _, err := b.CreateWeekly(ctx, p.ID, pm.ID, models.Date(2025, 1, 4)); err != nil {
		t.Fatalf("Failed to create first report: %v", err)
	}
	for {
		_, err := b.CreateWeekly(ctx, p.ID, pm.ID, time.Time{})
		if err != nil {
			if !errors.Is(err, models.ErrValidation) {
				t.Fatalf("Expected exhaustion as validation error, got %v", err)
			}
			break
		}
	}

	// Step 2: the series is contiguous from the project start to its
	// expected end, with no period longer than seven days.
	reports := store.weekly
	if len(reports) == 0 {
		t.Fatal("Expected at least one report")
	}
	if !reports[0].PeriodStart.Equal(p.StartDate) {
		t.Errorf("Expected series to start at %v, got %v", p.StartDate, reports[0].PeriodStart)
	}
	for i, r := range reports {
		if r.PeriodEnd.After(p.ExpectedEnd) {
			t.Errorf("Report %s ends past the project expected end", r.ID)
		}
		if r.PeriodEnd.Sub(r.PeriodStart) > 6*24*time.Hour {
			t.Errorf("Report %s period longer than 7 days", r.ID)
		}
		if i > 0 && !r.PeriodStart.Equal(reports[i-1].PeriodEnd.AddDate(0, 0, 1)) {
			t.Errorf("Gap or overlap between %s and %s", reports[i-1].ID, r.ID)
		}
	}
	if !reports[len(reports)-1].PeriodEnd.Equal(p.ExpectedEnd) {
		t.Errorf("Expected last period to end at %v, got %v", p.ExpectedEnd, reports[len(reports)-1].PeriodEnd)
	}
}

func TestNextPeriodTasksPreview(t *testing.T) {
	store := newFakeStore()
	p, pm := pmFixture(store)
	b := testBuilder(store, models.Date(2025, 1, 8))
	ctx := context.Background()

	done := models.Date(2025, 1, 12)
	upcoming := store.addTask(p.ID, 1, models.Date(2025, 1, 9), models.Date(2025, 1, 13), models.TaskToDo, nil)
	store.addTask(p.ID, 2, models.Date(2025, 1, 9), models.Date(2025, 1, 13), models.TaskCompleted, &done)
	store.addTask(p.ID, 3, models.Date(2025, 1, 20), models.Date(2025, 1, 25), models.TaskToDo, nil)

	result, err := b.BuildWeekly(ctx, p.ID, pm.ID, models.Date(2025, 1, 7))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	// Preview window is 2025-01-08 .. 2025-01-14: open tasks only.
	if len(result.NextPeriodTasks) != 1 || result.NextPeriodTasks[0].ID != upcoming.ID {
		t.Fatalf("Expected preview [%s], got %+v", upcoming.ID, result.NextPeriodTasks)
	}
}
