package report

import (
	"context"
	"fmt"
	"time"

	"github.com/ldi/stride/pkg/models"
)

// Builder creates weekly and final reports on top of a Store.
type Builder struct {
	store Store

	// now is swappable in tests that need a fixed clock.
	now func() time.Time
}

func NewBuilder(store Store) *Builder {
	return &Builder{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// WeeklyResult carries a built weekly report together with the task lists
// that are shown to the operator but never persisted.
type WeeklyResult struct {
	Report          *models.WeeklyReport
	OverdueTasks    []*models.Task
	NextPeriodTasks []*models.Task
}

// BuildWeekly computes the next weekly report of a project without saving it.
// The author must be the project's assigned manager and hold the Project
// Manager title. firstEnd is only consulted for a project's first report; see
// NextPeriod.
func (b *Builder) BuildWeekly(ctx context.Context, projectID, authorID string, firstEnd time.Time) (*WeeklyResult, error) {
	project, err := b.store.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, fmt.Errorf("project %s: %w", projectID, models.ErrNotFound)
	}

	if err := b.checkAuthor(ctx, project, authorID); err != nil {
		return nil, err
	}

	existing, err := b.store.WeeklyReportsForProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	period, err := NextPeriod(project, existing, firstEnd)
	if err != nil {
		return nil, err
	}

	id := models.WeeklyReportID(projectID, period.Week)
	exists, err := b.store.WeeklyReportExists(ctx, id)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("weekly report %s already exists: %w", id, models.ErrValidation)
	}

	tasks, err := b.store.TasksForProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	var inWindow []*models.Task
	for _, t := range tasks {
		if taskInWindow(t, period.Start, period.End) {
			inWindow = append(inWindow, t)
		}
	}

	total, completed := 0, 0
	var overdue []*models.Task
	for _, t := range inWindow {
		if t.Status != models.TaskCancelled {
			total++
		}
		if t.Status == models.TaskCompleted && t.CompletedDate != nil &&
			dateWithin(*t.CompletedDate, period.Start, period.End) {
			completed++
		}
		if t.Deadline.Before(period.End) &&
			t.Status != models.TaskCompleted && t.Status != models.TaskCancelled {
			overdue = append(overdue, t)
		}
	}

	report := &models.WeeklyReport{
		ID:          id,
		ProjectID:   projectID,
		AuthorID:    authorID,
		CreatedAt:   b.now(),
		PeriodStart: period.Start,
		PeriodEnd:   period.End,
		TotalTasks:  total,
		Completed:   completed,
		Overdue:     len(overdue),
		Progress:    rate(completed, total),
		Status:      progressStatus(total, completed, len(overdue)),
	}

	return &WeeklyResult{
		Report:          report,
		OverdueTasks:    overdue,
		NextPeriodTasks: nextPeriodTasks(project, tasks, period.End),
	}, nil
}

// CreateWeekly builds the next weekly report and appends it to the store.
func (b *Builder) CreateWeekly(ctx context.Context, projectID, authorID string, firstEnd time.Time) (*WeeklyResult, error) {
	result, err := b.BuildWeekly(ctx, projectID, authorID, firstEnd)
	if err != nil {
		return nil, err
	}
	if err := b.store.AppendWeeklyReport(ctx, result.Report); err != nil {
		return nil, err
	}
	return result, nil
}

func (b *Builder) checkAuthor(ctx context.Context, project *models.Project, authorID string) error {
	author, err := b.store.GetStaff(ctx, authorID)
	if err != nil {
		return err
	}
	if author == nil {
		return fmt.Errorf("author %s: %w", authorID, models.ErrNotFound)
	}
	if !author.IsProjectManager() {
		return fmt.Errorf("author %s does not hold the Project Manager title: %w",
			authorID, models.ErrPermission)
	}
	if project.PMID != authorID {
		return fmt.Errorf("author %s is not the manager of project %s: %w",
			authorID, project.ID, models.ErrPermission)
	}
	return nil
}

// taskInWindow reports whether a task belongs to a reporting period: it
// starts in it, is due in it, or spans it entirely.
func taskInWindow(t *models.Task, start, end time.Time) bool {
	if dateWithin(t.StartDate, start, end) || dateWithin(t.Deadline, start, end) {
		return true
	}
	return t.StartDate.Before(start) && t.Deadline.After(end)
}

// dateWithin reports whether d is inside the closed interval [start, end].
func dateWithin(d, start, end time.Time) bool {
	return !d.Before(start) && !d.After(end)
}

// progressStatus classifies a period: any overdue work means Delay, an empty
// period is On Track, unfinished work is At Risk.
func progressStatus(total, completed, overdue int) models.ProgressStatus {
	switch {
	case overdue > 0:
		return models.ProgressDelay
	case total == 0:
		return models.ProgressOnTrack
	case completed < total:
		return models.ProgressAtRisk
	default:
		return models.ProgressOnTrack
	}
}

// nextPeriodTasks previews the open tasks that start or fall due in the seven
// days after periodEnd, clamped to the project window. Past the expected end
// the preview is empty.
func nextPeriodTasks(p *models.Project, tasks []*models.Task, periodEnd time.Time) []*models.Task {
	start := periodEnd.AddDate(0, 0, 1)
	if start.After(p.ExpectedEnd) {
		return nil
	}
	end := periodEnd.AddDate(0, 0, 7)
	if end.After(p.ExpectedEnd) {
		end = p.ExpectedEnd
	}

	var upcoming []*models.Task
	for _, t := range tasks {
		if t.Status == models.TaskCompleted || t.Status == models.TaskCancelled {
			continue
		}
		if dateWithin(t.StartDate, start, end) || dateWithin(t.Deadline, start, end) {
			upcoming = append(upcoming, t)
		}
	}
	return upcoming
}
