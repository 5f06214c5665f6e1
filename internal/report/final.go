package report

import (
	"context"
	"fmt"

	"github.com/ldi/stride/pkg/models"
)

// BuildFinal computes a project's final report without saving it. The project
// must have reached a terminal status with its actual end date recorded, the
// author must be its manager, and no final report may exist yet.
func (b *Builder) BuildFinal(ctx context.Context, projectID, authorID string) (*models.FinalReport, error) {
	project, err := b.store.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, fmt.Errorf("project %s: %w", projectID, models.ErrNotFound)
	}

	if !project.Terminal() {
		return nil, fmt.Errorf("project %s is still %s, a final report needs a Completed or Cancelled project: %w",
			projectID, project.Status, models.ErrValidation)
	}
	if project.PMID == "" {
		return nil, fmt.Errorf("project %s has no assigned manager: %w", projectID, models.ErrValidation)
	}
	if err := b.checkAuthor(ctx, project, authorID); err != nil {
		return nil, err
	}
	if project.ActualEnd == nil {
		return nil, fmt.Errorf("project %s has no actual end date: %w", projectID, models.ErrValidation)
	}

	createdAt := b.now()
	if models.DateOnly(createdAt).Before(*project.ActualEnd) {
		return nil, fmt.Errorf("final report cannot precede the project actual end %s: %w",
			models.FormatDate(*project.ActualEnd), models.ErrValidation)
	}

	exists, err := b.store.FinalReportExists(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("final report for project %s already exists: %w",
			projectID, models.ErrValidation)
	}

	tasks, err := b.store.TasksForProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	// Unlike the weekly view, the lifetime totals count every task the
	// project ever had, cancelled ones included.
	total := len(tasks)
	completed, cancelled, overdue := 0, 0, 0
	for _, t := range tasks {
		switch t.Status {
		case models.TaskCompleted:
			completed++
		case models.TaskCancelled:
			cancelled++
		}
		if t.CompletedDate != nil && t.CompletedDate.After(t.Deadline) {
			overdue++
		}
	}
	onTime := completed - overdue
	if onTime < 0 {
		onTime = 0
	}

	return &models.FinalReport{
		ID:              models.FinalReportID(projectID),
		ProjectID:       projectID,
		AuthorID:        authorID,
		CreatedAt:       createdAt,
		ProjectName:     project.Name,
		Customer:        project.Customer,
		ProjectStart:    project.StartDate,
		ActualEnd:       *project.ActualEnd,
		DurationDays:    int(project.ActualEnd.Sub(project.StartDate).Hours() / 24),
		TotalTasks:      total,
		Completed:       completed,
		OnTime:          onTime,
		Overdue:         overdue,
		Cancelled:       cancelled,
		OverallProgress: rate(completed, total),
		ProjectStatus:   project.Status,
	}, nil
}

// CreateFinal builds the final report and appends it to the store.
func (b *Builder) CreateFinal(ctx context.Context, projectID, authorID string) (*models.FinalReport, error) {
	report, err := b.BuildFinal(ctx, projectID, authorID)
	if err != nil {
		return nil, err
	}
	if err := b.store.AppendFinalReport(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}
