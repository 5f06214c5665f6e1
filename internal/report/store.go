// Package report builds weekly and final project reports: it selects tasks
// against reporting periods, aggregates progress metrics, and enforces the
// contiguous weekly period sequence of each project.
package report

import (
	"context"

	"github.com/ldi/stride/pkg/models"
)

// Store is the record access the report builders need. *db.DB satisfies it;
// tests use small fakes.
type Store interface {
	GetProject(ctx context.Context, id string) (*models.Project, error)
	GetStaff(ctx context.Context, id string) (*models.Staff, error)
	TasksForProject(ctx context.Context, projectID string) ([]*models.Task, error)

	// WeeklyReportsForProject returns the project's reports ordered by
	// period end.
	WeeklyReportsForProject(ctx context.Context, projectID string) ([]*models.WeeklyReport, error)
	WeeklyReportExists(ctx context.Context, id string) (bool, error)
	AppendWeeklyReport(ctx context.Context, r *models.WeeklyReport) error

	FinalReportExists(ctx context.Context, projectID string) (bool, error)
	AppendFinalReport(ctx context.Context, r *models.FinalReport) error
}
