package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ldi/stride/pkg/models"
)

const weeklyColumns = `id, project_id, author_id, created_at, period_start, period_end,
       total_tasks, completed_tasks, overdue_tasks, progress, status`

// AppendWeeklyReport persists an already-built weekly report. Reports are
// append-only; the only check here is id uniqueness.
func (db *DB) AppendWeeklyReport(ctx context.Context, r *models.WeeklyReport) error {
	exists, err := db.WeeklyReportExists(ctx, r.ID)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("weekly report %s already exists: %w", r.ID, models.ErrValidation)
	}

	query := `
		INSERT INTO weekly_reports (id, project_id, author_id, created_at, period_start, period_end,
		                            total_tasks, completed_tasks, overdue_tasks, progress, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	if _, err := db.ExecContext(ctx, query,
		r.ID, r.ProjectID, r.AuthorID, r.CreatedAt.Format(models.TimestampFormat),
		models.FormatDate(r.PeriodStart), models.FormatDate(r.PeriodEnd),
		r.TotalTasks, r.Completed, r.Overdue, r.Progress, r.Status,
	); err != nil {
		return fmt.Errorf("failed to append weekly report: %w", err)
	}

	db.logActivity(ctx, "weekly_report", r.ID, "create", r.ProjectID)
	db.triggerChange(ctx)
	return nil
}

func (db *DB) WeeklyReportExists(ctx context.Context, id string) (bool, error) {
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM weekly_reports WHERE id = ?`, id).Scan(&n); err != nil {
		return false, fmt.Errorf("failed to check weekly report: %w", err)
	}
	return n > 0, nil
}

func (db *DB) GetWeeklyReport(ctx context.Context, id string) (*models.WeeklyReport, error) {
	reports, err := db.queryWeeklyReports(ctx,
		`SELECT `+weeklyColumns+` FROM weekly_reports WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(reports) == 0 {
		return nil, nil
	}
	return reports[0], nil
}

// WeeklyReportsForProject returns the project's weekly reports ordered by
// period end, which is the order they were allocated in.
func (db *DB) WeeklyReportsForProject(ctx context.Context, projectID string) ([]*models.WeeklyReport, error) {
	return db.queryWeeklyReports(ctx,
		`SELECT `+weeklyColumns+` FROM weekly_reports WHERE project_id = ? ORDER BY period_end`, projectID)
}

func (db *DB) ListWeeklyReports(ctx context.Context) ([]*models.WeeklyReport, error) {
	return db.queryWeeklyReports(ctx,
		`SELECT `+weeklyColumns+` FROM weekly_reports ORDER BY project_id, period_end`)
}

func (db *DB) DeleteWeeklyReport(ctx context.Context, id string) error {
	result, err := db.ExecContext(ctx, `DELETE FROM weekly_reports WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete weekly report: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("weekly report %s: %w", id, models.ErrNotFound)
	}

	db.logActivity(ctx, "weekly_report", id, "delete", "")
	db.triggerChange(ctx)
	return nil
}

func (db *DB) queryWeeklyReports(ctx context.Context, query string, args ...any) ([]*models.WeeklyReport, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query weekly reports: %w", err)
	}
	defer rows.Close()

	var reports []*models.WeeklyReport
	for rows.Next() {
		r, err := scanWeeklyReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return reports, nil
}

func scanWeeklyReport(rows *sql.Rows) (*models.WeeklyReport, error) {
	r := &models.WeeklyReport{}
	var created, start, end string
	if err := rows.Scan(
		&r.ID, &r.ProjectID, &r.AuthorID, &created, &start, &end,
		&r.TotalTasks, &r.Completed, &r.Overdue, &r.Progress, &r.Status,
	); err != nil {
		return nil, fmt.Errorf("failed to scan weekly report: %w", err)
	}

	var err error
	if r.CreatedAt, err = parseTimestamp(created); err != nil {
		return nil, err
	}
	if r.PeriodStart, err = models.ParseStoredDate(start); err != nil {
		return nil, err
	}
	if r.PeriodEnd, err = models.ParseStoredDate(end); err != nil {
		return nil, err
	}
	return r, nil
}

const finalColumns = `id, project_id, author_id, created_at, project_name, customer,
       project_start_date, actual_end_date, duration_days, total_tasks, completed_tasks,
       ontime_tasks, overdue_tasks, cancelled_tasks, overall_progress, project_status`

// AppendFinalReport persists an already-built final report. The project_id
// UNIQUE constraint backs up the one-per-project rule.
func (db *DB) AppendFinalReport(ctx context.Context, r *models.FinalReport) error {
	exists, err := db.FinalReportExists(ctx, r.ProjectID)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("final report for project %s already exists: %w", r.ProjectID, models.ErrValidation)
	}

	query := `
		INSERT INTO final_reports (id, project_id, author_id, created_at, project_name, customer,
		                           project_start_date, actual_end_date, duration_days, total_tasks,
		                           completed_tasks, ontime_tasks, overdue_tasks, cancelled_tasks,
		                           overall_progress, project_status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	if _, err := db.ExecContext(ctx, query,
		r.ID, r.ProjectID, r.AuthorID, r.CreatedAt.Format(models.TimestampFormat),
		r.ProjectName, r.Customer,
		models.FormatDate(r.ProjectStart), models.FormatDate(r.ActualEnd), r.DurationDays,
		r.TotalTasks, r.Completed, r.OnTime, r.Overdue, r.Cancelled,
		r.OverallProgress, r.ProjectStatus,
	); err != nil {
		return fmt.Errorf("failed to append final report: %w", err)
	}

	db.logActivity(ctx, "final_report", r.ID, "create", r.ProjectID)
	db.triggerChange(ctx)
	return nil
}

func (db *DB) FinalReportExists(ctx context.Context, projectID string) (bool, error) {
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM final_reports WHERE project_id = ?`, projectID).Scan(&n); err != nil {
		return false, fmt.Errorf("failed to check final report: %w", err)
	}
	return n > 0, nil
}

func (db *DB) GetFinalReport(ctx context.Context, id string) (*models.FinalReport, error) {
	reports, err := db.queryFinalReports(ctx,
		`SELECT `+finalColumns+` FROM final_reports WHERE id = ? OR project_id = ?`, id, id)
	if err != nil {
		return nil, err
	}
	if len(reports) == 0 {
		return nil, nil
	}
	return reports[0], nil
}

func (db *DB) ListFinalReports(ctx context.Context) ([]*models.FinalReport, error) {
	return db.queryFinalReports(ctx,
		`SELECT `+finalColumns+` FROM final_reports ORDER BY project_id`)
}

func (db *DB) DeleteFinalReport(ctx context.Context, id string) error {
	result, err := db.ExecContext(ctx, `DELETE FROM final_reports WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete final report: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("final report %s: %w", id, models.ErrNotFound)
	}

	db.logActivity(ctx, "final_report", id, "delete", "")
	db.triggerChange(ctx)
	return nil
}

func (db *DB) queryFinalReports(ctx context.Context, query string, args ...any) ([]*models.FinalReport, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query final reports: %w", err)
	}
	defer rows.Close()

	var reports []*models.FinalReport
	for rows.Next() {
		r := &models.FinalReport{}
		var created, start, end string
		if err := rows.Scan(
			&r.ID, &r.ProjectID, &r.AuthorID, &created, &r.ProjectName, &r.Customer,
			&start, &end, &r.DurationDays, &r.TotalTasks, &r.Completed,
			&r.OnTime, &r.Overdue, &r.Cancelled, &r.OverallProgress, &r.ProjectStatus,
		); err != nil {
			return nil, fmt.Errorf("failed to scan final report: %w", err)
		}

		if r.CreatedAt, err = parseTimestamp(created); err != nil {
			return nil, err
		}
		if r.ProjectStart, err = models.ParseStoredDate(start); err != nil {
			return nil, err
		}
		if r.ActualEnd, err = models.ParseStoredDate(end); err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return reports, nil
}
