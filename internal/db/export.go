package db

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/ldi/stride/pkg/models"
)

// EnableAutoExport sets up a hook that re-exports the CSV files into the
// given directory after every successful write operation.
func (db *DB) EnableAutoExport(dir string) {
	db.SetOnChange(func(ctx context.Context) {
		// Hooks are best effort; an export failure must not fail the
		// original write operation.
		_ = db.ExportCSV(ctx, dir)
	})
}

// ExportCSV writes one CSV file per entity into dir. Each file is written to
// a temporary file first and renamed into place, so readers never observe a
// half-written export. Dates are exported in ISO form.
func (db *DB) ExportCSV(ctx context.Context, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	if err := db.exportStaffCSV(ctx, dir); err != nil {
		return err
	}
	if err := db.exportProjectsCSV(ctx, dir); err != nil {
		return err
	}
	if err := db.exportTasksCSV(ctx, dir); err != nil {
		return err
	}
	if err := db.exportWeeklyReportsCSV(ctx, dir); err != nil {
		return err
	}
	return db.exportFinalReportsCSV(ctx, dir)
}

func (db *DB) exportStaffCSV(ctx context.Context, dir string) error {
	staff, err := db.ListStaff(ctx)
	if err != nil {
		return err
	}

	records := [][]string{{"id", "full_name", "age", "level", "role", "management_title"}}
	for _, s := range staff {
		records = append(records, []string{
			s.ID, s.FullName, strconv.Itoa(s.Age), string(s.Level), string(s.Role), string(s.ManagementTitle),
		})
	}
	return writeCSV(filepath.Join(dir, "staff.csv"), records)
}

func (db *DB) exportProjectsCSV(ctx context.Context, dir string) error {
	projects, err := db.ListProjects(ctx)
	if err != nil {
		return err
	}

	records := [][]string{{
		"id", "name", "customer", "description", "start_date", "expected_end_date",
		"actual_end_date", "budget", "status", "pm_id",
	}}
	for _, p := range projects {
		records = append(records, []string{
			p.ID, p.Name, p.Customer, p.Description,
			models.FormatDate(p.StartDate), models.FormatDate(p.ExpectedEnd), formatOptionalDate(p.ActualEnd),
			strconv.FormatFloat(p.Budget, 'f', 2, 64), string(p.Status), p.PMID,
		})
	}
	return writeCSV(filepath.Join(dir, "projects.csv"), records)
}

func (db *DB) exportTasksCSV(ctx context.Context, dir string) error {
	tasks, err := db.ListTasks(ctx, "", nil, "")
	if err != nil {
		return err
	}

	records := [][]string{{
		"id", "project_id", "name", "description", "assignee_id", "start_date",
		"deadline", "completed_date", "priority", "status",
	}}
	for _, t := range tasks {
		records = append(records, []string{
			t.ID, t.ProjectID, t.Name, t.Description, t.AssigneeID,
			models.FormatDate(t.StartDate), models.FormatDate(t.Deadline), formatOptionalDate(t.CompletedDate),
			string(t.Priority), string(t.Status),
		})
	}
	return writeCSV(filepath.Join(dir, "tasks.csv"), records)
}

func (db *DB) exportWeeklyReportsCSV(ctx context.Context, dir string) error {
	reports, err := db.ListWeeklyReports(ctx)
	if err != nil {
		return err
	}

	records := [][]string{{
		"id", "project_id", "author_id", "created_at", "period_start", "period_end",
		"total_tasks", "completed_tasks", "overdue_tasks", "progress", "status",
	}}
	for _, r := range reports {
		records = append(records, []string{
			r.ID, r.ProjectID, r.AuthorID, r.CreatedAt.Format(models.TimestampFormat),
			models.FormatDate(r.PeriodStart), models.FormatDate(r.PeriodEnd),
			strconv.Itoa(r.TotalTasks), strconv.Itoa(r.Completed), strconv.Itoa(r.Overdue),
			strconv.FormatFloat(r.Progress, 'f', 2, 64), string(r.Status),
		})
	}
	return writeCSV(filepath.Join(dir, "weekly_reports.csv"), records)
}

func (db *DB) exportFinalReportsCSV(ctx context.Context, dir string) error {
	reports, err := db.ListFinalReports(ctx)
	if err != nil {
		return err
	}

	records := [][]string{{
		"id", "project_id", "author_id", "created_at", "project_name", "customer",
		"project_start_date", "actual_end_date", "duration_days", "total_tasks",
		"completed_tasks", "ontime_tasks", "overdue_tasks", "cancelled_tasks",
		"overall_progress", "project_status",
	}}
	for _, r := range reports {
		records = append(records, []string{
			r.ID, r.ProjectID, r.AuthorID, r.CreatedAt.Format(models.TimestampFormat),
			r.ProjectName, r.Customer,
			models.FormatDate(r.ProjectStart), models.FormatDate(r.ActualEnd), strconv.Itoa(r.DurationDays),
			strconv.Itoa(r.TotalTasks), strconv.Itoa(r.Completed), strconv.Itoa(r.OnTime),
			strconv.Itoa(r.Overdue), strconv.Itoa(r.Cancelled),
			strconv.FormatFloat(r.OverallProgress, 'f', 2, 64), string(r.ProjectStatus),
		})
	}
	return writeCSV(filepath.Join(dir, "final_reports.csv"), records)
}

func writeCSV(path string, records [][]string) error {
	dir := filepath.Dir(path)
	tempFile, err := os.CreateTemp(dir, "export-*.csv")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		if tempFile != nil {
			tempFile.Close()
			os.Remove(tempFile.Name())
		}
	}()

	w := csv.NewWriter(tempFile)
	if err := w.WriteAll(records); err != nil {
		return fmt.Errorf("failed to write csv records: %w", err)
	}

	if err := tempFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	filename := tempFile.Name()
	tempFile = nil // Prevent defer from removing it

	if err := os.Rename(filename, path); err != nil {
		os.Remove(filename)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// ImportCSV loads the per-entity CSV files from dir into the store inside a
// single transaction. Rows with an existing id are replaced; files that are
// absent are skipped. Date columns accept both ISO and dd/mm/yyyy form.
func (db *DB) ImportCSV(ctx context.Context, dir string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	ts := db.timestamp()

	err = importCSVFile(filepath.Join(dir, "staff.csv"), 6, func(rec []string) error {
		age, err := strconv.Atoi(rec[2])
		if err != nil {
			return fmt.Errorf("bad age %q: %w", rec[2], models.ErrValidation)
		}
		s := &models.Staff{
			ID:              rec[0],
			FullName:        rec[1],
			Age:             age,
			Level:           models.StaffLevel(rec[3]),
			Role:            models.StaffRole(rec[4]),
			ManagementTitle: models.ManagementTitle(rec[5]),
		}
		if err := s.Validate(); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO staff (id, full_name, age, level, role, management_title, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			s.ID, s.FullName, s.Age, s.Level, s.Role, s.ManagementTitle, ts, ts)
		return err
	})
	if err != nil {
		return err
	}

	err = importCSVFile(filepath.Join(dir, "projects.csv"), 10, func(rec []string) error {
		p := &models.Project{
			ID:          rec[0],
			Name:        rec[1],
			Customer:    rec[2],
			Description: rec[3],
			Status:      models.ProjectStatus(rec[8]),
			PMID:        rec[9],
		}
		var err error
		if p.StartDate, err = models.ParseImportDate(rec[4]); err != nil {
			return err
		}
		if p.ExpectedEnd, err = models.ParseImportDate(rec[5]); err != nil {
			return err
		}
		if rec[6] != "" {
			end, err := models.ParseImportDate(rec[6])
			if err != nil {
				return err
			}
			p.ActualEnd = &end
		}
		if p.Budget, err = strconv.ParseFloat(rec[7], 64); err != nil {
			return fmt.Errorf("bad budget %q: %w", rec[7], models.ErrValidation)
		}
		if err := p.Validate(); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO projects (id, name, customer, description, start_date, expected_end_date,
			                                 actual_end_date, budget, status, pm_id, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.Name, p.Customer, p.Description,
			models.FormatDate(p.StartDate), models.FormatDate(p.ExpectedEnd), formatOptionalDate(p.ActualEnd),
			p.Budget, p.Status, p.PMID, ts, ts)
		return err
	})
	if err != nil {
		return err
	}

	err = importCSVFile(filepath.Join(dir, "tasks.csv"), 10, func(rec []string) error {
		t := &models.Task{
			ID:          rec[0],
			ProjectID:   rec[1],
			Name:        rec[2],
			Description: rec[3],
			AssigneeID:  rec[4],
			Priority:    models.TaskPriority(rec[8]),
			Status:      models.TaskStatus(rec[9]),
		}
		var err error
		if t.StartDate, err = models.ParseImportDate(rec[5]); err != nil {
			return err
		}
		if t.Deadline, err = models.ParseImportDate(rec[6]); err != nil {
			return err
		}
		if rec[7] != "" {
			done, err := models.ParseImportDate(rec[7])
			if err != nil {
				return err
			}
			t.CompletedDate = &done
		}
		if err := t.Validate(); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO tasks (id, project_id, name, description, assignee_id, start_date,
			                              deadline, completed_date, priority, status, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, t.ProjectID, t.Name, t.Description, t.AssigneeID,
			models.FormatDate(t.StartDate), models.FormatDate(t.Deadline), formatOptionalDate(t.CompletedDate),
			t.Priority, t.Status, ts, ts)
		return err
	})
	if err != nil {
		return err
	}

	err = importCSVFile(filepath.Join(dir, "weekly_reports.csv"), 11, func(rec []string) error {
		if err := models.ValidateWeeklyReportID(rec[0]); err != nil {
			return err
		}
		createdAt, err := parseTimestamp(rec[3])
		if err != nil {
			return fmt.Errorf("bad created_at %q: %w", rec[3], models.ErrValidation)
		}
		periodStart, err := models.ParseImportDate(rec[4])
		if err != nil {
			return err
		}
		periodEnd, err := models.ParseImportDate(rec[5])
		if err != nil {
			return err
		}
		counts, err := importCounts(rec[6], rec[7], rec[8])
		if err != nil {
			return err
		}
		progress, err := strconv.ParseFloat(rec[9], 64)
		if err != nil {
			return fmt.Errorf("bad progress %q: %w", rec[9], models.ErrValidation)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO weekly_reports (id, project_id, author_id, created_at, period_start,
			                                       period_end, total_tasks, completed_tasks, overdue_tasks,
			                                       progress, status)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rec[0], rec[1], rec[2], createdAt.Format(models.TimestampFormat),
			models.FormatDate(periodStart), models.FormatDate(periodEnd),
			counts[0], counts[1], counts[2], progress, rec[10])
		return err
	})
	if err != nil {
		return err
	}

	err = importCSVFile(filepath.Join(dir, "final_reports.csv"), 16, func(rec []string) error {
		if err := models.ValidateProjectID(rec[1]); err != nil {
			return err
		}
		if rec[0] != models.FinalReportID(rec[1]) {
			return fmt.Errorf("final report id %q does not match project %s: %w", rec[0], rec[1], models.ErrValidation)
		}
		createdAt, err := parseTimestamp(rec[3])
		if err != nil {
			return fmt.Errorf("bad created_at %q: %w", rec[3], models.ErrValidation)
		}
		projectStart, err := models.ParseImportDate(rec[6])
		if err != nil {
			return err
		}
		actualEnd, err := models.ParseImportDate(rec[7])
		if err != nil {
			return err
		}
		duration, err := strconv.Atoi(rec[8])
		if err != nil {
			return fmt.Errorf("bad duration %q: %w", rec[8], models.ErrValidation)
		}
		counts, err := importCounts(rec[9], rec[10], rec[11], rec[12], rec[13])
		if err != nil {
			return err
		}
		progress, err := strconv.ParseFloat(rec[14], 64)
		if err != nil {
			return fmt.Errorf("bad progress %q: %w", rec[14], models.ErrValidation)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO final_reports (id, project_id, author_id, created_at, project_name,
			                                      customer, project_start_date, actual_end_date, duration_days,
			                                      total_tasks, completed_tasks, ontime_tasks, overdue_tasks,
			                                      cancelled_tasks, overall_progress, project_status)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rec[0], rec[1], rec[2], createdAt.Format(models.TimestampFormat),
			rec[4], rec[5], models.FormatDate(projectStart), models.FormatDate(actualEnd),
			duration, counts[0], counts[1], counts[2], counts[3], counts[4], progress, rec[15])
		return err
	})
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	db.triggerChange(ctx)
	return nil
}

// importCounts parses integer count columns.
func importCounts(cols ...string) ([]int, error) {
	counts := make([]int, len(cols))
	for i, c := range cols {
		n, err := strconv.Atoi(c)
		if err != nil {
			return nil, fmt.Errorf("bad count %q: %w", c, models.ErrValidation)
		}
		counts[i] = n
	}
	return counts, nil
}

// importCSVFile reads path and applies fn to every data row. A missing file
// is not an error, so partial export directories import cleanly.
func importCSVFile(path string, fields int, fn func(rec []string) error) error {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = fields

	records, err := r.ReadAll()
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	for i, rec := range records {
		if i == 0 {
			continue // header
		}
		if err := fn(rec); err != nil {
			return fmt.Errorf("%s row %d: %w", filepath.Base(path), i+1, err)
		}
	}
	return nil
}
