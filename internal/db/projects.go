package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ldi/stride/pkg/models"
)

const projectColumns = `id, name, customer, description, start_date, expected_end_date,
       actual_end_date, budget, status, pm_id, created_at, updated_at`

func (db *DB) CreateProject(ctx context.Context, p *models.Project) error {
	if p.Status == "" {
		p.Status = models.ProjectNotStarted
	}
	if err := p.Validate(); err != nil {
		return err
	}
	if err := db.checkProjectManager(ctx, p.PMID); err != nil {
		return err
	}

	existing, err := db.GetProject(ctx, p.ID)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("project id %s already exists: %w", p.ID, models.ErrValidation)
	}

	ts := db.timestamp()
	p.CreatedAt, _ = parseTimestamp(ts)
	p.UpdatedAt = p.CreatedAt

	query := `
		INSERT INTO projects (id, name, customer, description, start_date, expected_end_date,
		                      actual_end_date, budget, status, pm_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	if _, err := db.ExecContext(ctx, query,
		p.ID, p.Name, p.Customer, p.Description,
		models.FormatDate(p.StartDate), models.FormatDate(p.ExpectedEnd), formatOptionalDate(p.ActualEnd),
		p.Budget, p.Status, p.PMID, ts, ts,
	); err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}

	db.logActivity(ctx, "project", p.ID, "create", p.Name)
	db.triggerChange(ctx)
	return nil
}

// checkProjectManager enforces the assignment-time PM invariant: the referenced
// staff must exist and hold the Project Manager title.
func (db *DB) checkProjectManager(ctx context.Context, pmID string) error {
	if pmID == "" {
		return nil
	}
	pm, err := db.GetStaff(ctx, pmID)
	if err != nil {
		return err
	}
	if pm == nil {
		return fmt.Errorf("project manager %s: %w", pmID, models.ErrNotFound)
	}
	if !pm.IsProjectManager() {
		return fmt.Errorf("staff %s does not hold the Project Manager title: %w", pmID, models.ErrValidation)
	}
	return nil
}

func (db *DB) GetProject(ctx context.Context, id string) (*models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = ?`
	projects, err := db.queryProjects(ctx, query, id)
	if err != nil {
		return nil, err
	}
	if len(projects) == 0 {
		return nil, nil
	}
	return projects[0], nil
}

func (db *DB) ListProjects(ctx context.Context) ([]*models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects ORDER BY id`
	return db.queryProjects(ctx, query)
}

// SearchProjects matches the keyword against project ids, names and customers.
func (db *DB) SearchProjects(ctx context.Context, keyword string) ([]*models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects
		WHERE id LIKE ? OR name LIKE ? OR customer LIKE ?
		ORDER BY id`
	pattern := "%" + keyword + "%"
	return db.queryProjects(ctx, query, pattern, pattern, pattern)
}

func (db *DB) UpdateProject(ctx context.Context, p *models.Project) error {
	if err := p.Validate(); err != nil {
		return err
	}

	current, err := db.GetProject(ctx, p.ID)
	if err != nil {
		return err
	}
	if current == nil {
		return fmt.Errorf("project %s: %w", p.ID, models.ErrNotFound)
	}
	// The PM invariant is re-checked only when the assignment changes.
	if p.PMID != current.PMID {
		if err := db.checkProjectManager(ctx, p.PMID); err != nil {
			return err
		}
	}

	ts := db.timestamp()
	query := `
		UPDATE projects
		SET name = ?, customer = ?, description = ?, start_date = ?, expected_end_date = ?,
		    actual_end_date = ?, budget = ?, status = ?, pm_id = ?, updated_at = ?
		WHERE id = ?
	`
	if _, err := db.ExecContext(ctx, query,
		p.Name, p.Customer, p.Description,
		models.FormatDate(p.StartDate), models.FormatDate(p.ExpectedEnd), formatOptionalDate(p.ActualEnd),
		p.Budget, p.Status, p.PMID, ts, p.ID,
	); err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}

	p.UpdatedAt, _ = parseTimestamp(ts)
	db.logActivity(ctx, "project", p.ID, "update", "")
	db.triggerChange(ctx)
	return nil
}

// SetProjectStatus applies a manual status change. Completing a project before
// its expected end date requires the override flag; entering a terminal status
// stamps the actual end date if it is not already set.
func (db *DB) SetProjectStatus(ctx context.Context, id string, status models.ProjectStatus, override bool) error {
	p, err := db.GetProject(ctx, id)
	if err != nil {
		return err
	}
	if p == nil {
		return fmt.Errorf("project %s: %w", id, models.ErrNotFound)
	}

	today := models.DateOnly(db.now())
	if status == models.ProjectCompleted && today.Before(p.ExpectedEnd) && !override {
		return fmt.Errorf("project %s has not reached its expected end date %s: %w",
			id, models.FormatDate(p.ExpectedEnd), models.ErrValidation)
	}

	p.Status = status
	if p.Terminal() && p.ActualEnd == nil {
		p.ActualEnd = &today
	}

	ts := db.timestamp()
	query := `UPDATE projects SET status = ?, actual_end_date = ?, updated_at = ? WHERE id = ?`
	if _, err := db.ExecContext(ctx, query, p.Status, formatOptionalDate(p.ActualEnd), ts, id); err != nil {
		return fmt.Errorf("failed to set project status: %w", err)
	}

	db.logActivity(ctx, "project", id, "status_change", string(status))
	db.triggerChange(ctx)
	return nil
}

// DeleteProject removes a project and its tasks in one transaction, children
// first. Weekly and final reports are kept as history.
func (db *DB) DeleteProject(ctx context.Context, id string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE project_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete project tasks: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("project %s: %w", id, models.ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	db.logActivity(ctx, "project", id, "delete", "tasks cascaded")
	db.triggerChange(ctx)
	return nil
}

// ProjectMembers lists the distinct staff assigned to a project's tasks.
func (db *DB) ProjectMembers(ctx context.Context, projectID string) ([]*models.Staff, error) {
	query := `
		SELECT DISTINCT s.id, s.full_name, s.age, s.level, s.role, s.management_title, s.created_at, s.updated_at
		FROM staff s
		JOIN tasks t ON t.assignee_id = s.id
		WHERE t.project_id = ?
		ORDER BY s.id
	`
	return db.queryStaff(ctx, query, projectID)
}

// refreshProjectStatus recomputes a derived, non-terminal project status from
// its tasks. Paused and terminal statuses are operator decisions and are left
// alone; Completed is never entered automatically.
func (db *DB) refreshProjectStatus(ctx context.Context, projectID string) error {
	p, err := db.GetProject(ctx, projectID)
	if err != nil || p == nil {
		return err
	}
	if p.Status != models.ProjectNotStarted && p.Status != models.ProjectInProgress {
		return nil
	}

	var started int
	err = db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tasks WHERE project_id = ? AND status IN (?, ?)`,
		projectID, models.TaskInProgress, models.TaskCompleted,
	).Scan(&started)
	if err != nil {
		return fmt.Errorf("failed to count started tasks: %w", err)
	}

	status := models.ProjectNotStarted
	if started > 0 {
		status = models.ProjectInProgress
	}
	if status == p.Status {
		return nil
	}

	_, err = db.ExecContext(ctx,
		`UPDATE projects SET status = ?, updated_at = ? WHERE id = ?`,
		status, db.timestamp(), projectID,
	)
	if err != nil {
		return fmt.Errorf("failed to refresh project status: %w", err)
	}

	db.logActivity(ctx, "project", projectID, "status_change", string(status))
	return nil
}

func (db *DB) queryProjects(ctx context.Context, query string, args ...any) ([]*models.Project, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer rows.Close()

	var projects []*models.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return projects, nil
}

func scanProject(rows *sql.Rows) (*models.Project, error) {
	p := &models.Project{}
	var start, expected, actual, created, updated string
	if err := rows.Scan(
		&p.ID, &p.Name, &p.Customer, &p.Description, &start, &expected,
		&actual, &p.Budget, &p.Status, &p.PMID, &created, &updated,
	); err != nil {
		return nil, fmt.Errorf("failed to scan project: %w", err)
	}

	var err error
	if p.StartDate, err = models.ParseStoredDate(start); err != nil {
		return nil, err
	}
	if p.ExpectedEnd, err = models.ParseStoredDate(expected); err != nil {
		return nil, err
	}
	if p.ActualEnd, err = parseOptionalDate(actual); err != nil {
		return nil, err
	}
	if p.CreatedAt, err = parseTimestamp(created); err != nil {
		return nil, err
	}
	if p.UpdatedAt, err = parseTimestamp(updated); err != nil {
		return nil, err
	}
	return p, nil
}

func formatOptionalDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return models.FormatDate(*t)
}

func parseOptionalDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := models.ParseStoredDate(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
