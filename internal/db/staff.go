package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ldi/stride/pkg/models"
)

func (db *DB) CreateStaff(ctx context.Context, s *models.Staff) error {
	if err := s.Validate(); err != nil {
		return err
	}

	existing, err := db.GetStaff(ctx, s.ID)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("staff id %s already exists: %w", s.ID, models.ErrValidation)
	}

	ts := db.timestamp()
	s.CreatedAt, _ = parseTimestamp(ts)
	s.UpdatedAt = s.CreatedAt

	query := `
		INSERT INTO staff (id, full_name, age, level, role, management_title, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	if _, err := db.ExecContext(ctx, query,
		s.ID, s.FullName, s.Age, s.Level, s.Role, s.ManagementTitle, ts, ts,
	); err != nil {
		return fmt.Errorf("failed to create staff: %w", err)
	}

	db.logActivity(ctx, "staff", s.ID, "create", s.FullName)
	db.triggerChange(ctx)
	return nil
}

func (db *DB) GetStaff(ctx context.Context, id string) (*models.Staff, error) {
	query := `
		SELECT id, full_name, age, level, role, management_title, created_at, updated_at
		FROM staff
		WHERE id = ?
	`
	s, err := scanStaffRow(db.QueryRowContext(ctx, query, id))
	if err != nil || s == nil {
		return s, err
	}

	// Task assignments are derived, never stored on the staff row.
	rows, err := db.QueryContext(ctx, `SELECT id FROM tasks WHERE assignee_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load task assignments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var taskID string
		if err := rows.Scan(&taskID); err != nil {
			return nil, fmt.Errorf("failed to scan task assignment: %w", err)
		}
		s.TaskIDs = append(s.TaskIDs, taskID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return s, nil
}

func (db *DB) ListStaff(ctx context.Context) ([]*models.Staff, error) {
	query := `
		SELECT id, full_name, age, level, role, management_title, created_at, updated_at
		FROM staff
		ORDER BY id
	`
	return db.queryStaff(ctx, query)
}

// SearchStaff matches the keyword against staff ids and names.
func (db *DB) SearchStaff(ctx context.Context, keyword string) ([]*models.Staff, error) {
	query := `
		SELECT id, full_name, age, level, role, management_title, created_at, updated_at
		FROM staff
		WHERE id LIKE ? OR full_name LIKE ?
		ORDER BY id
	`
	pattern := "%" + keyword + "%"
	return db.queryStaff(ctx, query, pattern, pattern)
}

func (db *DB) UpdateStaff(ctx context.Context, s *models.Staff) error {
	if err := s.Validate(); err != nil {
		return err
	}

	ts := db.timestamp()
	query := `
		UPDATE staff
		SET full_name = ?, age = ?, level = ?, role = ?, management_title = ?, updated_at = ?
		WHERE id = ?
	`
	res, err := db.ExecContext(ctx, query, s.FullName, s.Age, s.Level, s.Role, s.ManagementTitle, ts, s.ID)
	if err != nil {
		return fmt.Errorf("failed to update staff: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("staff %s: %w", s.ID, models.ErrNotFound)
	}

	s.UpdatedAt, _ = parseTimestamp(ts)
	db.logActivity(ctx, "staff", s.ID, "update", "")
	db.triggerChange(ctx)
	return nil
}

// DeleteStaff removes a staff member and unassigns their tasks in a single
// transaction.
func (db *DB) DeleteStaff(ctx context.Context, id string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE tasks SET assignee_id = ?, updated_at = ? WHERE assignee_id = ?`,
		models.Unassigned, db.timestamp(), id,
	); err != nil {
		return fmt.Errorf("failed to unassign tasks: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM staff WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete staff: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("staff %s: %w", id, models.ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	db.logActivity(ctx, "staff", id, "delete", "tasks unassigned")
	db.triggerChange(ctx)
	return nil
}

func (db *DB) queryStaff(ctx context.Context, query string, args ...any) ([]*models.Staff, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query staff: %w", err)
	}
	defer rows.Close()

	var staff []*models.Staff
	for rows.Next() {
		s := &models.Staff{}
		var created, updated string
		if err := rows.Scan(&s.ID, &s.FullName, &s.Age, &s.Level, &s.Role, &s.ManagementTitle, &created, &updated); err != nil {
			return nil, fmt.Errorf("failed to scan staff: %w", err)
		}
		if s.CreatedAt, err = parseTimestamp(created); err != nil {
			return nil, err
		}
		if s.UpdatedAt, err = parseTimestamp(updated); err != nil {
			return nil, err
		}
		staff = append(staff, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return staff, nil
}

func scanStaffRow(row *sql.Row) (*models.Staff, error) {
	s := &models.Staff{}
	var created, updated string
	err := row.Scan(&s.ID, &s.FullName, &s.Age, &s.Level, &s.Role, &s.ManagementTitle, &created, &updated)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get staff: %w", err)
	}
	if s.CreatedAt, err = parseTimestamp(created); err != nil {
		return nil, err
	}
	if s.UpdatedAt, err = parseTimestamp(updated); err != nil {
		return nil, err
	}
	return s, nil
}
