package db

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/ldi/stride/pkg/models"
)

// logActivity appends an audit entry. Logging is best effort; a failure never
// fails the operation that triggered it.
func (db *DB) logActivity(ctx context.Context, entity, entityID, action, details string) {
	query := `
		INSERT INTO activity_log (id, created_at, entity, entity_id, action, details)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	if _, err := db.ExecContext(ctx, query,
		uuid.New().String(), db.timestamp(), entity, entityID, action, details,
	); err != nil {
		log.Printf("activity log write failed: %v", err)
	}
}

// ListActivity returns the most recent audit entries, newest first.
func (db *DB) ListActivity(ctx context.Context, limit int) ([]*models.Activity, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, created_at, entity, entity_id, action, details
		FROM activity_log
		ORDER BY created_at DESC, id
		LIMIT ?
	`
	rows, err := db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query activity log: %w", err)
	}
	defer rows.Close()

	var entries []*models.Activity
	for rows.Next() {
		a := &models.Activity{}
		var created string
		if err := rows.Scan(&a.ID, &created, &a.Entity, &a.EntityID, &a.Action, &a.Details); err != nil {
			return nil, fmt.Errorf("failed to scan activity entry: %w", err)
		}
		if a.CreatedAt, err = parseTimestamp(created); err != nil {
			return nil, err
		}
		entries = append(entries, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return entries, nil
}
