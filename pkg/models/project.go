package models

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

type ProjectStatus string

const (
	ProjectNotStarted ProjectStatus = "Not Started"
	ProjectInProgress ProjectStatus = "In Progress"
	ProjectPaused     ProjectStatus = "Paused"
	ProjectCompleted  ProjectStatus = "Completed"
	ProjectCancelled  ProjectStatus = "Cancelled"
)

var ProjectStatuses = []ProjectStatus{
	ProjectNotStarted, ProjectInProgress, ProjectPaused, ProjectCompleted, ProjectCancelled,
}

type Project struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Customer    string        `json:"customer"`
	Description string        `json:"description"`
	StartDate   time.Time     `json:"start_date"`
	ExpectedEnd time.Time     `json:"expected_end_date"`
	ActualEnd   *time.Time    `json:"actual_end_date"`
	Budget      float64       `json:"budget"`
	Status      ProjectStatus `json:"status"`
	PMID        string        `json:"pm_id"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// Terminal reports whether the project is in a status from which a final
// report may be created.
func (p *Project) Terminal() bool {
	return p.Status == ProjectCompleted || p.Status == ProjectCancelled
}

var projectIDRe = regexp.MustCompile(`^P\d{2}_\d{5}$`)

func ValidateProjectID(id string) error {
	if !projectIDRe.MatchString(id) {
		return fmt.Errorf("project id %q must match P00_00000: %w", id, ErrValidation)
	}
	return nil
}

func (p *Project) Validate() error {
	if err := ValidateProjectID(p.ID); err != nil {
		return err
	}
	if len(strings.TrimSpace(p.Name)) < 2 {
		return fmt.Errorf("project name must be at least 2 characters: %w", ErrValidation)
	}
	if strings.TrimSpace(p.Customer) == "" {
		return fmt.Errorf("project customer must not be empty: %w", ErrValidation)
	}
	if p.StartDate.IsZero() {
		return fmt.Errorf("project start date must be set: %w", ErrValidation)
	}
	if p.ExpectedEnd.IsZero() || p.ExpectedEnd.Before(p.StartDate) {
		return fmt.Errorf("expected end date must be on or after the start date: %w", ErrValidation)
	}
	if p.ActualEnd != nil && p.ActualEnd.Before(p.StartDate) {
		return fmt.Errorf("actual end date must be on or after the start date: %w", ErrValidation)
	}
	if p.Budget <= 0 {
		return fmt.Errorf("project budget must be positive: %w", ErrValidation)
	}
	if !validProjectStatus(p.Status) {
		return fmt.Errorf("invalid project status %q: %w", p.Status, ErrValidation)
	}
	return nil
}

func validProjectStatus(s ProjectStatus) bool {
	for _, v := range ProjectStatuses {
		if s == v {
			return true
		}
	}
	return false
}
