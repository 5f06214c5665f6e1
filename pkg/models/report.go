package models

import (
	"fmt"
	"regexp"
	"time"
)

type ProgressStatus string

const (
	ProgressOnTrack ProgressStatus = "On Track"
	ProgressAtRisk  ProgressStatus = "At Risk"
	ProgressDelay   ProgressStatus = "Delay"
)

// WeeklyReport is a persisted weekly progress record. All counts are computed
// at creation time; a saved report is never mutated.
type WeeklyReport struct {
	ID          string         `json:"id"`
	ProjectID   string         `json:"project_id"`
	AuthorID    string         `json:"author_id"`
	CreatedAt   time.Time      `json:"created_at"`
	PeriodStart time.Time      `json:"period_start"`
	PeriodEnd   time.Time      `json:"period_end"`
	TotalTasks  int            `json:"total_tasks"`
	Completed   int            `json:"completed_tasks"`
	Overdue     int            `json:"overdue_tasks"`
	Progress    float64        `json:"progress"`
	Status      ProgressStatus `json:"status"`
}

// WeeklyReportID derives the id of a project's Nth weekly report.
func WeeklyReportID(projectID string, week int) string {
	return fmt.Sprintf("WR%s_W%02d", projectID, week)
}

var weeklyIDRe = regexp.MustCompile(`^WRP\d{2}_\d{5}_W\d{2}$`)

func ValidateWeeklyReportID(id string) error {
	if !weeklyIDRe.MatchString(id) {
		return fmt.Errorf("weekly report id %q must match WRP00_00000_W00: %w", id, ErrValidation)
	}
	return nil
}

// FinalReport is the one-per-project lifetime summary, created only after the
// project reaches a terminal status.
type FinalReport struct {
	ID              string        `json:"id"`
	ProjectID       string        `json:"project_id"`
	AuthorID        string        `json:"author_id"`
	CreatedAt       time.Time     `json:"created_at"`
	ProjectName     string        `json:"project_name"`
	Customer        string        `json:"customer"`
	ProjectStart    time.Time     `json:"project_start_date"`
	ActualEnd       time.Time     `json:"actual_end_date"`
	DurationDays    int           `json:"duration_days"`
	TotalTasks      int           `json:"total_tasks"`
	Completed       int           `json:"completed_tasks"`
	OnTime          int           `json:"ontime_tasks"`
	Overdue         int           `json:"overdue_tasks"`
	Cancelled       int           `json:"cancelled_tasks"`
	OverallProgress float64       `json:"overall_progress"`
	ProjectStatus   ProjectStatus `json:"project_status"`
}

// FinalReportID derives the single final report id of a project.
func FinalReportID(projectID string) string {
	return "FR" + projectID
}
