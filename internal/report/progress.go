package report

import (
	"math"

	"github.com/ldi/stride/pkg/models"
)

// Summary is the status breakdown of a project's tasks. Total excludes
// Cancelled tasks; Rate is the completed share of Total in percent.
type Summary struct {
	ProjectID  string
	ToDo       int
	InProgress int
	Completed  int
	Cancelled  int
	Total      int
	Rate       float64
}

// Progress aggregates the tasks of one project out of the given set. It is a
// pure computation; an unknown project id simply yields an empty summary.
func Progress(projectID string, tasks []*models.Task) Summary {
	s := Summary{ProjectID: projectID}
	for _, t := range tasks {
		if t.ProjectID != projectID {
			continue
		}
		switch t.Status {
		case models.TaskToDo:
			s.ToDo++
		case models.TaskInProgress:
			s.InProgress++
		case models.TaskCompleted:
			s.Completed++
		case models.TaskCancelled:
			s.Cancelled++
		}
	}
	s.Total = s.ToDo + s.InProgress + s.Completed
	s.Rate = rate(s.Completed, s.Total)
	return s
}

// rate returns completed/total as a percentage rounded to two decimals, or 0
// for an empty total.
func rate(completed, total int) float64 {
	if total == 0 {
		return 0
	}
	return round2(float64(completed) / float64(total) * 100)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
