package report

import (
	"fmt"
	"time"

	"github.com/ldi/stride/pkg/models"
)

// Period is one allocated weekly reporting interval. Both bounds are
// inclusive dates.
type Period struct {
	Start time.Time
	End   time.Time
	Week  int
}

// NextPeriod allocates the next weekly reporting interval of a project so
// that the period sequence stays contiguous and non-overlapping from the
// project start date onward.
//
// The first week's end date is the operator's choice and must be passed in
// firstEnd; it is validated to lie within seven days of the project start and
// inside the project window. Every later week is derived: it starts the day
// after the previous period ends and runs six more days, clamped to the
// project's expected end date.
func NextPeriod(p *models.Project, existing []*models.WeeklyReport, firstEnd time.Time) (Period, error) {
	if len(existing) == 0 {
		return firstPeriod(p, firstEnd)
	}

	last := existing[0].PeriodEnd
	for _, r := range existing[1:] {
		if r.PeriodEnd.After(last) {
			last = r.PeriodEnd
		}
	}

	start := last.AddDate(0, 0, 1)
	if start.After(p.ExpectedEnd) {
		return Period{}, fmt.Errorf("reporting period of project %s is exhausted after %s: %w",
			p.ID, models.FormatDate(last), models.ErrValidation)
	}

	end := start.AddDate(0, 0, 6)
	if end.After(p.ExpectedEnd) {
		end = p.ExpectedEnd
	}

	return Period{Start: start, End: end, Week: len(existing) + 1}, nil
}

func firstPeriod(p *models.Project, end time.Time) (Period, error) {
	start := p.StartDate
	switch {
	case end.IsZero():
		return Period{}, fmt.Errorf("first week end date is required: %w", models.ErrValidation)
	case end.Before(start):
		return Period{}, fmt.Errorf("first week end %s precedes the project start %s: %w",
			models.FormatDate(end), models.FormatDate(start), models.ErrValidation)
	case !end.Before(start.AddDate(0, 0, 7)):
		return Period{}, fmt.Errorf("first week end %s exceeds seven days from the project start: %w",
			models.FormatDate(end), models.ErrValidation)
	case end.After(p.ExpectedEnd):
		return Period{}, fmt.Errorf("first week end %s exceeds the project expected end %s: %w",
			models.FormatDate(end), models.FormatDate(p.ExpectedEnd), models.ErrValidation)
	}
	return Period{Start: start, End: end, Week: 1}, nil
}
