package report

import (
	"context"
	"fmt"
	"time"

	"github.com/ldi/stride/pkg/models"
)

// fakeStore is an in-memory Store for builder tests.
type fakeStore struct {
	projects map[string]*models.Project
	staff    map[string]*models.Staff
	tasks    []*models.Task
	weekly   []*models.WeeklyReport
	final    []*models.FinalReport
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		projects: make(map[string]*models.Project),
		staff:    make(map[string]*models.Staff),
	}
}

func (f *fakeStore) GetProject(ctx context.Context, id string) (*models.Project, error) {
	return f.projects[id], nil
}

func (f *fakeStore) GetStaff(ctx context.Context, id string) (*models.Staff, error) {
	return f.staff[id], nil
}

func (f *fakeStore) TasksForProject(ctx context.Context, projectID string) ([]*models.Task, error) {
	var out []*models.Task
	for _, t := range f.tasks {
		if t.ProjectID == projectID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeStore) WeeklyReportsForProject(ctx context.Context, projectID string) ([]*models.WeeklyReport, error) {
	var out []*models.WeeklyReport
	for _, r := range f.weekly {
		if r.ProjectID == projectID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) WeeklyReportExists(ctx context.Context, id string) (bool, error) {
	for _, r := range f.weekly {
		if r.ID == id {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) AppendWeeklyReport(ctx context.Context, r *models.WeeklyReport) error {
	f.weekly = append(f.weekly, r)
	return nil
}

func (f *fakeStore) FinalReportExists(ctx context.Context, projectID string) (bool, error) {
	for _, r := range f.final {
		if r.ProjectID == projectID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) AppendFinalReport(ctx context.Context, r *models.FinalReport) error {
	f.final = append(f.final, r)
	return nil
}

// pmFixture seeds a manager and a January project under their management.
func pmFixture(store *fakeStore) (*models.Project, *models.Staff) {
	pm := &models.Staff{
		ID:              "NV_00001",
		FullName:        "Anna Kovaleva",
		Age:             35,
		Level:           models.LevelSenior,
		Role:            models.RoleTechnicalLead,
		ManagementTitle: models.TitleProjectManager,
	}
	store.staff[pm.ID] = pm

	p := &models.Project{
		ID:          "P25_00001",
		Name:        "Billing Portal",
		Customer:    "Acme",
		StartDate:   models.Date(2025, 1, 1),
		ExpectedEnd: models.Date(2025, 1, 31),
		Budget:      100000,
		Status:      models.ProjectInProgress,
		PMID:        pm.ID,
	}
	store.projects[p.ID] = p
	return p, pm
}

func (f *fakeStore) addTask(projectID string, n int, start, deadline time.Time, status models.TaskStatus, completed *time.Time) *models.Task {
	t := &models.Task{
		ID:            fmt.Sprintf("T%s_%05d", projectID, n),
		ProjectID:     projectID,
		Name:          fmt.Sprintf("Task %d", n),
		AssigneeID:    models.Unassigned,
		StartDate:     start,
		Deadline:      deadline,
		CompletedDate: completed,
		Priority:      models.PriorityMedium,
		Status:        status,
	}
	f.tasks = append(f.tasks, t)
	return t
}

func testBuilder(store Store, now time.Time) *Builder {
	b := NewBuilder(store)
	b.now = func() time.Time { return now }
	return b
}
