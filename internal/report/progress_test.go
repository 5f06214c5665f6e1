package report

import (
	"testing"

	"github.com/ldi/stride/pkg/models"
)

func TestProgress(t *testing.T) {
	store := newFakeStore()
	p, _ := pmFixture(store)

	done := models.Date(2025, 1, 5)
	store.addTask(p.ID, 1, models.Date(2025, 1, 1), models.Date(2025, 1, 7), models.TaskCompleted, &done)
	store.addTask(p.ID, 2, models.Date(2025, 1, 1), models.Date(2025, 1, 7), models.TaskCompleted, &done)
	store.addTask(p.ID, 3, models.Date(2025, 1, 2), models.Date(2025, 1, 10), models.TaskToDo, nil)
	store.addTask(p.ID, 4, models.Date(2025, 1, 2), models.Date(2025, 1, 10), models.TaskInProgress, nil)
	store.addTask(p.ID, 5, models.Date(2025, 1, 2), models.Date(2025, 1, 10), models.TaskCancelled, nil)
	store.addTask("P25_00002", 1, models.Date(2025, 1, 2), models.Date(2025, 1, 10), models.TaskToDo, nil)

	s := Progress(p.ID, store.tasks)

	if s.ToDo != 1 || s.InProgress != 1 || s.Completed != 2 || s.Cancelled != 1 {
		t.Errorf("Unexpected buckets: %+v", s)
	}
	// Cancelled tasks and other projects stay out of the total.
	if s.Total != 4 {
		t.Errorf("Expected total 4, got %d", s.Total)
	}
	if s.Rate != 50.0 {
		t.Errorf("Expected rate 50.0, got %v", s.Rate)
	}
}

func TestProgressEmpty(t *testing.T) {
	s := Progress("P25_00009", nil)
	if s.Total != 0 || s.Rate != 0 {
		t.Errorf("Expected zero summary, got %+v", s)
	}
}

func TestProgressRounding(t *testing.T) {
	store := newFakeStore()
	p, _ := pmFixture(store)

	done := models.Date(2025, 1, 5)
	store.addTask(p.ID, 1, models.Date(2025, 1, 1), models.Date(2025, 1, 7), models.TaskCompleted, &done)
	store.addTask(p.ID, 2, models.Date(2025, 1, 1), models.Date(2025, 1, 7), models.TaskToDo, nil)
	store.addTask(p.ID, 3, models.Date(2025, 1, 1), models.Date(2025, 1, 7), models.TaskToDo, nil)

	s := Progress(p.ID, store.tasks)
	if s.Rate != 33.33 {
		t.Errorf("Expected 33.33, got %v", s.Rate)
	}
	if s.Rate < 0 || s.Rate > 100 {
		t.Errorf("Rate out of range: %v", s.Rate)
	}
}
