package ui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ldi/stride/pkg/models"
)

func TestActivityModelRendersEntries(t *testing.T) {
	fetch := func() ([]*models.Activity, error) {
		return []*models.Activity{
			{CreatedAt: time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC), Entity: "task", EntityID: "TP25_00001_00001", Action: "create", Details: "Implement login"},
		}, nil
	}
	m := NewActivityModel(fetch, time.Second)

	model, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 24})
	m = model.(ActivityModel)

	entries, err := fetch()
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	model, _ = m.Update(entries)
	m = model.(ActivityModel)

	view := m.View()
	if !strings.Contains(view, "TP25_00001_00001") {
		t.Errorf("expected view to contain entity id: %s", view)
	}
	if !strings.Contains(view, "Implement login") {
		t.Errorf("expected view to contain details: %s", view)
	}
}

func TestActivityModelQuits(t *testing.T) {
	m := NewActivityModel(func() ([]*models.Activity, error) { return nil, nil }, time.Second)

	model, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	m = model.(ActivityModel)

	if !m.quitting {
		t.Error("expected quitting true after 'q'")
	}
	if cmd == nil {
		t.Error("expected quit command")
	}
}
