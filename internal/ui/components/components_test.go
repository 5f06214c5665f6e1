package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestTaskBoard(t *testing.T) {
	b := NewTaskBoard(80)
	b.Title = "Week 2"

	b.Add(TaskLine{Label: "task1", Overdue: true}, 5)
	b.Add(TaskLine{Label: "task2"}, 5)

	view := b.View()

	if !strings.Contains(view, "Week 2") {
		t.Errorf("expected view to contain Title")
	}
	if !strings.Contains(view, "Overdue") {
		t.Errorf("expected view to contain Overdue panel")
	}
	if !strings.Contains(view, "Due Next Period") {
		t.Errorf("expected view to contain upcoming panel")
	}
	if !strings.Contains(view, "✗ task1") {
		t.Errorf("expected view to contain ✗ task1")
	}
	if !strings.Contains(view, "• task2") {
		t.Errorf("expected view to contain • task2")
	}
}

func TestTaskBoardEmptyState(t *testing.T) {
	b := NewTaskBoard(80)
	view := b.View()
	if !strings.Contains(view, "Nothing to flag this period") {
		t.Errorf("expected placeholder when board is empty")
	}

	b.Add(TaskLine{Label: "task1", Overdue: true}, 5)
	view = b.View()
	if !strings.Contains(view, "Overdue") {
		t.Errorf("expected Overdue panel")
	}
	if strings.Contains(view, "Due Next Period") {
		t.Errorf("expected NO upcoming panel when empty")
	}
}

func TestTaskBoardLimit(t *testing.T) {
	b := NewTaskBoard(40)
	b.Add(TaskLine{Label: "oldest"}, 2)
	b.Add(TaskLine{Label: "middle"}, 2)
	b.Add(TaskLine{Label: "newest"}, 2)

	view := b.View()
	if strings.Contains(view, "oldest") {
		t.Errorf("expected oldest entry to be dropped past the limit")
	}
	middleIdx := strings.Index(view, "middle")
	newestIdx := strings.Index(view, "newest")
	if middleIdx == -1 || newestIdx == -1 {
		t.Fatalf("expected remaining entries to be present")
	}
	if middleIdx > newestIdx {
		t.Errorf("expected chronological order, got indices: %d, %d", middleIdx, newestIdx)
	}
}

func TestTaskBoardWidth(t *testing.T) {
	width := 20
	b := NewTaskBoard(width)
	b.Add(TaskLine{Label: "task1"}, 5)

	view := b.View()
	lines := strings.Split(view, "\n")

	for _, line := range lines {
		if line == "" {
			continue
		}
		w := lipgloss.Width(line)
		if w > width {
			t.Errorf("line too wide: %d > %d. Line: %q", w, width, line)
		}
	}
}

func TestActivityFeed(t *testing.T) {
	f := NewActivityFeed(80, 20)
	f.SetSize(80, 20)

	f.Append("staff NV_00001 create")
	f.AppendMarker("refreshed")

	view := f.View()
	if !strings.Contains(view, "staff NV_00001 create") {
		t.Errorf("expected view to contain appended entry")
	}
	if !strings.Contains(view, "--- refreshed ---") {
		t.Errorf("expected view to contain marker")
	}

	f.Reset()
	view = f.View()
	if strings.Contains(view, "NV_00001") {
		t.Errorf("expected view to be cleared after Reset")
	}
}

func TestActivityFeedScrollbar(t *testing.T) {
	width, height := 20, 5
	f := NewActivityFeed(width, height)
	f.SetSize(width, height)

	for i := 0; i < 10; i++ {
		f.Append("line\n")
	}

	view := f.View()

	if !strings.Contains(view, "┃") {
		t.Errorf("expected view to contain scrollbar handle '┃'")
	}
	if !strings.Contains(view, "│") {
		t.Errorf("expected view to contain scrollbar track '│'")
	}
}

func TestActivityFeedNoScrollbar(t *testing.T) {
	width, height := 20, 10
	f := NewActivityFeed(width, height)
	f.SetSize(width, height)

	f.Append("short content")

	view := f.View()

	if strings.Contains(view, "┃") || strings.Contains(view, "│") {
		t.Errorf("expected view to NOT contain scrollbar when content fits")
	}
}

func TestActivityFeedWrapping(t *testing.T) {
	width, height := 20, 10
	f := NewActivityFeed(width, height)
	f.SetSize(width, height)

	f.Append("this is a very long line that should definitely wrap because it exceeds the width of twenty characters")

	view := f.View()

	lines := strings.Split(strings.TrimSpace(view), "\n")
	if len(lines) <= 1 {
		t.Errorf("expected content to wrap into multiple lines, but got %d lines. View: %q", len(lines), view)
	}

	for i, line := range lines {
		w := lipgloss.Width(line)
		if w > width {
			t.Errorf("line %d is too wide: %d > %d. Content: %q", i, w, width, line)
		}
	}
}

func TestActivityFeedReWrappingOnResize(t *testing.T) {
	width, height := 60, 10
	f := NewActivityFeed(width, height)
	f.SetSize(width, height)

	content := "this is a moderately long line that should fit in sixty characters but not in twenty"
	f.Append(content)

	view1 := f.View()
	lines1 := strings.Split(strings.TrimSpace(view1), "\n")

	f.SetSize(20, 10)
	lines2 := strings.Split(strings.TrimSpace(f.viewport.View()), "\n")

	if len(lines2) <= len(lines1) {
		t.Errorf("expected more lines after shrinking width: %d <= %d", len(lines2), len(lines1))
	}
}
