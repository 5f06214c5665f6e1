package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	upcomingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("42")).
			Padding(0, 1)

	overdueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("196")).
			Padding(0, 1)

	boardHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("252")).
				Padding(0, 1)

	panelTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1)

	emptyBoardStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true).
			Padding(0, 1)
)

// TaskLine is one row on the board: a task label and whether its deadline
// has already slipped.
type TaskLine struct {
	Label   string
	Overdue bool
}

// TaskBoard renders the overdue and upcoming tasks of a reporting period as
// two colored panels.
type TaskBoard struct {
	Overdue  []TaskLine
	Upcoming []TaskLine
	Width    int
	Title    string
}

func NewTaskBoard(width int) *TaskBoard {
	return &TaskBoard{
		Overdue:  make([]TaskLine, 0),
		Upcoming: make([]TaskLine, 0),
		Width:    width,
		Title:    "Period Tasks",
	}
}

func (b *TaskBoard) Add(line TaskLine, limit int) {
	if line.Overdue {
		b.Overdue = b.appendWithLimit(b.Overdue, line, limit)
	} else {
		b.Upcoming = b.appendWithLimit(b.Upcoming, line, limit)
	}
}

func (b *TaskBoard) appendWithLimit(slice []TaskLine, line TaskLine, limit int) []TaskLine {
	slice = append(slice, line)
	if limit > 0 && len(slice) > limit {
		return slice[len(slice)-limit:]
	}
	return slice
}

func (b *TaskBoard) View() string {
	var boxes []string

	if len(b.Overdue) > 0 {
		boxes = append(boxes, b.renderPanel("Overdue", b.Overdue, overdueStyle, "✗"))
	}

	if len(b.Upcoming) > 0 {
		boxes = append(boxes, b.renderPanel("Due Next Period", b.Upcoming, upcomingStyle, "•"))
	}

	var content string
	if len(boxes) == 0 {
		content = emptyBoardStyle.Render("Nothing to flag this period")
	} else {
		content = strings.Join(boxes, "\n")
	}

	result := content
	if b.Title != "" {
		result = boardHeaderStyle.Render(b.Title) + "\n" + content
	}
	return result
}

func (b *TaskBoard) renderPanel(title string, lines []TaskLine, style lipgloss.Style, icon string) string {
	// Width on a bordered style is content width, so the frame must come out
	// of the budget or the panel overshoots b.Width by the border cells.
	innerWidth := b.Width - style.GetHorizontalFrameSize()
	if innerWidth < 0 {
		innerWidth = 0
	}

	panelTitle := panelTitleStyle.Foreground(style.GetForeground()).Render(title)

	var rendered []string
	labelWidth := innerWidth - 2
	if labelWidth < 0 {
		labelWidth = 0
	}

	for _, l := range lines {
		wrapped := lipgloss.NewStyle().Width(labelWidth).Render(l.Label)
		labelLines := strings.Split(wrapped, "\n")
		for i, line := range labelLines {
			if i == 0 {
				rendered = append(rendered, fmt.Sprintf("%s %s", icon, line))
			} else {
				rendered = append(rendered, fmt.Sprintf("  %s", line))
			}
		}
	}

	body := strings.Join(rendered, "\n")
	return style.Width(innerWidth).Render(panelTitle + "\n" + body)
}
