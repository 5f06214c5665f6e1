package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ldi/stride/internal/ui/components"
	"github.com/ldi/stride/pkg/models"
)

var feedTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))

// ActivityFetcher returns the newest activity entries, oldest first.
type ActivityFetcher func() ([]*models.Activity, error)

type activityTickMsg time.Time

// ActivityModel is the live view over the activity log. It polls the fetcher
// on an interval and keeps the feed scrolled to the newest entry.
type ActivityModel struct {
	feed     *components.ActivityFeed
	fetch    ActivityFetcher
	interval time.Duration
	err      error
	quitting bool
}

func NewActivityModel(fetch ActivityFetcher, interval time.Duration) ActivityModel {
	return ActivityModel{
		feed:     components.NewActivityFeed(80, 20),
		fetch:    fetch,
		interval: interval,
	}
}

func (m ActivityModel) Init() tea.Cmd {
	return tea.Batch(m.refresh(), m.tick())
}

func (m ActivityModel) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return activityTickMsg(t)
	})
}

func (m ActivityModel) refresh() tea.Cmd {
	return func() tea.Msg {
		entries, err := m.fetch()
		if err != nil {
			return err
		}
		return entries
	}
}

func (m ActivityModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit
		}
		return m, m.feed.Update(msg)

	case tea.WindowSizeMsg:
		m.feed.SetSize(msg.Width, msg.Height-2)
		return m, nil

	case activityTickMsg:
		return m, tea.Batch(m.refresh(), m.tick())

	case []*models.Activity:
		m.feed.SetContent(renderActivity(msg))
		return m, nil

	case error:
		m.err = msg
		return m, tea.Quit
	}

	return m, m.feed.Update(msg)
}

func (m ActivityModel) View() string {
	if m.quitting {
		return ""
	}
	return feedTitleStyle.Render("Activity") + "\n" + m.feed.View() + "\n(q to quit)"
}

func renderActivity(entries []*models.Activity) string {
	var sb strings.Builder
	// ListActivity returns newest first; the feed reads top to bottom.
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		sb.WriteString(fmt.Sprintf("%s  %-8s %-18s %-8s %s\n",
			e.CreatedAt.Format("15:04:05"), e.Entity, e.EntityID, e.Action, e.Details))
	}
	return sb.String()
}

// FollowActivity runs the live activity view until the operator quits.
func FollowActivity(fetch ActivityFetcher, interval time.Duration) error {
	m := NewActivityModel(fetch, interval)
	p := tea.NewProgram(m)
	finalModel, err := p.Run()
	if err != nil {
		return err
	}
	if final, ok := finalModel.(ActivityModel); ok && final.err != nil {
		return final.err
	}
	return nil
}
