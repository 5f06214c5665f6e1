package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	markerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true)

	feedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	scrollbarTrackStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("236"))

	scrollbarHandleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("241"))
)

// ActivityFeed renders a scrolling log of record changes in a viewport.
type ActivityFeed struct {
	viewport viewport.Model
	content  strings.Builder
	ready    bool
	width    int
	height   int
}

// NewActivityFeed creates a new ActivityFeed.
func NewActivityFeed(width, height int) *ActivityFeed {
	return &ActivityFeed{
		viewport: viewport.New(width, height),
		width:    width,
		height:   height,
	}
}

func (f *ActivityFeed) SetSize(width, height int) {
	f.width = width
	f.height = height
	vpWidth := width
	if width > 0 {
		vpWidth = width - 1
	}
	if !f.ready {
		f.viewport = viewport.New(vpWidth, height)
		f.viewport.HighPerformanceRendering = false
		f.ready = true
	} else {
		f.viewport.Width = vpWidth
		f.viewport.Height = height
	}
	f.updateContent()
}

func (f *ActivityFeed) Append(content string) {
	f.content.WriteString(content)
	f.updateContent()
}

func (f *ActivityFeed) AppendMarker(marker string) {
	f.content.WriteString(markerStyle.Render(fmt.Sprintf("\n--- %s ---\n", marker)))
	f.updateContent()
}

func (f *ActivityFeed) SetContent(content string) {
	f.content.Reset()
	f.content.WriteString(content)
	f.updateContent()
}

func (f *ActivityFeed) Reset() {
	f.content.Reset()
	f.updateContent()
}

func (f *ActivityFeed) updateContent() {
	width := f.viewport.Width
	content := f.content.String()
	if width > 0 {
		content = feedStyle.Copy().Width(width).Render(content)
	} else {
		content = feedStyle.Render(content)
	}
	f.viewport.SetContent(content)
	f.viewport.GotoBottom()
}

func (f *ActivityFeed) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.viewport, cmd = f.viewport.Update(msg)
	return cmd
}

func (f *ActivityFeed) View() string {
	if !f.ready {
		return ""
	}

	if f.viewport.TotalLineCount() <= f.viewport.Height {
		return f.viewport.View()
	}

	h := f.viewport.Height
	percent := f.viewport.ScrollPercent()

	handlePos := int(float64(h-1) * percent)

	var sb strings.Builder
	for i := 0; i < h; i++ {
		if i == handlePos {
			sb.WriteString(scrollbarHandleStyle.Render("┃"))
		} else {
			sb.WriteString(scrollbarTrackStyle.Render("│"))
		}
		if i < h-1 {
			sb.WriteString("\n")
		}
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, f.viewport.View(), sb.String())
}

func (f *ActivityFeed) GotoBottom() {
	f.viewport.GotoBottom()
}

func (f *ActivityFeed) Height() int {
	return f.viewport.Height
}

func (f *ActivityFeed) SetHeight(height int) {
	f.viewport.Height = height
}
