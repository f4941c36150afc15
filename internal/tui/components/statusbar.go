package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/dupont/internal/tui/theme"
)

// Status is what the status bar reports about the loaded data.
type Status struct {
	Period     string
	Banks      int
	Failures   int
	LoadTime   time.Duration
	Refreshing bool
	Err        error
}

// RenderStatusBar renders the bottom status bar.
func RenderStatusBar(width int, s Status) string {
	t := theme.Active

	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	accentStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)
	warnStyle := lipgloss.NewStyle().Foreground(t.Warning).Background(t.Surface)

	left := mutedStyle.Render(" [?]help  [r]efresh  [q]uit")

	var right []string
	switch {
	case s.Refreshing:
		right = append(right, accentStyle.Render("refreshing..."))
	case s.Err != nil:
		right = append(right, warnStyle.Render("! "+s.Err.Error()))
	}
	if s.Failures > 0 {
		right = append(right, warnStyle.Render(fmt.Sprintf("%d unreadable", s.Failures)))
	}
	if s.Period != "" {
		right = append(right, accentStyle.Render(s.Period))
	}
	right = append(right, mutedStyle.Render(fmt.Sprintf("%d banks", s.Banks)))
	if s.LoadTime > 0 {
		right = append(right, mutedStyle.Render(fmt.Sprintf("%.1fs", s.LoadTime.Seconds())))
	}
	r := strings.Join(right, mutedStyle.Render(" │ ")) + mutedStyle.Render(" ")

	gap := max(width-lipgloss.Width(left)-lipgloss.Width(r), 0)
	bar := left + mutedStyle.Render(strings.Repeat(" ", gap)) + r
	return lipgloss.NewStyle().Background(t.Surface).MaxWidth(width).Render(bar)
}
