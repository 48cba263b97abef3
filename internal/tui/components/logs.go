package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jfoltran/growthgraph/internal/animation"
)

var (
	logTimeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	logCompStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#94A3B8"))

	logLevels = map[string]lipgloss.Style{
		"INF": lipgloss.NewStyle().Foreground(lipgloss.Color("#3B82F6")),
		"WRN": lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B")),
		"ERR": lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")),
		"DBG": lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280")),
	}
)

func levelTag(level string) string {
	switch level {
	case "info":
		return "INF"
	case "warn":
		return "WRN"
	case "error", "fatal", "panic":
		return "ERR"
	}
	return "DBG"
}

// RenderLogs renders the last maxLines entries, tagging each with the
// component that logged it.
func RenderLogs(entries []animation.LogEntry, maxLines int) string {
	if len(entries) == 0 {
		return "  No log entries yet"
	}
	if len(entries) > maxLines {
		entries = entries[len(entries)-maxLines:]
	}

	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		tag := levelTag(e.Level)
		line := fmt.Sprintf("  %s %s ", logTimeStyle.Render(e.Time.Format("15:04:05")), logLevels[tag].Render(tag))
		if comp := e.Component; comp != "" {
			line += logCompStyle.Render("["+comp+"]") + " "
		}
		lines = append(lines, line+e.Message)
	}
	return strings.Join(lines, "\n")
}
