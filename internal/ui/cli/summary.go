package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"genstub/internal/core/ports"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	failureStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B")).
			Italic(true)
)

func printSummary(w io.Writer, s ports.RunSummary) {
	fmt.Fprint(w, formatSummary(s))
}

func formatSummary(s ports.RunSummary) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("genstub") + " " + statusStyle.Render("run "+shortID(s.RunID)) + "\n")

	counts := fmt.Sprintf("%d generated, %d unchanged, %d skipped", s.Generated, s.Unchanged, s.Skipped)
	if s.Failed > 0 {
		b.WriteString(successStyle.Render(counts) + ", " + failureStyle.Render(fmt.Sprintf("%d failed", s.Failed)))
	} else {
		b.WriteString(successStyle.Render(counts + ", 0 failed"))
	}
	b.WriteString(" " + statusStyle.Render("in "+s.Duration.Round(time.Millisecond).String()) + "\n")

	for _, f := range s.Failures {
		b.WriteString(failureStyle.Render("  ✗ ") + f.Source + " - " + f.Error + "\n")
	}
	return b.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
