// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"kanori/internal/service"
)

const (
	// LineWidth is the wrap width for descriptions and summaries.
	LineWidth = 80

	// bodyIndent aligns wrapped text under the task title.
	bodyIndent = 6

	// LaneSeparator is printed between lanes.
	LaneSeparator = "------------"
)

// LaneHeader writes a lane title in the lane color. The renderer is bound to w,
// so color is dropped when w is not a terminal.
func LaneHeader(w io.Writer, status service.TaskStatus, color string, count int) {
	style := lipgloss.NewRenderer(w).NewStyle().Bold(true)
	if color != "" {
		style = style.Foreground(lipgloss.Color(color))
	}
	fmt.Fprintln(w, LaneSeparator)
	fmt.Fprintln(w, style.Render(fmt.Sprintf("%s (%d)", strings.ToUpper(string(status)), count)))
	fmt.Fprintln(w, LaneSeparator)
}

// FormatTask formats a task line, followed by its wrapped description.
// Format: "{ID:>4}  {TITLE}[ {PROGRESS}%][ · {FOCUS}]\n"
func FormatTask(w io.Writer, task service.Task, focusMinutes int) {
	line := fmt.Sprintf("%4d  %s", task.ID, normalizeTitle(task.Title))
	if task.Progress > 0 {
		line += fmt.Sprintf(" [%d%%]", task.Progress)
	}
	if focusMinutes > 0 {
		line += " · " + FormatMinutes(focusMinutes)
	}
	fmt.Fprintln(w, line)
	writeBody(w, task.Description)
}

// FormatSession formats one focus session line.
// Format: "{ID:>4}  task {TASK}  {START}  {STATE}\n"
func FormatSession(w io.Writer, s service.FocusSession) {
	state := "running"
	if !s.Active() {
		state = FormatMinutes(s.DurationMinutes)
		if s.Success {
			state += " ok"
		}
	}
	fmt.Fprintf(w, "%4d  task %d  %s  %s\n", s.ID, s.Task, s.StartedAt.Local().Format("2006-01-02 15:04"), state)
}

// FormatSummary formats a day summary: the date, then the wrapped text.
func FormatSummary(w io.Writer, s service.DaySummary) {
	fmt.Fprintln(w, s.Date)
	writeBody(w, s.SummaryText)
}

// FormatMinutes renders minutes as "45m" or "1h05m".
func FormatMinutes(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%dh%02dm", minutes/60, minutes%60)
}

// FormatElapsed renders a running duration as "MM:SS" or "H:MM:SS".
func FormatElapsed(d time.Duration) string {
	d = max(0, d).Truncate(time.Second)
	h := int(d / time.Hour)
	m := int(d/time.Minute) % 60
	s := int(d/time.Second) % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

func writeBody(w io.Writer, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	pad := strings.Repeat(" ", bodyIndent)
	for _, line := range strings.Split(wordwrap.String(text, LineWidth-bodyIndent), "\n") {
		fmt.Fprintln(w, strings.TrimRight(pad+line, " "))
	}
}

// normalizeTitle normalizes a task title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")

	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}
