package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	headlineStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00FF00"))
	detailStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA"))
	warningStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFF00"))
)

// Summary is what a run prints when it finishes.
type Summary struct {
	OutputPath string
	Record     Record
}

type summaryLine struct {
	text    string
	warning bool
}

func (s Summary) lines() []summaryLine {
	r := s.Record
	out := []summaryLine{
		{text: fmt.Sprintf("generated %s with %d tests (original: %d, excluded: %d)",
			s.OutputPath, r.ActualCount, r.OriginalCount, r.ExcludedCount)},
		{text: fmt.Sprintf("expected: %d", r.ExpectedCount)},
	}
	if r.Mismatch() {
		out = append(out, summaryLine{
			text:    fmt.Sprintf("warning: %d tests survived but %d were expected", r.ActualCount, r.ExpectedCount),
			warning: true,
		})
	}
	if len(r.MissingHelpers) > 0 {
		out = append(out, summaryLine{
			text:    "warning: excluded helpers not found: " + strings.Join(r.MissingHelpers, ", "),
			warning: true,
		})
	}
	if len(r.MissingTests) > 0 {
		out = append(out, summaryLine{
			text:    "warning: excluded tests not found: " + strings.Join(r.MissingTests, ", "),
			warning: true,
		})
	}
	return out
}

// Lines returns the plain summary text, one entry per line.
func (s Summary) Lines() []string {
	var out []string
	for _, l := range s.lines() {
		out = append(out, l.text)
	}
	return out
}

// Render writes the summary to w. When styled is set, lipgloss colours the
// headline and warnings.
func Render(w io.Writer, s Summary, styled bool) error {
	for i, l := range s.lines() {
		text := l.text
		if styled {
			switch {
			case l.warning:
				text = warningStyle.Render(text)
			case i == 0:
				text = headlineStyle.Render(text)
			default:
				text = detailStyle.Render(text)
			}
		}
		if _, err := fmt.Fprintln(w, text); err != nil {
			return fmt.Errorf("failed to write summary: %w", err)
		}
	}
	return nil
}
