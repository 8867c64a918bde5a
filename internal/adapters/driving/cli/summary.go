package cli

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/custodia-labs/vepctl/internal/core/domain"
	"github.com/custodia-labs/vepctl/internal/core/ports/driving"
)

// summaryStyles renders run summaries. Colours are dropped automatically
// when w is not a terminal.
type summaryStyles struct {
	title lipgloss.Style
	label lipgloss.Style
	ok    lipgloss.Style
	bad   lipgloss.Style
	muted lipgloss.Style
	box   lipgloss.Style
}

func newSummaryStyles(w io.Writer) summaryStyles {
	r := lipgloss.NewRenderer(w)
	return summaryStyles{
		title: r.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED")),
		label: r.NewStyle().Width(16),
		ok:    r.NewStyle().Foreground(lipgloss.Color("#A6E3A1")),
		bad:   r.NewStyle().Foreground(lipgloss.Color("#F38BA8")),
		muted: r.NewStyle().Foreground(lipgloss.Color("#6C7086")),
		box: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#45475A")).
			Padding(0, 1),
	}
}

// renderReport formats an ingest report as a boxed summary.
func renderReport(w io.Writer, title string, report *driving.IngestReport) string {
	s := newSummaryStyles(w)

	row := func(label, value string) string {
		return s.label.Render(label) + value
	}

	lines := []string{
		s.title.Render(title),
		row("Run", s.muted.Render(report.RunID)),
		row("Source", report.Source),
		row("Records", fmt.Sprintf("%d", report.Counts.Total)),
		row("Valid", s.ok.Render(fmt.Sprintf("%d", report.Counts.Valid))),
		row("Invalid", s.bad.Render(fmt.Sprintf("%d", report.Counts.Invalid))),
	}
	if report.Merged > 0 || report.MergeFailed > 0 {
		lines = append(lines,
			row("Merged", s.ok.Render(fmt.Sprintf("%d", report.Merged))),
			row("Merge failed", s.bad.Render(fmt.Sprintf("%d", report.MergeFailed))),
		)
	}
	if report.ReadErrors > 0 {
		lines = append(lines, row("Read errors", s.bad.Render(fmt.Sprintf("%d", report.ReadErrors))))
	}
	lines = append(lines, row("Duration", report.Duration.Round(time.Millisecond).String()))

	if len(report.ErrorCounts) > 0 {
		lines = append(lines, "", s.title.Render("Errors"))
		for _, ec := range sortedErrorCounts(report.ErrorCounts) {
			lines = append(lines, row(fmt.Sprintf("%d", ec.count), ec.errType))
		}
	}

	return s.box.Render(strings.Join(lines, "\n"))
}

type errorCount struct {
	errType string
	count   int64
}

// sortedErrorCounts orders error types by count, then name.
func sortedErrorCounts(counts domain.ErrorCounts) []errorCount {
	out := make([]errorCount, 0, len(counts))
	for t, n := range counts {
		out = append(out, errorCount{errType: t, count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].errType < out[j].errType
	})
	return out
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
