package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/moolen/pagecheck/internal/scenario"
)

var (
	colorPrimary = lipgloss.Color("#00D4FF")
	colorSuccess = lipgloss.Color("#10B981")
	colorWarning = lipgloss.Color("#F59E0B")
	colorError   = lipgloss.Color("#EF4444")
	colorMuted   = lipgloss.Color("#6B7280")
)

const (
	iconPassed  = "✓"
	iconFailed  = "✗"
	iconErrored = "!"
	iconTodo    = "○"
	iconSkipped = "-"
)

type textStyles struct {
	suite, passed, failed, errored, todo, muted lipgloss.Style
}

func newTextStyles(r *lipgloss.Renderer) textStyles {
	return textStyles{
		suite:   r.NewStyle().Bold(true).Foreground(colorPrimary),
		passed:  r.NewStyle().Foreground(colorSuccess),
		failed:  r.NewStyle().Foreground(colorError),
		errored: r.NewStyle().Foreground(colorError).Bold(true),
		todo:    r.NewStyle().Foreground(colorWarning),
		muted:   r.NewStyle().Foreground(colorMuted),
	}
}

type textReporter struct {
	opts options
}

// Write prints results as an indented suite tree. Colors follow the
// writer's terminal capabilities.
func (t *textReporter) Write(w io.Writer, r *scenario.Report) error {
	st := newTextStyles(lipgloss.NewRenderer(w))
	var b strings.Builder

	var prev []string
	for _, res := range r.Results {
		path := res.Case.Suite
		common := 0
		for common < len(prev) && common < len(path) && prev[common] == path[common] {
			common++
		}
		for depth := common; depth < len(path); depth++ {
			fmt.Fprintf(&b, "%s%s\n", indent(depth), st.suite.Render(path[depth]))
		}
		prev = path

		depth := len(path)
		icon, style := t.icon(st, res.Status)
		line := fmt.Sprintf("%s %s", icon, res.Case.Name)
		switch res.Status {
		case scenario.StatusTodo, scenario.StatusSkipped:
			line += st.muted.Render(fmt.Sprintf(" (%s)", res.Status))
		default:
			line += st.muted.Render(fmt.Sprintf(" (%s)", round(res.Duration)))
		}
		fmt.Fprintf(&b, "%s%s\n", indent(depth), style.Render(line))

		if f, ok := describe(res); ok {
			detail := indent(depth + 2)
			if f.Step != "" {
				fmt.Fprintf(&b, "%sstep %d: %s\n", detail, f.Index+1, f.Step)
			}
			fmt.Fprintf(&b, "%s%s\n", detail, st.failed.Render(f.Message))
			if res.Artifact != "" {
				fmt.Fprintf(&b, "%sscreenshot: %s\n", detail, res.Artifact)
			}
		}
	}

	b.WriteString("\n")
	summary := SummaryLine(r)
	if r.OK() {
		b.WriteString(st.passed.Render(summary))
	} else {
		b.WriteString(st.failed.Render(summary))
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s\n", st.muted.Render(fmt.Sprintf("run %s, driver %s, %s", r.RunID, r.Driver, r.BaseURL)))

	_, err := io.WriteString(w, b.String())
	return err
}

func (t *textReporter) icon(st textStyles, s scenario.Status) (string, lipgloss.Style) {
	switch s {
	case scenario.StatusPassed:
		return iconPassed, st.passed
	case scenario.StatusFailed:
		return iconFailed, st.failed
	case scenario.StatusErrored:
		return iconErrored, st.errored
	case scenario.StatusTodo:
		return iconTodo, st.todo
	default:
		return iconSkipped, st.muted
	}
}

func indent(depth int) string {
	return strings.Repeat("  ", depth)
}
