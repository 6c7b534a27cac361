package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/moolen/pagecheck/internal/scenario"
)

type markdownReporter struct {
	opts options
}

// Write renders a Markdown summary. On a terminal it is rendered through
// glamour, otherwise the raw Markdown is written.
func (m *markdownReporter) Write(w io.Writer, r *scenario.Report) error {
	md := Markdown(r)
	if !m.opts.isTTY(w) {
		_, err := io.WriteString(w, md)
		return err
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(m.opts.width),
	)
	if err != nil {
		return fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	out, err := renderer.Render(md)
	if err != nil {
		return fmt.Errorf("failed to render markdown: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}

// Markdown returns the report as Markdown: a summary, a result table per
// top-level suite and the failure details.
func Markdown(r *scenario.Report) string {
	var b strings.Builder
	b.WriteString("# pagecheck report\n\n")
	fmt.Fprintf(&b, "**%s**\n\n", SummaryLine(r))
	fmt.Fprintf(&b, "- run: `%s`\n- driver: `%s`\n- base URL: %s\n", r.RunID, r.Driver, r.BaseURL)

	top := ""
	first := true
	for _, res := range r.Results {
		if s := res.Case.TopSuite(); first || s != top {
			top, first = s, false
			fmt.Fprintf(&b, "\n## %s\n\n| | case | status | duration |\n|---|---|---|---|\n", orNone(top))
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
			statusIcon(res.Status), escapeCell(caseName(res.Case)), res.Status, durationCell(res))
	}

	var failures []scenario.Result
	for _, res := range r.Results {
		if res.Status == scenario.StatusFailed || res.Status == scenario.StatusErrored {
			failures = append(failures, res)
		}
	}
	if len(failures) > 0 {
		b.WriteString("\n## Failures\n")
		for _, res := range failures {
			f, _ := describe(res)
			fmt.Fprintf(&b, "\n### %s\n\n", res.Case.FullName())
			if f.Step != "" {
				fmt.Fprintf(&b, "- step %d: `%s`\n", f.Index+1, f.Step)
			}
			fmt.Fprintf(&b, "- error: `%s`\n", f.Message)
			if res.Artifact != "" {
				fmt.Fprintf(&b, "- screenshot: `%s`\n", res.Artifact)
			}
		}
	}
	return b.String()
}

func statusIcon(s scenario.Status) string {
	switch s {
	case scenario.StatusPassed:
		return iconPassed
	case scenario.StatusFailed:
		return iconFailed
	case scenario.StatusErrored:
		return iconErrored
	case scenario.StatusTodo:
		return iconTodo
	default:
		return iconSkipped
	}
}

func durationCell(res scenario.Result) string {
	if res.Status == scenario.StatusTodo || res.Status == scenario.StatusSkipped {
		return ""
	}
	return round(res.Duration).String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func orNone(s string) string {
	if s == "" {
		return "(no suite)"
	}
	return s
}
