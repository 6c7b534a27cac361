// Package report renders scenario run reports as text, JSON, JUnit XML or
// Markdown.
package report

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/moolen/pagecheck/internal/scenario"
	"golang.org/x/term"
)

// Formats lists the supported output formats.
var Formats = []string{"text", "json", "junit", "markdown"}

// Reporter writes a report.
type Reporter interface {
	Write(w io.Writer, r *scenario.Report) error
}

type options struct {
	tty   *bool
	width int
}

// Option customizes a reporter.
type Option func(*options)

// WithTTY forces terminal rendering on or off instead of detecting it from
// the writer.
func WithTTY(on bool) Option {
	return func(o *options) { o.tty = &on }
}

// WithWidth sets the wrap width for rendered Markdown.
func WithWidth(width int) Option {
	return func(o *options) { o.width = width }
}

func (o options) isTTY(w io.Writer) bool {
	if o.tty != nil {
		return *o.tty
	}
	return IsTerminal(w)
}

// New returns the reporter for format.
func New(format string, opts ...Option) (Reporter, error) {
	o := options{width: 100}
	for _, opt := range opts {
		opt(&o)
	}

	switch format {
	case "text", "":
		return &textReporter{opts: o}, nil
	case "json":
		return &jsonReporter{}, nil
	case "junit":
		return &junitReporter{}, nil
	case "markdown":
		return &markdownReporter{opts: o}, nil
	default:
		return nil, fmt.Errorf("unknown report format %q (want one of %v)", format, Formats)
	}
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// SummaryLine is the one-line outcome of a run.
func SummaryLine(r *scenario.Report) string {
	s := r.Summary()
	return fmt.Sprintf("%d passed, %d failed, %d errored, %d todo, %d skipped (%d total) in %s",
		s.Passed, s.Failed, s.Errored, s.Todo, s.Skipped, s.Total, round(r.Duration))
}

func round(d time.Duration) time.Duration {
	if d < time.Second {
		return d.Round(time.Millisecond)
	}
	return d.Round(10 * time.Millisecond)
}

// failure describes why a result did not pass, for every format.
type failure struct {
	Step    string
	Index   int
	Message string
}

func describe(res scenario.Result) (failure, bool) {
	if res.Err == nil {
		return failure{}, false
	}
	f := failure{Message: res.Err.Error(), Index: -1}
	if step, ok := res.Step(); ok {
		f.Step = step.String()
		f.Index = res.FailedStep
	}
	return f, true
}
