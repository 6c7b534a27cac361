package scenario

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/moolen/pagecheck/internal/browser"
	"github.com/moolen/pagecheck/internal/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// RunnerConfig holds the run-wide settings.
type RunnerConfig struct {
	// BaseURL is loaded before every case without an EntryURL.
	BaseURL string
	// DefaultTimeout bounds interactions and presence assertions.
	DefaultTimeout time.Duration
	// AbsenceTimeout bounds absence assertions.
	AbsenceTimeout time.Duration
	// NavigationTimeout bounds loading the entry URL.
	NavigationTimeout time.Duration
	// Parallelism is the number of cases run at once.
	Parallelism int
	// ArtifactsDir receives a screenshot per failed case when set.
	ArtifactsDir string
}

func (c *RunnerConfig) setDefaults() {
	if c.DefaultTimeout <= 0 {
		c.DefaultTimeout = 30 * time.Second
	}
	if c.AbsenceTimeout <= 0 {
		c.AbsenceTimeout = time.Second
	}
	if c.NavigationTimeout <= 0 {
		c.NavigationTimeout = 60 * time.Second
	}
	if c.Parallelism <= 0 {
		c.Parallelism = 1
	}
}

// Option customizes a Runner.
type Option func(*Runner)

// WithMetrics records case and step metrics.
func WithMetrics(m *Metrics) Option {
	return func(r *Runner) { r.metrics = m }
}

// WithTracer replaces the global tracer.
func WithTracer(t trace.Tracer) Option {
	return func(r *Runner) { r.tracer = t }
}

// WithFilter drops non-matching cases from every run.
func WithFilter(f Filter) Option {
	return func(r *Runner) { r.filter = f }
}

// Runner executes cases against a started driver.
type Runner struct {
	driver  browser.Driver
	cfg     RunnerConfig
	metrics *Metrics
	tracer  trace.Tracer
	filter  Filter
	logger  *logging.Logger
}

// NewRunner creates a runner. The driver must be started before Run.
func NewRunner(driver browser.Driver, cfg RunnerConfig, opts ...Option) *Runner {
	cfg.setDefaults()
	r := &Runner{
		driver: driver,
		cfg:    cfg,
		tracer: otel.Tracer("pagecheck/scenario"),
		logger: logging.GetLogger("scenario.runner"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes the cases that pass the filter, up to Parallelism at a time,
// and returns their results in input order. Once ctx is done no further
// case starts; those left over are reported as skipped and ctx's error is
// returned alongside the report.
func (r *Runner) Run(ctx context.Context, cases []Case) (*Report, error) {
	cases = r.filter.Apply(cases)

	report := &Report{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
		Driver:    r.driver.Name(),
		BaseURL:   r.cfg.BaseURL,
		Results:   make([]Result, len(cases)),
	}

	ctx, span := r.tracer.Start(ctx, "scenario.run", trace.WithAttributes(
		attribute.String("run.id", report.RunID),
		attribute.String("driver", report.Driver),
		attribute.Int("cases", len(cases)),
	))
	defer span.End()

	r.logger.WithContext(ctx).InfoWithFields("Starting run",
		logging.Field("run_id", report.RunID),
		logging.Field("cases", len(cases)),
		logging.Field("parallelism", r.cfg.Parallelism))

	artifacts := artifactNames(cases)

	var g errgroup.Group
	g.SetLimit(r.cfg.Parallelism)
	for i, c := range cases {
		if ctx.Err() != nil {
			report.Results[i] = r.skip(c)
			continue
		}
		i, c := i, c
		g.Go(func() error {
			if ctx.Err() != nil {
				report.Results[i] = r.skip(c)
				return nil
			}
			report.Results[i] = r.execute(ctx, report.RunID, artifacts[i], c)
			return nil
		})
	}
	_ = g.Wait()

	report.Duration = time.Since(report.StartedAt)
	s := report.Summary()
	span.SetAttributes(
		attribute.Int("passed", s.Passed),
		attribute.Int("failed", s.Failed),
		attribute.Int("errored", s.Errored),
	)
	if !report.OK() {
		span.SetStatus(codes.Error, fmt.Sprintf("%d failed, %d errored", s.Failed, s.Errored))
	}

	r.logger.WithContext(ctx).InfoWithFields("Run finished",
		logging.Field("run_id", report.RunID),
		logging.Field("passed", s.Passed),
		logging.Field("failed", s.Failed),
		logging.Field("errored", s.Errored),
		logging.Field("todo", s.Todo),
		logging.Field("skipped", s.Skipped),
		logging.Field("duration", report.Duration.Round(time.Millisecond).String()))

	return report, ctx.Err()
}

// RunCase executes a single case outside of a run.
func (r *Runner) RunCase(ctx context.Context, c Case) Result {
	return r.execute(ctx, uuid.NewString(), c.Slug(), c)
}

func (r *Runner) skip(c Case) Result {
	res := Result{Case: c, Status: StatusSkipped, FailedStep: -1}
	r.metrics.observeCase(res)
	return res
}

func (r *Runner) execute(ctx context.Context, runID, artifact string, c Case) (res Result) {
	res = Result{Case: c, FailedStep: -1}
	if c.Todo {
		res.Status = StatusTodo
		r.metrics.observeCase(res)
		r.logger.InfoWithFields("Case not implemented", logging.Field("case", c.FullName()))
		return res
	}

	start := time.Now()
	ctx, span := r.tracer.Start(ctx, "scenario.case", trace.WithAttributes(
		attribute.String("run.id", runID),
		attribute.String("case.name", c.FullName()),
	))
	logger := r.logger.WithContext(ctx).WithField("case", c.FullName())

	defer func() {
		res.Duration = time.Since(start)
		span.SetAttributes(attribute.String("case.status", string(res.Status)))
		if res.Err != nil {
			span.RecordError(res.Err)
			span.SetStatus(codes.Error, res.Err.Error())
		}
		span.End()
		r.metrics.observeCase(res)

		fields := []logging.LogField{
			logging.Field("status", string(res.Status)),
			logging.Field("duration", res.Duration.Round(time.Millisecond).String()),
		}
		if res.Err != nil {
			fields = append(fields, logging.Field("error", res.Err.Error()))
		}
		logger.InfoWithFields("Case finished", fields...)
	}()

	entry := c.EntryURL
	if entry == "" {
		entry = r.cfg.BaseURL
	}

	session, err := r.driver.NewSession(ctx)
	if err != nil {
		res.Status, res.Err = StatusErrored, &SetupError{URL: entry, Err: err}
		return res
	}
	defer func() {
		if err := session.Close(); err != nil {
			logger.Debug("Failed to close session: %v", err)
		}
	}()

	navCtx, cancel := context.WithTimeout(ctx, r.cfg.NavigationTimeout)
	err = session.Navigate(navCtx, entry)
	cancel()
	if err != nil {
		res.Status, res.Err = StatusErrored, &SetupError{URL: entry, Err: err}
		res.Artifact = r.capture(ctx, session, runID, artifact, logger)
		return res
	}

	for i, step := range c.Steps {
		err := r.runStep(ctx, session, step)
		r.metrics.observeStep(step.Action, err)
		span.AddEvent("step", trace.WithAttributes(
			attribute.Int("step.index", i),
			attribute.String("step.action", string(step.Action)),
			attribute.String("step.selector", step.Selector),
			attribute.Bool("step.ok", err == nil),
		))
		logger.DebugWithFields("Step finished",
			logging.Field("step", i+1),
			logging.Field("action", step.String()),
			logging.Field("ok", err == nil))

		if err != nil {
			res.FailedStep, res.Err = i, err
			res.Status = StatusFailed
			if ctx.Err() != nil {
				res.Status = StatusErrored
			}
			res.Artifact = r.capture(ctx, session, runID, artifact, logger)
			return res
		}
	}

	res.Status = StatusPassed
	return res
}

// runStep performs one step. Missing elements surface as LocatorError for
// interactions and reads, and as TimeoutError for presence and absence
// assertions.
func (r *Runner) runStep(ctx context.Context, s browser.Session, step Step) error {
	switch step.Action {
	case ActionClick:
		if err := s.Click(ctx, step.Selector); err != nil {
			return locatorError(step, err)
		}

	case ActionType:
		if err := s.Type(ctx, step.Selector, step.Value); err != nil {
			return locatorError(step, err)
		}

	case ActionExpectURL:
		re, err := regexp.Compile(step.Value)
		if err != nil {
			return fmt.Errorf("invalid URL pattern %q: %w", step.Value, err)
		}
		if got := s.URL(); !re.MatchString(got) {
			return &AssertionError{Kind: step.Action, Expected: step.Value, Actual: got}
		}

	case ActionExpectPresent:
		timeout := r.timeout(step, r.cfg.DefaultTimeout)
		if err := s.WaitPresent(ctx, step.Selector, timeout); err != nil {
			return timeoutError(step, timeout, false, err)
		}

	case ActionExpectAbsent:
		timeout := r.timeout(step, r.cfg.AbsenceTimeout)
		if err := s.WaitAbsent(ctx, step.Selector, timeout); err != nil {
			return timeoutError(step, timeout, true, err)
		}

	case ActionExpectTextEquals, ActionExpectTextContains:
		text, err := s.Text(ctx, step.Selector)
		if err != nil {
			return locatorError(step, err)
		}
		if !textMatches(step.Action, text, step.Value) {
			return &AssertionError{Kind: step.Action, Selector: step.Selector, Expected: step.Value, Actual: text}
		}

	case ActionExpectAttributeContains:
		el, err := s.Query(ctx, step.Selector)
		if err != nil {
			return locatorError(step, err)
		}
		value, ok, err := el.Attribute(ctx, step.Attribute)
		if err != nil {
			return fmt.Errorf("read attribute %q of %q: %w", step.Attribute, step.Selector, err)
		}
		if !ok || !strings.Contains(value, step.Value) {
			actual := value
			if !ok {
				actual = "<unset>"
			}
			return &AssertionError{
				Kind:     step.Action,
				Selector: fmt.Sprintf("%s[%s]", step.Selector, step.Attribute),
				Expected: step.Value,
				Actual:   actual,
			}
		}

	default:
		return fmt.Errorf("unknown action %q", step.Action)
	}
	return nil
}

func (r *Runner) timeout(step Step, fallback time.Duration) time.Duration {
	if step.Timeout > 0 {
		return step.Timeout
	}
	return fallback
}

// textMatches compares text content with surrounding whitespace trimmed.
func textMatches(action Action, got, want string) bool {
	got = strings.TrimSpace(got)
	if action == ActionExpectTextEquals {
		return got == strings.TrimSpace(want)
	}
	return strings.Contains(got, want)
}

func locatorError(step Step, err error) error {
	if errors.Is(err, browser.ErrTimeout) {
		return &LocatorError{Action: step.Action, Selector: step.Selector, Err: err}
	}
	return fmt.Errorf("%s: %w", step, err)
}

func timeoutError(step Step, timeout time.Duration, absent bool, err error) error {
	if errors.Is(err, browser.ErrTimeout) {
		return &TimeoutError{Selector: step.Selector, Timeout: timeout, Absent: absent}
	}
	return fmt.Errorf("%s: %w", step, err)
}

// artifactNames returns a file name per case, unique within the run. Cases
// sharing a slug get a numeric suffix in input order.
func artifactNames(cases []Case) []string {
	names := make([]string, len(cases))
	used := make(map[string]bool, len(cases))
	for i, c := range cases {
		base := c.Slug()
		name := base
		for n := 2; used[name]; n++ {
			name = fmt.Sprintf("%s-%d", base, n)
		}
		used[name] = true
		names[i] = name
	}
	return names
}

// capture writes a screenshot for a failed case and returns its path.
func (r *Runner) capture(ctx context.Context, s browser.Session, runID, name string, logger *logging.Logger) string {
	if r.cfg.ArtifactsDir == "" {
		return ""
	}

	shotCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	png, err := s.Screenshot(shotCtx)
	if err != nil {
		logger.Warn("Failed to capture screenshot: %v", err)
		return ""
	}

	dir := filepath.Join(r.cfg.ArtifactsDir, runID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.Warn("Failed to create artifacts directory: %v", err)
		return ""
	}
	path := filepath.Join(dir, name+".png")
	if err := os.WriteFile(path, png, 0o644); err != nil {
		logger.Warn("Failed to write screenshot: %v", err)
		return ""
	}
	return path
}
