package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/moolen/pagecheck/internal/browser"
	"github.com/moolen/pagecheck/internal/browser/drivers"
	"github.com/moolen/pagecheck/internal/config"
	"github.com/moolen/pagecheck/internal/fixture"
	"github.com/moolen/pagecheck/internal/lifecycle"
	"github.com/moolen/pagecheck/internal/logging"
	"github.com/moolen/pagecheck/internal/report"
	"github.com/moolen/pagecheck/internal/scenario"
	"github.com/moolen/pagecheck/internal/tracing"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/trace"
)

// errCasesFailed makes the process exit non-zero without printing an error;
// the report already explains what failed.
var errCasesFailed = errors.New("cases failed")

var (
	runCases caseFlags

	baseURL           string
	driverName        string
	browserName       string
	browserVersion    string
	headless          bool
	slowMo            time.Duration
	parallelism       int
	defaultTimeout    time.Duration
	absenceTimeout    time.Duration
	navigationTimeout time.Duration
	artifactsDir      string
	reportFormat      string
	reportOutput      string
	metricsAddr       string
	metricsFile       string
	tracingEnabled    bool
	tracingExporter   string
	tracingEndpoint   string
	useFixture        bool
	fixtureAddr       string
	watchMode         bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the test cases in a browser",
	Long: `Run the built-in Elements suites and any YAML case files against the
configured base URL. Each case runs in its own isolated browser context.
Exits non-zero when a case failed or errored.`,
	RunE: runRun,
}

func init() {
	runCases.register(runCmd)

	f := runCmd.Flags()
	f.StringVar(&baseURL, "base-url", "", "Entry URL loaded before every case")
	f.StringVar(&driverName, "driver", "", "Browser automation backend: playwright or rod")
	f.StringVar(&browserName, "browser", "", "Browser engine: chromium, firefox or webkit")
	f.StringVar(&browserVersion, "browser-version", "", "Version constraint for the launched browser, e.g. '>= 120'")
	f.BoolVar(&headless, "headless", true, "Run the browser without a window")
	f.DurationVar(&slowMo, "slow-mo", 0, "Delay every browser operation")
	f.IntVarP(&parallelism, "parallelism", "p", 0, "Cases run at once")
	f.DurationVar(&defaultTimeout, "timeout", 0, "Timeout for actions and presence assertions")
	f.DurationVar(&absenceTimeout, "absence-timeout", 0, "Timeout for absence assertions")
	f.DurationVar(&navigationTimeout, "navigation-timeout", 0, "Timeout for loading the entry URL")
	f.StringVar(&artifactsDir, "artifacts-dir", "", "Directory for screenshots of failed cases")
	f.StringVarP(&reportFormat, "format", "f", "", "Report format: text, json, junit or markdown")
	f.StringVarP(&reportOutput, "output", "o", "", "Write the report to this file instead of stdout")
	f.StringVar(&metricsAddr, "metrics-addr", "", "Serve prometheus metrics on this address while running")
	f.StringVar(&metricsFile, "metrics-file", "", "Write prometheus metrics in textfile format after the run")
	f.BoolVar(&tracingEnabled, "tracing", false, "Export OpenTelemetry spans")
	f.StringVar(&tracingExporter, "tracing-exporter", "", "Span exporter: otlp or stdout")
	f.StringVar(&tracingEndpoint, "tracing-endpoint", "", "OTLP gRPC endpoint")
	f.BoolVar(&useFixture, "fixture", false, "Serve the offline replica and run against it")
	f.StringVar(&fixtureAddr, "fixture-addr", fixture.DefaultAddr, "Listen address of the offline replica")
	f.BoolVarP(&watchMode, "watch", "w", false, "Re-run whenever the config or a scenario file changes")
}

// runFlagKeys maps run flags to config keys.
var runFlagKeys = map[string]string{
	"base-url":           "base_url",
	"driver":             "driver",
	"browser":            "browser",
	"browser-version":    "browser_version",
	"headless":           "headless",
	"slow-mo":            "slow_mo",
	"parallelism":        "parallelism",
	"timeout":            "timeouts.default",
	"absence-timeout":    "timeouts.absence",
	"navigation-timeout": "timeouts.navigation",
	"artifacts-dir":      "artifacts_dir",
	"format":             "report.format",
	"output":             "report.output",
	"metrics-addr":       "metrics.addr",
	"metrics-file":       "metrics.file",
	"tracing":            "tracing.enabled",
	"tracing-exporter":   "tracing.exporter",
	"tracing-endpoint":   "tracing.endpoint",
}

// flagOverrides collects the flags the user set, keyed by config key, so
// they take precedence over the file and the environment.
func flagOverrides(cmd *cobra.Command) map[string]interface{} {
	out := map[string]interface{}{}
	for name, key := range runFlagKeys {
		fl := cmd.Flags().Lookup(name)
		if fl == nil || !fl.Changed {
			continue
		}
		out[key] = fl.Value.String()
	}
	runCases.overrides(cmd, out)
	return out
}

func runRun(cmd *cobra.Command, _ []string) error {
	logger := logging.GetLogger("pagecheck")

	cfg, err := config.Load(runCases.configPath, flagOverrides(cmd))
	if err != nil {
		return err
	}
	cases, err := collectCases(cfg, runCases.scenarios)
	if err != nil {
		return err
	}
	filter, err := runCases.filter()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	manager := lifecycle.NewManager()

	tp, err := tracing.NewTracingProvider(tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		Exporter:    cfg.Tracing.Exporter,
		Endpoint:    cfg.Tracing.Endpoint,
		TLSCAPath:   cfg.Tracing.TLSCAPath,
		TLSInsecure: cfg.Tracing.TLSInsecure,
		Writer:      os.Stderr,
		Version:     Version,
	})
	if err != nil {
		return fmt.Errorf("failed to create tracing provider: %w", err)
	}
	if err := manager.Register(tp); err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	metrics := scenario.NewMetrics(registry)
	if cfg.Metrics.Addr != "" {
		if err := manager.Register(metricsServer(cfg.Metrics.Addr, registry)); err != nil {
			return err
		}
	}

	var fix *fixture.Server
	if useFixture {
		fix = fixture.NewServer(fixtureAddr)
		if err := manager.Register(fix); err != nil {
			return err
		}
	}

	driver, err := drivers.New(cfg.Driver, browser.Options{
		Browser:           cfg.Browser,
		Headless:          cfg.Headless,
		SlowMo:            cfg.SlowMo,
		Timeout:           cfg.Timeouts.Default,
		VersionConstraint: cfg.BrowserVersion,
	})
	if err != nil {
		return err
	}
	if err := manager.Register(driver, tp); err != nil {
		return err
	}

	if err := manager.Start(ctx); err != nil {
		return fmt.Errorf("failed to start: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := manager.Stop(shutdownCtx); err != nil {
			logger.Error("Shutdown completed with errors: %v", err)
		}
	}()

	env := &runEnv{
		driver:   driver,
		metrics:  metrics,
		tracer:   tp.GetTracer("pagecheck/scenario"),
		filter:   filter,
		registry: registry,
	}
	if fix != nil {
		env.baseURL = fix.ElementsURL()
	}

	rep, err := env.runOnce(ctx, cfg, cases)
	if err != nil {
		return err
	}
	if watchMode {
		return env.watch(ctx, cmd, cfg)
	}
	if !rep.OK() {
		return errCasesFailed
	}
	return nil
}

// runEnv holds what outlives a single run: the started driver and the
// observability plumbing. A runner is built per run from the current config.
type runEnv struct {
	driver   browser.Driver
	metrics  *scenario.Metrics
	tracer   trace.Tracer
	filter   scenario.Filter
	registry *prometheus.Registry

	// baseURL replaces the configured base URL when set (the local fixture).
	baseURL string
}

func (e *runEnv) runnerConfig(cfg *config.Config) scenario.RunnerConfig {
	base := cfg.BaseURL
	if e.baseURL != "" {
		base = e.baseURL
	}
	return scenario.RunnerConfig{
		BaseURL:           base,
		DefaultTimeout:    cfg.Timeouts.Default,
		AbsenceTimeout:    cfg.Timeouts.Absence,
		NavigationTimeout: cfg.Timeouts.Navigation,
		Parallelism:       cfg.Parallelism,
		ArtifactsDir:      cfg.ArtifactsDir,
	}
}

// runOnce runs the cases with a runner built from cfg and writes the report
// and the metrics textfile.
func (e *runEnv) runOnce(ctx context.Context, cfg *config.Config, cases []scenario.Case) (*scenario.Report, error) {
	runner := scenario.NewRunner(e.driver, e.runnerConfig(cfg),
		scenario.WithMetrics(e.metrics),
		scenario.WithFilter(e.filter),
		scenario.WithTracer(e.tracer),
	)
	rep, runErr := runner.Run(ctx, cases)
	if err := writeReport(cfg.Report, rep); err != nil {
		return nil, err
	}
	if cfg.Metrics.File != "" {
		if err := prometheus.WriteToTextfile(cfg.Metrics.File, e.registry); err != nil {
			return nil, fmt.Errorf("failed to write metrics file: %w", err)
		}
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return nil, runErr
	}
	return rep, nil
}

// watch re-runs the cases each time the config or a scenario file changes,
// until ctx is done. Browser settings are fixed for the process lifetime;
// everything else in the reloaded config applies to the next run.
func (e *runEnv) watch(ctx context.Context, cmd *cobra.Command, cfg *config.Config) error {
	logger := logging.GetLogger("pagecheck.watch")

	paths := append(append([]string{}, cfg.Scenarios...), runCases.scenarios...)
	if runCases.configPath != "" {
		paths = append(paths, runCases.configPath)
	}
	if len(paths) == 0 {
		return fmt.Errorf("--watch needs a config file or scenario files to watch")
	}

	changed := make(chan string, 1)
	w, err := config.NewWatcher(config.WatcherConfig{Paths: paths}, func(path string) error {
		select {
		case changed <- path:
		default:
		}
		return nil
	})
	if err != nil {
		return err
	}
	if err := w.Start(ctx); err != nil {
		return err
	}
	defer w.Stop()

	logger.InfoWithFields("Watching for changes", logging.Field("files", len(paths)))
	for {
		select {
		case <-ctx.Done():
			return nil
		case path := <-changed:
			logger.InfoWithFields("Change detected, re-running", logging.Field("path", path))

			next, err := reloadConfig(cmd, cfg)
			if err != nil {
				logger.Error("Ignoring invalid config: %v", err)
				continue
			}
			cases, err := collectCases(next, runCases.scenarios)
			if err != nil {
				logger.Error("Ignoring invalid scenarios: %v", err)
				continue
			}
			if _, err := e.runOnce(ctx, next, cases); err != nil {
				logger.Error("Run failed: %v", err)
			}
		}
	}
}

// reloadConfig loads the config again with the same flag overrides as the
// first run. Changed browser settings are kept from prev with a warning.
func reloadConfig(cmd *cobra.Command, prev *config.Config) (*config.Config, error) {
	next, err := config.Load(runCases.configPath, flagOverrides(cmd))
	if err != nil {
		return nil, err
	}
	if next.Driver != prev.Driver || next.Browser != prev.Browser || next.Headless != prev.Headless ||
		next.SlowMo != prev.SlowMo || next.BrowserVersion != prev.BrowserVersion {
		logging.GetLogger("pagecheck.watch").Warn("Browser settings changed; restart to apply them")
		next.Driver, next.Browser, next.Headless = prev.Driver, prev.Browser, prev.Headless
		next.SlowMo, next.BrowserVersion = prev.SlowMo, prev.BrowserVersion
	}
	return next, nil
}

func writeReport(cfg config.Report, rep *scenario.Report) error {
	r, err := report.New(cfg.Format)
	if err != nil {
		return err
	}

	var out io.Writer = os.Stdout
	if cfg.Output != "" {
		f, err := os.Create(cfg.Output)
		if err != nil {
			return fmt.Errorf("failed to create report file: %w", err)
		}
		defer f.Close()
		out = f
	}
	return r.Write(out, rep)
}

// metricsServer serves the registry on /metrics for the duration of a run.
func metricsServer(addr string, registry *prometheus.Registry) lifecycle.Component {
	router := chi.NewRouter()
	router.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: router, ReadHeaderTimeout: 10 * time.Second}
	logger := logging.GetLogger("metrics")

	return lifecycle.Func("metrics-server",
		func(ctx context.Context) error {
			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("metrics: failed to listen on %s: %w", addr, err)
			}
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("Metrics server stopped: %v", err)
				}
			}()
			logger.InfoWithFields("Serving metrics", logging.Field("addr", ln.Addr().String()))
			return nil
		},
		func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	)
}
