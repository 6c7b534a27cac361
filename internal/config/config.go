package config

import (
	"fmt"
	"net/url"
	"slices"
	"time"

	"github.com/hashicorp/go-version"
)

// Supported values for the enumerated settings.
var (
	Drivers       = []string{"playwright", "rod"}
	Browsers      = []string{"chromium", "firefox", "webkit"}
	ReportFormats = []string{"text", "json", "junit", "markdown"}
)

// DefaultBaseURL is the entry page every built-in case starts from.
const DefaultBaseURL = "https://demoqa.com/elements"

// Config holds everything a run needs.
type Config struct {
	// BaseURL is loaded at the start of every case.
	BaseURL string `koanf:"base_url"`

	// Driver selects the automation backend: playwright or rod.
	Driver string `koanf:"driver"`

	// Browser is the engine playwright launches. rod always drives Chromium.
	Browser string `koanf:"browser"`

	// BrowserVersion is an optional version constraint (">= 120") checked
	// against the launched browser.
	BrowserVersion string `koanf:"browser_version"`

	Headless bool          `koanf:"headless"`
	SlowMo   time.Duration `koanf:"slow_mo"`

	Timeouts Timeouts `koanf:"timeouts"`

	// Parallelism is the number of cases executing at once, each in its own
	// browser context.
	Parallelism int `koanf:"parallelism"`

	// Builtin enables the built-in Elements suites.
	Builtin bool `koanf:"builtin"`

	// Scenarios lists additional YAML case files.
	Scenarios []string `koanf:"scenarios"`

	// ArtifactsDir receives a screenshot per failed case. Empty disables it.
	ArtifactsDir string `koanf:"artifacts_dir"`

	Report  Report  `koanf:"report"`
	Metrics Metrics `koanf:"metrics"`
	Tracing Tracing `koanf:"tracing"`
}

// Timeouts bounds every blocking browser operation.
type Timeouts struct {
	// Default applies to actions and presence assertions.
	Default time.Duration `koanf:"default"`
	// Absence is the short window used by negative assertions.
	Absence time.Duration `koanf:"absence"`
	// Navigation bounds the initial page load of each case.
	Navigation time.Duration `koanf:"navigation"`
}

// Report selects the result format and destination (stdout when empty).
type Report struct {
	Format string `koanf:"format"`
	Output string `koanf:"output"`
}

// Metrics configures the prometheus endpoint and textfile output.
type Metrics struct {
	Addr string `koanf:"addr"`
	File string `koanf:"file"`
}

// Tracing mirrors tracing.Config.
type Tracing struct {
	Enabled     bool   `koanf:"enabled"`
	Exporter    string `koanf:"exporter"`
	Endpoint    string `koanf:"endpoint"`
	TLSCAPath   string `koanf:"tls_ca"`
	TLSInsecure bool   `koanf:"tls_insecure"`
}

// Default returns the configuration used when nothing else is given.
func Default() *Config {
	return &Config{
		BaseURL:  DefaultBaseURL,
		Driver:   "playwright",
		Browser:  "chromium",
		Headless: true,
		Timeouts: Timeouts{
			Default:    30 * time.Second,
			Absence:    1 * time.Second,
			Navigation: 60 * time.Second,
		},
		Parallelism: 4,
		Builtin:     true,
		Report:      Report{Format: "text"},
		Tracing:     Tracing{Exporter: "otlp"},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return NewConfigError(fmt.Sprintf("base_url must be an absolute http(s) URL, got %q", c.BaseURL))
	}

	if !slices.Contains(Drivers, c.Driver) {
		return NewConfigError(fmt.Sprintf("driver must be one of %v, got %q", Drivers, c.Driver))
	}
	if !slices.Contains(Browsers, c.Browser) {
		return NewConfigError(fmt.Sprintf("browser must be one of %v, got %q", Browsers, c.Browser))
	}
	if c.Driver == "rod" && c.Browser != "chromium" {
		return NewConfigError("the rod driver only supports browser chromium")
	}

	if c.BrowserVersion != "" {
		if _, err := version.NewConstraint(c.BrowserVersion); err != nil {
			return NewConfigError(fmt.Sprintf("browser_version %q is not a valid constraint: %v", c.BrowserVersion, err))
		}
	}

	if c.Timeouts.Default <= 0 || c.Timeouts.Absence <= 0 || c.Timeouts.Navigation <= 0 {
		return NewConfigError("timeouts must be positive")
	}

	if c.Parallelism < 1 {
		return NewConfigError("parallelism must be at least 1")
	}

	if !slices.Contains(ReportFormats, c.Report.Format) {
		return NewConfigError(fmt.Sprintf("report.format must be one of %v, got %q", ReportFormats, c.Report.Format))
	}

	if c.Tracing.Enabled && c.Tracing.Exporter == "otlp" && c.Tracing.Endpoint == "" {
		return NewConfigError("tracing.endpoint must be set when the otlp exporter is enabled")
	}

	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	message string
}

// NewConfigError creates a new configuration error
func NewConfigError(message string) *ConfigError {
	return &ConfigError{message: message}
}

// Error returns the error message
func (e *ConfigError) Error() string {
	return e.message
}
