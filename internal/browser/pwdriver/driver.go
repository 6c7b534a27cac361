// Package pwdriver implements browser.Driver on playwright-go. Selectors
// are handed to playwright untouched since the dialect is playwright's own.
package pwdriver

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/moolen/pagecheck/internal/browser"
	"github.com/moolen/pagecheck/internal/logging"
	"github.com/playwright-community/playwright-go"
)

// Name identifies this backend in configuration.
const Name = "playwright"

// Driver runs one playwright browser and opens a fresh browser context per
// session.
type Driver struct {
	opts   browser.Options
	logger *logging.Logger

	mu      sync.Mutex
	pw      *playwright.Playwright
	browser playwright.Browser
}

// New creates a driver. Nothing is launched until Start.
func New(opts browser.Options) *Driver {
	if opts.Browser == "" {
		opts.Browser = "chromium"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	return &Driver{
		opts:   opts,
		logger: logging.GetLogger("browser.playwright"),
	}
}

// Name implements lifecycle.Component.
func (d *Driver) Name() string { return Name }

// Start launches the playwright driver process and the browser.
func (d *Driver) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.browser != nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	pw, err := playwright.Run(&playwright.RunOptions{
		Browsers: []string{d.opts.Browser},
	})
	if err != nil {
		return fmt.Errorf("could not start playwright: %w", err)
	}

	bt, err := browserType(pw, d.opts.Browser)
	if err != nil {
		_ = pw.Stop()
		return err
	}

	launch := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(d.opts.Headless),
	}
	if d.opts.SlowMo > 0 {
		launch.SlowMo = playwright.Float(float64(d.opts.SlowMo.Milliseconds()))
	}
	b, err := bt.Launch(launch)
	if err != nil {
		_ = pw.Stop()
		return fmt.Errorf("could not launch %s: %w", d.opts.Browser, err)
	}

	if err := browser.CheckVersion(b.Version(), d.opts.VersionConstraint); err != nil {
		_ = b.Close()
		_ = pw.Stop()
		return err
	}

	d.pw, d.browser = pw, b
	d.logger.InfoWithFields("Browser launched",
		logging.Field("browser", d.opts.Browser),
		logging.Field("version", b.Version()),
		logging.Field("headless", d.opts.Headless))
	return nil
}

// Stop closes the browser and the playwright driver process.
func (d *Driver) Stop(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	var errs []error
	if d.browser != nil {
		if err := d.browser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close browser: %w", err))
		}
		d.browser = nil
	}
	if d.pw != nil {
		if err := d.pw.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop playwright: %w", err))
		}
		d.pw = nil
	}
	return errors.Join(errs...)
}

// NewSession opens an isolated browser context with a single page.
func (d *Driver) NewSession(ctx context.Context) (browser.Session, error) {
	d.mu.Lock()
	b := d.browser
	d.mu.Unlock()
	if b == nil {
		return nil, browser.ErrNotStarted
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bctx, err := b.NewContext()
	if err != nil {
		return nil, fmt.Errorf("could not create browser context: %w", err)
	}
	bctx.SetDefaultTimeout(ms(d.opts.Timeout))

	page, err := bctx.NewPage()
	if err != nil {
		_ = bctx.Close()
		return nil, fmt.Errorf("could not create page: %w", err)
	}

	return &session{bctx: bctx, page: page, timeout: d.opts.Timeout}, nil
}

// Install downloads the playwright driver and the named browsers.
func Install(browsers ...string) error {
	if len(browsers) == 0 {
		browsers = []string{"chromium"}
	}
	if err := playwright.Install(&playwright.RunOptions{Browsers: browsers}); err != nil {
		return fmt.Errorf("failed to install playwright browsers %v: %w", browsers, err)
	}
	return nil
}

func browserType(pw *playwright.Playwright, name string) (playwright.BrowserType, error) {
	switch name {
	case "chromium":
		return pw.Chromium, nil
	case "firefox":
		return pw.Firefox, nil
	case "webkit":
		return pw.WebKit, nil
	default:
		return nil, fmt.Errorf("unsupported browser %q", name)
	}
}

func ms(d time.Duration) float64 {
	return float64(d.Milliseconds())
}
