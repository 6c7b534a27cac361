// Package roddriver implements browser.Driver on go-rod over the Chrome
// DevTools Protocol. It supports chromium only and evaluates selectors in
// the page.
package roddriver

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/moolen/pagecheck/internal/browser"
	"github.com/moolen/pagecheck/internal/logging"
)

// Name identifies this backend in configuration.
const Name = "rod"

// Driver launches a local Chrome and hands out incognito contexts.
type Driver struct {
	opts   browser.Options
	logger *logging.Logger

	mu       sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
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
		logger: logging.GetLogger("browser.rod"),
	}
}

// Name implements lifecycle.Component.
func (d *Driver) Name() string { return Name }

// Start launches Chrome and connects to it.
func (d *Driver) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.browser != nil {
		return nil
	}
	if d.opts.Browser != "chromium" {
		return fmt.Errorf("rod driver supports chromium only, got %q", d.opts.Browser)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	l := launcher.New().
		Headless(d.opts.Headless).
		Set("no-sandbox").
		Set("disable-gpu")

	url, err := l.Launch()
	if err != nil {
		return fmt.Errorf("failed to launch Chrome: %w", err)
	}

	b := rod.New().ControlURL(url)
	if d.opts.SlowMo > 0 {
		b = b.SlowMotion(d.opts.SlowMo)
	}
	if err := b.Connect(); err != nil {
		l.Kill()
		l.Cleanup()
		return fmt.Errorf("failed to connect to Chrome: %w", err)
	}

	v, err := b.Version()
	if err != nil {
		_ = b.Close()
		l.Cleanup()
		return fmt.Errorf("failed to read browser version: %w", err)
	}
	if err := browser.CheckVersion(v.Product, d.opts.VersionConstraint); err != nil {
		_ = b.Close()
		l.Cleanup()
		return err
	}

	d.launcher, d.browser = l, b
	d.logger.InfoWithFields("Browser launched",
		logging.Field("browser", v.Product),
		logging.Field("headless", d.opts.Headless))
	return nil
}

// Stop closes Chrome and removes its profile directory.
func (d *Driver) Stop(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	var err error
	if d.browser != nil {
		if cerr := d.browser.Close(); cerr != nil {
			err = fmt.Errorf("failed to close browser: %w", cerr)
		}
		d.browser = nil
	}
	if d.launcher != nil {
		d.launcher.Cleanup()
		d.launcher = nil
	}
	return err
}

// NewSession opens an incognito context with one blank page.
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

	incognito, err := b.Incognito()
	if err != nil {
		return nil, fmt.Errorf("could not create incognito context: %w", err)
	}
	page, err := incognito.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = incognito.Close()
		return nil, fmt.Errorf("could not create page: %w", err)
	}

	return &session{context: incognito, page: page, timeout: d.opts.Timeout}, nil
}

// mapErr tags rod deadline errors with browser.ErrTimeout unless the caller's
// own context ended.
func mapErr(ctx context.Context, op, target string, err error) error {
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s %q: %w", op, target, browser.ErrTimeout)
	}
	return fmt.Errorf("%s %q: %w", op, target, err)
}

// Install downloads the Chromium build rod launches by default and returns
// its path. An existing download is reused.
func Install() (string, error) {
	path, err := launcher.NewBrowser().Get()
	if err != nil {
		return "", fmt.Errorf("failed to download Chromium: %w", err)
	}
	return path, nil
}
