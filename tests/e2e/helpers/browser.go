// Package helpers sets up the browser and the page under test for the
// end-to-end suites.
package helpers

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/moolen/pagecheck/internal/browser"
	"github.com/moolen/pagecheck/internal/browser/drivers"
	"github.com/moolen/pagecheck/internal/fixture"
	"github.com/stretchr/testify/require"
)

// Environment variables controlling the e2e run.
const (
	// EnvLive runs against the public site instead of the local replica.
	EnvLive     = "PAGECHECK_E2E"
	EnvDriver   = "PAGECHECK_DRIVER"
	EnvHeadless = "PAGECHECK_HEADLESS"
	EnvBaseURL  = "PAGECHECK_BASE_URL"
)

// LiveBaseURL is the page the built-in suites were written against.
const LiveBaseURL = "https://demoqa.com/elements"

// DriverName returns the driver selected by PAGECHECK_DRIVER, playwright by default.
func DriverName() string {
	if name := os.Getenv(EnvDriver); name != "" {
		return name
	}
	return "playwright"
}

// Headless reports whether PAGECHECK_HEADLESS allows a headless browser.
// Unset or unparsable values mean headless.
func Headless() bool {
	v, err := strconv.ParseBool(os.Getenv(EnvHeadless))
	if err != nil {
		return true
	}
	return v
}

// StartDriver launches the selected driver and stops it on cleanup. The test
// is skipped when no browser can be started on this machine.
func StartDriver(t *testing.T, timeout time.Duration) browser.Driver {
	t.Helper()

	d, err := drivers.New(DriverName(), browser.Options{
		Browser:  "chromium",
		Headless: Headless(),
		Timeout:  timeout,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	if err := d.Start(ctx); err != nil {
		t.Skipf("Skipping: %s driver could not start a browser: %v (run `pagecheck install`)", d.Name(), err)
	}

	t.Cleanup(func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := d.Stop(stopCtx); err != nil {
			t.Logf("Warning: failed to stop browser: %v", err)
		}
	})
	return d
}

// BaseURL returns the entry page to test. Unless PAGECHECK_E2E is set a local
// replica is served for the duration of the test.
func BaseURL(t *testing.T) string {
	t.Helper()

	if live, _ := strconv.ParseBool(os.Getenv(EnvLive)); live {
		if u := os.Getenv(EnvBaseURL); u != "" {
			return u
		}
		return LiveBaseURL
	}

	srv := fixture.NewServer(fixture.DefaultAddr)
	require.NoError(t, srv.Start(context.Background()), "failed to start fixture")
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Stop(ctx); err != nil {
			t.Logf("Warning: failed to stop fixture: %v", err)
		}
	})
	return srv.ElementsURL()
}
