// Package browser defines the browser automation surface the scenario runner
// consumes, independent of the automation library behind it.
//
// A Driver owns one browser process. Every case gets its own Session, an
// isolated browser context with no cookies, storage or history shared with
// other sessions, so cases can run in parallel without coordination.
//
// Selectors use the playwright dialect: CSS, text=, quoted exact text,
// :nth-match(css, n) and ">>" chaining. See ParseSelector.
package browser

import (
	"context"
	"errors"
	"time"
)

// ErrTimeout is wrapped by every driver error caused by a selector not
// reaching the awaited state (attached, visible, detached) in time.
var ErrTimeout = errors.New("timed out")

// ErrNotStarted is returned by NewSession before Start succeeded.
var ErrNotStarted = errors.New("driver not started")

// Options configures a Driver.
type Options struct {
	// Browser is chromium, firefox or webkit. Backends may support a subset.
	Browser  string
	Headless bool
	// SlowMo delays every browser operation, for watching a run.
	SlowMo time.Duration
	// Timeout is the default for every Session operation without an
	// explicit timeout.
	Timeout time.Duration
	// VersionConstraint, when set, is checked against the launched browser.
	VersionConstraint string
}

// Driver launches a browser and hands out isolated sessions. It implements
// lifecycle.Component.
type Driver interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	NewSession(ctx context.Context) (Session, error)
}

// Session is one isolated page. Methods taking a selector wait up to the
// driver's default timeout for it to resolve; a miss is reported as an
// error wrapping ErrTimeout. When several nodes match, the first in document
// order is used.
type Session interface {
	// Navigate loads url and waits for the load event.
	Navigate(ctx context.Context, url string) error
	// URL returns the current page URL.
	URL() string

	Click(ctx context.Context, selector string) error
	// Type focuses the element and types text into it key by key.
	Type(ctx context.Context, selector, text string) error

	// Query resolves selector to a handle.
	Query(ctx context.Context, selector string) (Element, error)
	// Text returns the text content of the element matched by selector.
	Text(ctx context.Context, selector string) (string, error)

	// WaitPresent waits for selector to match a visible element.
	WaitPresent(ctx context.Context, selector string, timeout time.Duration) error
	// WaitAbsent waits for selector to match nothing.
	WaitAbsent(ctx context.Context, selector string, timeout time.Duration) error

	// Screenshot captures the full page as PNG.
	Screenshot(ctx context.Context) ([]byte, error)
	Close() error
}

// Element is a resolved DOM node.
type Element interface {
	// Attribute returns the attribute value and whether it is set.
	Attribute(ctx context.Context, name string) (string, bool, error)
	Text(ctx context.Context) (string, error)
}

// Budget returns the time left for an operation: timeout, shortened to the
// ctx deadline when that comes first. It fails when ctx is already done.
func Budget(ctx context.Context, timeout time.Duration) (time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			if left <= 0 {
				return 0, context.DeadlineExceeded
			}
			return left, nil
		}
	}
	return timeout, nil
}

// Remaining returns the time left until the ctx deadline, or fallback when
// ctx has none. Unlike Budget a deadline later than fallback is kept.
func Remaining(ctx context.Context, fallback time.Duration) (time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	deadline, ok := ctx.Deadline()
	if !ok {
		return fallback, nil
	}
	left := time.Until(deadline)
	if left <= 0 {
		return 0, context.DeadlineExceeded
	}
	return left, nil
}
