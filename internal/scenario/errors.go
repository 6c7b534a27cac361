package scenario

import (
	"fmt"
	"time"
)

// SetupError means the case could not start: no session or the entry URL
// did not load. The case is reported as errored, not failed.
type SetupError struct {
	URL string
	Err error
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("setup failed for %s: %v", e.URL, e.Err)
}

func (e *SetupError) Unwrap() error { return e.Err }

// LocatorError means an interaction's selector did not resolve in time.
type LocatorError struct {
	Action   Action
	Selector string
	Err      error
}

func (e *LocatorError) Error() string {
	return fmt.Sprintf("%s: locator %q not found: %v", e.Action, e.Selector, e.Err)
}

func (e *LocatorError) Unwrap() error { return e.Err }

// AssertionError means the page state differs from the expectation.
type AssertionError struct {
	Kind     Action
	Selector string
	Expected string
	Actual   string
}

func (e *AssertionError) Error() string {
	target := e.Selector
	if target == "" {
		target = "page"
	}
	return fmt.Sprintf("%s %s: expected %q, got %q", e.Kind, target, e.Expected, e.Actual)
}

// TimeoutError means a presence assertion was not satisfied in time, or an
// absence assertion's target was still there when its window closed.
type TimeoutError struct {
	Selector string
	Timeout  time.Duration
	Absent   bool
}

func (e *TimeoutError) Error() string {
	if e.Absent {
		return fmt.Sprintf("%q still present after %s", e.Selector, e.Timeout)
	}
	return fmt.Sprintf("%q not present after %s", e.Selector, e.Timeout)
}
