package pwdriver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/moolen/pagecheck/internal/browser"
	"github.com/playwright-community/playwright-go"
)

type session struct {
	bctx    playwright.BrowserContext
	page    playwright.Page
	timeout time.Duration
}

// locate validates the selector and returns a non-strict locator on its
// first match.
func (s *session) locate(selector string) (playwright.Locator, error) {
	if _, err := browser.ParseSelector(selector); err != nil {
		return nil, err
	}
	return s.page.Locator(selector).First(), nil
}

func (s *session) Navigate(ctx context.Context, url string) error {
	budget, err := browser.Remaining(ctx, 2*s.timeout)
	if err != nil {
		return err
	}
	_, err = s.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateLoad,
		Timeout:   playwright.Float(ms(budget)),
	})
	return wrap("navigate", url, err)
}

func (s *session) URL() string {
	return s.page.URL()
}

func (s *session) Click(ctx context.Context, selector string) error {
	loc, budget, err := s.prepare(ctx, selector, s.timeout)
	if err != nil {
		return err
	}
	return wrap("click", selector, loc.Click(playwright.LocatorClickOptions{
		Timeout: playwright.Float(ms(budget)),
	}))
}

func (s *session) Type(ctx context.Context, selector, text string) error {
	loc, budget, err := s.prepare(ctx, selector, s.timeout)
	if err != nil {
		return err
	}
	return wrap("type into", selector, loc.PressSequentially(text, playwright.LocatorPressSequentiallyOptions{
		Timeout: playwright.Float(ms(budget)),
	}))
}

func (s *session) Query(ctx context.Context, selector string) (browser.Element, error) {
	loc, budget, err := s.prepare(ctx, selector, s.timeout)
	if err != nil {
		return nil, err
	}
	err = loc.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateAttached,
		Timeout: playwright.Float(ms(budget)),
	})
	if err != nil {
		return nil, wrap("query", selector, err)
	}
	return &element{loc: loc, selector: selector, timeout: s.timeout}, nil
}

func (s *session) Text(ctx context.Context, selector string) (string, error) {
	loc, budget, err := s.prepare(ctx, selector, s.timeout)
	if err != nil {
		return "", err
	}
	text, err := loc.TextContent(playwright.LocatorTextContentOptions{
		Timeout: playwright.Float(ms(budget)),
	})
	return text, wrap("read text of", selector, err)
}

func (s *session) WaitPresent(ctx context.Context, selector string, timeout time.Duration) error {
	return s.waitFor(ctx, selector, timeout, playwright.WaitForSelectorStateVisible)
}

func (s *session) WaitAbsent(ctx context.Context, selector string, timeout time.Duration) error {
	return s.waitFor(ctx, selector, timeout, playwright.WaitForSelectorStateDetached)
}

func (s *session) waitFor(ctx context.Context, selector string, timeout time.Duration, state *playwright.WaitForSelectorState) error {
	if timeout <= 0 {
		timeout = s.timeout
	}
	loc, budget, err := s.prepare(ctx, selector, timeout)
	if err != nil {
		return err
	}
	return wrap("wait for", selector, loc.WaitFor(playwright.LocatorWaitForOptions{
		State:   state,
		Timeout: playwright.Float(ms(budget)),
	}))
}

func (s *session) Screenshot(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	png, err := s.page.Screenshot(playwright.PageScreenshotOptions{
		FullPage: playwright.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("screenshot failed: %w", err)
	}
	return png, nil
}

func (s *session) Close() error {
	return s.bctx.Close()
}

func (s *session) prepare(ctx context.Context, selector string, timeout time.Duration) (playwright.Locator, time.Duration, error) {
	budget, err := browser.Budget(ctx, timeout)
	if err != nil {
		return nil, 0, err
	}
	loc, err := s.locate(selector)
	if err != nil {
		return nil, 0, err
	}
	return loc, budget, nil
}

type element struct {
	loc      playwright.Locator
	selector string
	timeout  time.Duration
}

func (e *element) Attribute(ctx context.Context, name string) (string, bool, error) {
	budget, err := browser.Budget(ctx, e.timeout)
	if err != nil {
		return "", false, err
	}
	v, err := e.loc.Evaluate("(el, name) => el.getAttribute(name)", name, playwright.LocatorEvaluateOptions{
		Timeout: playwright.Float(ms(budget)),
	})
	if err != nil {
		return "", false, wrap("read attribute of", e.selector, err)
	}
	s, ok := v.(string)
	return s, ok, nil
}

func (e *element) Text(ctx context.Context) (string, error) {
	budget, err := browser.Budget(ctx, e.timeout)
	if err != nil {
		return "", err
	}
	text, err := e.loc.TextContent(playwright.LocatorTextContentOptions{
		Timeout: playwright.Float(ms(budget)),
	})
	return text, wrap("read text of", e.selector, err)
}

// wrap tags playwright timeouts with browser.ErrTimeout.
func wrap(op, target string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, playwright.ErrTimeout) {
		return fmt.Errorf("%s %q: %w: %w", op, target, browser.ErrTimeout, err)
	}
	return fmt.Errorf("%s %q: %w", op, target, err)
}
