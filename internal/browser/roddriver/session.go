package roddriver

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/moolen/pagecheck/internal/browser"
)

// absencePoll is how often WaitAbsent re-counts matches.
const absencePoll = 100 * time.Millisecond

type session struct {
	context *rod.Browser
	page    *rod.Page
	timeout time.Duration
}

// bounded returns the page bound to ctx with a deadline of at most timeout.
func (s *session) bounded(ctx context.Context, timeout time.Duration) (*rod.Page, context.CancelFunc, error) {
	budget, err := browser.Budget(ctx, timeout)
	if err != nil {
		return nil, nil, err
	}
	tctx, cancel := context.WithTimeout(ctx, budget)
	return s.page.Context(tctx), cancel, nil
}

// find waits for the first element matching selector to be attached.
func (s *session) find(ctx context.Context, selector string, timeout time.Duration) (*rod.Element, context.CancelFunc, error) {
	sel, err := browser.ParseSelector(selector)
	if err != nil {
		return nil, nil, err
	}
	p, cancel, err := s.bounded(ctx, timeout)
	if err != nil {
		return nil, nil, err
	}
	el, err := p.ElementByJS(rod.Eval(firstMatchJS, sel.Parts))
	if err != nil {
		cancel()
		return nil, nil, mapErr(ctx, "find", selector, err)
	}
	return el, cancel, nil
}

func (s *session) Navigate(ctx context.Context, url string) error {
	budget, err := browser.Remaining(ctx, 2*s.timeout)
	if err != nil {
		return err
	}
	p, cancel, err := s.bounded(ctx, budget)
	if err != nil {
		return err
	}
	defer cancel()

	if err := p.Navigate(url); err != nil {
		return mapErr(ctx, "navigate", url, err)
	}
	return mapErr(ctx, "load", url, p.WaitLoad())
}

func (s *session) URL() string {
	info, err := s.page.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

func (s *session) Click(ctx context.Context, selector string) error {
	el, cancel, err := s.find(ctx, selector, s.timeout)
	if err != nil {
		return err
	}
	defer cancel()
	return mapErr(ctx, "click", selector, el.Click(proto.InputMouseButtonLeft, 1))
}

func (s *session) Type(ctx context.Context, selector, text string) error {
	el, cancel, err := s.find(ctx, selector, s.timeout)
	if err != nil {
		return err
	}
	defer cancel()
	return mapErr(ctx, "type into", selector, el.Input(text))
}

func (s *session) Query(ctx context.Context, selector string) (browser.Element, error) {
	el, cancel, err := s.find(ctx, selector, s.timeout)
	if err != nil {
		return nil, err
	}
	cancel()
	return &element{el: el, selector: selector, timeout: s.timeout}, nil
}

func (s *session) Text(ctx context.Context, selector string) (string, error) {
	el, cancel, err := s.find(ctx, selector, s.timeout)
	if err != nil {
		return "", err
	}
	defer cancel()
	return textContent(ctx, el, selector)
}

func (s *session) WaitPresent(ctx context.Context, selector string, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = s.timeout
	}
	el, cancel, err := s.find(ctx, selector, timeout)
	if err != nil {
		return err
	}
	defer cancel()
	return mapErr(ctx, "wait for", selector, el.WaitVisible())
}

func (s *session) WaitAbsent(ctx context.Context, selector string, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = s.timeout
	}
	sel, err := browser.ParseSelector(selector)
	if err != nil {
		return err
	}
	p, cancel, err := s.bounded(ctx, timeout)
	if err != nil {
		return err
	}
	defer cancel()

	for {
		res, err := p.Eval(countMatchesJS, sel.Parts)
		if err != nil {
			return mapErr(ctx, "wait for absence of", selector, err)
		}
		if res.Value.Int() == 0 {
			return nil
		}
		select {
		case <-p.GetContext().Done():
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("wait for absence of %q: %w", selector, browser.ErrTimeout)
		case <-time.After(absencePoll):
		}
	}
}

func (s *session) Screenshot(ctx context.Context) ([]byte, error) {
	p, cancel, err := s.bounded(ctx, s.timeout)
	if err != nil {
		return nil, err
	}
	defer cancel()

	png, err := p.Screenshot(true, nil)
	if err != nil {
		return nil, fmt.Errorf("screenshot failed: %w", err)
	}
	return png, nil
}

func (s *session) Close() error {
	return s.context.Close()
}

type element struct {
	el       *rod.Element
	selector string
	timeout  time.Duration
}

func (e *element) bounded(ctx context.Context) (*rod.Element, context.CancelFunc, error) {
	budget, err := browser.Budget(ctx, e.timeout)
	if err != nil {
		return nil, nil, err
	}
	tctx, cancel := context.WithTimeout(ctx, budget)
	return e.el.Context(tctx), cancel, nil
}

func (e *element) Attribute(ctx context.Context, name string) (string, bool, error) {
	el, cancel, err := e.bounded(ctx)
	if err != nil {
		return "", false, err
	}
	defer cancel()

	v, err := el.Attribute(name)
	if err != nil {
		return "", false, mapErr(ctx, "read attribute of", e.selector, err)
	}
	if v == nil {
		return "", false, nil
	}
	return *v, true, nil
}

func (e *element) Text(ctx context.Context) (string, error) {
	el, cancel, err := e.bounded(ctx)
	if err != nil {
		return "", err
	}
	defer cancel()
	return textContent(ctx, el, e.selector)
}

func textContent(ctx context.Context, el *rod.Element, selector string) (string, error) {
	v, err := el.Property("textContent")
	if err != nil {
		return "", mapErr(ctx, "read text of", selector, err)
	}
	return v.Str(), nil
}
