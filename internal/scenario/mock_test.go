package scenario

import (
	"context"
	"time"

	"github.com/moolen/pagecheck/internal/browser"
	"github.com/stretchr/testify/mock"
)

type mockDriver struct{ mock.Mock }

func (m *mockDriver) Name() string                    { return "mock" }
func (m *mockDriver) Start(ctx context.Context) error { return nil }
func (m *mockDriver) Stop(ctx context.Context) error  { return nil }

func (m *mockDriver) NewSession(ctx context.Context) (browser.Session, error) {
	args := m.Called(ctx)
	s, _ := args.Get(0).(browser.Session)
	return s, args.Error(1)
}

type mockSession struct{ mock.Mock }

func (m *mockSession) Navigate(ctx context.Context, url string) error {
	return m.Called(ctx, url).Error(0)
}

func (m *mockSession) URL() string { return m.Called().String(0) }

func (m *mockSession) Click(ctx context.Context, selector string) error {
	return m.Called(ctx, selector).Error(0)
}

func (m *mockSession) Type(ctx context.Context, selector, text string) error {
	return m.Called(ctx, selector, text).Error(0)
}

func (m *mockSession) Query(ctx context.Context, selector string) (browser.Element, error) {
	args := m.Called(ctx, selector)
	el, _ := args.Get(0).(browser.Element)
	return el, args.Error(1)
}

func (m *mockSession) Text(ctx context.Context, selector string) (string, error) {
	args := m.Called(ctx, selector)
	return args.String(0), args.Error(1)
}

func (m *mockSession) WaitPresent(ctx context.Context, selector string, timeout time.Duration) error {
	return m.Called(ctx, selector, timeout).Error(0)
}

func (m *mockSession) WaitAbsent(ctx context.Context, selector string, timeout time.Duration) error {
	return m.Called(ctx, selector, timeout).Error(0)
}

func (m *mockSession) Screenshot(ctx context.Context) ([]byte, error) {
	args := m.Called(ctx)
	b, _ := args.Get(0).([]byte)
	return b, args.Error(1)
}

func (m *mockSession) Close() error { return m.Called().Error(0) }

type mockElement struct{ mock.Mock }

func (m *mockElement) Attribute(ctx context.Context, name string) (string, bool, error) {
	args := m.Called(ctx, name)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *mockElement) Text(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}
