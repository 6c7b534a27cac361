package lifecycle

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) add(e string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) component(name string, startErr error) Component {
	return Func(name,
		func(context.Context) error {
			if startErr != nil {
				return startErr
			}
			r.add("start " + name)
			return nil
		},
		func(context.Context) error {
			r.add("stop " + name)
			return nil
		})
}

func TestStartRespectsDependencies(t *testing.T) {
	rec := &recorder{}
	m := NewManager()

	fixture := rec.component("fixture", nil)
	tracing := rec.component("tracing", nil)
	driver := rec.component("driver", nil)

	require.NoError(t, m.Register(fixture))
	require.NoError(t, m.Register(tracing))
	require.NoError(t, m.Register(driver, fixture, tracing))

	require.NoError(t, m.Start(context.Background()))
	assert.True(t, m.IsRunning(driver))

	require.NoError(t, m.Stop(context.Background()))
	assert.False(t, m.IsRunning(driver))

	assert.Equal(t, []string{
		"start fixture", "start tracing", "start driver",
		"stop driver", "stop tracing", "stop fixture",
	}, rec.events)
}

func TestStartFailureRollsBack(t *testing.T) {
	rec := &recorder{}
	m := NewManager()

	first := rec.component("metrics", nil)
	broken := rec.component("driver", errors.New("chromium not installed"))
	require.NoError(t, m.Register(first))
	require.NoError(t, m.Register(broken, first))

	err := m.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "initialization failed for driver")
	assert.Contains(t, err.Error(), "chromium not installed")
	assert.Equal(t, []string{"start metrics", "stop metrics"}, rec.events)
	assert.False(t, m.IsRunning(first))
}

func TestRegisterValidation(t *testing.T) {
	m := NewManager()
	c := Func("a", nil, nil)
	unregistered := Func("b", nil, nil)

	require.Error(t, m.Register(nil))
	require.Error(t, m.Register(Func("", nil, nil)))
	require.NoError(t, m.Register(c))
	require.Error(t, m.Register(c), "duplicate registration")
	require.Error(t, m.Register(Func("c", nil, nil), unregistered))
}

func TestStopJoinsErrors(t *testing.T) {
	m := NewManager()
	m.SetShutdownTimeout(50 * time.Millisecond)

	slow := Func("slow", nil, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	failing := Func("failing", nil, func(context.Context) error { return errors.New("close failed") })
	require.NoError(t, m.Register(slow))
	require.NoError(t, m.Register(failing))
	require.NoError(t, m.Start(context.Background()))

	err := m.Stop(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Contains(t, err.Error(), "failing: close failed")
}
