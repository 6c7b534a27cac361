package lifecycle

import "context"

// Component is anything a run needs started before the first case and
// stopped after the last one: the browser driver, the fixture server, the
// metrics endpoint, the tracer provider.
type Component interface {
	// Start brings the component up. A failed Start makes the manager stop
	// every component started before it.
	Start(ctx context.Context) error

	// Stop releases the component's resources within the ctx deadline.
	Stop(ctx context.Context) error

	// Name is used in logs and errors. Must not be empty.
	Name() string
}

// Func adapts a pair of functions to Component. Nil functions are no-ops.
func Func(name string, start, stop func(ctx context.Context) error) Component {
	return &funcComponent{name: name, start: start, stop: stop}
}

type funcComponent struct {
	name        string
	start, stop func(ctx context.Context) error
}

func (f *funcComponent) Start(ctx context.Context) error {
	if f.start == nil {
		return nil
	}
	return f.start(ctx)
}

func (f *funcComponent) Stop(ctx context.Context) error {
	if f.stop == nil {
		return nil
	}
	return f.stop(ctx)
}

func (f *funcComponent) Name() string { return f.name }
