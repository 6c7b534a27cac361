package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/moolen/pagecheck/internal/logging"
)

// Manager starts components after their dependencies and stops them in
// reverse start order, each with its own shutdown deadline.
type Manager struct {
	components        []Component
	dependencies      map[Component][]Component
	running           map[Component]bool
	startedComponents []Component
	shutdownTimeout   time.Duration
	mu                sync.RWMutex
	registrationMutex sync.Mutex
	logger            *logging.Logger
}

// NewManager creates a manager with a 30 second per-component shutdown timeout.
func NewManager() *Manager {
	return &Manager{
		dependencies:    make(map[Component][]Component),
		running:         make(map[Component]bool),
		shutdownTimeout: 30 * time.Second,
		logger:          logging.GetLogger("lifecycle.manager"),
	}
}

// Register adds a component. Every dependency must already be registered,
// which also rules out cycles.
func (m *Manager) Register(component Component, dependsOn ...Component) error {
	m.registrationMutex.Lock()
	defer m.registrationMutex.Unlock()

	if component == nil {
		return errors.New("cannot register nil component")
	}
	if component.Name() == "" {
		return errors.New("component must have a non-empty name")
	}
	if slices.Contains(m.components, component) {
		return fmt.Errorf("component %s is already registered", component.Name())
	}
	for _, dep := range dependsOn {
		if dep == component {
			return fmt.Errorf("component %s cannot depend on itself", component.Name())
		}
		if !slices.Contains(m.components, dep) {
			return fmt.Errorf("dependency %s is not registered", dep.Name())
		}
	}

	m.components = append(m.components, component)
	m.dependencies[component] = dependsOn
	m.running[component] = false

	m.logger.Debug("Registered component %s with %d dependencies", component.Name(), len(dependsOn))
	return nil
}

// Start starts all components in dependency order. On the first failure the
// components already started are stopped in reverse order and the error is
// returned.
func (m *Manager) Start(ctx context.Context) error {
	m.registrationMutex.Lock()
	defer m.registrationMutex.Unlock()

	m.startedComponents = nil
	for _, component := range m.topologicalSort() {
		m.logger.Info("Starting %s", component.Name())
		startTime := time.Now()

		if err := component.Start(ctx); err != nil {
			m.logger.Error("Failed to start %s: %v", component.Name(), err)
			m.rollback()
			return fmt.Errorf("initialization failed for %s: %w", component.Name(), err)
		}

		m.mu.Lock()
		m.running[component] = true
		m.startedComponents = append(m.startedComponents, component)
		m.mu.Unlock()

		m.logger.Debug("%s started (took %dms)", component.Name(), time.Since(startTime).Milliseconds())
	}
	return nil
}

func (m *Manager) topologicalSort() []Component {
	visited := make(map[Component]bool)
	sorted := make([]Component, 0, len(m.components))

	var visit func(c Component)
	visit = func(c Component) {
		visited[c] = true
		for _, dep := range m.dependencies[c] {
			if !visited[dep] {
				visit(dep)
			}
		}
		sorted = append(sorted, c)
	}
	for _, c := range m.components {
		if !visited[c] {
			visit(c)
		}
	}
	return sorted
}

func (m *Manager) rollback() {
	for i := len(m.startedComponents) - 1; i >= 0; i-- {
		component := m.startedComponents[i]
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := component.Stop(ctx); err != nil {
			m.logger.Warn("Error stopping %s during rollback: %v", component.Name(), err)
		}
		cancel()

		m.mu.Lock()
		m.running[component] = false
		m.mu.Unlock()
	}
	m.startedComponents = nil
}

// Stop stops the running components in reverse start order. Errors are
// logged and joined; every component gets its chance to stop.
func (m *Manager) Stop(ctx context.Context) error {
	m.registrationMutex.Lock()
	defer m.registrationMutex.Unlock()

	var errs []error
	for i := len(m.startedComponents) - 1; i >= 0; i-- {
		component := m.startedComponents[i]
		if !m.IsRunning(component) {
			continue
		}

		m.logger.Debug("Stopping %s", component.Name())
		componentCtx, cancel := context.WithTimeout(ctx, m.shutdownTimeout)
		err := component.Stop(componentCtx)
		cancel()

		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				m.logger.Warn("Component %s exceeded grace period (%dms timeout)",
					component.Name(), m.shutdownTimeout.Milliseconds())
			} else {
				m.logger.Error("Error stopping %s: %v", component.Name(), err)
			}
			errs = append(errs, fmt.Errorf("%s: %w", component.Name(), err))
		}

		m.mu.Lock()
		m.running[component] = false
		m.mu.Unlock()
	}
	m.startedComponents = nil
	return errors.Join(errs...)
}

// IsRunning reports whether component started and has not stopped.
func (m *Manager) IsRunning(component Component) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.running[component]
}

// SetShutdownTimeout sets the per-component grace period used by Stop.
func (m *Manager) SetShutdownTimeout(timeout time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shutdownTimeout = timeout
}
