// Package lifecycle tracks disposable instances and closes them in reverse
// order of creation.
package lifecycle

import (
	"errors"
	"fmt"
	"sync"
)

// Closer is the disposal contract tracked by a Manager.
type Closer interface {
	Close() error
}

// Manager manages the lifecycle of disposable instances.
type Manager struct {
	disposables []Closer
	mu          sync.Mutex
}

// New creates a new lifecycle manager.
func New() *Manager {
	return &Manager{
		disposables: make([]Closer, 0),
	}
}

// Track adds instance to the managed set if it implements Closer.
// It reports whether the instance was tracked.
func (m *Manager) Track(instance any) bool {
	d, ok := instance.(Closer)
	if !ok {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.disposables = append(m.disposables, d)
	return true
}

// Len reports how many instances are waiting for disposal.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.disposables)
}

// Dispose closes all tracked instances in reverse order.
// Every instance is closed even when an earlier one fails.
func (m *Manager) Dispose() error {
	m.mu.Lock()
	disposables := m.disposables
	m.disposables = nil
	m.mu.Unlock()

	var errs []error

	// Dispose in reverse order (LIFO)
	for i := len(disposables) - 1; i >= 0; i-- {
		if err := disposables[i].Close(); err != nil {
			errs = append(errs, fmt.Errorf("disposable %d: %w", i, err))
		}
	}

	return errors.Join(errs...)
}
