package digbridge_test

import (
	"errors"
	"reflect"
	"sync"
	"sync/atomic"
)

// ============================================================================
// Shared Test Types
// ============================================================================

// TService is a basic service for testing.
type TService struct {
	ID    string
	Value int
}

// TDependency is a basic dependency for testing.
type TDependency struct {
	Name string
}

// TServiceWithDeps demonstrates dependency injection.
type TServiceWithDeps struct {
	Svc *TService
	Dep *TDependency
}

// TInterface is a basic interface for testing.
type TInterface interface {
	GetID() string
}

func (s *TService) GetID() string { return s.ID }

// TOther implements TInterface differently.
type TOther struct {
	Name string
}

func (o *TOther) GetID() string { return "other-" + o.Name }

// TDisposable implements Close for lifecycle testing.
type TDisposable struct {
	Name     string
	closed   atomic.Bool
	closeErr error
	order    *closeOrder
}

func (d *TDisposable) Close() error {
	if d.closed.Swap(true) {
		return errors.New("already closed")
	}
	if d.order != nil {
		d.order.add(d.Name)
	}
	return d.closeErr
}

func (d *TDisposable) IsClosed() bool {
	return d.closed.Load()
}

// TScoped records the scope it was built for.
type TScoped struct {
	ScopeID string
}

// TUnregistered is never registered anywhere.
type TUnregistered struct{}

// closeOrder records the order of Close calls across instances.
type closeOrder struct {
	mu    sync.Mutex
	names []string
}

func (o *closeOrder) add(name string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.names = append(o.names, name)
}

func (o *closeOrder) get() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.names...)
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeFor[T]()
}
