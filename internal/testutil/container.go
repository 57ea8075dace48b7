package testutil

import (
	"context"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/junioryono/digbridge"
)

// Call records one resolution the fake container served.
type Call struct {
	Op         string // "Resolve" or "ResolveAll"
	Type       reflect.Type
	Activation digbridge.Activation
	Forced     bool
	Ctx        context.Context
}

// FakeContainer is an in-memory digbridge.Container that records every call.
// Registered instances are returned as is; per-scope instances can be
// registered with RegisterScoped to observe which scope a resolution ran in.
type FakeContainer struct {
	mu       sync.Mutex
	single   map[reflect.Type]any
	scoped   map[reflect.Type]func(digbridge.Scope) any
	all      map[reflect.Type][]any
	failures map[reflect.Type]error
	calls    []Call

	closed   atomic.Int32
	closeErr error
	onClose  func()
}

var _ digbridge.Container = (*FakeContainer)(nil)

// NewFakeContainer creates an empty fake container.
func NewFakeContainer() *FakeContainer {
	return &FakeContainer{
		single:   make(map[reflect.Type]any),
		scoped:   make(map[reflect.Type]func(digbridge.Scope) any),
		all:      make(map[reflect.Type][]any),
		failures: make(map[reflect.Type]error),
	}
}

// Register makes Resolve(t) return instance.
func (c *FakeContainer) Register(t reflect.Type, instance any) *FakeContainer {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.single[t] = instance
	return c
}

// RegisterScoped makes Resolve(t) return build(current scope).
func (c *FakeContainer) RegisterScoped(t reflect.Type, build func(digbridge.Scope) any) *FakeContainer {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scoped[t] = build
	return c
}

// RegisterAll makes ResolveAll(elem) return instances in order.
func (c *FakeContainer) RegisterAll(elem reflect.Type, instances ...any) *FakeContainer {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.all[elem] = append(c.all[elem], instances...)
	return c
}

// FailOn registers t and makes resolving it fail with err.
func (c *FakeContainer) FailOn(t reflect.Type, err error) *FakeContainer {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures[t] = err
	return c
}

// SetCloseError makes Close return err.
func (c *FakeContainer) SetCloseError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeErr = err
}

// OnClose sets a hook run by Close.
func (c *FakeContainer) OnClose(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onClose = fn
}

func (c *FakeContainer) HasComponent(t reflect.Type) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.single[t]; ok {
		return true
	}
	if _, ok := c.scoped[t]; ok {
		return true
	}
	_, ok := c.failures[t]
	return ok
}

func (c *FakeContainer) Resolve(ctx context.Context, t reflect.Type) (any, error) {
	act, forced := digbridge.ActivationFromContext(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.calls = append(c.calls, Call{Op: "Resolve", Type: t, Activation: act, Forced: forced, Ctx: ctx})

	if err, ok := c.failures[t]; ok {
		return nil, err
	}
	if instance, ok := c.single[t]; ok {
		return instance, nil
	}
	if build, ok := c.scoped[t]; ok {
		return build(act.Current), nil
	}

	return nil, NotRegistered(t)
}

func (c *FakeContainer) ResolveAll(ctx context.Context, elem reflect.Type) ([]any, error) {
	act, forced := digbridge.ActivationFromContext(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.calls = append(c.calls, Call{Op: "ResolveAll", Type: elem, Activation: act, Forced: forced, Ctx: ctx})

	if err, ok := c.failures[elem]; ok {
		return nil, err
	}

	out := make([]any, len(c.all[elem]))
	copy(out, c.all[elem])
	return out, nil
}

// Close counts closes; it never guards against repeated calls so tests can
// observe them.
func (c *FakeContainer) Close() error {
	c.closed.Add(1)

	c.mu.Lock()
	hook, err := c.onClose, c.closeErr
	c.mu.Unlock()

	if hook != nil {
		hook()
	}

	return err
}

// Calls returns a copy of the recorded calls.
func (c *FakeContainer) Calls() []Call {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Call, len(c.calls))
	copy(out, c.calls)
	return out
}

// LastCall returns the most recent call.
func (c *FakeContainer) LastCall() (Call, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.calls) == 0 {
		return Call{}, false
	}
	return c.calls[len(c.calls)-1], true
}

// Closed reports how many times Close was called.
func (c *FakeContainer) Closed() int {
	return int(c.closed.Load())
}

// NotRegistered is the error the fake container returns for unknown types.
func NotRegistered(t reflect.Type) error {
	return &digbridge.ResolutionError{ServiceType: t, Cause: digbridge.ErrServiceNotFound}
}
