package digbridge

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/junioryono/digbridge/internal/lifecycle"
)

// Scope identifies a logical resolution context.
//
// The root scope lives as long as the process. A child scope is created per
// logical operation, typically one per HTTP request, and decides which scoped
// instances are reused and which are built fresh.
type Scope interface {
	// ID returns the unique ID of this scope.
	ID() string

	// Context returns the context associated with this scope.
	Context() context.Context
}

// rootScopeID is the ID reported by RootScope.
const rootScopeID = "root"

type rootScope struct{}

func (*rootScope) ID() string { return rootScopeID }

func (*rootScope) Context() context.Context { return context.Background() }

var root Scope = &rootScope{}

// RootScope returns the application-wide scope.
// It is a singleton and does not support disposal.
func RootScope() Scope {
	return root
}

// IsRootScope reports whether s is the application-wide scope.
// A nil scope is treated as the root scope.
func IsRootScope(s Scope) bool {
	return s == nil || s == root
}

// ServiceScope is a child scope with its own identity, context and set of
// owned instances.
//
// Example:
//
//	scope, err := provider.CreateScope(r.Context())
//	if err != nil {
//	    return err
//	}
//	defer scope.Close()
//
//	svc, err := digbridge.Resolve[*UserService](scope.ServiceProvider())
type ServiceScope struct {
	id       string
	ctx      context.Context
	cancel   context.CancelFunc
	parent   Scope
	provider *ServiceProvider

	instances *lifecycle.Manager
	disposed  atomic.Bool
}

var (
	_ Scope      = (*ServiceScope)(nil)
	_ Tracker    = (*ServiceScope)(nil)
	_ Disposable = (*ServiceScope)(nil)
)

// NewScope creates a child scope of parent.
// A nil parent means the root scope. The scope context is derived from ctx,
// carries the scope, and is cancelled when the scope is closed.
func NewScope(ctx context.Context, parent Scope) *ServiceScope {
	if ctx == nil {
		ctx = context.Background()
	}

	if parent == nil {
		parent = root
	}

	s := &ServiceScope{
		id:        uuid.NewString(),
		parent:    parent,
		instances: lifecycle.New(),
	}

	s.ctx, s.cancel = context.WithCancel(contextWithScope(ctx, s))

	return s
}

func (s *ServiceScope) ID() string {
	return s.id
}

func (s *ServiceScope) Context() context.Context {
	return s.ctx
}

// Parent returns the scope this scope was created from.
func (s *ServiceScope) Parent() Scope {
	return s.parent
}

// ServiceProvider returns the provider bound to this scope, or nil when the
// scope was created with NewScope rather than ServiceProvider.CreateScope.
func (s *ServiceScope) ServiceProvider() *ServiceProvider {
	return s.provider
}

// Track hands instance to the scope. Instances implementing Disposable are
// closed when the scope is closed, in reverse order of tracking.
// Instances tracked after the scope was closed are closed immediately.
func (s *ServiceScope) Track(instance any) {
	if s.IsDisposed() {
		if d, ok := instance.(Disposable); ok {
			_ = d.Close()
		}
		return
	}

	s.instances.Track(instance)
}

// IsDisposed reports whether Close has been called.
func (s *ServiceScope) IsDisposed() bool {
	return s.disposed.Load()
}

// Close disposes all tracked instances in reverse order and cancels the
// scope context. It is safe to call multiple times.
func (s *ServiceScope) Close() error {
	if !s.disposed.CompareAndSwap(false, true) {
		return nil
	}

	defer s.cancel()

	if err := s.instances.Dispose(); err != nil {
		return &DisposalError{
			Context: "scope " + s.id,
			Errors:  []error{err},
		}
	}

	return nil
}

// scopeContextKey is the key for storing the current scope in context.
type scopeContextKey struct{}

// contextWithScope returns a context with the current scope.
func contextWithScope(ctx context.Context, s *ServiceScope) context.Context {
	return context.WithValue(ctx, scopeContextKey{}, s)
}

// ScopeFromContext returns the ServiceScope stored in ctx by NewScope.
func ScopeFromContext(ctx context.Context) (*ServiceScope, error) {
	if ctx == nil {
		return nil, ErrScopeNotInContext
	}

	s, ok := ctx.Value(scopeContextKey{}).(*ServiceScope)
	if !ok || s == nil {
		return nil, ErrScopeNotInContext
	}

	if s.IsDisposed() {
		return nil, ErrScopeDisposed
	}

	return s, nil
}
