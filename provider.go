package digbridge

import (
	"context"
	"fmt"
	"reflect"
	"sync/atomic"

	"go.uber.org/zap"
)

// Getter is the resolution contract a hosting framework consumes.
type Getter interface {
	// GetService returns an instance of serviceType, a []E for a slice
	// type, or nil when serviceType is not registered.
	GetService(serviceType reflect.Type) (any, error)

	// GetRequiredService is GetService for callers that cannot do without
	// the service. The container's not-registered error is returned as is.
	GetRequiredService(serviceType reflect.Type) (any, error)
}

// ServiceProvider adapts a Container to the Getter contract and forces its
// scope pair to be active for every resolution.
//
// The provider created without an explicit scope uses the root scope and
// owns the container: closing it closes the container. Providers bound to a
// child scope share the container and never close it.
//
// Example:
//
//	c := container.New()
//	_ = c.Provide(NewLogger)
//	_ = c.Provide(NewUserService, container.AsScoped())
//
//	provider := digbridge.NewServiceProvider(c)
//	defer provider.Close()
//
//	scope, _ := provider.CreateScope(ctx)
//	defer scope.Close()
//
//	svc, err := digbridge.Resolve[*UserService](scope.ServiceProvider())
type ServiceProvider struct {
	container     Container
	scope         Scope
	parent        Scope
	ownsContainer bool
	logger        *zap.Logger

	disposed atomic.Bool
}

var (
	_ Getter     = (*ServiceProvider)(nil)
	_ Disposable = (*ServiceProvider)(nil)
)

// NewServiceProvider creates a provider over container.
//
// The container is not validated here; a nil container fails with
// ErrContainerNil on the first resolution.
func NewServiceProvider(container Container, opts ...ProviderOption) *ServiceProvider {
	options := &providerOptions{logger: zap.NewNop()}
	for _, opt := range opts {
		if opt != nil {
			opt.apply(options)
		}
	}

	p := &ServiceProvider{
		container: container,
		scope:     options.scope,
		parent:    options.parent,
		logger:    options.logger,
	}

	if p.scope == nil {
		p.scope = root
	}

	p.ownsContainer = IsRootScope(p.scope)

	return p
}

// Scope returns the provider's current scope.
func (p *ServiceProvider) Scope() Scope {
	return p.scope
}

// ParentScope returns the provider's parent scope, or nil.
func (p *ServiceProvider) ParentScope() Scope {
	return p.parent
}

// OwnsContainer reports whether closing the provider closes the container.
func (p *ServiceProvider) OwnsContainer() bool {
	return p.ownsContainer
}

// IsDisposed reports whether the provider owns the container and has been closed.
func (p *ServiceProvider) IsDisposed() bool {
	return p.disposed.Load()
}

// GetService resolves serviceType and returns nil, without error, when it is
// not registered. A slice type []E resolves every registration of E.
func (p *ServiceProvider) GetService(serviceType reflect.Type) (any, error) {
	if serviceType == nil {
		return nil, ErrServiceTypeNil
	}

	return p.Resolve(RequestFor(serviceType), true)
}

// GetRequiredService resolves serviceType. When it is not registered the
// container's own error is returned unwrapped.
func (p *ServiceProvider) GetRequiredService(serviceType reflect.Type) (any, error) {
	if serviceType == nil {
		return nil, ErrServiceTypeNil
	}

	return p.Resolve(RequestFor(serviceType), false)
}

// IsService reports whether the container has a registration for serviceType.
func (p *ServiceProvider) IsService(serviceType reflect.Type) bool {
	if serviceType == nil || p.container == nil {
		return false
	}

	return p.container.HasComponent(serviceType)
}

// Resolve resolves req with the provider's scope pair active.
//
// An exact registration of req.Type() always wins. Otherwise an AllOf
// request returns every registration of its element type, an optional
// request returns nil, and a required request falls through to the
// container so its native error reaches the caller.
func (p *ServiceProvider) Resolve(req Request, optional bool) (any, error) {
	if req.Type() == nil {
		return nil, ErrServiceTypeNil
	}

	if p.container == nil {
		return nil, ErrContainerNil
	}

	guard := forceScope(p.scope, p.parent)
	defer guard.release()

	return p.resolve(guard.ctx, req, optional)
}

func (p *ServiceProvider) resolve(ctx context.Context, req Request, optional bool) (any, error) {
	if p.container.HasComponent(req.Type()) {
		return p.container.Resolve(ctx, req.Type())
	}

	if req.IsAll() {
		instances, err := p.container.ResolveAll(ctx, req.Elem())
		if err != nil {
			return nil, err
		}

		return sliceOf(req.Elem(), instances)
	}

	if optional {
		p.logger.Debug("service not registered",
			zap.Stringer("request", req),
			zap.String("scope", p.scope.ID()))
		return nil, nil
	}

	return p.container.Resolve(ctx, req.Type())
}

// CreateScope creates a child scope of the provider's current scope together
// with a provider bound to it. The scope, not its provider, owns the scoped
// instances: close the scope when the operation ends.
func (p *ServiceProvider) CreateScope(ctx context.Context) (*ServiceScope, error) {
	if p.disposed.Load() {
		return nil, ErrProviderDisposed
	}

	s := NewScope(ctx, p.scope)
	s.provider = &ServiceProvider{
		container: p.container,
		scope:     s,
		parent:    p.scope,
		logger:    p.logger,
	}

	p.logger.Debug("scope created",
		zap.String("scope", s.ID()),
		zap.String("parent", p.scope.ID()))

	return s, nil
}

// Close disposes the root scope and then the container when the provider
// owns them. It is a no-op for providers bound to a child scope, and safe to
// call multiple times.
func (p *ServiceProvider) Close() error {
	if !p.ownsContainer {
		return nil
	}

	if !p.disposed.CompareAndSwap(false, true) {
		return nil // Already disposed
	}

	var errs []error

	// Scope first: scoped instances may still need the container.
	if d, ok := p.scope.(Disposable); ok {
		if err := d.Close(); err != nil {
			errs = append(errs, fmt.Errorf("scope %s: %w", p.scope.ID(), err))
		}
	}

	if p.container != nil {
		if err := p.container.Close(); err != nil {
			errs = append(errs, fmt.Errorf("container: %w", err))
		}
	}

	p.logger.Debug("service provider disposed", zap.Int("errors", len(errs)))

	if len(errs) > 0 {
		return &DisposalError{
			Context: "service provider",
			Errors:  errs,
		}
	}

	return nil
}

// sliceOf copies instances into a []elem.
func sliceOf(elem reflect.Type, instances []any) (any, error) {
	out := reflect.MakeSlice(reflect.SliceOf(elem), 0, len(instances))
	for i, instance := range instances {
		if instance == nil {
			out = reflect.Append(out, reflect.Zero(elem))
			continue
		}

		v := reflect.ValueOf(instance)
		if !v.Type().AssignableTo(elem) {
			return nil, &TypeMismatchError{
				Expected: elem,
				Actual:   v.Type(),
				Context:  fmt.Sprintf("sequence element %d", i),
			}
		}

		out = reflect.Append(out, v)
	}

	return out.Interface(), nil
}
