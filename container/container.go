// Package container implements digbridge.Container on top of go.uber.org/dig.
//
// Registrations carry a lifetime. Singletons are provided to the root dig
// container and shared by every scope. Each digbridge scope gets its own dig
// container the first time something is resolved in it. That container holds
// the scoped registrations, so every scope builds its own instances, and
// bridges singletons to the root. It is dropped when the scope closes.
//
// Example:
//
//	c := container.New(container.WithLogger(logger))
//	if err := c.Provide(NewDatabase); err != nil {
//	    return err
//	}
//	if err := c.Provide(NewUnitOfWork, container.AsScoped()); err != nil {
//	    return err
//	}
//
//	provider := digbridge.NewServiceProvider(c)
//	defer provider.Close()
//
// Constructors run while the container holds its lock, so a constructor must
// not resolve from the same container.
package container

import (
	"context"
	"fmt"
	"reflect"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/junioryono/digbridge"
	"github.com/junioryono/digbridge/internal/lifecycle"
	"github.com/puzpuzpuz/xsync/v3"
	"go.uber.org/dig"
	"go.uber.org/zap"
)

var _ digbridge.Container = (*Container)(nil)

// registration is one constructor known to the container.
type registration struct {
	name        string
	serviceType reflect.Type
	lifetime    Lifetime
	constructor any

	// primary is the first registration of serviceType. It is also
	// provided unnamed so other constructors can depend on serviceType.
	primary bool
}

// scopeEntry is the dig container backing one digbridge scope.
type scopeEntry struct {
	store *dig.Container
	track func(any)
}

// Container is a dig-backed digbridge.Container.
type Container struct {
	// Guards every dig call, the registration lists and seq.
	mu      sync.Mutex
	root    *dig.Container
	digOpts []dig.Option
	ordered []*registration
	seq     int

	registrations *xsync.MapOf[reflect.Type, []*registration]
	scopes        *xsync.MapOf[string, *scopeEntry]
	singletons    *lifecycle.Manager

	logger   *zap.Logger
	disposed atomic.Bool
}

// New creates an empty container.
func New(opts ...Option) *Container {
	o := &options{logger: zap.NewNop()}
	for _, opt := range opts {
		if opt != nil {
			opt.apply(o)
		}
	}

	c := &Container{
		root:          dig.New(o.digOpts...),
		digOpts:       o.digOpts,
		registrations: xsync.NewMapOf[reflect.Type, []*registration](),
		scopes:        xsync.NewMapOf[string, *scopeEntry](),
		singletons:    lifecycle.New(),
		logger:        o.logger,
	}

	if err := seed(c.root, digbridge.RootScope()); err != nil {
		panic(fmt.Errorf("failed to seed root dig container: %w", err))
	}

	return c
}

// seed provides the scope itself and its context to s.
func seed(s *dig.Container, owner digbridge.Scope) error {
	if err := s.Provide(func() context.Context { return owner.Context() }); err != nil {
		return err
	}

	return s.Provide(func() digbridge.Scope { return owner })
}

// Provide registers constructor. The constructor returns the service,
// optionally followed by an error, and may depend on any registered
// service as well as context.Context and digbridge.Scope.
func (c *Container) Provide(constructor any, opts ...ProvideOption) error {
	o := &provideOptions{lifetime: Singleton}
	for _, opt := range opts {
		if opt != nil {
			opt.applyProvide(o)
		}
	}

	serviceType, err := serviceTypeOf(constructor)
	if err != nil {
		return &RegistrationError{ServiceType: serviceType, Operation: "validate", Cause: err}
	}

	if !o.lifetime.IsValid() {
		return &RegistrationError{ServiceType: serviceType, Operation: "validate", Cause: &LifetimeError{Value: o.lifetime}}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.disposed.Load() {
		return &RegistrationError{ServiceType: serviceType, Operation: "provide", Cause: digbridge.ErrContainerDisposed}
	}

	existing, _ := c.registrations.Load(serviceType)

	reg := &registration{
		name:        fmt.Sprintf("digbridge.%d", c.seq+1),
		serviceType: serviceType,
		lifetime:    o.lifetime,
		constructor: constructor,
		primary:     len(existing) == 0,
	}

	// dig cannot forget a constructor: everything that can reject reg runs
	// before dig is touched.
	if err := c.validate(reg); err != nil {
		return &RegistrationError{ServiceType: serviceType, Operation: "validate", Cause: err}
	}

	if reg.lifetime == Singleton {
		if err := provide(c.root, reg, c.trackSingleton); err != nil {
			return &RegistrationError{ServiceType: serviceType, Operation: "provide", Cause: err}
		}
	}

	var provideErr error
	c.scopes.Range(func(_ string, entry *scopeEntry) bool {
		provideErr = c.provideToScope(entry, reg)
		return provideErr == nil
	})
	if provideErr != nil {
		return &RegistrationError{ServiceType: serviceType, Operation: "provide-scoped", Cause: provideErr}
	}

	c.seq++
	c.ordered = append(c.ordered, reg)
	c.registrations.Compute(serviceType, func(old []*registration, _ bool) ([]*registration, bool) {
		return append(slices.Clip(old), reg), false
	})

	c.logger.Debug("service registered",
		zap.Stringer("type", serviceType),
		zap.Stringer("lifetime", reg.lifetime),
		zap.String("name", reg.name),
		zap.Bool("primary", reg.primary))

	return nil
}

// provide adds reg to s under its unique name and, for the primary
// registration, unnamed as well.
func provide(s *dig.Container, reg *registration, track func(any)) error {
	if err := s.Provide(trackingConstructor(reg.constructor, track), dig.Name(reg.name)); err != nil {
		return err
	}

	if reg.primary {
		return s.Provide(forwarder(reg.serviceType, reg.name))
	}

	return nil
}

// validate checks reg against a scratch dig container and against the
// registrations it would close a cycle with. Callers hold c.mu.
func (c *Container) validate(reg *registration) error {
	if err := dig.New().Provide(reg.constructor); err != nil {
		return err
	}

	if !reg.primary {
		return nil
	}

	return checkCycle(reg.serviceType, reg.constructor, func(t reflect.Type) any {
		regs, ok := c.registrations.Load(t)
		if !ok || len(regs) == 0 {
			return nil
		}
		return regs[0].constructor
	})
}

// provideToScope adds reg to a scope container. Scoped registrations build
// there; singletons are bridged to the root. Callers hold c.mu.
func (c *Container) provideToScope(entry *scopeEntry, reg *registration) error {
	if reg.lifetime == Scoped {
		return provide(entry.store, reg, entry.track)
	}

	bridged := *reg
	bridged.constructor = bridge(reg.serviceType, func(sink func([]reflect.Value)) error {
		return c.root.Invoke(namedExtractor(reg.serviceType, []string{reg.name}, sink))
	})

	return provide(entry.store, &bridged, func(any) {})
}

func (c *Container) trackSingleton(instance any) {
	c.singletons.Track(instance)
}

// HasComponent reports whether serviceType has at least one registration.
func (c *Container) HasComponent(serviceType reflect.Type) bool {
	if serviceType == nil {
		return false
	}

	regs, ok := c.registrations.Load(serviceType)
	return ok && len(regs) > 0
}

// Resolve returns the primary registration of serviceType, built in the dig
// scope of the activation carried by ctx.
func (c *Container) Resolve(ctx context.Context, serviceType reflect.Type) (any, error) {
	if serviceType == nil {
		return nil, digbridge.ErrServiceTypeNil
	}

	if c.disposed.Load() {
		return nil, digbridge.ErrContainerDisposed
	}

	if !c.HasComponent(serviceType) {
		return nil, &digbridge.ResolutionError{ServiceType: serviceType, Cause: digbridge.ErrServiceNotFound}
	}

	act, _ := digbridge.ActivationFromContext(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	s, err := c.storeFor(act)
	if err != nil {
		return nil, err
	}

	var result any
	fn := extractor(serviceType, func(v reflect.Value) {
		result = v.Interface()
	})

	if err := s.Invoke(fn); err != nil {
		return nil, &digbridge.ResolutionError{ServiceType: serviceType, Cause: err}
	}

	return result, nil
}

// ResolveAll returns every registration of elemType visible from the
// activation carried by ctx, in registration order. Scoped registrations are
// only visible from a child scope.
func (c *Container) ResolveAll(ctx context.Context, elemType reflect.Type) ([]any, error) {
	if elemType == nil {
		return nil, digbridge.ErrServiceTypeNil
	}

	if c.disposed.Load() {
		return nil, digbridge.ErrContainerDisposed
	}

	act, _ := digbridge.ActivationFromContext(ctx)
	atRoot := digbridge.IsRootScope(act.Current)

	regs, _ := c.registrations.Load(elemType)
	names := make([]string, 0, len(regs))
	for _, reg := range regs {
		if atRoot && reg.lifetime == Scoped {
			continue
		}
		names = append(names, reg.name)
	}

	if len(names) == 0 {
		return []any{}, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	s, err := c.storeFor(act)
	if err != nil {
		return nil, err
	}

	results := make([]any, 0, len(names))
	fn := namedExtractor(elemType, names, func(values []reflect.Value) {
		for _, v := range values {
			results = append(results, v.Interface())
		}
	})

	if err := s.Invoke(fn); err != nil {
		return nil, &digbridge.ResolutionError{ServiceType: reflect.SliceOf(elemType), Cause: err}
	}

	return results, nil
}

// storeFor returns the dig container backing act.Current. Callers hold c.mu.
func (c *Container) storeFor(act digbridge.Activation) (*dig.Container, error) {
	if digbridge.IsRootScope(act.Current) {
		return c.root, nil
	}

	return c.scopeFor(act.Current)
}

// scopeFor returns the dig container of current, creating it on first use.
// Nested scopes get their own container too: scoped services are never
// shared between a scope and its children. Callers hold c.mu.
func (c *Container) scopeFor(current digbridge.Scope) (*dig.Container, error) {
	if d, ok := current.(interface{ IsDisposed() bool }); ok && d.IsDisposed() {
		return nil, digbridge.ErrScopeDisposed
	}

	if entry, ok := c.scopes.Load(current.ID()); ok {
		return entry.store, nil
	}

	entry := &scopeEntry{
		store: dig.New(c.digOpts...),
		track: func(any) {},
	}

	tracker, tracks := current.(digbridge.Tracker)
	if tracks {
		entry.track = tracker.Track
	}

	if err := seed(entry.store, current); err != nil {
		return nil, fmt.Errorf("failed to seed scope %s: %w", current.ID(), err)
	}

	for _, reg := range c.ordered {
		if err := c.provideToScope(entry, reg); err != nil {
			return nil, &RegistrationError{ServiceType: reg.serviceType, Operation: "provide-scoped", Cause: err}
		}
	}

	c.scopes.Store(current.ID(), entry)

	// Tracked first so it is released after every scoped instance.
	if tracks {
		tracker.Track(&scopeRelease{scopes: c.scopes, id: current.ID()})
	}

	c.logger.Debug("scope container created",
		zap.String("scope", current.ID()),
		zap.Int("registrations", len(c.ordered)))

	return entry.store, nil
}

// scopeRelease drops the dig container of a digbridge scope when the scope
// closes. Nothing else references it, so its cached instances go with it.
type scopeRelease struct {
	scopes *xsync.MapOf[string, *scopeEntry]
	id     string
}

func (r *scopeRelease) Close() error {
	r.scopes.Delete(r.id)
	return nil
}

// Scopes reports how many scope containers are live.
func (c *Container) Scopes() int {
	return c.scopes.Size()
}

// Close disposes singleton instances in reverse order of creation.
// Afterwards every operation fails with digbridge.ErrContainerDisposed.
// It is safe to call multiple times.
func (c *Container) Close() error {
	if !c.disposed.CompareAndSwap(false, true) {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.scopes.Clear()

	if err := c.singletons.Dispose(); err != nil {
		c.logger.Debug("container disposed with errors", zap.Error(err))
		return &digbridge.DisposalError{
			Context: "container",
			Errors:  []error{err},
		}
	}

	c.logger.Debug("container disposed")

	return nil
}
