package digbridge

import (
	"context"
	"reflect"
)

// Container is the inversion-of-control container a ServiceProvider adapts.
//
// The container owns registration and the resolution graph. Every resolution
// call carries the active scope pair in ctx; implementations read it with
// ActivationFromContext and resolve scoped instances against it.
type Container interface {
	Disposable

	// HasComponent reports whether serviceType has a registration.
	HasComponent(serviceType reflect.Type) bool

	// Resolve returns an instance of serviceType. It fails when
	// serviceType is not registered.
	Resolve(ctx context.Context, serviceType reflect.Type) (any, error)

	// ResolveAll returns an instance of every registration of elemType,
	// in the container's registration order. It returns an empty slice when
	// there is none.
	ResolveAll(ctx context.Context, elemType reflect.Type) ([]any, error)
}
