package digbridge

import (
	"fmt"
	"reflect"
)

// Resolve resolves a required service of type T.
// This is a generic convenience function that handles type assertions.
//
// Example:
//
//	logger, err := digbridge.Resolve[*Logger](provider)
//	if err != nil {
//	    // Handle error
//	}
func Resolve[T any](provider Getter) (T, error) {
	var zero T

	if provider == nil {
		return zero, ErrProviderNil
	}

	serviceType := reflect.TypeFor[T]()
	service, err := provider.GetRequiredService(serviceType)
	if err != nil {
		return zero, err
	}

	return assertType[T](serviceType, service, "type assertion")
}

// TryResolve resolves an optional service of type T. The boolean is false
// when T is not registered.
//
// Example:
//
//	cache, ok, err := digbridge.TryResolve[Cache](provider)
func TryResolve[T any](provider Getter) (T, bool, error) {
	var zero T

	if provider == nil {
		return zero, false, ErrProviderNil
	}

	serviceType := reflect.TypeFor[T]()
	service, err := provider.GetService(serviceType)
	if err != nil || service == nil {
		return zero, false, err
	}

	result, err := assertType[T](serviceType, service, "type assertion")
	if err != nil {
		return zero, false, err
	}

	return result, true, nil
}

// ResolveAll resolves every registered service of type T, in container
// order. It returns an empty slice when none is registered.
//
// Example:
//
//	handlers, err := digbridge.ResolveAll[http.Handler](provider)
func ResolveAll[T any](provider Getter) ([]T, error) {
	if provider == nil {
		return nil, ErrProviderNil
	}

	serviceType := reflect.TypeFor[[]T]()
	services, err := provider.GetService(serviceType)
	if err != nil {
		return nil, err
	}

	if services == nil {
		return []T{}, nil
	}

	return assertType[[]T](serviceType, services, fmt.Sprintf("sequence of %s", formatType(serviceType.Elem())))
}

// MustResolve resolves a service of type T.
// It panics if the service cannot be resolved. This is useful for
// application initialization where missing services are fatal.
//
// Example:
//
//	// Panics if logger cannot be resolved
//	logger := digbridge.MustResolve[*Logger](provider)
func MustResolve[T any](provider Getter) T {
	service, err := Resolve[T](provider)
	if err != nil {
		panic(fmt.Sprintf("failed to resolve service: %v", err))
	}

	return service
}

func assertType[T any](serviceType reflect.Type, service any, context string) (T, error) {
	var zero T

	result, ok := service.(T)
	if !ok {
		return zero, &TypeMismatchError{
			Expected: serviceType,
			Actual:   reflect.TypeOf(service),
			Context:  context,
		}
	}

	return result, nil
}
