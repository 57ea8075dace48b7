package digbridge

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// ========================================
// Core Error Values (Sentinel Errors)
// ========================================

var (
	// Resolution errors.
	ErrServiceNotFound = errors.New("service not found")
	ErrServiceTypeNil  = errors.New("service type cannot be nil")
	ErrContainerNil    = errors.New("container cannot be nil")

	// Lifecycle errors.
	ErrProviderNil       = errors.New("service provider cannot be nil")
	ErrProviderDisposed  = errors.New("service provider has been disposed")
	ErrContainerDisposed = errors.New("container has been disposed")
	ErrScopeDisposed     = errors.New("scope has been disposed")
	ErrScopeNotInContext = errors.New("no scope found in context")
)

var (
	_ error = ResolutionError{}
	_ error = TypeMismatchError{}
	_ error = DisposalError{}
)

// ========================================
// Typed Errors for Rich Context
// ========================================

// ResolutionError wraps errors that occur while a container resolves a service.
// Containers return it for unregistered types with ErrServiceNotFound as the cause.
type ResolutionError struct {
	ServiceType reflect.Type
	Cause       error
}

func (e ResolutionError) Error() string {
	if e.Cause == nil || errors.Is(e.Cause, ErrServiceNotFound) {
		return fmt.Sprintf("service not found: %s", formatType(e.ServiceType))
	}

	return fmt.Sprintf("failed to resolve %s: %v", formatType(e.ServiceType), e.Cause)
}

func (e ResolutionError) Unwrap() error {
	return e.Cause
}

// TypeMismatchError indicates a type assertion or conversion failed.
type TypeMismatchError struct {
	Expected reflect.Type
	Actual   reflect.Type
	Context  string // "type assertion", "sequence element", etc.
}

func (e TypeMismatchError) Error() string {
	return fmt.Sprintf("%s: expected %s, got %s", e.Context, formatType(e.Expected), formatType(e.Actual))
}

// DisposalError aggregates disposal errors
type DisposalError struct {
	Context string // "service provider", "scope", "container"
	Errors  []error
}

func (e DisposalError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("%s disposal failed: %v", e.Context, e.Errors[0])
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s disposal failed with %d errors:", e.Context, len(e.Errors)))
	for i, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("\n  %d. %v", i+1, err))
	}
	return sb.String()
}

func (e DisposalError) Unwrap() []error {
	return e.Errors
}

// IsNotFound reports whether err means a service was not registered.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrServiceNotFound)
}

// IsDisposed reports whether err was caused by using a closed provider,
// scope or container.
func IsDisposed(err error) bool {
	return errors.Is(err, ErrProviderDisposed) ||
		errors.Is(err, ErrScopeDisposed) ||
		errors.Is(err, ErrContainerDisposed)
}

// formatType renders t without its package path for readable messages.
func formatType(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}

	switch t.Kind() {
	case reflect.Pointer:
		elem := t.Elem()
		if elem.PkgPath() != "" && elem.Name() != "" {
			return "*" + elem.Name()
		}
		return t.String()
	case reflect.Slice:
		elem := t.Elem()
		if elem.PkgPath() != "" && elem.Name() != "" {
			return "[]" + elem.Name()
		}
		return t.String()
	default:
		if t.PkgPath() != "" && t.Name() != "" {
			return t.Name()
		}
		return t.String()
	}
}
