package container

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	ErrConstructorNil      = errors.New("constructor cannot be nil")
	ErrConstructorNotFunc  = errors.New("constructor must be a function")
	ErrConstructorVariadic = errors.New("constructor cannot be variadic")
	ErrConstructorResults  = errors.New("constructor must return a value, optionally followed by an error")
	ErrConstructorOut      = errors.New("constructor results cannot embed dig.Out")
	ErrConstructorReserved = errors.New("constructor cannot build context.Context or digbridge.Scope")
	ErrConstructorCycle    = errors.New("constructor depends on the service it builds")
)

var (
	_ error = (*LifetimeError)(nil)
	_ error = (*RegistrationError)(nil)
)

// LifetimeError indicates an invalid lifetime value.
type LifetimeError struct {
	Value any
}

func (e LifetimeError) Error() string {
	return fmt.Sprintf("invalid service lifetime: %v", e.Value)
}

// RegistrationError wraps errors during service registration.
type RegistrationError struct {
	ServiceType reflect.Type
	Operation   string // "validate", "provide", "provide-scoped"
	Cause       error
}

func (e RegistrationError) Error() string {
	if e.ServiceType == nil {
		return fmt.Sprintf("failed to %s constructor: %v", e.Operation, e.Cause)
	}
	return fmt.Sprintf("failed to %s %s: %v", e.Operation, e.ServiceType, e.Cause)
}

func (e RegistrationError) Unwrap() error {
	return e.Cause
}
