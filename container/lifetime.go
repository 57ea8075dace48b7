package container

import "strconv"

// Lifetime decides which dig container builds and caches a registration.
type Lifetime int

const (
	// Singleton registrations are built in the root dig container, once, and
	// every scope sees the same instance. This is the default.
	Singleton Lifetime = iota

	// Scoped registrations are built in the dig container of the
	// digbridge.ServiceScope being resolved, once per scope, and closed with
	// it. They cannot be resolved from the root scope.
	Scoped
)

var lifetimeNames = [...]string{
	Singleton: "Singleton",
	Scoped:    "Scoped",
}

// String returns the name used in log fields and errors.
func (l Lifetime) String() string {
	if !l.IsValid() {
		return "Lifetime(" + strconv.Itoa(int(l)) + ")"
	}
	return lifetimeNames[l]
}

// IsValid reports whether Provide accepts l.
func (l Lifetime) IsValid() bool {
	return l >= 0 && int(l) < len(lifetimeNames)
}
