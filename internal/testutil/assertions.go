package testutil

import (
	"testing"

	"github.com/junioryono/digbridge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertServiceResolvable checks if a service can be resolved
func AssertServiceResolvable[T any](t *testing.T, provider digbridge.Getter) T {
	t.Helper()
	service, err := digbridge.Resolve[T](provider)
	require.NoError(t, err, "failed to resolve service of type %T", *new(T))
	require.NotNil(t, service, "resolved service is nil")
	return service
}

// AssertServiceAbsent checks that an optional lookup returns no instance and no error
func AssertServiceAbsent[T any](t *testing.T, provider digbridge.Getter) {
	t.Helper()
	service, ok, err := digbridge.TryResolve[T](provider)
	require.NoError(t, err)
	assert.False(t, ok, "expected no service of type %T", *new(T))
	assert.Zero(t, service)
}

// AssertServiceNotFound checks if a service resolution fails with not found error
func AssertServiceNotFound[T any](t *testing.T, provider digbridge.Getter) {
	t.Helper()
	_, err := digbridge.Resolve[T](provider)
	assert.Error(t, err)
	assert.True(t, digbridge.IsNotFound(err), "expected service not found error, got: %v", err)
}

// AssertAllResolvable resolves every registered T and checks the count
func AssertAllResolvable[T any](t *testing.T, provider digbridge.Getter, expected int) []T {
	t.Helper()
	services, err := digbridge.ResolveAll[T](provider)
	require.NoError(t, err, "failed to resolve all services of type %T", *new(T))
	require.NotNil(t, services, "resolved sequence is nil")
	require.Len(t, services, expected)
	return services
}
