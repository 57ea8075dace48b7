package digbridge_test

import (
	"context"
	"errors"
	"testing"

	"github.com/junioryono/digbridge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScope_Creation(t *testing.T) {
	t.Run("creates scope with context", func(t *testing.T) {
		t.Parallel()

		type testKeyType struct{}
		ctx := context.WithValue(context.Background(), testKeyType{}, "test-value")

		scope := digbridge.NewScope(ctx, nil)
		t.Cleanup(func() { require.NoError(t, scope.Close()) })

		assert.NotEmpty(t, scope.ID())
		assert.False(t, scope.IsDisposed())
		assert.Equal(t, "test-value", scope.Context().Value(testKeyType{}))
		assert.Equal(t, digbridge.RootScope(), scope.Parent())
		assert.Nil(t, scope.ServiceProvider())
	})

	t.Run("creates scope with nil context", func(t *testing.T) {
		t.Parallel()

		scope := digbridge.NewScope(nil, nil)
		t.Cleanup(func() { require.NoError(t, scope.Close()) })

		assert.NotNil(t, scope.Context())
		assert.NoError(t, scope.Context().Err())
	})

	t.Run("scope IDs are unique", func(t *testing.T) {
		t.Parallel()

		seen := make(map[string]struct{})
		for i := 0; i < 100; i++ {
			scope := digbridge.NewScope(context.Background(), nil)
			_, dup := seen[scope.ID()]
			require.False(t, dup, "duplicate scope ID %s", scope.ID())
			seen[scope.ID()] = struct{}{}
			require.NoError(t, scope.Close())
		}
	})

	t.Run("nested scope hierarchy", func(t *testing.T) {
		t.Parallel()

		scope1 := digbridge.NewScope(context.Background(), nil)
		scope2 := digbridge.NewScope(scope1.Context(), scope1)
		scope3 := digbridge.NewScope(scope2.Context(), scope2)

		assert.Same(t, scope1, scope2.Parent())
		assert.Same(t, scope2, scope3.Parent())
		assert.True(t, digbridge.IsRootScope(scope1.Parent()))

		// Clean up in reverse order
		require.NoError(t, scope3.Close())
		require.NoError(t, scope2.Close())
		require.NoError(t, scope1.Close())
	})

	t.Run("root scope identification", func(t *testing.T) {
		t.Parallel()

		assert.True(t, digbridge.IsRootScope(digbridge.RootScope()))
		assert.True(t, digbridge.IsRootScope(nil))
		assert.Same(t, digbridge.RootScope(), digbridge.RootScope())
		assert.Equal(t, "root", digbridge.RootScope().ID())

		scope := digbridge.NewScope(context.Background(), nil)
		t.Cleanup(func() { require.NoError(t, scope.Close()) })
		assert.False(t, digbridge.IsRootScope(scope))
	})
}

func TestScope_Disposal(t *testing.T) {
	t.Run("disposes tracked instances in reverse order", func(t *testing.T) {
		t.Parallel()

		order := &closeOrder{}
		scope := digbridge.NewScope(context.Background(), nil)

		first := &TDisposable{Name: "first", order: order}
		second := &TDisposable{Name: "second", order: order}
		scope.Track(first)
		scope.Track(&TService{ID: "not disposable"})
		scope.Track(second)

		require.NoError(t, scope.Close())
		assert.Equal(t, []string{"second", "first"}, order.get())
		assert.True(t, first.IsClosed())
		assert.True(t, second.IsClosed())
	})

	t.Run("close is idempotent and cancels the context", func(t *testing.T) {
		t.Parallel()

		d := &TDisposable{Name: "once"}
		scope := digbridge.NewScope(context.Background(), nil)
		scope.Track(d)

		require.NoError(t, scope.Close())
		require.NoError(t, scope.Close())

		assert.True(t, scope.IsDisposed())
		assert.True(t, d.IsClosed())
		assert.ErrorIs(t, scope.Context().Err(), context.Canceled)
	})

	t.Run("tracking after close disposes immediately", func(t *testing.T) {
		t.Parallel()

		scope := digbridge.NewScope(context.Background(), nil)
		require.NoError(t, scope.Close())

		late := &TDisposable{Name: "late"}
		scope.Track(late)
		assert.True(t, late.IsClosed())
	})

	t.Run("aggregates disposal errors", func(t *testing.T) {
		t.Parallel()

		errA := errors.New("a failed")
		errB := errors.New("b failed")
		scope := digbridge.NewScope(context.Background(), nil)
		scope.Track(&TDisposable{Name: "a", closeErr: errA})
		scope.Track(&TDisposable{Name: "ok"})
		scope.Track(&TDisposable{Name: "b", closeErr: errB})

		err := scope.Close()
		var disposal *digbridge.DisposalError
		require.ErrorAs(t, err, &disposal)
		assert.Contains(t, disposal.Context, scope.ID())
		assert.ErrorIs(t, err, errA)
		assert.ErrorIs(t, err, errB)
	})
}

func TestScopeFromContext(t *testing.T) {
	t.Run("finds the scope", func(t *testing.T) {
		t.Parallel()

		scope := digbridge.NewScope(context.Background(), nil)
		t.Cleanup(func() { require.NoError(t, scope.Close()) })

		got, err := digbridge.ScopeFromContext(scope.Context())
		require.NoError(t, err)
		assert.Same(t, scope, got)
	})

	t.Run("no scope in context", func(t *testing.T) {
		t.Parallel()

		_, err := digbridge.ScopeFromContext(context.Background())
		assert.ErrorIs(t, err, digbridge.ErrScopeNotInContext)
	})

	t.Run("disposed scope", func(t *testing.T) {
		t.Parallel()

		scope := digbridge.NewScope(context.Background(), nil)
		ctx := scope.Context()
		require.NoError(t, scope.Close())

		_, err := digbridge.ScopeFromContext(ctx)
		assert.ErrorIs(t, err, digbridge.ErrScopeDisposed)
	})
}
