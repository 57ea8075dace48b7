package container

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/dig"
)

type widget struct {
	id int
}

func TestNamedParams(t *testing.T) {
	t.Parallel()

	widgetType := reflect.TypeFor[*widget]()
	params := namedParams(widgetType, []string{"a", "b"})

	require.Equal(t, 3, params.NumField())
	assert.True(t, dig.IsIn(params))
	assert.True(t, params.Field(0).Anonymous)

	for i, name := range []string{"a", "b"} {
		field := params.Field(i + 1)
		assert.Equal(t, widgetType, field.Type)
		assert.Equal(t, name, field.Tag.Get("name"))
	}
}

func TestTrackingConstructor(t *testing.T) {
	t.Run("tracks built instances", func(t *testing.T) {
		t.Parallel()

		var tracked []any
		wrapped := trackingConstructor(func(id int) *widget { return &widget{id: id} }, func(v any) {
			tracked = append(tracked, v)
		})

		fn, ok := wrapped.(func(int) *widget)
		require.True(t, ok)

		w := fn(7)
		assert.Equal(t, 7, w.id)
		require.Len(t, tracked, 1)
		assert.Same(t, w, tracked[0])
	})

	t.Run("skips failed and nil results", func(t *testing.T) {
		t.Parallel()

		var tracked int
		boom := errors.New("boom")

		failing := trackingConstructor(func() (*widget, error) { return &widget{}, boom }, func(any) { tracked++ })
		_, err := failing.(func() (*widget, error))()
		assert.ErrorIs(t, err, boom)

		empty := trackingConstructor(func() *widget { return nil }, func(any) { tracked++ })
		assert.Nil(t, empty.(func() *widget)())

		assert.Zero(t, tracked)
	})
}

func TestForwarder(t *testing.T) {
	t.Parallel()

	c := dig.New()
	require.NoError(t, c.Provide(func() *widget { return &widget{id: 3} }, dig.Name("w")))
	require.NoError(t, c.Provide(forwarder(reflect.TypeFor[*widget](), "w")))

	require.NoError(t, c.Invoke(func(w *widget) {
		assert.Equal(t, 3, w.id)
	}))
}

func TestServiceTypeOf(t *testing.T) {
	t.Parallel()

	got, err := serviceTypeOf(func() (*widget, error) { return nil, nil })
	require.NoError(t, err)
	assert.Equal(t, reflect.TypeFor[*widget](), got)
}

func TestBridge(t *testing.T) {
	t.Run("returns the fetched value", func(t *testing.T) {
		t.Parallel()

		w := &widget{id: 9}
		fn, ok := bridge(reflect.TypeFor[*widget](), func(sink func([]reflect.Value)) error {
			sink([]reflect.Value{reflect.ValueOf(w)})
			return nil
		}).(func() (*widget, error))
		require.True(t, ok)

		got, err := fn()
		require.NoError(t, err)
		assert.Same(t, w, got)
	})

	t.Run("passes fetch errors through", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("root failed")
		fn := bridge(reflect.TypeFor[*widget](), func(func([]reflect.Value)) error {
			return boom
		}).(func() (*widget, error))

		got, err := fn()
		assert.Nil(t, got)
		assert.ErrorIs(t, err, boom)
	})
}

func TestDependencies(t *testing.T) {
	t.Parallel()

	type params struct {
		dig.In

		Widget *widget
		Named  *widget   `name:"other"`
		Group  []*widget `group:"widgets"`
		Count  int       `optional:"true"`
	}

	deps := dependencies(func(string, params) *widget { return nil })
	assert.Equal(t, []reflect.Type{
		reflect.TypeFor[string](),
		reflect.TypeFor[*widget](),
		reflect.TypeFor[int](),
	}, deps)
}

func TestCheckCycle(t *testing.T) {
	t.Parallel()

	widgetType := reflect.TypeFor[*widget]()
	primaries := map[reflect.Type]any{
		reflect.TypeFor[string](): func(*widget) string { return "" },
		reflect.TypeFor[int]():    func() int { return 0 },
	}
	lookup := func(t reflect.Type) any { return primaries[t] }

	err := checkCycle(widgetType, func(string) *widget { return nil }, lookup)
	assert.ErrorIs(t, err, ErrConstructorCycle)

	assert.NoError(t, checkCycle(widgetType, func(int) *widget { return nil }, lookup))
}

func TestServiceTypeOf_Reserved(t *testing.T) {
	t.Parallel()

	_, err := serviceTypeOf(func() context.Context { return context.Background() })
	assert.ErrorIs(t, err, ErrConstructorReserved)
}
