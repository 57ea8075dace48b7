package digbridge_test

import (
	"testing"

	"github.com/junioryono/digbridge"
	"github.com/stretchr/testify/assert"
)

func TestRequestFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		req      digbridge.Request
		kind     digbridge.RequestKind
		typ      string
		elem     string
		rendered string
	}{
		{
			name:     "pointer",
			req:      digbridge.RequestFor(typeOf[*TService]()),
			kind:     digbridge.SingleRequest,
			typ:      "*digbridge_test.TService",
			rendered: "Single(*TService)",
		},
		{
			name:     "interface",
			req:      digbridge.RequestFor(typeOf[TInterface]()),
			kind:     digbridge.SingleRequest,
			typ:      "digbridge_test.TInterface",
			rendered: "Single(TInterface)",
		},
		{
			name:     "slice of interface",
			req:      digbridge.RequestFor(typeOf[[]TInterface]()),
			kind:     digbridge.AllOfRequest,
			typ:      "[]digbridge_test.TInterface",
			elem:     "digbridge_test.TInterface",
			rendered: "AllOf(TInterface)",
		},
		{
			name:     "explicit all of",
			req:      digbridge.AllOf(typeOf[*TService]()),
			kind:     digbridge.AllOfRequest,
			typ:      "[]*digbridge_test.TService",
			elem:     "*digbridge_test.TService",
			rendered: "AllOf(*TService)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.kind, tt.req.Kind())
			assert.Equal(t, tt.kind == digbridge.AllOfRequest, tt.req.IsAll())
			assert.Equal(t, tt.typ, tt.req.Type().String())
			if tt.elem == "" {
				assert.Nil(t, tt.req.Elem())
			} else {
				assert.Equal(t, tt.elem, tt.req.Elem().String())
			}
			assert.Equal(t, tt.rendered, tt.req.String())
		})
	}
}

func TestRequestKind_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Single", digbridge.SingleRequest.String())
	assert.Equal(t, "AllOf", digbridge.AllOfRequest.String())
	assert.Equal(t, "Unknown(7)", digbridge.RequestKind(7).String())
}

func TestRequestFor_NilType(t *testing.T) {
	t.Parallel()

	req := digbridge.RequestFor(nil)
	assert.False(t, req.IsAll())
	assert.Nil(t, req.Type())

	all := digbridge.AllOf(nil)
	assert.True(t, all.IsAll())
	assert.Nil(t, all.Type())
}
