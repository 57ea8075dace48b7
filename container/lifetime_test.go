package container_test

import (
	"testing"

	"github.com/junioryono/digbridge/container"
	"github.com/stretchr/testify/assert"
)

func TestLifetime(t *testing.T) {
	t.Parallel()

	tests := []struct {
		lifetime container.Lifetime
		want     string
		valid    bool
	}{
		{container.Singleton, "Singleton", true},
		{container.Scoped, "Scoped", true},
		{container.Lifetime(-1), "Lifetime(-1)", false},
		{container.Lifetime(99), "Lifetime(99)", false},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, tt.lifetime.String())
			assert.Equal(t, tt.valid, tt.lifetime.IsValid())
		})
	}
}

func TestLifetime_InvalidRegistration(t *testing.T) {
	t.Parallel()

	c := container.New()
	t.Cleanup(func() { _ = c.Close() })

	err := c.Provide(func() *Database { return &Database{} }, container.WithLifetime(container.Lifetime(7)))
	assert.ErrorContains(t, err, "invalid service lifetime: Lifetime(7)")
}
