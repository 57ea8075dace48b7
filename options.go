package digbridge

import "go.uber.org/zap"

// ProviderOption configures a ServiceProvider.
type ProviderOption interface {
	apply(*providerOptions)
}

// providerOptions holds provider configuration.
type providerOptions struct {
	scope  Scope
	parent Scope
	logger *zap.Logger
}

// providerOptionFunc adapts a function to ProviderOption.
type providerOptionFunc func(*providerOptions)

func (f providerOptionFunc) apply(opts *providerOptions) {
	f(opts)
}

// WithScope sets the provider's current scope.
// Without it, or with a nil scope, the provider uses the root scope and owns
// the container.
func WithScope(s Scope) ProviderOption {
	return providerOptionFunc(func(opts *providerOptions) {
		opts.scope = s
	})
}

// WithParentScope sets the scope the current scope was created from.
func WithParentScope(s Scope) ProviderOption {
	return providerOptionFunc(func(opts *providerOptions) {
		opts.parent = s
	})
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *zap.Logger) ProviderOption {
	return providerOptionFunc(func(opts *providerOptions) {
		if l != nil {
			opts.logger = l
		}
	})
}
