package container

import (
	"go.uber.org/dig"
	"go.uber.org/zap"
)

// Option configures a Container.
type Option interface {
	apply(*options)
}

type options struct {
	logger  *zap.Logger
	digOpts []dig.Option
}

type optionFunc func(*options)

func (f optionFunc) apply(opts *options) {
	f(opts)
}

// WithLogger sets the logger used for registration and scope events.
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(opts *options) {
		if l != nil {
			opts.logger = l
		}
	})
}

// WithDryRun validates registrations without invoking constructors.
// Resolutions return zero values.
func WithDryRun(dryRun bool) Option {
	return optionFunc(func(opts *options) {
		opts.digOpts = append(opts.digOpts, dig.DryRun(dryRun))
	})
}

// WithPanicRecovery turns panics raised by constructors into resolution
// errors instead of crashing the caller.
func WithPanicRecovery() Option {
	return optionFunc(func(opts *options) {
		opts.digOpts = append(opts.digOpts, dig.RecoverFromPanics())
	})
}

// ProvideOption configures a single registration.
type ProvideOption interface {
	applyProvide(*provideOptions)
}

type provideOptions struct {
	lifetime Lifetime
}

type provideOptionFunc func(*provideOptions)

func (f provideOptionFunc) applyProvide(opts *provideOptions) {
	f(opts)
}

// WithLifetime sets the lifetime of the registration.
func WithLifetime(l Lifetime) ProvideOption {
	return provideOptionFunc(func(opts *provideOptions) {
		opts.lifetime = l
	})
}

// AsSingleton registers a service built once per container. This is the default.
func AsSingleton() ProvideOption {
	return WithLifetime(Singleton)
}

// AsScoped registers a service built once per scope.
func AsScoped() ProvideOption {
	return WithLifetime(Scoped)
}
