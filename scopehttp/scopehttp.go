// Package scopehttp provides net/http middleware that runs every request in
// its own digbridge scope.
//
// The middleware works with any router built on net/http handlers, such as
// chi or the standard ServeMux.
//
// Example usage:
//
//	provider := digbridge.NewServiceProvider(c)
//	defer provider.Close()
//
//	r := chi.NewRouter()
//	r.Use(scopehttp.ScopeMiddleware(provider))
//
//	r.Get("/users/{id}", scopehttp.Handle(UserController.GetByID))
package scopehttp

import (
	"net/http"

	"github.com/junioryono/digbridge"
	"go.uber.org/zap"
)

// Config holds the configuration for the scope middleware.
type Config struct {
	// OnScopeError answers requests whose scope could not be created.
	// The default logs and responds 500.
	OnScopeError ErrorHandler

	// OnCloseError receives failures to close a request scope, after the
	// response was written. The default logs them.
	OnCloseError func(*http.Request, error)

	Logger *zap.Logger
}

// Option configures the scope middleware.
type Option func(*Config)

// WithErrorHandler sets the handler for scope creation failures.
func WithErrorHandler(h ErrorHandler) Option {
	return func(c *Config) { c.OnScopeError = h }
}

// WithCloseErrorHandler sets the handler for scope close failures.
func WithCloseErrorHandler(h func(*http.Request, error)) Option {
	return func(c *Config) { c.OnCloseError = h }
}

// WithLogger sets the logger of the default handlers.
func WithLogger(l *zap.Logger) Option {
	return func(c *Config) {
		if l != nil {
			c.Logger = l
		}
	}
}

func newConfig(opts []Option) *Config {
	c := &Config{Logger: zap.L()}
	for _, opt := range opts {
		opt(c)
	}

	if c.OnScopeError == nil {
		c.OnScopeError = logAndFail(c.Logger, "failed to create request scope")
	}

	if c.OnCloseError == nil {
		logger := c.Logger
		c.OnCloseError = func(r *http.Request, err error) {
			logger.Error("failed to close request scope",
				zap.String("path", r.URL.Path),
				zap.Error(err))
		}
	}

	return c
}

// ScopeMiddleware creates a middleware that creates a child scope of
// provider for each request. The request context is replaced with the scope
// context, so handlers reach the scope with FromRequest or
// digbridge.ScopeFromContext.
//
// The scope is closed when the handler returns.
func ScopeMiddleware(provider *digbridge.ServiceProvider, opts ...Option) func(http.Handler) http.Handler {
	cfg := newConfig(opts)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if provider == nil {
				cfg.OnScopeError(w, r, digbridge.ErrProviderNil)
				return
			}

			scope, err := provider.CreateScope(r.Context())
			if err != nil {
				cfg.OnScopeError(w, r, err)
				return
			}

			defer func() {
				if err := scope.Close(); err != nil {
					cfg.OnCloseError(r, err)
				}
			}()

			next.ServeHTTP(w, r.WithContext(scope.Context()))
		})
	}
}

// FromRequest returns the provider bound to the request scope.
func FromRequest(r *http.Request) (*digbridge.ServiceProvider, error) {
	scope, err := digbridge.ScopeFromContext(r.Context())
	if err != nil {
		return nil, err
	}

	provider := scope.ServiceProvider()
	if provider == nil {
		return nil, digbridge.ErrProviderNil
	}

	return provider, nil
}
