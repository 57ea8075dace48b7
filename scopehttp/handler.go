package scopehttp

import (
	"net/http"

	"github.com/junioryono/digbridge"
	"go.uber.org/zap"
)

// ErrorHandler writes the response for a request that failed before the
// controller ran.
type ErrorHandler func(http.ResponseWriter, *http.Request, error)

type handlerConfig struct {
	recoverPanics  bool
	onPanic        func(http.ResponseWriter, *http.Request, any)
	onScopeError   ErrorHandler
	onResolveError ErrorHandler
	logger         *zap.Logger
}

// HandlerOption configures Handle.
type HandlerOption func(*handlerConfig)

// WithPanicRecovery recovers panics raised by the controller method.
func WithPanicRecovery(enabled bool) HandlerOption {
	return func(c *handlerConfig) { c.recoverPanics = enabled }
}

// WithPanicHandler sets what runs after a recovered panic.
func WithPanicHandler(h func(http.ResponseWriter, *http.Request, any)) HandlerOption {
	return func(c *handlerConfig) { c.onPanic = h }
}

// WithScopeErrorHandler handles requests that carry no live scope.
func WithScopeErrorHandler(h ErrorHandler) HandlerOption {
	return func(c *handlerConfig) { c.onScopeError = h }
}

// WithResolutionErrorHandler handles controllers that cannot be resolved.
func WithResolutionErrorHandler(h ErrorHandler) HandlerOption {
	return func(c *handlerConfig) { c.onResolveError = h }
}

// WithHandlerLogger sets the logger of the default handlers.
func WithHandlerLogger(l *zap.Logger) HandlerOption {
	return func(c *handlerConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

func newHandlerConfig(opts []HandlerOption) *handlerConfig {
	c := &handlerConfig{logger: zap.L()}
	for _, opt := range opts {
		opt(c)
	}

	logger := c.logger
	if c.onPanic == nil {
		c.onPanic = func(w http.ResponseWriter, r *http.Request, v any) {
			logger.Error("controller panicked",
				zap.String("path", r.URL.Path),
				zap.Any("panic", v))
			writeStatus(w, http.StatusInternalServerError)
		}
	}
	if c.onScopeError == nil {
		c.onScopeError = logAndFail(logger, "request has no scope")
	}
	if c.onResolveError == nil {
		c.onResolveError = logAndFail(logger, "failed to resolve controller")
	}

	return c
}

func logAndFail(logger *zap.Logger, msg string) ErrorHandler {
	return func(w http.ResponseWriter, r *http.Request, err error) {
		logger.Error(msg, zap.String("path", r.URL.Path), zap.Error(err))
		writeStatus(w, http.StatusInternalServerError)
	}
}

func writeStatus(w http.ResponseWriter, code int) {
	http.Error(w, http.StatusText(code), code)
}

// Handle adapts a controller method to an http.HandlerFunc. Each request
// resolves T from the scope ScopeMiddleware attached to it, so scoped
// controllers are built once per request.
//
//	type UserController interface {
//	    GetByID(http.ResponseWriter, *http.Request)
//	}
//
//	r.Get("/users/{id}", scopehttp.Handle(UserController.GetByID))
func Handle[T any](method func(T, http.ResponseWriter, *http.Request), opts ...HandlerOption) http.HandlerFunc {
	cfg := newHandlerConfig(opts)

	return func(w http.ResponseWriter, r *http.Request) {
		if cfg.recoverPanics {
			defer func() {
				if v := recover(); v != nil {
					cfg.onPanic(w, r, v)
				}
			}()
		}

		provider, err := FromRequest(r)
		if err != nil {
			cfg.onScopeError(w, r, err)
			return
		}

		controller, err := digbridge.Resolve[T](provider)
		if err != nil {
			cfg.onResolveError(w, r, err)
			return
		}

		method(controller, w, r)
	}
}
