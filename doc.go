// Package digbridge adapts an inversion-of-control container to the
// "type → instance" resolution contract a hosting framework expects, and
// makes the right scope active for every resolution.
//
// # Overview
//
// A ServiceProvider wraps a Container together with a current scope and an
// optional parent scope:
//   - GetService returns the instance, a typed slice for a slice type, or nil
//     when nothing is registered
//   - GetRequiredService returns the container's own error when nothing is
//     registered
//   - Close tears down the root scope and the container, once, but only for
//     the provider that owns them
//
// # Basic Usage
//
//	c := container.New()
//	_ = c.Provide(NewLogger)
//	_ = c.Provide(NewUserService, container.AsScoped())
//
//	provider := digbridge.NewServiceProvider(c)
//	defer provider.Close()
//
//	logger, err := digbridge.Resolve[*Logger](provider)
//
// # Scopes
//
// RootScope is the application-wide scope. Child scopes are created per
// logical operation and close the instances they own:
//
//	scope, err := provider.CreateScope(r.Context())
//	if err != nil {
//	    return err
//	}
//	defer scope.Close()
//
//	svc, err := digbridge.Resolve[*UserService](scope.ServiceProvider())
//
// # Scope Activation
//
// Each resolution runs with the provider's (current, parent) pair forced on
// the context handed to the container. Containers read it with
// ActivationFromContext. The activation is released when the call returns,
// whether it succeeded or not, and never leaks into other calls.
//
// # Sequences
//
// Asking for []T returns every registration of T in container order, or an
// empty slice:
//
//	handlers, err := digbridge.ResolveAll[Handler](provider)
//
// # Error Handling
//
// Optional lookups of unregistered types return nil without an error.
// Required lookups return the container's error unchanged; IsNotFound
// recognises the not-registered case.
package digbridge
