package digbridge

import "context"

// Activation is the scope pair a single resolution runs under.
// Containers read it from the resolution context with ActivationFromContext.
type Activation struct {
	// Current is the scope whose scoped instances are visible.
	Current Scope

	// Parent is the scope Current was created from, or nil.
	Parent Scope
}

type activationContextKey struct{}

// ActivationFromContext returns the activation forced on ctx.
// When none is present it returns the root activation and false.
func ActivationFromContext(ctx context.Context) (Activation, bool) {
	if ctx != nil {
		if act, ok := ctx.Value(activationContextKey{}).(Activation); ok {
			return act, true
		}
	}

	return Activation{Current: root}, false
}

// ForceScope makes (current, parent) the active scope pair for resolutions
// performed with the returned context. The cancel func releases the
// activation and must be called once the resolution is over, typically with
// defer. A nil current means the root scope.
//
// Example:
//
//	ctx, release := digbridge.ForceScope(ctx, scope, scope.Parent())
//	defer release()
//
//	svc, err := container.Resolve(ctx, serviceType)
func ForceScope(ctx context.Context, current, parent Scope) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}

	if current == nil {
		current = root
	}

	ctx = context.WithValue(ctx, activationContextKey{}, Activation{
		Current: current,
		Parent:  parent,
	})

	return context.WithCancel(ctx)
}

// forcedScope is the guard a ServiceProvider holds around one resolution.
type forcedScope struct {
	ctx     context.Context
	release context.CancelFunc
}

// forceScope activates (current, parent) on top of the current scope's own
// context, so values and cancellation of a request scope flow into the
// resolution.
func forceScope(current, parent Scope) *forcedScope {
	if current == nil {
		current = root
	}

	ctx, release := ForceScope(current.Context(), current, parent)
	return &forcedScope{ctx: ctx, release: release}
}
