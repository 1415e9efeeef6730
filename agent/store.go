package agent

import "context"

type sessionKeyContext struct{}

const defaultSessionKey = "default"

// WithStateKey sets the routing key for per-session storage in the context.
func WithStateKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, sessionKeyContext{}, key)
}

// StateKeyFromContext gets the routing key from the context.
func StateKeyFromContext(ctx context.Context) (string, bool) {
	key, ok := ctx.Value(sessionKeyContext{}).(string)
	return key, ok && key != ""
}

func stateKeyOrDefault(ctx context.Context) string {
	if key, ok := StateKeyFromContext(ctx); ok {
		return key
	}
	return defaultSessionKey
}

// Store namespaces a Cache and routes keys through the context session key.
type Store[S any] struct {
	core      Cache[S]
	namespace string
}

func NewStore[S any](core Cache[S], namespace string) Store[S] {
	return Store[S]{core: core, namespace: namespace}
}

func (c Store[S]) key(ctx context.Context) string {
	return c.namespace + ":" + stateKeyOrDefault(ctx)
}

func (c Store[S]) Set(ctx context.Context, val S) error {
	return c.core.Set(ctx, c.key(ctx), val)
}

func (c Store[S]) Get(ctx context.Context) (S, bool, error) {
	return c.core.Get(ctx, c.key(ctx))
}

func (c Store[S]) Del(ctx context.Context) error {
	return c.core.Del(ctx, c.key(ctx))
}
