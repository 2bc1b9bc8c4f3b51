package core

import "context"

type contextKey struct{}

// RequestMeta identifies the client behind an operation for the audit log.
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

// ContextWithRequestMeta attaches request metadata to ctx.
func ContextWithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, contextKey{}, meta)
}

// RequestMetaFromContext returns the metadata attached to ctx, or the zero
// value for contexts that did not come from a request (CLI, tests).
func RequestMetaFromContext(ctx context.Context) RequestMeta {
	meta, _ := ctx.Value(contextKey{}).(RequestMeta)
	return meta
}
