// Package lambda runs an http.Handler as an API Gateway proxy integration.
//
// It translates events.APIGatewayProxyRequest envelopes into *http.Request
// values, captures what the handler writes, and translates the result back
// into an events.APIGatewayProxyResponse. The application behind the handler
// is built lazily, once per container, by a HandlerCache.
package lambda

import (
	"context"
	"net/http"
	"time"
)

// Response is the captured result of serving one request.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// DispatchFunc serves a request and reports a failure instead of writing it.
type DispatchFunc func(w http.ResponseWriter, r *http.Request) error

// EntryFunc wraps a dispatch function with the request entry chain (CORS,
// error boundary) shared by every run mode.
type EntryFunc func(dispatch DispatchFunc) http.Handler

// Invocation describes the platform invocation a request belongs to.
type Invocation struct {
	RequestID   string
	FunctionARN string
	Deadline    time.Time
}

// Remaining reports the time budget left before the platform deadline, or
// zero when no deadline is known.
func (i Invocation) Remaining() time.Duration {
	if i.Deadline.IsZero() {
		return 0
	}
	return time.Until(i.Deadline)
}

type invocationKey struct{}

// WithInvocation returns a copy of ctx carrying inv.
func WithInvocation(ctx context.Context, inv Invocation) context.Context {
	return context.WithValue(ctx, invocationKey{}, inv)
}

// InvocationFromContext returns the invocation stored in ctx, if any.
func InvocationFromContext(ctx context.Context) (Invocation, bool) {
	inv, ok := ctx.Value(invocationKey{}).(Invocation)
	return inv, ok
}
