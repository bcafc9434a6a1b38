package mycontext

import (
	"context"
	"net/http"
)

// CtxTraceContext is a context key for the request trace id (used by mylog)
type CtxTraceContext struct{}

func ContextFromHTTPRequest(r *http.Request) context.Context {
	trace := r.Header.Get("X-Request-ID")

	return context.WithValue(r.Context(), CtxTraceContext{}, trace)
}
