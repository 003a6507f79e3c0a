package middleware

import (
	"context"

	"github.com/roach88/multistore/internal/ir"
	"github.com/roach88/multistore/internal/store"
)

// Chain composes mws into a single middleware. The first middleware in the
// list is the outermost wrapper.
func Chain(mws ...store.Middleware) store.Middleware {
	return func(ctx context.Context, state any, action ir.IRObject, p store.Plugins, next store.Next) (store.Outcome, error) {
		h := next
		for i := len(mws) - 1; i >= 0; i-- {
			mw, inner := mws[i], h
			h = func(ctx context.Context, state any, action ir.IRObject, p store.Plugins) (store.Outcome, error) {
				return mw(ctx, state, action, p, inner)
			}
		}
		return h(ctx, state, action, p)
	}
}

type flowTokenKey struct{}

// WithFlowToken returns a context carrying the dispatch call's flow token.
func WithFlowToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, flowTokenKey{}, token)
}

// FlowToken returns the flow token carried by ctx, or "".
func FlowToken(ctx context.Context) string {
	token, _ := ctx.Value(flowTokenKey{}).(string)
	return token
}
