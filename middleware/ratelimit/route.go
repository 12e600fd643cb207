package ratelimit

import (
	"context"
	"net/http"

	"primitives-gateway/primitives/domain"
)

type nodeCtxKey struct{}

// WithNode guarda no context o nó escolhido para a request.
func WithNode(ctx context.Context, node string) context.Context {
	return context.WithValue(ctx, nodeCtxKey{}, node)
}

func NodeFromContext(ctx context.Context) (string, bool) {
	node, ok := ctx.Value(nodeCtxKey{}).(string)
	return node, ok && node != ""
}

type RouteOptions struct {
	Router             domain.Router
	KeyFn              KeyFunc
	KeyHeader          string
	TrustXForwardedFor bool
	// NodeHeader, se preenchido, devolve o nó escolhido na resposta.
	NodeHeader string
}

// RouteMiddleware escolhe o nó dono da chave do cliente no anel, de modo que o mesmo
// cliente caia sempre no mesmo upstream enquanto a topologia não muda.
// Sem nós no anel responde 503.
func RouteMiddleware(opts RouteOptions) func(next http.Handler) http.Handler {
	if opts.Router == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	if opts.KeyFn == nil {
		opts.KeyFn = DefaultKeyFunc(opts.KeyHeader, opts.TrustXForwardedFor)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			node, ok := opts.Router.Route(opts.KeyFn(r))
			if !ok {
				http.Error(w, "no upstream available", http.StatusServiceUnavailable)
				return
			}
			if opts.NodeHeader != "" {
				w.Header().Set(opts.NodeHeader, node)
			}
			next.ServeHTTP(w, r.WithContext(WithNode(r.Context(), node)))
		})
	}
}
