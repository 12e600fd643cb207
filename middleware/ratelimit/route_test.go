package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"primitives-gateway/primitives/infra"
)

func TestRouteMiddleware_StickyNodeInContext(t *testing.T) {
	ring, err := infra.NewHashRing(infra.DefaultVirtualNodes)
	if err != nil {
		t.Fatalf("ring: %v", err)
	}
	ring.AddNode("node1")
	ring.AddNode("node2")
	want, _ := ring.Route("client-7")

	var seen []string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		node, ok := NodeFromContext(r.Context())
		if !ok {
			t.Errorf("expected node in context")
		}
		seen = append(seen, node)
	})

	h := RouteMiddleware(RouteOptions{Router: ring, KeyHeader: "X-Api-Key", NodeHeader: "X-Upstream-Node"})(next)

	for i := 0; i < 3; i++ {
		w := serve(h, "10.0.0.1:1234", "X-Api-Key", "client-7")
		if got := w.Header().Get("X-Upstream-Node"); got != want {
			t.Fatalf("expected X-Upstream-Node=%q, got %q", want, got)
		}
	}
	for _, n := range seen {
		if n != want {
			t.Fatalf("expected every request on %q, got %v", want, seen)
		}
	}
}

func TestRouteMiddleware_EmptyRingIsUnavailable(t *testing.T) {
	ring, _ := infra.NewHashRing(10)

	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })
	h := RouteMiddleware(RouteOptions{Router: ring})(next)

	w := serve(h, "10.0.0.1:1234", "", "")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
	if called {
		t.Fatalf("next handler must not run without an upstream")
	}
}

func TestRouteMiddleware_NoRouterIsPassthrough(t *testing.T) {
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if _, ok := NodeFromContext(r.Context()); ok {
			t.Errorf("expected no node without router")
		}
	})
	RouteMiddleware(RouteOptions{})(next).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "http://example/", nil))
	if !called {
		t.Fatalf("expected next handler to run")
	}
}
