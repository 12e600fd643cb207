package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"time"

	"primitives-gateway/primitives/application"
	"primitives-gateway/primitives/domain"
)

type KeyFunc func(r *http.Request) string

type Options struct {
	Store               domain.LimiterStore
	Stats               domain.StatsStore
	KeyFn               KeyFunc
	KeyHeader           string
	TrustXForwardedFor  bool
	RejectStatus        int
	RetryAfter          time.Duration
	Cost                int
	AddRateLimitHeaders bool
}

// rateInfo é implementado por infra.Store.
type rateInfo interface {
	Capacity() int
	RefillRate() float64
}

func DefaultKeyFunc(keyHeader string, trustXFF bool) KeyFunc {
	return func(r *http.Request) string {
		if keyHeader != "" {
			if v := strings.TrimSpace(r.Header.Get(keyHeader)); v != "" {
				return v
			}
		}

		if trustXFF {
			// primeiro IP do X-Forwarded-For é o cliente original
			if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
				first, _, _ := strings.Cut(xff, ",")
				if ip := strings.TrimSpace(first); ip != "" {
					return ip
				}
			}
		}

		host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
		if err == nil && host != "" {
			return host
		}
		if r.RemoteAddr != "" {
			return r.RemoteAddr
		}
		return "unknown"
	}
}

func Middleware(opts Options) func(next http.Handler) http.Handler {
	if opts.RejectStatus == 0 {
		opts.RejectStatus = http.StatusTooManyRequests
	}
	if opts.RetryAfter == 0 {
		opts.RetryAfter = 1 * time.Second
	}
	if opts.KeyFn == nil {
		opts.KeyFn = DefaultKeyFunc(opts.KeyHeader, opts.TrustXForwardedFor)
	}

	svc := application.AdmissionService{
		Store:      opts.Store,
		Stats:      opts.Stats,
		Cost:       opts.Cost,
		RetryAfter: opts.RetryAfter,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := opts.KeyFn(r)

			if opts.AddRateLimitHeaders {
				w.Header().Set("X-RateLimit-Key", key)
				if ri, ok := opts.Store.(rateInfo); ok {
					w.Header().Set("X-RateLimit-Capacity", formatInt(ri.Capacity()))
					w.Header().Set("X-RateLimit-Refill", formatFloat(ri.RefillRate()))
				}
			}

			node, _ := NodeFromContext(r.Context())
			dec := svc.Decide(r.Context(), domain.Key(key), node)
			if !dec.Allowed {
				w.Header().Set("Retry-After", formatInt(int(dec.RetryAfter.Seconds())))
				http.Error(w, http.StatusText(opts.RejectStatus), opts.RejectStatus)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
