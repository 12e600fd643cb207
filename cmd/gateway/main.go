package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"primitives-gateway/middleware/ratelimit"
	"primitives-gateway/primitives/domain"
	"primitives-gateway/primitives/infra"

	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := readConfig()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	ring, err := infra.NewHashRing(cfg.ringVNodes)
	if err != nil {
		log.Fatalf("ring error: %v", err)
	}
	proxies := make(map[string]*httputil.ReverseProxy, len(cfg.upstreams))
	for _, target := range cfg.upstreams {
		node := target.Host
		proxy := httputil.NewSingleHostReverseProxy(target)
		proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
			log.Printf("proxy error node=%s: %v", node, err)
			http.Error(w, "bad gateway", http.StatusBadGateway)
		}
		proxies[node] = proxy
		ring.AddNode(node)
	}

	store, err := infra.NewStore(cfg.rateCapacity, cfg.rateRefill, infra.WithMaxKeys(cfg.rateMaxKeys))
	if err != nil {
		log.Fatalf("rate store error: %v", err)
	}

	var statsStore domain.StatsStore
	if cfg.rateStatsEnabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.rateStatsRedisAddr,
			Password: cfg.rateStatsRedisPassword,
			DB:       cfg.rateStatsRedisDB,
		})
		defer func() { _ = rdb.Close() }()

		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		_, err := rdb.Ping(pingCtx).Result()
		cancel()
		if err != nil {
			log.Fatalf("redis stats ping error: %v", err)
		}

		statsStore = infra.NewRedisStatsStore(
			rdb,
			infra.WithStatsPrefix(cfg.rateStatsPrefix),
			infra.WithStatsTTL(cfg.rateStatsTTL),
			infra.WithStatsBucket(cfg.rateStatsBucket),
			infra.WithStatsTrackKeys(cfg.rateStatsTrackKeys),
		)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	keyFn := ratelimit.DefaultKeyFunc(cfg.rateKeyHeader, cfg.trustXFF)

	h := http.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		node, _ := ratelimit.NodeFromContext(r.Context())
		proxy, ok := proxies[node]
		if !ok {
			http.Error(w, "no upstream available", http.StatusServiceUnavailable)
			return
		}
		proxy.ServeHTTP(w, r)
	}))
	if cfg.rateEnabled {
		h = ratelimit.Middleware(ratelimit.Options{
			Store:               store,
			Stats:               statsStore,
			KeyFn:               keyFn,
			RejectStatus:        http.StatusTooManyRequests,
			RetryAfter:          cfg.retryAfter,
			Cost:                cfg.rateCost,
			AddRateLimitHeaders: cfg.addHeaders,
		})(h)
	}
	h = ratelimit.RouteMiddleware(ratelimit.RouteOptions{
		Router:     ring,
		KeyFn:      keyFn,
		NodeHeader: cfg.nodeHeader,
	})(h)

	srv := &http.Server{
		Addr:              cfg.listenAddr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("gateway listening on %s -> %d upstreams %v", cfg.listenAddr, len(cfg.upstreams), ring.Nodes())
	log.Printf("ring: vnodes=%d positions=%d nodeHeader=%q", cfg.ringVNodes, ring.Len(), cfg.nodeHeader)
	log.Printf("rate: enabled=%v capacity=%d refill=%.3f cost=%d maxKeys=%d keyHeader=%q trustXFF=%v", cfg.rateEnabled, cfg.rateCapacity, cfg.rateRefill, cfg.rateCost, cfg.rateMaxKeys, cfg.rateKeyHeader, cfg.trustXFF)
	log.Printf("rate-stats: enabled=%v redisAddr=%q bucket=%q ttl=%s trackKeys=%v", cfg.rateStatsEnabled, cfg.rateStatsRedisAddr, cfg.rateStatsBucket, cfg.rateStatsTTL, cfg.rateStatsTrackKeys)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server error: %v", err)
	}
}

type config struct {
	listenAddr    string
	upstreams     []*url.URL
	ringVNodes    int
	nodeHeader    string
	rateEnabled   bool
	rateCapacity  int
	rateRefill    float64
	rateCost      int
	rateMaxKeys   int
	rateKeyHeader string
	trustXFF      bool
	retryAfter    time.Duration
	addHeaders    bool

	rateStatsEnabled       bool
	rateStatsRedisAddr     string
	rateStatsRedisPassword string
	rateStatsRedisDB       int
	rateStatsPrefix        string
	rateStatsTTL           time.Duration
	rateStatsBucket        string
	rateStatsTrackKeys     bool
}

func readConfig() (config, error) {
	cfg := config{}
	cfg.listenAddr = getenvDefault("LISTEN_ADDR", ":8080")
	cfg.ringVNodes = getenvIntDefault("RING_VNODES", infra.DefaultVirtualNodes)
	cfg.nodeHeader = getenvDefault("NODE_HEADER", "X-Upstream-Node")
	cfg.rateEnabled = getenvBoolDefault("RATE_ENABLED", true)
	cfg.rateCapacity = getenvIntDefault("RATE_CAPACITY", 20)
	cfg.rateRefill = getenvFloatDefault("RATE_REFILL", 10)
	cfg.rateCost = getenvIntDefault("RATE_COST", 1)
	cfg.rateMaxKeys = getenvIntDefault("RATE_MAX_KEYS", infra.DefaultMaxKeys)
	cfg.rateKeyHeader = os.Getenv("RATE_KEY_HEADER")
	cfg.trustXFF = getenvBoolDefault("TRUST_XFF", false)
	cfg.retryAfter = getenvDurationDefault("RETRY_AFTER", 1*time.Second)
	cfg.addHeaders = getenvBoolDefault("ADD_RATELIMIT_HEADERS", false)

	cfg.rateStatsEnabled = getenvBoolDefault("RATE_STATS_ENABLED", false)
	cfg.rateStatsRedisAddr = getenvDefault("RATE_STATS_REDIS_ADDR", "")
	cfg.rateStatsRedisPassword = os.Getenv("RATE_STATS_REDIS_PASSWORD")
	cfg.rateStatsRedisDB = getenvIntDefault("RATE_STATS_REDIS_DB", 0)
	cfg.rateStatsPrefix = getenvDefault("RATE_STATS_PREFIX", "admission:stats")
	cfg.rateStatsTTL = getenvDurationDefault("RATE_STATS_TTL", 24*time.Hour)
	cfg.rateStatsBucket = getenvDefault("RATE_STATS_BUCKET", "minute")
	cfg.rateStatsTrackKeys = getenvBoolDefault("RATE_STATS_TRACK_KEYS", false)

	upstreams, err := parseUpstreams(os.Getenv("UPSTREAM_URLS"))
	if err != nil {
		return config{}, err
	}
	cfg.upstreams = upstreams

	if cfg.rateStatsEnabled && strings.TrimSpace(cfg.rateStatsRedisAddr) == "" {
		return config{}, errors.New("RATE_STATS_REDIS_ADDR is required when RATE_STATS_ENABLED=true")
	}
	if cfg.ringVNodes <= 0 {
		return config{}, errors.New("RING_VNODES must be > 0")
	}
	if cfg.rateCapacity <= 0 {
		return config{}, errors.New("RATE_CAPACITY must be > 0")
	}
	if cfg.rateRefill <= 0 {
		return config{}, errors.New("RATE_REFILL must be > 0")
	}
	if cfg.rateCost <= 0 || cfg.rateCost > cfg.rateCapacity {
		return config{}, errors.New("RATE_COST must be between 1 and RATE_CAPACITY")
	}
	if cfg.rateMaxKeys <= 0 {
		return config{}, errors.New("RATE_MAX_KEYS must be > 0")
	}
	return cfg, nil
}

// parseUpstreams lê "http://a:8081,http://b:8082". O host:porta vira o id do nó no anel.
func parseUpstreams(raw string) ([]*url.URL, error) {
	var out []*url.URL
	seen := make(map[string]bool)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		u, err := url.Parse(part)
		if err != nil || u.Host == "" {
			return nil, errors.New("invalid upstream URL: " + part)
		}
		if seen[u.Host] {
			return nil, errors.New("duplicate upstream host: " + u.Host)
		}
		seen[u.Host] = true
		out = append(out, u)
	}
	if len(out) == 0 {
		return nil, errors.New("UPSTREAM_URLS is required")
	}
	return out, nil
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvIntDefault(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getenvFloatDefault(k string, def float64) float64 {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func getenvBoolDefault(k string, def bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getenvDurationDefault(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
