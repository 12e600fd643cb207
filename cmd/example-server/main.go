package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"primitives-gateway/middleware/ratelimit"
	"primitives-gateway/primitives/application"
	"primitives-gateway/primitives/infra"
)

func main() {
	// Exemplo: mailbox com long-poll atrás do middleware de admissão (sem proxy)
	store, err := infra.NewStore(10, 5)
	if err != nil {
		log.Fatalf("rate store error: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	maxWait := getenvDurationDefault("MAILBOX_MAX_WAIT", 25*time.Second)
	api := newMailboxAPI(application.InboxService{
		Mailbox: infra.NewMailbox(),
		MaxWait: maxWait,
	})

	h := http.Handler(api.routes())
	h = ratelimit.Middleware(ratelimit.Options{
		Store:               store,
		KeyHeader:           "X-Api-Key", // ou vazio para usar IP
		TrustXForwardedFor:  true,
		AddRateLimitHeaders: true,
	})(h)

	addr := getenvDefault("LISTEN_ADDR", ":8081")

	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// o long-poll precisa caber no WriteTimeout
		WriteTimeout: maxWait + 5*time.Second,
		IdleTimeout:  90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("example server listening on %s (mailbox max wait %s)", addr, maxWait)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
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
