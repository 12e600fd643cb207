package main

import (
	"testing"
	"time"
)

func TestParseUpstreams(t *testing.T) {
	got, err := parseUpstreams(" http://a:8081, http://b:8082 ,")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].Host != "a:8081" || got[1].Host != "b:8082" {
		t.Fatalf("unexpected upstreams %v", got)
	}
}

func TestParseUpstreamsRejectsBadInput(t *testing.T) {
	for _, raw := range []string{"", "not a url", "http://a:1,http://a:1"} {
		if _, err := parseUpstreams(raw); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func TestReadConfigDefaults(t *testing.T) {
	t.Setenv("UPSTREAM_URLS", "http://a:8081")

	cfg, err := readConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.rateCapacity != 20 || cfg.rateRefill != 10 || cfg.ringVNodes != 100 {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.retryAfter != time.Second {
		t.Fatalf("expected RETRY_AFTER default 1s, got %s", cfg.retryAfter)
	}
}

func TestReadConfigValidation(t *testing.T) {
	cases := map[string]string{
		"RING_VNODES":        "0",
		"RATE_CAPACITY":      "-1",
		"RATE_REFILL":        "0",
		"RATE_COST":          "50",
		"RATE_MAX_KEYS":      "0",
		"RATE_STATS_ENABLED": "true",
	}
	for k, v := range cases {
		t.Run(k, func(t *testing.T) {
			t.Setenv("UPSTREAM_URLS", "http://a:8081")
			t.Setenv(k, v)
			if _, err := readConfig(); err == nil {
				t.Fatalf("expected error for %s=%s", k, v)
			}
		})
	}
}
