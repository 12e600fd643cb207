package application

import (
	"context"
	"testing"
	"time"

	"primitives-gateway/primitives/domain"
)

type fakeLimiter struct {
	allow bool
	got   *int
}

func (f fakeLimiter) TryConsume(n int) bool {
	if f.got != nil {
		*f.got = n
	}
	return f.allow
}

type fakeStore struct {
	lim domain.Limiter
}

func (s fakeStore) Get(domain.Key) domain.Limiter { return s.lim }

type recordingStats struct {
	events []domain.StatsEvent
}

func (r *recordingStats) Record(_ context.Context, ev domain.StatsEvent) error {
	r.events = append(r.events, ev)
	return nil
}

func TestAdmissionService_Decide_AllowsWhenNoStore(t *testing.T) {
	svc := AdmissionService{}
	dec := svc.Decide(context.Background(), "k", "")
	if !dec.Allowed {
		t.Fatalf("expected allowed")
	}
	if dec.RetryAfter != 0 {
		t.Fatalf("expected RetryAfter=0 when allowed, got %s", dec.RetryAfter)
	}
}

func TestAdmissionService_Decide_AllowsWhenLimiterAllows(t *testing.T) {
	svc := AdmissionService{Store: fakeStore{lim: fakeLimiter{allow: true}}, RetryAfter: 5 * time.Second}
	dec := svc.Decide(context.Background(), "k", "")
	if !dec.Allowed {
		t.Fatalf("expected allowed")
	}
}

func TestAdmissionService_Decide_BlocksWithRetryAfterDefault(t *testing.T) {
	svc := AdmissionService{Store: fakeStore{lim: fakeLimiter{allow: false}}}
	dec := svc.Decide(context.Background(), "k", "")
	if dec.Allowed {
		t.Fatalf("expected blocked")
	}
	if dec.RetryAfter != 1*time.Second {
		t.Fatalf("expected default RetryAfter=1s, got %s", dec.RetryAfter)
	}
}

func TestAdmissionService_Decide_UsesConfiguredCost(t *testing.T) {
	var got int
	svc := AdmissionService{Store: fakeStore{lim: fakeLimiter{allow: true, got: &got}}, Cost: 3}
	svc.Decide(context.Background(), "k", "")
	if got != 3 {
		t.Fatalf("expected TryConsume(3), got TryConsume(%d)", got)
	}

	svc.Cost = 0
	svc.Decide(context.Background(), "k", "")
	if got != 1 {
		t.Fatalf("expected default cost 1, got %d", got)
	}
}

func TestAdmissionService_Decide_RecordsStats(t *testing.T) {
	stats := &recordingStats{}
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	svc := AdmissionService{
		Store: fakeStore{lim: fakeLimiter{allow: false}},
		Stats: stats,
		Now:   func() time.Time { return at },
	}

	svc.Decide(context.Background(), "client-1", "node-a")

	if len(stats.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(stats.events))
	}
	ev := stats.events[0]
	if ev.Key != "client-1" || ev.Allowed || ev.Node != "node-a" || ev.Cost != 1 || !ev.At.Equal(at) {
		t.Fatalf("unexpected event %+v", ev)
	}
}
