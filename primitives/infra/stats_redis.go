package infra

import (
	"context"
	"fmt"
	"strings"
	"time"

	"primitives-gateway/primitives/domain"

	"github.com/redis/go-redis/v9"
)

// RedisStatsStore grava os contadores de admissão em hashes do Redis:
//
//	<prefix>:total                 allowed | denied | tokens
//	<prefix>:minute:<YYYYMMDDhhmm> allowed | denied | tokens   (com TTL)
//	<prefix>:node                  <node>:allowed | <node>:denied
//	<prefix>:key:<key>             allowed | denied            (com TTL, opcional)
type RedisStatsStore struct {
	rdb redis.Cmdable

	prefix string
	// ttl vale só para as séries por minuto e por key; total não expira.
	ttl time.Duration

	bucket string // "minute" (padrão) ou "none"

	trackKeys bool
}

type RedisStatsOption func(*RedisStatsStore)

func WithStatsPrefix(prefix string) RedisStatsOption {
	return func(s *RedisStatsStore) {
		s.prefix = strings.Trim(prefix, ":")
	}
}

func WithStatsTTL(d time.Duration) RedisStatsOption {
	return func(s *RedisStatsStore) { s.ttl = d }
}

func WithStatsBucket(bucket string) RedisStatsOption {
	return func(s *RedisStatsStore) { s.bucket = strings.ToLower(strings.TrimSpace(bucket)) }
}

func WithStatsTrackKeys(track bool) RedisStatsOption {
	return func(s *RedisStatsStore) { s.trackKeys = track }
}

func NewRedisStatsStore(rdb redis.Cmdable, opts ...RedisStatsOption) *RedisStatsStore {
	s := &RedisStatsStore{
		rdb:    rdb,
		prefix: "admission:stats",
		ttl:    24 * time.Hour,
		bucket: "minute",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStatsStore) Record(ctx context.Context, ev domain.StatsEvent) error {
	if s == nil || s.rdb == nil {
		return nil
	}

	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}

	field := "denied"
	if ev.Allowed {
		field = "allowed"
	}

	pipe := s.rdb.Pipeline()
	incr := func(key string) {
		pipe.HIncrBy(ctx, key, field, 1)
		if ev.Allowed && ev.Cost > 0 {
			pipe.HIncrBy(ctx, key, "tokens", int64(ev.Cost))
		}
	}

	incr(s.prefix + ":total")

	if s.bucket == "minute" {
		bucketKey := fmt.Sprintf("%s:minute:%s", s.prefix, at.UTC().Format("200601021504"))
		incr(bucketKey)
		if s.ttl > 0 {
			pipe.Expire(ctx, bucketKey, s.ttl)
		}
	}

	if node := strings.TrimSpace(ev.Node); node != "" {
		pipe.HIncrBy(ctx, s.prefix+":node", node+":"+field, 1)
	}

	if s.trackKeys {
		if k := strings.TrimSpace(string(ev.Key)); k != "" {
			keyKey := s.prefix + ":key:" + k
			pipe.HIncrBy(ctx, keyKey, field, 1)
			if s.ttl > 0 {
				pipe.Expire(ctx, keyKey, s.ttl)
			}
		}
	}

	_, err := pipe.Exec(ctx)
	return err
}
