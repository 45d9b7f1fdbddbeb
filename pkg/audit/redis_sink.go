package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisSink mirrors every sealed Record into a Redis list, giving
// downstream consumers (a live audit-tail dashboard, a replication job) a
// durable but lightweight feed independent of the Postgres sink's
// relational store.
type RedisSink struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedisSink wraps an existing *redis.Client. ttl is applied to the list
// key on every write so an unattended deployment doesn't grow the feed
// unboundedly; pass 0 to keep records forever.
func NewRedisSink(client *redis.Client, key string, ttl time.Duration) *RedisSink {
	if key == "" {
		key = "scanengine:audit:records"
	}
	return &RedisSink{client: client, key: key, ttl: ttl}
}

// Write appends a Record's JSON encoding to the configured list key.
func (s *RedisSink) Write(record Record) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("audit: failed to marshal record for redis: %w", err)
	}

	ctx := context.Background()
	if err := s.client.RPush(ctx, s.key, payload).Err(); err != nil {
		return fmt.Errorf("audit: redis rpush failed: %w", err)
	}
	if s.ttl > 0 {
		// Best-effort: an expire failure here does not invalidate the write
		// that already succeeded.
		_ = s.client.Expire(ctx, s.key, s.ttl).Err()
	}
	return nil
}
