package audit

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestRedisSinkWriteAppendsRecord(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	sink := NewRedisSink(client, "", time.Hour)
	record := Record{RecordID: "r1", ScanID: "s1", Timestamp: time.Now().UTC(), Hash: "abc"}
	require.NoError(t, sink.Write(record))

	raw, err := client.LIndex(context.Background(), "scanengine:audit:records", 0).Result()
	require.NoError(t, err)

	var got Record
	require.NoError(t, json.Unmarshal([]byte(raw), &got))
	require.Equal(t, "r1", got.RecordID)

	ttl := mr.TTL("scanengine:audit:records")
	require.Greater(t, ttl, time.Duration(0))
}

func TestRedisSinkWritePropagatesError(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	mr.Close()

	sink := NewRedisSink(client, "custom:key", 0)
	require.Error(t, sink.Write(Record{RecordID: "r2"}))
}
