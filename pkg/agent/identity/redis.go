package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore persists identity snapshots in Redis so a worker restart can
// resume a call in progress. Keys expire after the TTL as a safety net for
// calls that never reach a clean end.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &RedisStore{client: client, ttl: ttl}
}

func sessionKey(callID string) string {
	return "aria:session:" + callID
}

func (r *RedisStore) Save(ctx context.Context, callID string, snap Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal identity snapshot: %w", err)
	}
	if err := r.client.Set(ctx, sessionKey(callID), payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("save identity snapshot: %w", err)
	}
	return nil
}

func (r *RedisStore) Load(ctx context.Context, callID string) (Snapshot, bool, error) {
	payload, err := r.client.Get(ctx, sessionKey(callID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Snapshot{}, false, nil
		}
		return Snapshot{}, false, fmt.Errorf("load identity snapshot: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return Snapshot{}, false, fmt.Errorf("decode identity snapshot: %w", err)
	}
	return snap, true, nil
}

func (r *RedisStore) Delete(ctx context.Context, callID string) error {
	if err := r.client.Del(ctx, sessionKey(callID)).Err(); err != nil {
		return fmt.Errorf("delete identity snapshot: %w", err)
	}
	return nil
}
