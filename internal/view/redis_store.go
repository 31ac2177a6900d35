package view

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix     = "tracker:view:"
	redisUpdateRetries = 10
)

// ErrConflict is returned when an update keeps losing optimistic races
var ErrConflict = errors.New("concurrent update conflict")

// RedisStore keeps session state in Redis with a sliding TTL. Updates use
// WATCH/MULTI so concurrent requests of one session never overwrite each other.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

// NewRedisClient connects to Redis and verifies the connection
func NewRedisClient(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}

// NewRedisStore creates a RedisStore on an existing client
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// stringGetter is satisfied by both *redis.Client and *redis.Tx
type stringGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func sessionKey(sessionID string) string {
	return redisKeyPrefix + sessionID
}

// Load returns the session state
func (r *RedisStore) Load(ctx context.Context, sessionID string) (State, error) {
	return r.get(ctx, r.client, sessionKey(sessionID))
}

// Update applies fn inside an optimistic transaction, retrying on conflicts
func (r *RedisStore) Update(ctx context.Context, sessionID string, fn UpdateFunc) (State, error) {
	key := sessionKey(sessionID)

	var result State
	var fnErr error

	txf := func(tx *redis.Tx) error {
		current, err := r.get(ctx, tx, key)
		if err != nil {
			return err
		}

		next, err := fn(current)
		if err != nil {
			result, fnErr = current, err
			return nil
		}

		data, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("failed to marshal view state: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, r.ttl)
			return nil
		})
		if err != nil {
			return err
		}

		result, fnErr = next, nil
		return nil
	}

	for i := 0; i < redisUpdateRetries; i++ {
		err := r.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return State{}, fmt.Errorf("failed to update view state: %w", err)
		}
		return result, fnErr
	}

	return State{}, fmt.Errorf("session %s: %w", sessionID, ErrConflict)
}

// Delete forgets a session
func (r *RedisStore) Delete(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to delete view state: %w", err)
	}
	return nil
}

// Ping checks Redis connectivity
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisStore) get(ctx context.Context, c stringGetter, key string) (State, error) {
	data, err := c.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return NewState(), nil
	}
	if err != nil {
		return State{}, fmt.Errorf("failed to load view state: %w", err)
	}

	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return State{}, fmt.Errorf("failed to unmarshal view state: %w", err)
	}
	return s, nil
}
