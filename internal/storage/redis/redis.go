package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"photoprint-bot/internal/storage"

	"github.com/redis/go-redis/v9"
)

// maxTxRetries bounds optimistic-lock retries when two updates race on a key.
const maxTxRetries = 10

var ErrTxConflict = errors.New("conversation update conflict")

// Storage keeps conversations as JSON strings with a TTL, so abandoned
// conversations expire on their own.
type Storage struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

var _ storage.Store = (*Storage)(nil)

func New(client *redis.Client, ttl time.Duration) *Storage {
	return &Storage{
		client: client,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() {
	if s.client != nil {
		_ = s.client.Close()
	}
}

func (s *Storage) Get(ctx context.Context, userID int64) (storage.Conversation, error) {
	return s.load(ctx, s.client, userID)
}

func (s *Storage) Update(ctx context.Context, userID int64, fn func(*storage.Conversation) error) (storage.Conversation, error) {
	key := buildStateKey(userID)

	var result storage.Conversation
	txf := func(tx *redis.Tx) error {
		conv, err := s.load(ctx, tx, userID)
		if err != nil {
			return err
		}
		if err := fn(&conv); err != nil {
			return err
		}
		conv.UpdatedAt = s.now()

		data, err := json.Marshal(conv)
		if err != nil {
			return fmt.Errorf("marshal state: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, s.ttl)
			return nil
		})
		if err != nil {
			return err
		}
		result = conv
		return nil
	}

	for i := 0; i < maxTxRetries; i++ {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return storage.Conversation{}, err
		}
		return result, nil
	}
	return storage.Conversation{}, fmt.Errorf("user %d: %w", userID, ErrTxConflict)
}

func (s *Storage) Clear(ctx context.Context, userID int64) error {
	if err := s.client.Del(ctx, buildStateKey(userID)).Err(); err != nil {
		return fmt.Errorf("clear state: %w", err)
	}
	return nil
}

// Len counts tracked conversations with SCAN, so it is approximate under
// concurrent writes.
func (s *Storage) Len(ctx context.Context) (int, error) {
	var (
		cursor uint64
		count  int
	)
	for {
		keys, next, err := s.client.Scan(ctx, cursor, stateKeyPrefix+"*", 100).Result()
		if err != nil {
			return 0, fmt.Errorf("scan states: %w", err)
		}
		count += len(keys)
		cursor = next
		if cursor == 0 {
			return count, nil
		}
	}
}

func (s *Storage) load(ctx context.Context, c getter, userID int64) (storage.Conversation, error) {
	data, err := c.Get(ctx, buildStateKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return storage.NewConversation(), nil
	}
	if err != nil {
		return storage.Conversation{}, fmt.Errorf("get state: %w", err)
	}

	var conv storage.Conversation
	if err := json.Unmarshal(data, &conv); err != nil {
		return storage.Conversation{}, fmt.Errorf("unmarshal failure: %w", err)
	}
	return conv, nil
}

// getter is satisfied by both *redis.Client and *redis.Tx.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

const stateKeyPrefix = "state:"

func buildStateKey(userID int64) string {
	return fmt.Sprintf("%s%d", stateKeyPrefix, userID)
}
