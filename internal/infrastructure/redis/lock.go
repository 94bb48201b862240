package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Lua script for safe lock release (only the owner can release).
var releaseLockScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

// TransactionLock serializes processing of one saga transaction across worker
// instances. The bus already orders messages per partition; the lock guards
// against a rebalance handing the same uncommitted message to two consumers.
type TransactionLock struct {
	client   *redis.Client
	key      string
	value    string
	ttl      time.Duration
	acquired bool
}

// NewTransactionLock creates a lock for the given transaction id.
func NewTransactionLock(client *redis.Client, transactionID string, ttl time.Duration) *TransactionLock {
	return &TransactionLock{
		client: client,
		key:    fmt.Sprintf("lock:saga:%s", transactionID),
		value:  uuid.New().String(),
		ttl:    ttl,
	}
}

// Acquire attempts to take the lock without blocking.
func (l *TransactionLock) Acquire(ctx context.Context) (bool, error) {
	success, err := l.client.SetNX(ctx, l.key, l.value, l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire lock: %w", err)
	}
	l.acquired = success
	return success, nil
}

// Release releases the lock if this instance holds it.
func (l *TransactionLock) Release(ctx context.Context) error {
	if !l.acquired {
		return nil
	}

	result, err := releaseLockScript.Run(ctx, l.client, []string{l.key}, l.value).Result()
	if err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	if val, ok := result.(int64); !ok || val == 0 {
		return errors.New("lock not held or already released")
	}

	l.acquired = false
	return nil
}
