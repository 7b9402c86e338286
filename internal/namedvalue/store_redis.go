// Copyright (c) 2026 Kartei. All rights reserved.
// Author: dev@kartei.app

package namedvalue

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// keyPrefix namespaces all named values inside the shared Redis instance.
const keyPrefix = "kartei:nv:"

// RedisStore implements [Store] on top of go-redis.
//
// Counters use INCRBY/DECRBY so concurrent mutations never lose updates.
// An absent counter behaves as zero for both directions, which keeps
// increment and decrement symmetric.
type RedisStore struct {
	client *redis.Client
}

// Compile-time interface check.
var _ Store = (*RedisStore)(nil)

// NewRedisStore wraps an existing Redis client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// key builds the namespaced Redis key for a value name.
func key(name string) string {
	return keyPrefix + name
}

// Get returns the value and whether the name exists.
func (store *RedisStore) Get(ctx context.Context, name string) (string, bool, error) {
	value, err := store.client.Get(ctx, key(name)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("namedvalue: get %q: %w", name, err)
	}
	return value, true, nil
}

// Set stores a scalar value under the name.
func (store *RedisStore) Set(ctx context.Context, name, value string) error {
	if err := store.client.Set(ctx, key(name), value, 0).Err(); err != nil {
		return fmt.Errorf("namedvalue: set %q: %w", name, err)
	}
	return nil
}

// GetInt returns the integer value and whether the name exists.
func (store *RedisStore) GetInt(ctx context.Context, name string) (int64, bool, error) {
	raw, found, err := store.Get(ctx, name)
	if err != nil || !found {
		return 0, found, err
	}

	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("namedvalue: %q holds non-integer value %q", name, raw)
	}
	return value, true, nil
}

// SetInt stores an integer value under the name.
func (store *RedisStore) SetInt(ctx context.Context, name string, value int64) error {
	return store.Set(ctx, name, strconv.FormatInt(value, 10))
}

// Increment atomically adds one to the counter and returns the new value.
func (store *RedisStore) Increment(ctx context.Context, name string) (int64, error) {
	value, err := store.client.IncrBy(ctx, key(name), 1).Result()
	if err != nil {
		return 0, fmt.Errorf("namedvalue: increment %q: %w", name, err)
	}
	return value, nil
}

// Decrement atomically subtracts one from the counter and returns the new value.
func (store *RedisStore) Decrement(ctx context.Context, name string) (int64, error) {
	value, err := store.client.DecrBy(ctx, key(name), 1).Result()
	if err != nil {
		return 0, fmt.Errorf("namedvalue: decrement %q: %w", name, err)
	}
	return value, nil
}

// AddMembers adds members to a set-valued name.
func (store *RedisStore) AddMembers(ctx context.Context, name string, members ...string) error {
	if len(members) == 0 {
		return nil
	}

	args := make([]interface{}, len(members))
	for i, member := range members {
		args[i] = member
	}

	if err := store.client.SAdd(ctx, key(name), args...).Err(); err != nil {
		return fmt.Errorf("namedvalue: add members %q: %w", name, err)
	}
	return nil
}

// Members returns the member set and whether the name exists.
func (store *RedisStore) Members(ctx context.Context, name string) ([]string, bool, error) {
	members, err := store.client.SMembers(ctx, key(name)).Result()
	if err != nil {
		return nil, false, fmt.Errorf("namedvalue: members %q: %w", name, err)
	}

	// SMEMBERS on an absent key returns an empty slice, which is
	// indistinguishable from an empty set. Treat empty as absent so
	// callers fall back to recomputation.
	if len(members) == 0 {
		return nil, false, nil
	}
	return members, true, nil
}

// ReplaceMembers atomically replaces the whole member set.
func (store *RedisStore) ReplaceMembers(ctx context.Context, name string, members ...string) error {
	pipe := store.client.TxPipeline()
	pipe.Del(ctx, key(name))

	if len(members) > 0 {
		args := make([]interface{}, len(members))
		for i, member := range members {
			args[i] = member
		}
		pipe.SAdd(ctx, key(name), args...)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("namedvalue: replace members %q: %w", name, err)
	}
	return nil
}

// Delete removes the name.
func (store *RedisStore) Delete(ctx context.Context, name string) error {
	if err := store.client.Del(ctx, key(name)).Err(); err != nil {
		return fmt.Errorf("namedvalue: delete %q: %w", name, err)
	}
	return nil
}
