package storage

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisSlots keeps the session in redis so several clients on one host share it.
type RedisSlots struct {
	client *redis.Client
	keys   Keys
}

// NewRedisSlots prefixes both slot keys; the client is owned by the caller
// unless Close is called.
func NewRedisSlots(client *redis.Client, prefix string, keys Keys) *RedisSlots {
	return &RedisSlots{
		client: client,
		keys:   Keys{Token: prefix + keys.Token, Username: prefix + keys.Username},
	}
}

func (s *RedisSlots) Load(ctx context.Context) (Credentials, bool, error) {
	values, err := s.client.MGet(ctx, s.keys.Token, s.keys.Username).Result()
	if err != nil {
		return Credentials{}, false, fmt.Errorf("redis read session slots failed: %w", err)
	}
	creds := Credentials{Token: asString(values[0]), Username: asString(values[1])}
	if !creds.complete() {
		if creds.Token != "" || creds.Username != "" {
			if err := s.Clear(ctx); err != nil {
				return Credentials{}, false, err
			}
		}
		return Credentials{}, false, nil
	}
	return creds, true, nil
}

func (s *RedisSlots) Save(ctx context.Context, creds Credentials) error {
	if !creds.complete() {
		return ErrEmptyCredentials
	}
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.keys.Token, creds.Token, 0)
		pipe.Set(ctx, s.keys.Username, creds.Username, 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis write session slots failed: %w", err)
	}
	return nil
}

func (s *RedisSlots) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.keys.Token, s.keys.Username).Err(); err != nil {
		return fmt.Errorf("redis clear session slots failed: %w", err)
	}
	return nil
}

func (s *RedisSlots) Close() error {
	return s.client.Close()
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}
