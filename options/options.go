// Package options stores site-wide values, such as synced billing catalog
// collections, as JSON under string keys.
package options

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/redis/go-redis/v9"
)

var ErrNotFound = errors.New("options: not found")

type Store interface {
	// Get decodes the value stored under key into v. It returns
	// ErrNotFound if no value is stored.
	Get(ctx context.Context, key string, v any) error

	// Put stores v, encoded as JSON, under key.
	Put(ctx context.Context, key string, v any) error
}

// Memory is a Store held in memory. The zero value is ready to use.
type Memory struct {
	mu sync.RWMutex
	m  map[string][]byte
}

func (s *Memory) Get(_ context.Context, key string, v any) error {
	s.mu.RLock()
	data, ok := s.m[key]
	s.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}
	return json.Unmarshal(data, v)
}

func (s *Memory) Put(_ context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.m == nil {
		s.m = make(map[string][]byte)
	}
	s.m[key] = data
	return nil
}

// Redis is a Store backed by Redis. Keys are stored with Prefix prepended.
type Redis struct {
	Client *redis.Client
	Prefix string
}

// NewRedis returns a Redis store connected to the server at redisURL, e.g.
// "redis://localhost:6379/0".
func NewRedis(redisURL, prefix string) (*Redis, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	return &Redis{Client: redis.NewClient(opt), Prefix: prefix}, nil
}

func (s *Redis) Get(ctx context.Context, key string, v any) error {
	data, err := s.Client.Get(ctx, s.Prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func (s *Redis) Put(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	// no expiration; the collections are replaced by the next sync
	return s.Client.Set(ctx, s.Prefix+key, data, 0).Err()
}

func (s *Redis) Close() error {
	return s.Client.Close()
}
