// Package redisstore keeps credentials in Redis, for clients that run as a
// long-lived service next to a Redis instance.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jrsteele09/go-journal-client/credentials"
	"github.com/redis/go-redis/v9"
)

const defaultPrefix = "journal:credentials:"

var _ credentials.Store = (*Store)(nil)

// Store is a credentials.Store backed by a Redis client.
type Store struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

type Option func(*Store)

// WithPrefix namespaces the keys, e.g. per device.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// WithTTL expires stored tokens after d. Zero keeps them until deleted.
func WithTTL(d time.Duration) Option {
	return func(s *Store) {
		s.ttl = d
	}
}

func New(client redis.UniversalClient, options ...Option) *Store {
	s := &Store{client: client, prefix: defaultPrefix}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// NewFromURL parses a redis:// URL and checks the connection.
func NewFromURL(ctx context.Context, url string, options ...Option) (*Store, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return New(client, options...), nil
}

func (s *Store) Get(ctx context.Context, key credentials.Key) (string, error) {
	v, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", credentials.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis get: %w", err)
	}
	return v, nil
}

func (s *Store) Set(ctx context.Context, key credentials.Key, value string) error {
	if err := s.client.Set(ctx, s.key(key), value, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key credentials.Key) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Close closes the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) key(key credentials.Key) string {
	return s.prefix + string(key)
}
