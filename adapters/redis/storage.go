package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"promptkit/core"
)

// DefaultKeyPrefix namespaces engine keys inside a shared Redis database.
const DefaultKeyPrefix = "promptkit:"

// Config holds Redis connection configuration
type Config struct {
	Addr         string        `json:"addr" yaml:"addr" env:"ADDR"`
	Password     string        `json:"password" yaml:"password" env:"PASSWORD"`
	DB           int           `json:"db" yaml:"db" env:"DB"`
	KeyPrefix    string        `json:"key_prefix" yaml:"key_prefix" env:"KEY_PREFIX"`
	PoolSize     int           `json:"pool_size" yaml:"pool_size" env:"POOL_SIZE"`
	MinIdleConns int           `json:"min_idle_conns" yaml:"min_idle_conns" env:"MIN_IDLE_CONNS"`
	DialTimeout  time.Duration `json:"dial_timeout" yaml:"dial_timeout" env:"DIAL_TIMEOUT"`
	ReadTimeout  time.Duration `json:"read_timeout" yaml:"read_timeout" env:"READ_TIMEOUT"`
	WriteTimeout time.Duration `json:"write_timeout" yaml:"write_timeout" env:"WRITE_TIMEOUT"`
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		Addr:         "localhost:6379",
		Password:     "",
		DB:           0,
		KeyPrefix:    DefaultKeyPrefix,
		PoolSize:     4,
		MinIdleConns: 1,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// ConfigFromURL builds a Config from a redis:// or rediss:// URL, keeping
// pool and timeout settings from base.
func ConfigFromURL(rawURL string, base Config) (Config, *redis.Options, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return Config{}, nil, fmt.Errorf("parse redis url: %w", err)
	}
	cfg := base
	cfg.Addr = opts.Addr
	cfg.Password = opts.Password
	cfg.DB = opts.DB
	return cfg, opts, nil
}

// Store implements core.Storage with one Redis string per key:
// - {prefix}{key} -> decimal uint64
type Store struct {
	client *redis.Client
	prefix string
}

// New creates a new Redis-backed storage with the provided configuration
func New(config Config) (*Store, error) {
	return NewWithOptions(&redis.Options{Addr: config.Addr}, config)
}

// NewWithOptions connects using opts (e.g. from redis.ParseURL, which keeps
// TLS settings) with pool and timeout settings taken from config.
func NewWithOptions(opts *redis.Options, config Config) (*Store, error) {
	o := *opts
	o.Addr = config.Addr
	o.Password = config.Password
	o.DB = config.DB
	o.PoolSize = config.PoolSize
	o.MinIdleConns = config.MinIdleConns
	o.DialTimeout = config.DialTimeout
	o.ReadTimeout = config.ReadTimeout
	o.WriteTimeout = config.WriteTimeout
	client := redis.NewClient(&o)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Store{client: client, prefix: config.KeyPrefix}, nil
}

// NewWithClient creates a Store using an existing Redis client (useful for testing)
func NewWithClient(client *redis.Client, prefix string) *Store {
	return &Store{client: client, prefix: prefix}
}

// Close closes the Redis connection
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) redisKey(key string) string {
	return s.prefix + key
}

// ReadInt returns ok=false when the key does not exist.
func (s *Store) ReadInt(ctx context.Context, key string) (uint64, bool, error) {
	v, err := s.client.Get(ctx, s.redisKey(key)).Uint64()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return v, true, nil
}

// WriteInt stores value without expiry.
func (s *Store) WriteInt(ctx context.Context, key string, value uint64) error {
	if err := s.client.Set(ctx, s.redisKey(key), strconv.FormatUint(value, 10), 0).Err(); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

var _ core.Storage = (*Store)(nil)
