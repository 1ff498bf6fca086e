package db

import (
	"context"
	"time"
)

// Store is the database facade combining all sub-interfaces.
// Consumers depend on narrow sub-interfaces (ISP).
type Store interface {
	Pinger
	JSONStore
	KVStore
	Scanner
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// JSONStore provides JSON document operations.
type JSONStore interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// KVStore provides simple key-value operations.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	SetNX(ctx context.Context, key string, value []byte) (bool, error)
}

// Scanner iterates keys matching a pattern.
type Scanner interface {
	Scan(ctx context.Context, pattern string) ([]string, error)
}
