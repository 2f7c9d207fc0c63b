package db

import (
	"context"
	"time"
)

// Store is the main database facade combining all sub-interfaces.
//
//nolint:interfacebloat // facade by design -- consumers use narrow sub-interfaces (ISP)
type Store interface {
	Pinger
	HashStore
	KVStore
	ListStore
	IndexManager
	Searcher
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HashSetItem holds a single key+fields pair for pipelined HSET.
type HashSetItem struct {
	Key    string
	Fields map[string]string
}

// HashStore provides hash-based key-value operations.
type HashStore interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HSetMulti(ctx context.Context, items []HashSetItem) error
	// HGet returns one hash field, or ErrKeyNotFound when the key or field is absent.
	HGet(ctx context.Context, key, field string) (string, error)
	Exists(ctx context.Context, key string) (bool, error)
	// Del removes keys and returns how many existed.
	Del(ctx context.Context, keys ...string) (int64, error)
}

// KVStore provides simple key-value operations.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Expire(ctx context.Context, key string, ttl time.Duration) error
}

// ListStore provides bounded list operations.
type ListStore interface {
	// AppendCapped pushes value onto the list at key only when guardKey exists,
	// trims the list to the newest maxLen entries and refreshes ttl on both keys
	// (ttl <= 0 leaves expiry untouched). Returns false when guardKey is absent.
	AppendCapped(ctx context.Context, guardKey, key string, value []byte, maxLen int, ttl time.Duration) (bool, error)
	// LRange returns list entries between start and stop (inclusive, negative from the tail).
	LRange(ctx context.Context, key string, start, stop int64) ([][]byte, error)
}

// IndexManager provides FT index lifecycle operations.
type IndexManager interface {
	CreateIndex(ctx context.Context, def *IndexDefinition) error
	IndexInfo(ctx context.Context, name string) (IndexInfo, error)
}

// Searcher provides vector search over FT indexes.
type Searcher interface {
	SearchKNN(ctx context.Context, q *KNNQuery) (*SearchResult, error)
}
