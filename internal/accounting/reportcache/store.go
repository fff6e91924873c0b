// Package reportcache caches rendered report payloads keyed by client.
//
// Keys follow "reports:<clientID>:<kind>:<window>" so one client's reports
// can be invalidated together after a ledger write. The memory store is
// process-local; deployments running several API processes against one
// database should use the Redis store so invalidation reaches every process.
package reportcache

import (
	"context"
	"time"
)

// Store is the cache port used by the reporting service.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	// InvalidateClient drops every cached report for the client and returns
	// the number of keys removed.
	InvalidateClient(ctx context.Context, clientID string) int
}

const keyPrefix = "reports:"

// Key builds a cache key for one report of one client.
func Key(clientID, kind string, parts ...string) string {
	key := keyPrefix + clientID + ":" + kind
	for _, p := range parts {
		key += ":" + p
	}
	return key
}

func clientPattern(clientID string) string {
	return keyPrefix + clientID + ":"
}
