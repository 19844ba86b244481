package cache

import "time"

// BytesCache stores serialized dashboard responses with a TTL. Invalidate
// drops every cached response; it backs the operator-facing invalidation
// endpoint after a warehouse reload.
type BytesCache interface {
	GetBytes(key string) (b []byte, ok bool, err error)
	SetBytes(key string, value []byte, ttl time.Duration) error
	Invalidate() error
}
