// Package cache is the page cache: whole rendered responses kept for a
// fixed time and then rebuilt. Entries are never invalidated early; only
// Clear drops them.
package cache

import (
	"context"
	"time"
)

// DefaultTTL is how long the home feed stays cached.
const DefaultTTL = 20 * time.Second

// Entry is a cached response.
type Entry struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

type Store interface {
	// Get returns the entry for key, or false when it is missing or expired.
	Get(ctx context.Context, key string) (*Entry, bool, error)
	Set(ctx context.Context, key string, e *Entry, ttl time.Duration) error
	// Clear drops every entry.
	Clear(ctx context.Context) error
}
