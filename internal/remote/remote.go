// Package remote is the adapter for the key-addressed remote mirror store.
// The remote is advisory: it may lag or diverge from the local store, every
// operation is individually fallible, and nothing here is treated as
// authoritative outside an explicit sync pull.
package remote

import (
	"context"
	"encoding/json"
	"strings"
)

// Store is the remote document store contract. Paths are slash-separated
// keys ("students/S001", "config/schoolPeriod").
type Store interface {
	// Get reads one value by key; (nil, nil) when the key does not exist.
	Get(ctx context.Context, path string) (json.RawMessage, error)
	// QueryEqual returns all children of path whose field equals value,
	// keyed by child key.
	QueryEqual(ctx context.Context, path, field string, value any) (map[string]json.RawMessage, error)
	// Set writes the full value at the key.
	Set(ctx context.Context, path string, value any) error
	// Update applies a partial field update at the key. Keys of the form
	// "/child" address children, so one Update on a parent path batches
	// writes for many entities in a single round trip.
	Update(ctx context.Context, path string, fields map[string]any) error
	// Push appends value under path with a store-generated key.
	Push(ctx context.Context, path string, value any) (string, error)
	// Delete removes the key.
	Delete(ctx context.Context, path string) error
}

// ValidKey reports whether s can be used as a path segment. The store
// rejects '.', '#', '$', '[' and ']' in keys, so a login containing any of
// them is never an id key.
func ValidKey(s string) bool {
	return s != "" && !strings.ContainsAny(s, ".#$[]/")
}
