// Package artifact stores generated document text under opaque identifiers.
package artifact

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// ErrNotFound indicates that no artifact is stored under the requested ID,
// either because it never existed or because it was evicted.
var ErrNotFound = errors.New("artifact not found")

// Registry maps opaque identifiers to generated document content.
// Content is never mutated after registration and identifiers are never reused.
type Registry interface {
	// Register stores content under a fresh identifier and returns it.
	Register(ctx context.Context, content string) (string, error)

	// Retrieve returns the content stored under id, or ErrNotFound.
	Retrieve(ctx context.Context, id string) (string, error)
}

// newID returns a random (version 4) UUID: 122 bits of entropy.
func newID() string {
	return uuid.NewString()
}

// MemoryRegistry keeps artifacts in process memory.
// It holds at most capacity artifacts, evicting the least recently used one
// when full, and drops artifacts older than ttl.
type MemoryRegistry struct {
	cache *expirable.LRU[string, string]
}

// Compile-time check that MemoryRegistry implements Registry.
var _ Registry = (*MemoryRegistry)(nil)

// NewMemoryRegistry creates an in-memory registry.
// A non-positive ttl disables expiry.
func NewMemoryRegistry(capacity int, ttl time.Duration) *MemoryRegistry {
	if capacity <= 0 {
		capacity = 1
	}
	if ttl < 0 {
		ttl = 0
	}
	return &MemoryRegistry{
		cache: expirable.NewLRU[string, string](capacity, nil, ttl),
	}
}

// Register implements Registry.
func (r *MemoryRegistry) Register(_ context.Context, content string) (string, error) {
	id := newID()
	r.cache.Add(id, content)
	return id, nil
}

// Retrieve implements Registry.
func (r *MemoryRegistry) Retrieve(_ context.Context, id string) (string, error) {
	content, ok := r.cache.Get(id)
	if !ok {
		return "", ErrNotFound
	}
	return content, nil
}

// Len returns the number of artifacts currently held.
func (r *MemoryRegistry) Len() int {
	return r.cache.Len()
}
