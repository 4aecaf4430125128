// Package store owns all thread state. Access is serialized per thread
// ID: two runs against the same thread never interleave, while runs
// against different threads proceed fully in parallel.
package store

import (
	"context"
	"sync"

	"travelagent/models"
)

// ThreadStore is the process-wide keyed state behind the conversation
// API. Threads are created lazily on first reference; Update is the
// only mutation path and holds the per-thread lock for its duration.
type ThreadStore interface {
	// Create registers a new thread and returns its ID.
	Create(ctx context.Context) (string, error)
	// Get returns a snapshot of the thread, creating it if unseen.
	Get(ctx context.Context, threadID string) (models.Thread, error)
	// List returns all known thread IDs.
	List(ctx context.Context) ([]string, error)
	// Update applies fn to the thread under its per-thread lock,
	// creating the thread if unseen. If fn returns an error the
	// mutation is discarded.
	Update(ctx context.Context, threadID string, fn func(*models.Thread) error) error
}

// keyedMutex hands out one mutex per key so unrelated keys never
// contend.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*sync.Mutex)}
}

func (k *keyedMutex) get(key string) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()

	m, exists := k.locks[key]
	if !exists {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	return m
}
