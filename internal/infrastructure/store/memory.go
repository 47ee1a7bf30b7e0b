package store

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"mediawatch/internal/ports"
)

// MemoryStore is an in-process revisioned store with the same compare-and-swap
// semantics as the GitHub store. It backs tests and credential-less local runs.
type MemoryStore struct {
	mu    sync.Mutex
	blobs map[string]memoryBlob
	seq   int
}

type memoryBlob struct {
	content  []byte
	revision string
}

var _ ports.ContentStore = (*MemoryStore)(nil)

// NewMemoryStore builds an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: map[string]memoryBlob{}}
}

// Seed installs a collection without revision checking, for test setup.
func (m *MemoryStore) Seed(key string, content []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	m.blobs[key] = memoryBlob{content: content, revision: strconv.Itoa(m.seq)}
}

// Get returns the blob and its revision marker.
func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	blob, ok := m.blobs[key]
	if !ok {
		return nil, "", fmt.Errorf("%s: %w", key, ports.ErrNotFound)
	}
	content := make([]byte, len(blob.content))
	copy(content, blob.content)
	return content, blob.revision, nil
}

// Put replaces the blob only while the given revision is still current.
func (m *MemoryStore) Put(_ context.Context, key string, content []byte, revision, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, exists := m.blobs[key]
	if exists && current.revision != revision {
		return "", fmt.Errorf("%s: %w", key, ports.ErrRevisionConflict)
	}
	if !exists && revision != "" {
		return "", fmt.Errorf("%s: %w", key, ports.ErrRevisionConflict)
	}

	m.seq++
	next := memoryBlob{content: content, revision: strconv.Itoa(m.seq)}
	m.blobs[key] = next
	return next.revision, nil
}
