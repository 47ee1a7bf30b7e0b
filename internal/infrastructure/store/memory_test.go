package store

import (
	"context"
	"errors"
	"testing"

	"mediawatch/internal/ports"
)

func TestMemoryStoreGetMissing(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	_, _, err := s.Get(context.Background(), "src/data/memories.json")
	if !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	rev, err := s.Put(context.Background(), "k", []byte(`[]`), "", "init")
	if err != nil {
		t.Fatalf("initial Put error: %v", err)
	}

	content, got, err := s.Get(context.Background(), "k")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got != rev {
		t.Fatalf("revision mismatch: Get %q, Put %q", got, rev)
	}
	if string(content) != `[]` {
		t.Fatalf("unexpected content %q", content)
	}
}

func TestMemoryStoreRejectsStaleRevision(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	s.Seed("k", []byte(`["a"]`))

	_, stale, _ := s.Get(context.Background(), "k")
	if _, err := s.Put(context.Background(), "k", []byte(`["a","b"]`), stale, "first"); err != nil {
		t.Fatalf("current-revision Put error: %v", err)
	}

	// The old marker must now be rejected and the stored blob left intact.
	if _, err := s.Put(context.Background(), "k", []byte(`["x"]`), stale, "second"); !errors.Is(err, ports.ErrRevisionConflict) {
		t.Fatalf("expected ErrRevisionConflict, got %v", err)
	}

	content, _, err := s.Get(context.Background(), "k")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if string(content) != `["a","b"]` {
		t.Fatalf("conflicting write changed the blob: %q", content)
	}
}

func TestMemoryStoreRejectsCreateWithRevision(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	if _, err := s.Put(context.Background(), "k", []byte(`[]`), "ghost", "create"); !errors.Is(err, ports.ErrRevisionConflict) {
		t.Fatalf("expected ErrRevisionConflict for revision on a missing blob, got %v", err)
	}
}
