package store

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"mediawatch/internal/config"
	"mediawatch/internal/ports"
)

func newTestGitHubStore(t *testing.T, handler http.HandlerFunc) *GitHubStore {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewGitHubStore(config.StoreConfig{
		APIBaseURL: srv.URL,
		Repo:       "example/justiceforlogan",
		Branch:     "main",
		Token:      "test-token",
	}, srv.Client())
}

func TestGitHubStoreGet(t *testing.T) {
	t.Parallel()

	blob := []byte(`[{"id":"1"}]`)
	s := newTestGitHubStore(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("unexpected method %s", r.Method)
		}
		if r.URL.Path != "/repos/example/justiceforlogan/contents/src/data/memories.json" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("ref"); got != "main" {
			t.Errorf("unexpected ref %q", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("unexpected authorization %q", got)
		}
		// The API wraps base64 content at 60 columns.
		encoded := base64.StdEncoding.EncodeToString(blob)
		json.NewEncoder(w).Encode(map[string]string{
			"content": encoded[:8] + "\n" + encoded[8:],
			"sha":     "abc123",
		})
	})

	content, revision, err := s.Get(context.Background(), "src/data/memories.json")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if string(content) != string(blob) {
		t.Fatalf("unexpected content %q", content)
	}
	if revision != "abc123" {
		t.Fatalf("unexpected revision %q", revision)
	}
}

func TestGitHubStoreGetMissing(t *testing.T) {
	t.Parallel()

	s := newTestGitHubStore(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, _, err := s.Get(context.Background(), "src/data/none.json")
	if !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGitHubStorePut(t *testing.T) {
	t.Parallel()

	s := newTestGitHubStore(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("unexpected method %s", r.Method)
		}
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		if payload["sha"] != "abc123" {
			t.Errorf("write must carry the read revision, got %v", payload["sha"])
		}
		if payload["branch"] != "main" {
			t.Errorf("unexpected branch %v", payload["branch"])
		}
		if payload["message"] == "" {
			t.Error("commit message must not be empty")
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"content": map[string]string{"sha": "def456"},
		})
	})

	next, err := s.Put(context.Background(), "src/data/memories.json", []byte(`[]`), "abc123", "Approve memory submission")
	if err != nil {
		t.Fatalf("Put error: %v", err)
	}
	if next != "def456" {
		t.Fatalf("unexpected new revision %q", next)
	}
}

func TestGitHubStorePutStaleRevision(t *testing.T) {
	t.Parallel()

	for _, status := range []int{http.StatusConflict, http.StatusUnprocessableEntity} {
		s := newTestGitHubStore(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(status)
		})
		_, err := s.Put(context.Background(), "src/data/memories.json", []byte(`[]`), "stale", "m")
		if !errors.Is(err, ports.ErrRevisionConflict) {
			t.Fatalf("status %d: expected ErrRevisionConflict, got %v", status, err)
		}
	}
}

func TestGitHubStoreRejectedCredentials(t *testing.T) {
	t.Parallel()

	s := newTestGitHubStore(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	_, _, err := s.Get(context.Background(), "src/data/memories.json")
	if !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for rejected credentials, got %v", err)
	}
}
