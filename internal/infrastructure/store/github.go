package store

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"mediawatch/internal/config"
	"mediawatch/internal/ports"
)

const maxStoreResponseBytes = 4 << 20 // 4MB

// GitHubStore persists collections as JSON files in a repository through the
// contents API. The file blob SHA serves as the revision marker: a PUT carries
// the SHA read earlier and the API rejects it atomically when the file moved.
type GitHubStore struct {
	client  *http.Client
	baseURL string
	repo    string
	branch  string
	token   string
}

var _ ports.ContentStore = (*GitHubStore)(nil)

// NewGitHubStore builds a store from configuration.
func NewGitHubStore(cfg config.StoreConfig, client *http.Client) *GitHubStore {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	baseURL := strings.TrimSuffix(cfg.APIBaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.github.com"
	}
	branch := cfg.Branch
	if branch == "" {
		branch = "main"
	}
	return &GitHubStore{
		client:  client,
		baseURL: baseURL,
		repo:    cfg.Repo,
		branch:  branch,
		token:   cfg.Token,
	}
}

type contentResponse struct {
	Content string `json:"content"`
	SHA     string `json:"sha"`
}

type putResponse struct {
	Content struct {
		SHA string `json:"sha"`
	} `json:"content"`
}

// Get reads the collection blob and its current revision marker.
func (s *GitHubStore) Get(ctx context.Context, key string) ([]byte, string, error) {
	endpoint := fmt.Sprintf("%s/repos/%s/contents/%s?ref=%s", s.baseURL, s.repo, key, s.branch)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, "", fmt.Errorf("build request: %w", err)
	}
	s.setHeaders(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("get %s: %w", key, err)
	}
	defer resp.Body.Close()

	if err := classifyStatus(resp.StatusCode, key); err != nil {
		return nil, "", err
	}

	var parsed contentResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxStoreResponseBytes)).Decode(&parsed); err != nil {
		return nil, "", fmt.Errorf("decode %s: %w", key, err)
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(parsed.Content, "\n", ""))
	if err != nil {
		return nil, "", fmt.Errorf("decode blob %s: %w", key, err)
	}

	return decoded, parsed.SHA, nil
}

// Put writes the collection conditioned on the revision read earlier. A stale
// revision yields ports.ErrRevisionConflict and leaves the stored blob intact.
func (s *GitHubStore) Put(ctx context.Context, key string, content []byte, revision, message string) (string, error) {
	payload := map[string]any{
		"message": message,
		"content": base64.StdEncoding.EncodeToString(content),
		"branch":  s.branch,
	}
	if revision != "" {
		payload["sha"] = revision
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode payload: %w", err)
	}

	endpoint := fmt.Sprintf("%s/repos/%s/contents/%s", s.baseURL, s.repo, key)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	s.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("put %s: %w", key, err)
	}
	defer resp.Body.Close()

	// The contents API reports a stale SHA as 409; some error paths use 422.
	if resp.StatusCode == http.StatusConflict || resp.StatusCode == http.StatusUnprocessableEntity {
		return "", fmt.Errorf("put %s: %w", key, ports.ErrRevisionConflict)
	}
	if err := classifyStatus(resp.StatusCode, key); err != nil {
		return "", err
	}

	var parsed putResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxStoreResponseBytes)).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode %s: %w", key, err)
	}

	return parsed.Content.SHA, nil
}

func (s *GitHubStore) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", "mediawatch/1.0")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
}

func classifyStatus(code int, key string) error {
	switch {
	case code == http.StatusOK || code == http.StatusCreated:
		return nil
	case code == http.StatusNotFound:
		return fmt.Errorf("%s: %w", key, ports.ErrNotFound)
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return fmt.Errorf("%s: credentials rejected: %w", key, ports.ErrNotFound)
	default:
		return fmt.Errorf("%s: unexpected status %d", key, code)
	}
}
