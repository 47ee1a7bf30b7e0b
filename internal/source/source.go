package source

import (
	"context"
	"fmt"
)

// Item carries the raw fields extracted from one upstream feed entry. Every
// field is optional at this stage; validation happens in the shared assembly
// step, so per-source parsers stay free of classification and truncation logic.
type Item struct {
	Title        string
	Link         string
	Outlet       string
	PublishedRaw string
	Description  string
}

// Client captures a single feed-source strategy (news search, JSON API,
// outlet RSS). Implementations bound their own request time and must tolerate
// missing optional fields.
type Client interface {
	Name() string
	Search(ctx context.Context, term string) ([]Item, error)
}

// Registry keeps a mapping from source names to their implementations.
type Registry struct {
	clients map[string]Client
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{clients: map[string]Client{}}
}

// Register adds or replaces a source implementation.
func (r *Registry) Register(client Client) {
	if r.clients == nil {
		r.clients = map[string]Client{}
	}
	r.clients[client.Name()] = client
}

// Resolve returns a source by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Client, error) {
	if client, ok := r.clients[name]; ok {
		return client, nil
	}
	return nil, fmt.Errorf("feed source %s is not registered", name)
}
