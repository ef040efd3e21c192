// Package lookup holds the external data-lookup providers the credit gate
// fronts. Each provider validates its own query shape so that a malformed
// query can be rejected before any credit is touched.
package lookup

import (
	"context"
	"fmt"
)

// Kind identifies a lookup provider family
type Kind string

const (
	KindIP       Kind = "ip"
	KindPhone    Kind = "phone"
	KindEmail    Kind = "email"
	KindUsername Kind = "username"
)

// Result is a successful provider response. Data is a provider-specific
// typed struct, serialized as-is to the client.
type Result struct {
	Kind  Kind   `json:"kind"`
	Label string `json:"label"`
	Data  any    `json:"data"`
	Note  string `json:"note,omitempty"`
}

// Provider is a single external lookup capability
type Provider interface {
	// Kind identifies the provider family
	Kind() Kind
	// Label is the human-readable lookup type used in history entries
	Label() string
	// Validate rejects malformed queries; it must be called before any debit
	Validate(query string) error
	// Lookup performs the external call. It returns apperrors.NotFoundError
	// for a well-formed empty result and apperrors.UpstreamError for faults.
	Lookup(ctx context.Context, query string) (*Result, error)
}

// Registry maps provider kinds to providers
type Registry struct {
	providers map[Kind]Provider
}

// NewRegistry creates a registry over the given providers
func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{providers: make(map[Kind]Provider, len(providers))}
	for _, p := range providers {
		r.providers[p.Kind()] = p
	}
	return r
}

// Get returns the provider for a kind
func (r *Registry) Get(kind Kind) (Provider, error) {
	p, ok := r.providers[kind]
	if !ok {
		return nil, fmt.Errorf("unknown lookup type: %s", kind)
	}
	return p, nil
}

// Kinds returns the registered provider kinds
func (r *Registry) Kinds() []Kind {
	kinds := make([]Kind, 0, len(r.providers))
	for k := range r.providers {
		kinds = append(kinds, k)
	}
	return kinds
}
