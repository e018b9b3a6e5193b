// Package registry implements the provider directory: constructor functions
// keyed by provider id, plus the prefix rules that resolve a model name to
// its owning provider.
//
// The table is populated once at process start and treated as read-only
// afterward, so lookups are safe for concurrent use without locking.
// Population and lookup are deliberately not safe to interleave.
package registry

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/leofalp/aibridge/providers/ai"
)

// Config is the build-time configuration handed to a provider constructor.
// Credentials are rotated later by the dispatcher; APIKey is only the
// initial key.
type Config struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

// Constructor builds one provider instance from configuration.
type Constructor func(cfg Config) ai.Provider

type entry struct {
	ctor     Constructor
	prefixes []string
}

// Registry is the central provider directory.
type Registry struct {
	entries map[string]entry
	order   []string // registration order, drives deterministic iteration
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{entries: map[string]entry{}}
}

// Register associates id with a constructor and the model-name prefixes the
// provider claims. Registration is idempotent: re-registering an existing id
// replaces its constructor and prefixes but keeps its position in the
// iteration order, so hot-reload and test re-registration never perturb
// provider selection.
func (r *Registry) Register(id string, ctor Constructor, prefixes ...string) {
	if _, exists := r.entries[id]; !exists {
		r.order = append(r.order, id)
	}
	r.entries[id] = entry{ctor: ctor, prefixes: prefixes}
}

// Build instantiates the provider registered under id. It fails with
// ai.ErrUnknownProvider when id is not registered.
func (r *Registry) Build(id string, cfg Config) (ai.Provider, error) {
	e, ok := r.entries[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ai.ErrUnknownProvider, id)
	}
	return e.ctor(cfg), nil
}

// ResolveOwner scans the registered prefix rules in registration order and
// returns the id of the provider that claims modelName. The second return
// is false when no provider claims it, letting the dispatcher fall back to
// capability defaults. The result is a pure function of the static table.
func (r *Registry) ResolveOwner(modelName string) (string, bool) {
	for _, id := range r.order {
		for _, prefix := range r.entries[id].prefixes {
			if strings.HasPrefix(modelName, prefix) {
				return id, true
			}
		}
	}
	return "", false
}

// IDs returns the registered provider ids in registration order. Callers
// must not mutate the returned slice.
func (r *Registry) IDs() []string {
	return r.order
}
