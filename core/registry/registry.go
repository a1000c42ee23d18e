// Package registry stores the known (model id, provider) records and
// answers lookup and listing queries. A Registry is populated once at
// composition time and treated as read-mostly afterwards; registration is
// not designed for high-frequency runtime mutation.
package registry

import (
	"sync"

	"github.com/withceleste/celeste/core"
	"github.com/withceleste/celeste/core/constraint"
)

// Model describes a vendor model: its identity, the (modality, operation)
// pairs it supports, whether it can stream, and the validation constraints
// attached to its unified parameters. Models are immutable after
// registration.
type Model struct {
	ID          string
	Provider    core.Provider
	DisplayName string

	// Operations maps each supported modality to the operations the model
	// declares for it.
	Operations map[core.Modality][]core.Operation

	Streaming bool

	// Constraints maps unified parameter names to their validation rules.
	Constraints map[string]constraint.Constraint
}

// Supports reports whether the model declares the (modality, operation)
// pair.
func (m Model) Supports(modality core.Modality, operation core.Operation) bool {
	for _, op := range m.Operations[modality] {
		if op == operation {
			return true
		}
	}
	return false
}

// SupportedParameters returns the names of the parameters the model
// declares constraints for.
func (m Model) SupportedParameters() []string {
	params := make([]string, 0, len(m.Constraints))
	for name := range m.Constraints {
		params = append(params, name)
	}
	return params
}

type modelKey struct {
	id       string
	provider core.Provider
}

// Registry is the process-wide model catalog. It is safe for concurrent
// reads; writes happen during composition and test setup only.
type Registry struct {
	mu     sync.RWMutex
	models map[modelKey]Model
	order  []modelKey
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{models: make(map[modelKey]Model)}
}

// Register inserts models. A duplicate (id, provider) — against existing
// records or within the batch itself — fails the whole batch with a
// *core.DuplicateModelError before anything is inserted; use Replace to
// overwrite deliberately.
func (r *Registry) Register(models ...Model) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[modelKey]bool, len(models))
	for _, m := range models {
		key := modelKey{id: m.ID, provider: m.Provider}
		if _, exists := r.models[key]; exists || seen[key] {
			return &core.DuplicateModelError{ModelID: m.ID, Provider: m.Provider}
		}
		seen[key] = true
	}
	for _, m := range models {
		key := modelKey{id: m.ID, provider: m.Provider}
		r.models[key] = m
		r.order = append(r.order, key)
	}
	return nil
}

// Replace inserts models, overwriting any existing record with the same
// (id, provider). This is the explicit overwrite path; a replaced model
// keeps its original position in listing order.
func (r *Registry) Replace(models ...Model) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, m := range models {
		key := modelKey{id: m.ID, provider: m.Provider}
		if _, exists := r.models[key]; !exists {
			r.order = append(r.order, key)
		}
		r.models[key] = m
	}
	return nil
}

// Get returns the model registered under (id, provider).
func (r *Registry) Get(id string, provider core.Provider) (Model, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.models[modelKey{id: id, provider: provider}]
	if !ok {
		return Model{}, &core.ModelNotFoundError{ModelID: id, Provider: provider}
	}
	return m, nil
}

// Filter narrows a List call. Zero fields match everything.
type Filter struct {
	Provider  core.Provider
	Modality  core.Modality
	Operation core.Operation
}

func (f Filter) matches(m Model) bool {
	if f.Provider != "" && m.Provider != f.Provider {
		return false
	}
	if f.Modality != "" {
		ops, ok := m.Operations[f.Modality]
		if !ok {
			return false
		}
		if f.Operation != "" {
			found := false
			for _, op := range ops {
				if op == f.Operation {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
	} else if f.Operation != "" {
		found := false
		for _, ops := range m.Operations {
			for _, op := range ops {
				if op == f.Operation {
					found = true
				}
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// List returns registered models matching the filter, in registration
// order.
func (r *Registry) List(filter Filter) []Model {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Model
	for _, key := range r.order {
		m := r.models[key]
		if filter.matches(m) {
			out = append(out, m)
		}
	}
	return out
}

// Clear resets the registry to empty. It exists for test isolation and
// must not be called while calls are in flight.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.models = make(map[modelKey]Model)
	r.order = nil
}
