package client

import (
	"sync"

	"github.com/withceleste/celeste/core"
	"github.com/withceleste/celeste/core/envelope"
	"github.com/withceleste/celeste/core/params"
	"github.com/withceleste/celeste/core/streaming"
	"github.com/withceleste/celeste/providers/transport"
)

// Adapter is the vendor-specific half of a modality client. It shapes
// unified requests into the provider's wire format and parses wire
// responses back; everything else (validation, parameter mapping,
// credentials, dispatch, stream accounting) lives in [Client].
type Adapter interface {
	// Provider identifies the vendor this adapter speaks to.
	Provider() core.Provider

	// Mapper returns the parameter mapping for the (modality, operation)
	// pair. Returning nil means the pair carries no mapped parameters.
	Mapper(modality core.Modality, operation core.Operation) *params.Mapper

	// InitRequest builds the wire request skeleton: method, URL, and the
	// base body holding the prompt or inputs. Unified parameters are not
	// yet applied; the client runs them through the mapper afterwards.
	InitRequest(req *envelope.Request) (*transport.Request, error)

	// ParseResponse extracts the typed content and normalized finish
	// reason from a blocking response body. Usage and pass-through
	// metadata are extracted separately via the mapper.
	ParseResponse(req *envelope.Request, body []byte) (any, envelope.FinishReason, error)

	// ParseEvent returns the event parser for a streamed call of this
	// request, or nil when the (modality, operation) pair cannot stream.
	ParseEvent(req *envelope.Request) streaming.ParseEvent
}

// BinaryStreamer is implemented by adapters whose streams carry raw
// bytes (audio, images). The reported MIME type labels the artifact the
// stream accumulates into.
type BinaryStreamer interface {
	StreamMIMEType(req *envelope.Request) string
}

type adapterKey struct {
	modality core.Modality
	provider core.Provider
}

// AdapterRegistry resolves the vendor adapter serving a (modality,
// provider) pair. Safe for concurrent reads after composition.
type AdapterRegistry struct {
	mu       sync.RWMutex
	adapters map[adapterKey]Adapter
}

// NewAdapterRegistry returns an empty registry.
func NewAdapterRegistry() *AdapterRegistry {
	return &AdapterRegistry{adapters: make(map[adapterKey]Adapter)}
}

// Register installs an adapter for the given modalities, replacing any
// previous registration for the same (modality, provider) key.
func (r *AdapterRegistry) Register(adapter Adapter, modalities ...core.Modality) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, modality := range modalities {
		r.adapters[adapterKey{modality: modality, provider: adapter.Provider()}] = adapter
	}
}

// Get returns the adapter serving the pair, or *core.ClientNotFoundError
// when no vendor implementation is registered for it.
func (r *AdapterRegistry) Get(modality core.Modality, provider core.Provider) (Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	adapter, ok := r.adapters[adapterKey{modality: modality, provider: provider}]
	if !ok {
		return nil, &core.ClientNotFoundError{Modality: modality, Provider: provider}
	}
	return adapter, nil
}

// Providers lists the vendors registered for a modality.
func (r *AdapterRegistry) Providers(modality core.Modality) []core.Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var providers []core.Provider
	for key := range r.adapters {
		if key.modality == modality {
			providers = append(providers, key.provider)
		}
	}
	return providers
}
