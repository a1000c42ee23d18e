// Package celeste is a unified client layer over heterogeneous
// generative-AI APIs. One request shape, one response envelope, and one
// streaming surface cover text, image, audio, and embedding models from
// multiple vendors; provider adapters translate at the wire boundary
// while constraint validation, parameter mapping, credentials, and
// stream normalization stay shared.
//
// The zero-config path works out of the box with API keys in the
// environment:
//
//	c, err := celeste.New()
//	resp, err := c.Text(core.ProviderOpenAI, "gpt-4o").
//		Generate(ctx, "Say hello")
package celeste

import (
	"net/http"
	"time"

	"github.com/withceleste/celeste/core"
	"github.com/withceleste/celeste/core/catalog"
	"github.com/withceleste/celeste/core/client"
	"github.com/withceleste/celeste/core/client/middleware"
	"github.com/withceleste/celeste/core/cost"
	"github.com/withceleste/celeste/core/credentials"
	"github.com/withceleste/celeste/core/envelope"
	"github.com/withceleste/celeste/core/registry"
	"github.com/withceleste/celeste/providers/anthropic"
	"github.com/withceleste/celeste/providers/elevenlabs"
	"github.com/withceleste/celeste/providers/observability"
	"github.com/withceleste/celeste/providers/observability/slogobs"
	"github.com/withceleste/celeste/providers/openai"
	"github.com/withceleste/celeste/providers/transport"
)

// Celeste is the composition root: the model registry, adapter registry,
// credential resolver, transport, and middleware chain shared by every
// client it creates. Safe for concurrent use after New.
type Celeste struct {
	registry    *registry.Registry
	adapters    *client.AdapterRegistry
	credentials *credentials.Resolver
	transport   transport.Transport
	middlewares []client.MiddlewareConfig
	observer    observability.Provider

	costs   *cost.Table
	tracker *cost.Tracker
}

// Option configures construction.
type Option func(*config)

type config struct {
	httpClient      *http.Client
	transport       transport.Transport
	credentialOpts  []credentials.Option
	middlewares     []client.MiddlewareConfig
	observer        observability.Provider
	extraModels     []registry.Model
	catalogPaths    []string
	extraAdapters   []adapterRegistration
	costTable       *cost.Table
	trackCosts      bool
	skipBuiltins    bool
	retry           *middleware.RetryConfig
	timeout         time.Duration
}

type adapterRegistration struct {
	adapter    client.Adapter
	modalities []core.Modality
}

// WithHTTPClient replaces the HTTP client backing the default transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *config) { c.httpClient = hc }
}

// WithTransport replaces the transport entirely.
func WithTransport(t transport.Transport) Option {
	return func(c *config) { c.transport = t }
}

// WithAPIKey sets an explicit API key for a provider, taking precedence
// over the environment.
func WithAPIKey(provider core.Provider, key string) Option {
	return func(c *config) {
		c.credentialOpts = append(c.credentialOpts, credentials.WithKey(provider, key))
	}
}

// WithDotenv seeds the environment from the named .env files before key
// resolution.
func WithDotenv(paths ...string) Option {
	return func(c *config) {
		c.credentialOpts = append(c.credentialOpts, credentials.WithDotenv(paths...))
	}
}

// WithObserver installs an observability provider; spans, metrics, and
// trace logs from every call flow through it.
func WithObserver(o observability.Provider) Option {
	return func(c *config) { c.observer = o }
}

// WithLogging installs the slog-backed observer. Without options it reads
// CELESTE_LOG_FORMAT and CELESTE_LOG_LEVEL and writes to stdout.
func WithLogging(opts ...slogobs.Option) Option {
	return func(c *config) { c.observer = slogobs.New(opts...) }
}

// WithMiddleware appends middleware entries to the dispatch chain, in
// order, outermost first.
func WithMiddleware(mws ...client.MiddlewareConfig) Option {
	return func(c *config) { c.middlewares = append(c.middlewares, mws...) }
}

// WithRetry enables retry on transient provider failures for blocking
// calls.
func WithRetry(cfg middleware.RetryConfig) Option {
	return func(c *config) { c.retry = &cfg }
}

// WithTimeout bounds every provider call.
func WithTimeout(d time.Duration) Option {
	return func(c *config) { c.timeout = d }
}

// WithModels registers additional models alongside the built-in set.
func WithModels(models ...registry.Model) Option {
	return func(c *config) { c.extraModels = append(c.extraModels, models...) }
}

// WithCatalogFile loads model definitions from a YAML catalog file.
// Catalog entries replace built-in models with the same (id, provider).
func WithCatalogFile(paths ...string) Option {
	return func(c *config) { c.catalogPaths = append(c.catalogPaths, paths...) }
}

// WithoutBuiltinModels skips built-in model registration; only catalog
// files and WithModels entries are known.
func WithoutBuiltinModels() Option {
	return func(c *config) { c.skipBuiltins = true }
}

// WithAdapter registers a custom provider adapter for the given
// modalities, replacing any built-in adapter for the same pairs.
func WithAdapter(adapter client.Adapter, modalities ...core.Modality) Option {
	return func(c *config) {
		c.extraAdapters = append(c.extraAdapters, adapterRegistration{adapter: adapter, modalities: modalities})
	}
}

// WithCostTable installs a rate card; responses from models it covers are
// priced and, when tracking is enabled, accumulated.
func WithCostTable(table *cost.Table) Option {
	return func(c *config) { c.costTable = table }
}

// WithCostTracking accumulates the cost of every priced call into a
// tracker readable via [Celeste.Costs].
func WithCostTracking() Option {
	return func(c *config) { c.trackCosts = true }
}

// New assembles a Celeste instance: built-in models and adapters, env
// credential resolution, and an HTTP/SSE/WebSocket transport.
func New(opts ...Option) (*Celeste, error) {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}

	reg := registry.New()
	if !cfg.skipBuiltins {
		if err := reg.Register(builtinModels()...); err != nil {
			return nil, err
		}
	}
	for _, path := range cfg.catalogPaths {
		models, err := catalog.LoadFile(path)
		if err != nil {
			return nil, err
		}
		if err := reg.Replace(models...); err != nil {
			return nil, err
		}
	}
	if len(cfg.extraModels) > 0 {
		if err := reg.Register(cfg.extraModels...); err != nil {
			return nil, err
		}
	}

	adapters := client.NewAdapterRegistry()
	adapters.Register(openai.New(), core.ModalityText, core.ModalityEmbeddings, core.ModalityImages)
	adapters.Register(anthropic.New(), core.ModalityText)
	adapters.Register(elevenlabs.New(), core.ModalityAudio)
	for _, extra := range cfg.extraAdapters {
		adapters.Register(extra.adapter, extra.modalities...)
	}

	tr := cfg.transport
	if tr == nil {
		tr = transport.NewHTTP(cfg.httpClient)
	}

	middlewares := make([]client.MiddlewareConfig, 0, len(cfg.middlewares)+2)
	if cfg.timeout > 0 {
		middlewares = append(middlewares, middleware.NewTimeoutMiddleware(cfg.timeout))
	}
	if cfg.retry != nil {
		middlewares = append(middlewares, middleware.NewRetryMiddleware(*cfg.retry))
	}
	middlewares = append(middlewares, cfg.middlewares...)

	c := &Celeste{
		registry:    reg,
		adapters:    adapters,
		credentials: credentials.New(cfg.credentialOpts...),
		transport:   tr,
		middlewares: middlewares,
		observer:    cfg.observer,
		costs:       cfg.costTable,
	}
	if cfg.trackCosts {
		c.tracker = cost.NewTracker()
	}
	return c, nil
}

// CreateClient binds a client for one (modality, operation, provider,
// model) tuple. The model must be registered and must declare the pair.
func (c *Celeste) CreateClient(modality core.Modality, operation core.Operation, provider core.Provider, modelID string) (*client.Client, error) {
	model, err := c.registry.Get(modelID, provider)
	if err != nil {
		return nil, err
	}
	adapter, err := c.adapters.Get(modality, provider)
	if err != nil {
		return nil, err
	}
	return client.New(client.Config{
		Modality:    modality,
		Operation:   operation,
		Model:       model,
		Adapter:     adapter,
		Transport:   c.transport,
		Middlewares: c.middlewares,
		Credentials: c.credentials,
		Observer:    c.observer,
	})
}

// Models lists registered models matching the filter.
func (c *Celeste) Models(filter registry.Filter) []registry.Model {
	return c.registry.List(filter)
}

// Costs returns the accumulated cost tracker, nil unless tracking was
// enabled.
func (c *Celeste) Costs() *cost.Tracker { return c.tracker }

// Price computes the cost of a response from the installed rate card.
// The zero Cost is returned when no rate card is installed or the model
// is not covered.
func (c *Celeste) Price(resp *envelope.Response) cost.Cost {
	if c.costs == nil || resp == nil {
		return cost.Cost{}
	}
	rate, ok := c.costs.Lookup(resp.Provider, resp.Model)
	if !ok {
		return cost.Cost{}
	}
	return rate.ForUsage(resp.Usage)
}

// recordCost prices the response and feeds the tracker. Zero-cost
// responses are skipped by the tracker itself.
func (c *Celeste) recordCost(resp *envelope.Response) {
	if c.tracker == nil || resp == nil {
		return
	}
	c.tracker.Add(c.Price(resp))
}
