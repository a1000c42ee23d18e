// Package credentials resolves provider API keys and applies them to
// outgoing requests. Each provider declares a Scheme naming the
// environment variable holding its key and the HTTP header (with
// optional value prefix) the key travels in. Keys come from explicit
// overrides first, then the process environment, optionally seeded from
// a .env file.
package credentials

import (
	"net/http"
	"os"
	"sync"

	"github.com/joho/godotenv"

	"github.com/withceleste/celeste/core"
)

// Scheme describes how a provider authenticates API calls.
type Scheme struct {
	// EnvVar is the environment variable holding the API key.
	EnvVar string
	// Header is the HTTP header the key is sent in.
	Header string
	// Prefix is prepended to the key in the header value ("Bearer " for
	// OAuth-style providers, empty for bare-key headers).
	Prefix string
}

// builtinSchemes covers the providers with first-party support. Callers
// can extend or replace entries with [Resolver.Register].
var builtinSchemes = map[core.Provider]Scheme{
	core.ProviderOpenAI:     {EnvVar: "OPENAI_API_KEY", Header: "Authorization", Prefix: "Bearer "},
	core.ProviderAnthropic:  {EnvVar: "ANTHROPIC_API_KEY", Header: "x-api-key"},
	core.ProviderGoogle:     {EnvVar: "GOOGLE_API_KEY", Header: "x-goog-api-key"},
	core.ProviderMistral:    {EnvVar: "MISTRAL_API_KEY", Header: "Authorization", Prefix: "Bearer "},
	core.ProviderCohere:     {EnvVar: "COHERE_API_KEY", Header: "Authorization", Prefix: "Bearer "},
	core.ProviderXAI:        {EnvVar: "XAI_API_KEY", Header: "Authorization", Prefix: "Bearer "},
	core.ProviderDeepSeek:   {EnvVar: "DEEPSEEK_API_KEY", Header: "Authorization", Prefix: "Bearer "},
	core.ProviderElevenLabs: {EnvVar: "ELEVENLABS_API_KEY", Header: "xi-api-key"},
}

// Resolver maps providers to API keys. It is safe for concurrent use.
type Resolver struct {
	mu        sync.RWMutex
	schemes   map[core.Provider]Scheme
	overrides map[core.Provider]string
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithDotenv loads the named .env files (default ".env") into the process
// environment before resolution. Missing files are ignored; variables
// already set in the environment keep their values.
func WithDotenv(paths ...string) Option {
	return func(r *Resolver) {
		// Resolution can always fall back to the process environment, so
		// a missing or unreadable .env is not fatal.
		_ = godotenv.Load(paths...)
	}
}

// WithKey sets an explicit API key for a provider, taking precedence over
// the environment.
func WithKey(provider core.Provider, key string) Option {
	return func(r *Resolver) {
		r.overrides[provider] = key
	}
}

// WithScheme registers or replaces the auth scheme for a provider.
func WithScheme(provider core.Provider, scheme Scheme) Option {
	return func(r *Resolver) {
		r.schemes[provider] = scheme
	}
}

// New builds a Resolver pre-populated with the built-in provider schemes.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		schemes:   make(map[core.Provider]Scheme, len(builtinSchemes)),
		overrides: make(map[core.Provider]string),
	}
	for provider, scheme := range builtinSchemes {
		r.schemes[provider] = scheme
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds or replaces the auth scheme for a provider.
func (r *Resolver) Register(provider core.Provider, scheme Scheme) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.schemes[provider] = scheme
}

// SetKey installs an explicit key override for a provider.
func (r *Resolver) SetKey(provider core.Provider, key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.overrides[provider] = key
}

// Scheme returns the auth scheme registered for a provider.
func (r *Resolver) Scheme(provider core.Provider) (Scheme, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	scheme, ok := r.schemes[provider]
	if !ok {
		return Scheme{}, &core.UnsupportedProviderError{Provider: provider}
	}
	return scheme, nil
}

// Key resolves the API key for a provider: explicit override first, then
// the environment variable named by the provider's scheme.
func (r *Resolver) Key(provider core.Provider) (string, error) {
	r.mu.RLock()
	override, hasOverride := r.overrides[provider]
	scheme, hasScheme := r.schemes[provider]
	r.mu.RUnlock()

	if hasOverride && override != "" {
		return override, nil
	}
	if !hasScheme {
		return "", &core.UnsupportedProviderError{Provider: provider}
	}
	if key := os.Getenv(scheme.EnvVar); key != "" {
		return key, nil
	}
	return "", &core.MissingCredentialsError{Provider: provider, EnvVar: scheme.EnvVar}
}

// Apply resolves the provider's key and sets it on the header per the
// provider's scheme.
func (r *Resolver) Apply(provider core.Provider, header http.Header) error {
	key, err := r.Key(provider)
	if err != nil {
		return err
	}
	scheme, err := r.Scheme(provider)
	if err != nil {
		return err
	}
	header.Set(scheme.Header, scheme.Prefix+key)
	return nil
}
