// Package core defines the shared vocabulary of the library: the
// [Modality], [Operation] and [Provider] identifiers that key every
// registry lookup, the unified parameter and usage field names, and the
// typed error taxonomy raised by the resolution, validation and streaming
// layers.
//
// Every error carries enough structured context (model id, provider,
// parameter name, violated rule) to build an actionable message; callers
// match on concrete types with errors.As.
package core
