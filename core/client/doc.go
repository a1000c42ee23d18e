// Package client executes unified generation requests against vendor
// APIs. A [Client] binds one (modality, operation, provider, model)
// combination and runs the shared pipeline around a vendor [Adapter]:
// constraint validation and parameter mapping, credential injection,
// middleware-wrapped dispatch, and normalization of the response or
// stream. The [AdapterRegistry] resolves which vendor adapter serves a
// (modality, provider) pair.
package client
