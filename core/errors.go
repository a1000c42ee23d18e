package core

import "fmt"

// ModelNotFoundError reports a lookup for a (model id, provider) pair that
// has never been registered. Modality is set when the lookup happened in a
// modality context (e.g. auto-selection for a namespace call).
type ModelNotFoundError struct {
	ModelID  string
	Provider Provider
	Modality Modality
}

func (e *ModelNotFoundError) Error() string {
	switch {
	case e.ModelID != "" && e.Provider != "":
		return fmt.Sprintf("model %q not found for provider %s", e.ModelID, e.Provider)
	case e.Modality != "" && e.Provider != "":
		return fmt.Sprintf("no model found for modality %q with provider %s", e.Modality, e.Provider)
	case e.Modality != "":
		return fmt.Sprintf("no model found for modality %q", e.Modality)
	default:
		return "model not found"
	}
}

// OperationNotSupportedError reports that a registered model does not
// declare the requested (modality, operation) pair.
type OperationNotSupportedError struct {
	ModelID   string
	Modality  Modality
	Operation Operation
}

func (e *OperationNotSupportedError) Error() string {
	return fmt.Sprintf("model %q does not support %s/%s", e.ModelID, e.Modality, e.Operation)
}

// ClientNotFoundError reports that no provider implementation is
// registered for a (modality, provider) pair.
type ClientNotFoundError struct {
	Modality Modality
	Provider Provider
}

func (e *ClientNotFoundError) Error() string {
	return fmt.Sprintf("no client registered for %s with provider %s", e.Modality, e.Provider)
}

// DuplicateModelError reports a registry conflict on (model id, provider)
// without explicit overwrite intent.
type DuplicateModelError struct {
	ModelID  string
	Provider Provider
}

func (e *DuplicateModelError) Error() string {
	return fmt.Sprintf("model %q for provider %s is already registered", e.ModelID, e.Provider)
}

// ParameterValidationError reports a unified parameter that failed
// constraint validation, or one that has no mapping rule for the resolved
// provider/operation. It is always raised before any network call.
type ParameterValidationError struct {
	Parameter string
	Value     any
	// Rule describes the violated constraint or mapping rule.
	Rule  string
	Cause error
}

func (e *ParameterValidationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("parameter %q: %v", e.Parameter, e.Cause)
	}
	return fmt.Sprintf("parameter %q with value %v violates %s", e.Parameter, e.Value, e.Rule)
}

func (e *ParameterValidationError) Unwrap() error { return e.Cause }

// StreamingNotSupportedError reports a streaming request against a model
// registered without streaming support.
type StreamingNotSupportedError struct {
	ModelID string
}

func (e *StreamingNotSupportedError) Error() string {
	return fmt.Sprintf("streaming not supported for model %q", e.ModelID)
}

// StreamError reports a malformed or prematurely terminated stream. The
// delivered count tells the caller how many chunks arrived before failure.
type StreamError struct {
	Provider  Provider
	Delivered int
	Cause     error
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("stream from %s failed after %d chunk(s): %v", e.Provider, e.Delivered, e.Cause)
}

func (e *StreamError) Unwrap() error { return e.Cause }

// StreamNotExhaustedError reports access to a stream's aggregate output
// before all chunks were consumed.
type StreamNotExhaustedError struct {
	// Delivered is how many chunks had been consumed at the time of the
	// premature access.
	Delivered int
}

func (e *StreamNotExhaustedError) Error() string {
	return fmt.Sprintf("stream not exhausted after %d chunk(s): consume all chunks before accessing the output", e.Delivered)
}

// ProviderError wraps a transport- or vendor-reported failure. The kind of
// the underlying error is preserved via Unwrap; the envelope adds the
// provider and the request id assigned to the call.
type ProviderError struct {
	Provider  Provider
	RequestID string
	Cause     error
}

func (e *ProviderError) Error() string {
	if e.RequestID != "" {
		return fmt.Sprintf("provider %s (request %s): %v", e.Provider, e.RequestID, e.Cause)
	}
	return fmt.Sprintf("provider %s: %v", e.Provider, e.Cause)
}

func (e *ProviderError) Unwrap() error { return e.Cause }

// MissingCredentialsError reports a provider that requires credentials
// but has none configured.
type MissingCredentialsError struct {
	Provider Provider
	// EnvVar names the environment variable that was consulted.
	EnvVar string
}

func (e *MissingCredentialsError) Error() string {
	if e.EnvVar != "" {
		return fmt.Sprintf("provider %s has no credentials configured: set %s or pass an api key override", e.Provider, e.EnvVar)
	}
	return fmt.Sprintf("provider %s has no credentials configured", e.Provider)
}

// UnsupportedProviderError reports a provider with no registered
// credential scheme.
type UnsupportedProviderError struct {
	Provider Provider
}

func (e *UnsupportedProviderError) Error() string {
	return fmt.Sprintf("provider %s has no credential scheme registered", e.Provider)
}
