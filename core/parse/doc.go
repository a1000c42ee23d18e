// Package parse provides utilities for extracting and converting structured
// data from raw LLM text output. Because language models frequently wrap
// JSON in narrative prose, markdown code fences, or schema-style envelopes,
// this package applies a layered recovery strategy (fence stripping, automatic
// JSON repair, schema unwrapping) before falling back to a clear error.
//
// The main entry points are the generic [ParseStringAs] function, which handles
// both primitive types (string, bool, int, float) and complex types (structs,
// maps, slices) in a single, uniform API, and [ResponseAs], which parses the
// text content of a generation response into a typed value.
package parse
