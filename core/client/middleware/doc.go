// Package middleware provides built-in middleware implementations for
// the celeste client. Each middleware is constructed via a New* function
// that returns a [client.MiddlewareConfig] ready to be passed to the
// composition options.
//
// # Available Middleware
//
//   - [NewRetryMiddleware]: Retries failed provider calls with
//     exponential backoff and jitter. Useful for transient HTTP 429 /
//     5xx errors.
//
//   - [NewTimeoutMiddleware]: Adds a per-request deadline via
//     context.WithTimeout, ensuring that a stalled provider call does
//     not block the caller indefinitely.
//
//   - [NewLoggingMiddleware]: Emits structured slog entries before and
//     after every provider call, with three verbosity levels (Minimal,
//     Standard, Verbose).
//
// Middlewares execute outermost-first: the first entry passed to the
// client is the outermost wrapper, meaning it runs first on the way in
// and last on the way out. A typical stack travels:
//
//	Timeout (first — outermost) → Retry → Logging → Transport
//
// and the response travels back in reverse.
package middleware
