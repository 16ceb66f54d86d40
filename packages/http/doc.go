// Package http is the outbound HTTP client used by contract steps.
//
// It wraps the standard library's http package with:
//   - Configurable timeouts, redirects, proxy and TLS verification
//   - JSON request building with bearer-token headers
//   - Fully read responses with timing
//   - A distinct TransportError for calls that never produced a response
package http
