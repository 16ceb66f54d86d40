// Package env holds the per-run value store and the helpers around it.
//
// It provides:
//   - Context, the write-once mapping threaded through a step chain
//   - {{key}} and {{$VAR}} interpolation for URL templates
//   - .env file loading
//   - Prefixed process environment lookup
package env
