// Package runner executes an ordered chain of dependent HTTP steps.
//
// Each step reads values that strictly earlier steps put into a shared,
// write-once context, performs one call, and is checked for its expected
// status code and response shape. The first failure stops the run; later
// steps are never called. Chains are validated before the first call so an
// ordering mistake surfaces as a ContextMissingError rather than a failed
// request.
package runner
