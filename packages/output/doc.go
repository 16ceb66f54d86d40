// Package output renders lifecycle run results.
//
// The console formatter prints each step as it is reported, with failures
// broken down by kind and the steps that never ran. JSON, JUnit XML and TAP
// buffer every run and write one document on Flush, so a CI job can archive
// it or feed it to a test report viewer.
package output
