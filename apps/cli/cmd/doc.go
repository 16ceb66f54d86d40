// Package cmd implements the bookcheck CLI commands using Cobra.
//
// Available commands:
//   - run: Execute the order lifecycle against a Simple Books API
//   - list: Show the step chain and check its context ordering
//   - mock: Serve an in-memory Simple Books API
//   - init: Write a starter bookcheck.yaml
//   - version: Show bookcheck version information
//   - completion: Generate shell completion scripts
//
// run also repeats the lifecycle (--repeat), re-runs when the config or env
// file changes (--watch), exports metrics (--metrics) and posts outcomes to
// Slack (--slack-webhook).
package cmd
