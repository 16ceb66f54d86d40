package cmd

// Exit codes for bookcheck CLI
const (
	// ExitSuccess indicates every step passed
	ExitSuccess = 0

	// ExitTestFailure indicates a status, shape or assertion failure
	ExitTestFailure = 1

	// ExitConfigError indicates a configuration error
	ExitConfigError = 3

	// ExitNetworkError indicates a network/connection error
	ExitNetworkError = 4

	// ExitUsageError indicates invalid CLI usage
	ExitUsageError = 64
)
