package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/abdul-hamid-achik/bookcheck/packages/mock"
	"github.com/spf13/cobra"
)

var (
	mockPortFlag    int
	mockDelayFlag   string
	mockVerboseFlag bool
)

var mockCmd = &cobra.Command{
	Use:   "mock",
	Short: "Start an in-memory Simple Books API",
	Long: `Start an HTTP server that implements the Simple Books API in memory:
status, books, client registration and bearer-protected orders.

Point run at it to exercise the lifecycle without the public deployment.
State is lost when the server stops.

Examples:
  bookcheck mock
  bookcheck mock --port 3000 --delay 100ms
  bookcheck mock --verbose`,
	Args: cobra.NoArgs,
	RunE: mockCommand,
}

func init() {
	mockCmd.Flags().IntVarP(&mockPortFlag, "port", "p", 3000, "Port to run the mock server on")
	mockCmd.Flags().StringVarP(&mockDelayFlag, "delay", "d", "0", "Delay to add to all responses (e.g., 100ms, 1s)")
	mockCmd.Flags().BoolVarP(&mockVerboseFlag, "verbose", "v", false, "Log every request")
}

func mockCommand(cmd *cobra.Command, args []string) error {
	var delay time.Duration
	if mockDelayFlag != "0" {
		var err error
		delay, err = time.ParseDuration(mockDelayFlag)
		if err != nil {
			return fmt.Errorf("invalid delay value %q: %w", mockDelayFlag, err)
		}
	}

	level := logLevelFlag
	if mockVerboseFlag {
		level = "debug"
	}
	logger, err := newLogger(cmd.ErrOrStderr(), level, noColorFlag)
	if err != nil {
		return err
	}

	server := mock.NewServer(
		mock.WithPort(mockPortFlag),
		mock.WithDelay(delay),
		mock.WithLogger(logger),
	)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Mock Simple Books API on http://localhost:%d\n", mockPortFlag)
	for _, route := range server.Routes() {
		fmt.Fprintf(out, "  %-6s %s\n", route.Method, route.PathPattern)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.ListenAndServe(ctx); err != nil {
		return err
	}
	slog.Info("mock server stopped")
	return nil
}
