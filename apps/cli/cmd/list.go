package cmd

import (
	"fmt"
	"strings"

	"github.com/abdul-hamid-achik/bookcheck/packages/core/runner"
	"github.com/abdul-hamid-achik/bookcheck/packages/fake"
	"github.com/spf13/cobra"
)

var listFlags chainFlags

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the lifecycle steps and check their ordering",
	Long: `List prints each step of the order lifecycle with the status it
expects and the context keys it reads and writes, then checks statically
that every key is written before it is read. Nothing is sent.

Examples:
  bookcheck list
  bookcheck list --preflight --delete-body`,
	Args: cobra.NoArgs,
	RunE: listCommand,
}

func init() {
	listFlags.register(listCmd.Flags())
}

func listCommand(cmd *cobra.Command, args []string) error {
	cfg, err := listFlags.resolveConfig(cmd.Flags(), nil)
	if err != nil {
		return &exitError{code: ExitConfigError, err: err}
	}

	steps := chainBuilder(cfg, newClient(cfg), fake.New(cfg.Seed))()
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "%s\n", cfg.BaseURL)
	for i, step := range steps {
		fmt.Fprintf(out, "  %d. %s (expects %d)\n", i+1, step.Name, step.ExpectedStatus)
		if len(step.Reads) > 0 {
			fmt.Fprintf(out, "     reads:  %s\n", strings.Join(step.Reads, ", "))
		}
		if outputs := step.Outputs(); len(outputs) > 0 {
			fmt.Fprintf(out, "     writes: %s\n", strings.Join(outputs, ", "))
		}
	}

	if err := runner.Validate(steps); err != nil {
		fmt.Fprintf(out, "\nordering: %v\n", err)
		return &exitError{code: ExitConfigError}
	}
	fmt.Fprintln(out, "\nordering ok")
	return nil
}
