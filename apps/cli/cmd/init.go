package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/abdul-hamid-achik/bookcheck/packages/core/config"
	"github.com/spf13/cobra"
)

var forceInit bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter configuration",
	Long: `Initialize bookcheck in the current directory.

This creates:
  - bookcheck.yaml  - Configuration file with the default settings
  - .env.example    - BOOKCHECK_* overrides, copy to .env to use

Examples:
  bookcheck init
  bookcheck init --force`,
	Args: cobra.NoArgs,
	RunE: initCommand,
}

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite existing files")
}

const envExample = `# Overrides applied on top of bookcheck.yaml.
# BOOKCHECK_BASE_URL=http://localhost:3000
# BOOKCHECK_BOOK_ID=1
# BOOKCHECK_TIMEOUT=30000
# BOOKCHECK_DELETE_BODY=false
# BOOKCHECK_OUTPUT=console
# BOOKCHECK_LOG_LEVEL=warn
`

func initCommand(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}

	configFile := filepath.Join(cwd, "bookcheck.yaml")
	envFile := filepath.Join(cwd, ".env.example")

	if !forceInit {
		for _, f := range []string{configFile, envFile} {
			if _, err := os.Stat(f); err == nil {
				return fmt.Errorf("file already exists: %s (use --force to overwrite)", f)
			}
		}
	}

	if err := config.DefaultConfig().SaveConfig(configFile); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", configFile)

	if err := os.WriteFile(envFile, []byte(envExample), 0644); err != nil {
		return fmt.Errorf("failed to create env example: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", envFile)

	fmt.Fprintf(cmd.OutOrStdout(), "\nRun 'bookcheck run' to drive the order lifecycle.\n")
	return nil
}
