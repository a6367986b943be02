// Package cli holds the sanctuary command tree: the HTTP server plus the
// operational commands that share its configuration.
package cli

import (
	"fmt"
	"os"
	"slices"

	"sanctuary-app/config"
	"sanctuary-app/internal/logger"

	"github.com/spf13/cobra"
)

type RootOptions struct {
	LogLevel string
	Format   string // "json" | "text"
}

var ValidFormats = []string{"text", "json"}

func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "sanctuary",
		Short: "Sanctuary backend",
		Long:  "Content API and entitlement gateway: checkout, payment resolution and access to gated rooms.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			config.LoadEnv()
			level := opts.LogLevel
			if level == "" {
				level = config.LOG_LEVEL
			}
			logger.SetupDefault(os.Stderr, level)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level (debug|info|warn|error), defaults to LOG_LEVEL")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewAwaitCheckoutCommand(opts))

	return cmd
}

// Execute runs the root command; main only needs the exit code.
func Execute() int {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	return 0
}
