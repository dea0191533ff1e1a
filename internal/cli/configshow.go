package cli

import (
	"github.com/spf13/cobra"
)

// NewConfigCommand creates the config command group.
func NewConfigCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the effective configuration",
	}
	cmd.AddCommand(newConfigShowCommand(rootOpts))
	return cmd
}

func newConfigShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show every setting and where its value came from",
		Long: `Show every setting with its value and source: default, file or
environment. Passwords in the database URL are masked.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd)
			cfg := rootOpts.Config
			if cfg.FilePath() != "" {
				formatter.VerboseLog("Config file: %s", cfg.FilePath())
			}

			if formatter.Format == "json" {
				return formatter.Success(cfg.Attributes())
			}
			return formatter.Success(cfg.FormatText())
		},
	}
}
