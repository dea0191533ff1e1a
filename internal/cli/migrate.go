package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/brewdb/internal/migration"
)

// MigrateOptions holds flags for the migrate command.
type MigrateOptions struct {
	*RootOptions
	To int
}

// MigrateResult is the JSON payload of the migrate command.
type MigrateResult struct {
	From     int  `json:"from"`
	To       int  `json:"to"`
	Migrated bool `json:"migrated"`
}

func (r MigrateResult) String() string {
	if !r.Migrated {
		return fmt.Sprintf("Schema already at version %d", r.From)
	}
	return fmt.Sprintf("✓ Schema migrated from version %d to %d", r.From, r.To)
}

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MigrateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Upgrade the database schema",
		Long: `Upgrade the database schema one version at a time.

All steps run in a single transaction. If any step fails the database is
left at the version it started from.

Example:
  brewdb migrate
  brewdb migrate --to 8`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(opts, cmd)
		},
	}

	cmd.Flags().IntVar(&opts.To, "to", migration.LatestVersion, "target schema version")

	return cmd
}

func runMigrate(opts *MigrateOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	ctx := commandContext(cmd)

	s, err := openSession(ctx, opts.RootOptions)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeOpenFailed, "failed to open database", err)
	}
	defer s.Close()

	from, err := s.helper.CurrentVersion(ctx)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeSchema, "failed to read schema version", err)
	}
	if from == opts.To {
		return formatter.Success(MigrateResult{From: from, To: from})
	}

	formatter.VerboseLog("Migrating schema from %d to %d", from, opts.To)
	if err := s.helper.Migrate(ctx, from, opts.To); err != nil {
		if errors.Is(err, migration.ErrInvalidRange) {
			return formatter.Fail(ExitCommandError, ErrCodeInvalidArg, "invalid migration target", err)
		}
		return formatter.Fail(ExitFailure, ErrCodeMigrateFailed, "migration failed", err)
	}
	return formatter.Success(MigrateResult{From: from, To: opts.To, Migrated: true})
}
